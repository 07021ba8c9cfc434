package notify_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/release_ops/notify"
)

func TestFunc_delegates(t *testing.T) {
	t.Parallel()

	var got notify.Event

	nt := notify.Func(func(ev notify.Event) {
		got = ev
	})

	nt.Notify(notify.Event{
		Step:    "tag",
		Level:   notify.LevelInfo,
		Message: "created tag v1.0.0",
		Name:    "v1.0.0",
	})

	assert.Equal(t, "tag", got.Step)
	assert.Equal(t, "v1.0.0", got.Name)
}

func TestFunc_nil_is_safe(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		notify.Nop().Notify(notify.Event{
			Step: "push",
		})
	})
}

func TestSlog_level_routing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	nt := notify.Slog{
		Logger: slog.New(
			slog.NewTextHandler(&buf, nil),
		),
	}

	nt.Notify(notify.Event{
		Step:    "push",
		Level:   notify.LevelWarn,
		Message: "falling back",
		Name:    "origin",
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "step=push")
	assert.Contains(t, out, "name=origin")
}

func TestSlog_defaults_to_info(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	nt := notify.Slog{
		Logger: slog.New(
			slog.NewTextHandler(&buf, nil),
		),
	}

	nt.Notify(notify.Event{
		Step:    "tag",
		Message: "created",
	})

	assert.Contains(t, buf.String(), "level=INFO")
}
