package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/release_ops/pipeline"
)

func TestApplyFlagOverrides_retries_unset(
	t *testing.T,
) {
	t.Parallel()

	cfg := pipeline.Config{Retries: 5}

	applyFlagOverrides(&cfg, flagValues{
		retries: 2,
	})

	// The flag default must not clobber the file
	// value.
	assert.Equal(t, 5, cfg.Retries)
}

func TestApplyFlagOverrides_retries_set(t *testing.T) {
	t.Parallel()

	cfg := pipeline.Config{Retries: 5}

	applyFlagOverrides(&cfg, flagValues{
		retries:    2,
		retriesSet: true,
	})

	assert.Equal(t, 2, cfg.Retries)
}

func TestApplyFlagOverrides_retries_zero(t *testing.T) {
	t.Parallel()

	cfg := pipeline.Config{Retries: 5}

	applyFlagOverrides(&cfg, flagValues{
		retries:    0,
		retriesSet: true,
	})

	// Zero disables retries and must stick.
	assert.Zero(t, cfg.Retries)
}

func TestApplyFlagOverrides_empty_keeps_file_values(
	t *testing.T,
) {
	t.Parallel()

	cfg := pipeline.Config{
		Remote: "origin",
		Branch: "main",
		Tag:    "v1.0.0",
	}

	applyFlagOverrides(&cfg, flagValues{})

	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, "main", cfg.Branch)
	assert.Equal(t, "v1.0.0", cfg.Tag)
}

func TestApplyFlagOverrides_flags_win(t *testing.T) {
	t.Parallel()

	cfg := pipeline.Config{
		Remote: "origin",
		Tag:    "v1.0.0",
	}

	applyFlagOverrides(&cfg, flagValues{
		remote: "upstream",
		tag:    "v1.1.0",
	})

	assert.Equal(t, "upstream", cfg.Remote)
	assert.Equal(t, "v1.1.0", cfg.Tag)
}

func TestSliceFlag(t *testing.T) {
	t.Parallel()

	var sf sliceFlag

	assert.NoError(t, sf.Set("CHANGELOG.md"))
	assert.NoError(t, sf.Set("version.txt"))
	assert.Equal(
		t, "CHANGELOG.md,version.txt", sf.String(),
	)
}
