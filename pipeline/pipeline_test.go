package pipeline_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/release_ops/exec"
	"github.com/byte4ever/release_ops/pipeline"
)

// fakeRunner answers one-shot git commands from a
// canned table keyed by subcommand and records every
// invocation.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error

	invocations [][]string
}

func (f *fakeRunner) Run(
	_ context.Context,
	_ string,
	arg ...string,
) (string, error) {
	f.invocations = append(f.invocations, arg)

	sub := arg[0]

	if err := f.errs[sub]; err != nil {
		return "", err
	}

	return f.outputs[sub], nil
}

func (f *fakeRunner) commands() []string {
	var subs []string

	for _, inv := range f.invocations {
		subs = append(subs, inv[0])
	}

	return subs
}

// fakeStreamer replays commit records for the log
// command.
type fakeStreamer struct {
	records []string
}

func (f *fakeStreamer) Stream(
	_ context.Context,
	sink exec.Sink,
	_ string,
	_ ...string,
) error {
	for _, rec := range f.records {
		sink.Record(rec)
	}

	sink.Done()

	return nil
}

func TestRun_full_release(t *testing.T) {
	t.Parallel()

	rn := &fakeRunner{
		outputs: map[string]string{
			"rev-list": "deadbeef\n",
		},
	}
	st := &fakeStreamer{
		records: []string{
			"feat: second\n",
			"feat: first\n",
		},
	}

	var out bytes.Buffer

	published := false

	summary, err := pipeline.Run(
		t.Context(),
		pipeline.Config{
			Remote:       "origin",
			Branch:       "main",
			Tag:          "v1.0.0",
			TargetCommit: "abc123",
			StagePaths: []string{
				"CHANGELOG.md",
			},
			Publisher: publisherFunc(
				func(
					_ context.Context,
					tag string,
					title string,
					notes string,
				) error {
					published = true

					assert.Equal(
						t, "v1.0.0", tag,
					)
					assert.Contains(
						t, title, "v1.0.0",
					)
					assert.Contains(
						t, notes,
						"feat: first",
					)

					return nil
				},
			),
			Runner:   rn,
			Streamer: st,
			Out:      &out,
		},
	)

	require.NoError(t, err)
	assert.True(t, published)
	assert.Equal(t, "v1.0.0", summary.Tag)
	assert.Equal(t, "abc123", summary.Commit)
	assert.Equal(t, "origin", summary.Remote)
	assert.Equal(t, 2, summary.CommitCount)

	// Steps run in order.
	assert.Equal(t, []string{
		"rev-list", "add", "tag", "push",
	}, rn.commands())

	var decoded pipeline.Summary

	require.NoError(
		t, json.Unmarshal(out.Bytes(), &decoded),
	)
	assert.Equal(t, *summary, decoded)
}

func TestRun_dry_run_skips_push(t *testing.T) {
	t.Parallel()

	rn := &fakeRunner{
		outputs: map[string]string{
			"rev-list": "deadbeef\n",
		},
	}
	st := &fakeStreamer{
		records: []string{"abc123\n"},
	}

	summary, err := pipeline.Run(
		t.Context(),
		pipeline.Config{
			Remote:   "origin",
			Branch:   "main",
			Tag:      "v1.0.0",
			DryRun:   true,
			Runner:   rn,
			Streamer: st,
			StagePaths: []string{
				"CHANGELOG.md",
			},
		},
	)

	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Empty(t, summary.Remote)
	assert.False(t, summary.Published)

	cmds := strings.Join(rn.commands(), " ")
	assert.NotContains(t, cmds, "push")
	assert.NotContains(t, cmds, "tag")
	assert.Contains(t, cmds, "add")

	// Staging was a dry run.
	for _, inv := range rn.invocations {
		if inv[0] == "add" {
			assert.Contains(
				t, inv, "--dry-run",
			)
		}
	}
}

func TestRun_requires_tag(t *testing.T) {
	t.Parallel()

	_, err := pipeline.Run(
		t.Context(), pipeline.Config{},
	)

	assert.ErrorContains(t, err, "tag must be set")
}

func TestRun_resolves_target_from_head(t *testing.T) {
	t.Parallel()

	rn := &fakeRunner{
		outputs: map[string]string{
			"rev-list": "deadbeef\n",
		},
	}
	st := &fakeStreamer{
		records: []string{"  abc123\n"},
	}

	summary, err := pipeline.Run(
		t.Context(),
		pipeline.Config{
			Remote:   "origin",
			Branch:   "main",
			Tag:      "v1.0.0",
			From:     "v0.9.0",
			Runner:   rn,
			Streamer: st,
		},
	)

	require.NoError(t, err)
	assert.Equal(t, "abc123", summary.Commit)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	raw := `
remote: origin
branch: main
tag: v1.2.3
from: v1.2.2
stage_paths:
  - CHANGELOG.md
  - version.txt
retries: 3
no_verify: true
`

	path := filepath.Join(t.TempDir(), "release.yaml")

	require.NoError(t, os.WriteFile(
		path, []byte(raw), 0o600,
	))

	fc, err := pipeline.LoadFile(path)
	require.NoError(t, err)

	cfg := fc.Config()
	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, "main", cfg.Branch)
	assert.Equal(t, "v1.2.3", cfg.Tag)
	assert.Equal(t, "v1.2.2", cfg.From)
	assert.Equal(t, []string{
		"CHANGELOG.md", "version.txt",
	}, cfg.StagePaths)
	assert.Equal(t, 3, cfg.Retries)
	assert.True(t, cfg.NoVerify)
}

func TestLoadFile_missing(t *testing.T) {
	t.Parallel()

	_, err := pipeline.LoadFile(
		filepath.Join(t.TempDir(), "absent.yaml"),
	)

	assert.Error(t, err)
}

func TestLoadFile_bad_yaml(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")

	require.NoError(t, os.WriteFile(
		path, []byte("remote: [unclosed"), 0o600,
	))

	_, err := pipeline.LoadFile(path)

	assert.ErrorContains(t, err, "decoding yaml")
}

// publisherFunc adapts a function for tests without
// importing the provider package adapter.
type publisherFunc func(
	ctx context.Context,
	tag string,
	title string,
	notes string,
) error

func (f publisherFunc) PublishRelease(
	ctx context.Context,
	tag string,
	title string,
	notes string,
) error {
	return f(ctx, tag, title, notes)
}
