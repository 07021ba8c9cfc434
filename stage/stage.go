// Package stage adds file paths to the git staging
// area ahead of a release commit.
package stage

import (
	"context"

	"github.com/byte4ever/release_ops/exec"
)

// Options controls a staging operation.
type Options struct {
	// Paths are the files to stage, in order.
	Paths []string
	// DryRun asks git not to mutate the index. The
	// command still runs; git's own --dry-run
	// support does the work.
	DryRun bool
	// Skip turns the operation into a completed
	// no-op so a sequential pipeline continues.
	Skip bool
}

// Manager stages files.
type Manager struct {
	// Runner runs the staging command.
	Runner exec.Runner
}

// Add stages opts.Paths. An empty path list or a set
// Skip flag completes successfully without invoking
// any command. Command failures are propagated
// unchanged.
func (m Manager) Add(
	ctx context.Context,
	opts Options,
) error {
	if len(opts.Paths) == 0 {
		return nil
	}

	if opts.Skip {
		return nil
	}

	args := []string{"add"}

	if opts.DryRun {
		args = append(args, "--dry-run")
	}

	// Separator keeps dash-prefixed paths from being
	// parsed as options.
	args = append(args, "--")
	args = append(args, opts.Paths...)

	_, err := m.Runner.Run(ctx, "git", args...)

	return err
}
