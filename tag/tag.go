// Package tag creates annotated release tags with
// bounded retry on transient contention. A tag-name
// collision is terminal: it reflects a real naming
// conflict, not contention, and is never retried.
package tag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/byte4ever/release_ops/exec"
	"github.com/byte4ever/release_ops/notify"
)

// existsMarker is git's phrasing when the tag name is
// taken. The substring match is a compatibility
// contract with the real tool; do not change it.
const existsMarker = "already exists"

// Request describes one tag creation. It is consumed
// once and never mutated; the retry countdown lives in
// local state so the delay schedule stays a pure
// function of attempts already made.
type Request struct {
	// Name is the tag name (e.g. "v1.4.0").
	Name string
	// Commit is the target commit hash.
	Commit string
	// Message is the annotation message.
	Message string
	// DryRun skips tag creation entirely.
	DryRun bool
	// Retries is the retry budget for transient
	// failures.
	Retries int
}

// AlreadyExistsError is the terminal tag-name
// conflict.
type AlreadyExistsError struct {
	// Name is the conflicting tag name.
	Name string
}

// Error describes the conflict and how to resolve it.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf(
		"tag %q already exists: delete it locally "+
			"(git tag -d %s) and on the remote "+
			"(git push <remote> :refs/tags/%s), "+
			"then rerun the release",
		e.Name, e.Name, e.Name,
	)
}

// Manager creates annotated tags.
type Manager struct {
	// Runner runs the tag command.
	Runner exec.Runner
	// Notifier receives success notifications; nil
	// means none.
	Notifier notify.Notifier
	// Sleep waits between attempts; nil means a
	// context-aware timer. Injectable for tests.
	Sleep func(
		ctx context.Context,
		d time.Duration,
	) error
}

// Create makes an annotated tag per req and returns
// the tag name. A dry run succeeds immediately with an
// empty result. Transient failures are retried up to
// req.Retries times with doubling delays (1s, 2s, 4s,
// ...); a name collision fails immediately with
// *AlreadyExistsError regardless of remaining budget;
// an exhausted budget fails with the last raw error.
func (m *Manager) Create(
	ctx context.Context,
	req Request,
) (string, error) {
	if req.DryRun {
		return "", nil
	}

	// A negative budget reads as zero, otherwise the
	// countdown would never reach exhaustion.
	remaining := req.Retries
	if remaining < 0 {
		remaining = 0
	}

	for {
		_, err := m.Runner.Run(
			ctx, "git",
			"tag", "-a", req.Name, req.Commit,
			"-m", req.Message,
		)
		if err == nil {
			m.notifier().Notify(notify.Event{
				Step:  "tag",
				Level: notify.LevelInfo,
				Message: fmt.Sprintf(
					"created tag %s", req.Name,
				),
				Name: req.Name,
			})

			return req.Name, nil
		}

		if strings.Contains(
			err.Error(), existsMarker,
		) {
			return "", &AlreadyExistsError{
				Name: req.Name,
			}
		}

		if remaining == 0 {
			return "", err
		}

		// attempts already made = budget - remaining
		delay := time.Duration(
			1<<(req.Retries-remaining),
		) * time.Second

		if err := m.wait(ctx, delay); err != nil {
			return "", err
		}

		remaining--
	}
}

// wait pauses between attempts without blocking other
// work in the host program.
func (m *Manager) wait(
	ctx context.Context,
	d time.Duration,
) error {
	if m.Sleep != nil {
		return m.Sleep(ctx, d)
	}

	tm := time.NewTimer(d)
	defer tm.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tm.C:
		return nil
	}
}

// notifier returns the configured notifier or a
// discarding one.
func (m *Manager) notifier() notify.Notifier {
	if m.Notifier != nil {
		return m.Notifier
	}

	return notify.Nop()
}
