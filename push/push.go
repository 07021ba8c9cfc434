// Package push sends a release branch and tag to a
// remote. The branch and tag go out as one atomic
// update when the remote supports it, with a single
// non-atomic fallback when it does not.
package push

import (
	"context"
	"fmt"
	"strings"

	"github.com/byte4ever/release_ops/exec"
	"github.com/byte4ever/release_ops/notify"
)

// atomicMarker appears in git's failure text when the
// atomic mode itself is the problem. The substring
// match is a compatibility contract with the real
// tool; do not change it.
const atomicMarker = "atomic"

// Request describes one push. It is consumed once.
type Request struct {
	// Remote is the remote name (e.g. "origin").
	Remote string
	// Branch is the branch to push.
	Branch string
	// Tag is the tag to push alongside the branch.
	Tag string
	// NoVerify skips the remote's verification
	// hooks.
	NoVerify bool
}

// ConfigError reports a missing push requirement,
// detected before any external call.
type ConfigError struct {
	// Missing names the absent requirement.
	Missing string
}

// Error names the missing requirement and points to
// the setup documentation.
func (e *ConfigError) Error() string {
	return fmt.Sprintf(
		"push is not configured: %s is required; "+
			"see "+
			"https://github.com/byte4ever/"+
			"release_ops#configuration",
		e.Missing,
	)
}

// Manager pushes branches and tags.
type Manager struct {
	// Runner runs the push command.
	Runner exec.Runner
	// Notifier receives progress notifications; nil
	// means none.
	Notifier notify.Notifier
}

// Push sends req.Branch and req.Tag to req.Remote and
// returns the remote name. A missing remote or branch
// fails with *ConfigError before any command runs.
// When the atomic attempt fails because of the atomic
// mode itself, one non-atomic retry follows with
// otherwise identical arguments; any other failure is
// propagated unchanged.
func (m Manager) Push(
	ctx context.Context,
	req Request,
) (string, error) {
	if req.Remote == "" {
		return "", &ConfigError{Missing: "remote"}
	}

	if req.Branch == "" {
		return "", &ConfigError{Missing: "branch"}
	}

	_, err := m.Runner.Run(
		ctx, "git", args(req, true)...,
	)
	if err != nil &&
		strings.Contains(
			err.Error(), atomicMarker,
		) {
		m.notifier().Notify(notify.Event{
			Step:  "push",
			Level: notify.LevelWarn,
			Message: fmt.Sprintf(
				"remote %s does not support "+
					"atomic push, retrying "+
					"without --atomic",
				req.Remote,
			),
			Name: req.Remote,
		})

		_, err = m.Runner.Run(
			ctx, "git", args(req, false)...,
		)
	}

	if err != nil {
		return "", err
	}

	m.notifier().Notify(notify.Event{
		Step:  "push",
		Level: notify.LevelInfo,
		Message: fmt.Sprintf(
			"pushed %s to %s",
			req.Branch, req.Remote,
		),
		Name: req.Remote,
	})

	return req.Remote, nil
}

// args builds the push command arguments, with or
// without the atomic flag.
func args(req Request, atomic bool) []string {
	out := []string{"push"}

	if atomic {
		out = append(out, "--atomic")
	}

	if req.NoVerify {
		out = append(out, "--no-verify")
	}

	out = append(out, req.Remote, req.Branch)

	if req.Tag != "" {
		out = append(out, "refs/tags/"+req.Tag)
	}

	return out
}

// notifier returns the configured notifier or a
// discarding one.
func (m Manager) notifier() notify.Notifier {
	if m.Notifier != nil {
		return m.Notifier
	}

	return notify.Nop()
}
