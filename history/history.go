// Package history extracts commit history from a git
// repository. A Reader turns the streamed output of
// "git log" into a single ordered sequence of commit
// records and locates the repository's root commit.
package history

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/byte4ever/release_ops/exec"
)

// Formats for the canned read operations.
const (
	// formatBody selects the full commit message.
	formatBody = "%B"
	// formatHash selects the commit hash.
	formatHash = "%H"
)

// Options controls a history read.
type Options struct {
	// Path restricts history to commits touching
	// this path. Empty means the whole repository.
	Path string
	// From is the lower-bound reference (commit or
	// tag), excluded from the result. Empty means
	// the repository start.
	From string
	// Format is the git pretty format for each
	// record.
	Format string
	// NoMerges excludes merge commits.
	NoMerges bool
}

// ReadError is a failed history read. Any output
// accumulated before the failure has been discarded;
// a read is all-or-nothing.
type ReadError struct {
	// Err is the underlying command error.
	Err error
}

// Error describes the failed read.
func (e *ReadError) Error() string {
	return fmt.Sprintf(
		"reading commit history: %v", e.Err,
	)
}

// Unwrap returns the underlying command error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Reader reads commit history.
type Reader struct {
	// Streamer runs the streaming log command.
	Streamer exec.Streamer
	// Runner runs one-shot commands.
	Runner exec.Runner
}

// Read runs "git log" with opts and returns one record
// per commit, in emission order (newest first). An
// empty history yields an empty sequence, not an
// error. On command failure it returns a *ReadError
// and no records.
func (r *Reader) Read(
	ctx context.Context,
	opts Options,
) ([]string, error) {
	args := []string{
		"log",
		"--pretty=format:" + opts.Format +
			"%x00",
	}

	if opts.NoMerges {
		args = append(args, "--no-merges")
	}

	if opts.From != "" {
		args = append(args, opts.From+"..HEAD")
	}

	if opts.Path != "" {
		args = append(args, "--", opts.Path)
	}

	acc := &accumulator{}

	err := r.Streamer.Stream(ctx, acc, "git", args...)
	if err != nil {
		return nil, &ReadError{Err: err}
	}

	return acc.result(), nil
}

// Commits returns the full message body of every
// non-merge commit reachable from HEAD, newest first,
// scoped to path and bounded below by from (both
// optional). Used to derive changelogs.
func (r *Reader) Commits(
	ctx context.Context,
	path string,
	from string,
) ([]string, error) {
	return r.Read(ctx, Options{
		Path:     path,
		From:     from,
		Format:   formatBody,
		NoMerges: true,
	})
}

// LastCommitHash returns the hash of the most recent
// commit on HEAD (merges included), trimmed of
// surrounding whitespace. An empty history yields an
// empty string.
func (r *Reader) LastCommitHash(
	ctx context.Context,
) (string, error) {
	records, err := r.Read(ctx, Options{
		Format: formatHash,
	})
	if err != nil {
		return "", err
	}

	var first string
	if len(records) > 0 {
		first = records[0]
	}

	return strings.TrimSpace(first), nil
}

// FirstCommit returns the repository's root commit
// (the commit without parents) for the current HEAD.
// When several root commits exist the last listed one
// wins; changing that tie-break needs confirmation of
// the intended semantics. Returns an empty string when
// the command emits nothing. Command failures are
// propagated verbatim.
func (r *Reader) FirstCommit(
	ctx context.Context,
) (string, error) {
	out, err := r.Runner.Run(
		ctx, "git",
		"rev-list", "--max-parents=0", "HEAD",
	)
	if err != nil {
		return "", err
	}

	var last string

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			last = line
		}
	}

	return last, nil
}

// accumulator collects streamed records in arrival
// order and latches the result on the first completion
// signal. Safe for asynchronous delivery.
type accumulator struct {
	mu      sync.Mutex
	records []string
	done    bool
	final   []string
}

// Record appends a record. Records arriving after
// completion are dropped.
func (a *accumulator) Record(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done {
		return
	}

	a.records = append(a.records, text)
}

// Done latches the accumulated records. A repeated
// completion signal is a no-op.
func (a *accumulator) Done() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done {
		return
	}

	a.done = true
	a.final = a.records
}

// result returns the latched records. Always non-nil
// so an empty history reads as an empty sequence.
func (a *accumulator) result() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.final == nil {
		return []string{}
	}

	return a.final
}
