package exec

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// RecordSeparator terminates each streamed record.
// Append "%x00" to a git pretty format so that every
// record delivered to the sink is exactly one commit.
const RecordSeparator = '\x00'

// Sink receives the output of a streamed command.
// Record is called once per output record in emission
// order. Done signals completion and MAY be called
// more than once: the default Streamer signals it when
// the output pipe closes and again when the process is
// reaped. Sinks must treat a repeated Done as a no-op.
type Sink interface {
	Record(text string)
	Done()
}

// Streamer executes a long-running command and feeds
// its output to a Sink. On non-zero exit the returned
// error is a *CommandError carrying the raw stderr
// text; output delivered before the failure must be
// considered invalid by the sink's owner.
type Streamer interface {
	Stream(
		ctx context.Context,
		sink Sink,
		name string,
		arg ...string,
	) error
}

// Stream executes the named command and delivers each
// NUL-terminated output record to sink.
func (c CLI) Stream(
	ctx context.Context,
	sink Sink,
	name string,
	arg ...string,
) error {
	const errCtx = "streaming command output"

	slog.Info(
		"streaming",
		"cmd", name,
		"args", strings.Join(arg, " "),
	)

	cmd := exec.CommandContext(ctx, name, arg...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf(
			"%s: stdout pipe: %w", errCtx, err,
		)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf(
			"%s: start %s: %w", errCtx, name, err,
		)
	}

	sc := bufio.NewScanner(out)
	// Commit bodies can be arbitrarily large.
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(splitRecords)

	first := true

	for sc.Scan() {
		txt := sc.Text()

		// git joins format entries with "\n"; the
		// joiner precedes every record but the
		// first, whose leading newline is content.
		if !first {
			txt = strings.TrimPrefix(txt, "\n")
		}

		first = false

		sink.Record(txt)
	}

	scanErr := sc.Err()
	if scanErr == nil {
		// Output pipe closed: first completion
		// signal.
		sink.Done()
	}

	if err := cmd.Wait(); err != nil {
		return &CommandError{
			Name:   name,
			Args:   arg,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	if scanErr != nil {
		return fmt.Errorf(
			"%s: read output: %w", errCtx, scanErr,
		)
	}

	// Process reaped: second completion signal.
	sink.Done()

	return nil
}

// splitRecords is a bufio.SplitFunc cutting the stream
// on RecordSeparator. Records are emitted as-is, empty
// ones included: an empty annotated body is still one
// commit. Only an unterminated bare-newline tail is
// dropped, since every genuine record carries its own
// terminator.
func splitRecords(
	data []byte,
	atEOF bool,
) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(
		data, RecordSeparator,
	); i >= 0 {
		return i + 1, data[:i], nil
	}

	if atEOF {
		if isResidue(data) {
			return len(data), nil, nil
		}

		return len(data), data, nil
	}

	return 0, nil, nil
}

// isResidue reports whether an unterminated tail is
// stream residue rather than a record.
func isResidue(data []byte) bool {
	return len(data) == 1 && data[0] == '\n'
}
