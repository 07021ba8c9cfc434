// Package changelog renders release notes from commit
// records and embeds them in annotated tag messages
// between recognizable markers.
package changelog

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	begin = "--- release notes begin ---"
	end   = "--- release notes end ---"
)

// DefaultTemplate is the release-notes template used
// when the pipeline configuration supplies none.
const DefaultTemplate = "Release {tag}\n\n{commits}\n"

// Context carries the values available to a notes
// template.
type Context struct {
	// Tag is the release tag being created.
	Tag string
	// PreviousTag is the lower bound of the commit
	// range; empty for a first release.
	PreviousTag string
	// Commits are the commit records, newest first.
	Commits []string
}

// Render expands tpl with the {tag}, {previous_tag},
// {commits} and {count} placeholders. Unknown
// placeholders are kept verbatim so callers can chain
// other expansion passes.
func Render(tpl string, c Context) string {
	return fasttemplate.ExecuteStringStd(
		tpl, "{", "}",
		map[string]interface{}{
			"tag":          c.Tag,
			"previous_tag": c.PreviousTag,
			"commits":      joinCommits(c.Commits),
			"count": strconv.Itoa(
				len(c.Commits),
			),
		},
	)
}

// joinCommits flattens commit records into one block,
// one record per line, record order preserved.
func joinCommits(commits []string) string {
	trimmed := make([]string, 0, len(commits))

	for _, c := range commits {
		trimmed = append(
			trimmed, strings.TrimSpace(c),
		)
	}

	return strings.Join(trimmed, "\n")
}

// WrapNotes produces a message section containing the
// rendered notes between begin/end markers, suitable
// for embedding in an annotated tag message.
func WrapNotes(notes string) string {
	var sb strings.Builder

	sb.WriteByte('\n')
	sb.WriteString(begin)
	sb.WriteByte('\n')
	sb.WriteString(notes)

	if !strings.HasSuffix(notes, "\n") {
		sb.WriteByte('\n')
	}

	sb.WriteString(end)
	sb.WriteByte('\n')

	return sb.String()
}

// ExtractNotes extracts the notes previously embedded
// in a tag message by WrapNotes. Returns an empty
// string when the markers are absent or unbalanced.
func ExtractNotes(msg string) string {
	var (
		lines          []string
		betweenMarkers bool
	)

	for _, line := range strings.Split(msg, "\n") {
		switch line {
		case begin:
			betweenMarkers = true
		case end:
			betweenMarkers = false
		default:
			if betweenMarkers {
				lines = append(lines, line)
			}
		}
	}

	if betweenMarkers {
		slog.Warn(
			"unable to find end marker in tag " +
				"message",
		)

		return ""
	}

	return strings.Join(lines, "\n")
}
