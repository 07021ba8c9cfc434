package changelog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/release_ops/changelog"
)

func TestRender_placeholders(t *testing.T) {
	t.Parallel()

	out := changelog.Render(
		"{tag} since {previous_tag}: "+
			"{count} changes\n{commits}",
		changelog.Context{
			Tag:         "v1.1.0",
			PreviousTag: "v1.0.0",
			Commits: []string{
				"feat: add thing\n",
				"fix: repair thing",
			},
		},
	)

	assert.Equal(
		t,
		"v1.1.0 since v1.0.0: 2 changes\n"+
			"feat: add thing\nfix: repair thing",
		out,
	)
}

func TestRender_unknown_placeholder_kept(t *testing.T) {
	t.Parallel()

	out := changelog.Render(
		"{tag} {mystery}",
		changelog.Context{Tag: "v1.0.0"},
	)

	assert.Equal(t, "v1.0.0 {mystery}", out)
}

func TestRender_default_template(t *testing.T) {
	t.Parallel()

	out := changelog.Render(
		changelog.DefaultTemplate,
		changelog.Context{
			Tag:     "v2.0.0",
			Commits: []string{"feat: big bang"},
		},
	)

	assert.Contains(t, out, "Release v2.0.0")
	assert.Contains(t, out, "feat: big bang")
}

func TestWrapExtract_roundtrip(t *testing.T) {
	t.Parallel()

	notes := "Release v1.0.0\n\nfeat: add thing"

	msg := "chore(release): v1.0.0\n" +
		changelog.WrapNotes(notes)

	assert.Equal(
		t, notes, changelog.ExtractNotes(msg),
	)
}

func TestExtractNotes_no_markers(t *testing.T) {
	t.Parallel()

	got := changelog.ExtractNotes(
		"just a plain message",
	)

	assert.Empty(t, got)
}

func TestExtractNotes_missing_end_marker(
	t *testing.T,
) {
	t.Parallel()

	msg := "header\n" +
		"--- release notes begin ---\n" +
		"dangling notes"

	assert.Empty(t, changelog.ExtractNotes(msg))
}
