package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/release_ops/changelog"
	"github.com/byte4ever/release_ops/exec"
	"github.com/byte4ever/release_ops/history"
	"github.com/byte4ever/release_ops/notify"
	"github.com/byte4ever/release_ops/provider"
	"github.com/byte4ever/release_ops/push"
	"github.com/byte4ever/release_ops/stage"
	"github.com/byte4ever/release_ops/tag"
)

// Config holds all settings for one release run. Use a
// Config struct instead of many arguments.
type Config struct {
	// RepoDir is the repository working directory.
	RepoDir string

	// Remote is the remote to push to.
	Remote string

	// Branch is the branch to push.
	Branch string

	// Tag is the release tag to create.
	Tag string

	// TargetCommit is the commit the tag points at.
	// Empty means the most recent commit on HEAD.
	TargetCommit string

	// From is the lower-bound reference for the
	// changelog range. Empty means the repository
	// start.
	From string

	// Path restricts the changelog to commits
	// touching this path.
	Path string

	// NotesTemplate is the release-notes template;
	// empty selects changelog.DefaultTemplate.
	NotesTemplate string

	// StagePaths are files staged before tagging
	// (e.g. a regenerated CHANGELOG.md).
	StagePaths []string

	// Retries is the tag-creation retry budget.
	Retries int

	// DryRun stages with --dry-run, creates no tag,
	// and skips push and publication.
	DryRun bool

	// SkipStage turns the staging step into a
	// completed no-op.
	SkipStage bool

	// NoVerify skips the remote's verification
	// hooks on push.
	NoVerify bool

	// Publisher publishes a hosted release after
	// the push; nil disables publication.
	Publisher provider.Publisher

	// Notifier receives progress events; nil means
	// none.
	Notifier notify.Notifier

	// Runner runs one-shot commands. Nil selects
	// exec.CLI rooted at RepoDir.
	Runner exec.Runner

	// Streamer runs the streaming log command. Nil
	// selects exec.CLI rooted at RepoDir.
	Streamer exec.Streamer

	// Out receives a JSON run summary; nil disables
	// it.
	Out io.Writer
}

// Summary is the machine-readable result of a run.
type Summary struct {
	Tag         string `json:"tag"`
	Commit      string `json:"commit"`
	Remote      string `json:"remote,omitempty"`
	CommitCount int    `json:"commit_count"`
	DryRun      bool   `json:"dry_run"`
	Published   bool   `json:"published"`
}

// Run executes the full release workflow: collect the
// commit history, render release notes, stage files,
// create the annotated tag, push branch and tag, and
// optionally publish a hosted release. Steps run
// sequentially; the first failure stops the run.
func Run(
	ctx context.Context,
	cfg Config,
) (*Summary, error) {
	const errCtx = "running release pipeline"

	if cfg.Tag == "" {
		return nil, fmt.Errorf(
			"%s: tag must be set", errCtx,
		)
	}

	runner := cfg.Runner
	if runner == nil {
		runner = exec.CLI{Dir: cfg.RepoDir}
	}

	streamer := cfg.Streamer
	if streamer == nil {
		streamer = exec.CLI{Dir: cfg.RepoDir}
	}

	rd := &history.Reader{
		Streamer: streamer,
		Runner:   runner,
	}

	// Step 1: bound the changelog range. Without a
	// previous tag the root commit stands in for
	// template context.
	previous := cfg.From
	if previous == "" {
		root, err := rd.FirstCommit(ctx)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: locate first commit: %w",
				errCtx, err,
			)
		}

		previous = root
	}

	// Step 2: collect the commit history.
	commits, err := rd.Commits(
		ctx, cfg.Path, cfg.From,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: collect history: %w", errCtx, err,
		)
	}

	// Step 3: resolve the tag target.
	target := cfg.TargetCommit
	if target == "" {
		target, err = rd.LastCommitHash(ctx)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: resolve target commit: %w",
				errCtx, err,
			)
		}
	}

	// Step 4: render the release notes.
	tpl := cfg.NotesTemplate
	if tpl == "" {
		tpl = changelog.DefaultTemplate
	}

	notes := changelog.Render(tpl, changelog.Context{
		Tag:         cfg.Tag,
		PreviousTag: previous,
		Commits:     commits,
	})

	// Step 5: stage release artifacts.
	stg := stage.Manager{Runner: runner}

	err = stg.Add(ctx, stage.Options{
		Paths:  cfg.StagePaths,
		DryRun: cfg.DryRun,
		Skip:   cfg.SkipStage,
	})
	if err != nil {
		return nil, fmt.Errorf(
			"%s: stage files: %w", errCtx, err,
		)
	}

	// Step 6: create the annotated tag.
	tg := &tag.Manager{
		Runner:   runner,
		Notifier: cfg.Notifier,
	}

	_, err = tg.Create(ctx, tag.Request{
		Name:   cfg.Tag,
		Commit: target,
		Message: cfg.Tag +
			changelog.WrapNotes(notes),
		DryRun:  cfg.DryRun,
		Retries: cfg.Retries,
	})
	if err != nil {
		return nil, fmt.Errorf(
			"%s: create tag: %w", errCtx, err,
		)
	}

	summary := &Summary{
		Tag:         cfg.Tag,
		Commit:      target,
		CommitCount: len(commits),
		DryRun:      cfg.DryRun,
	}

	if cfg.DryRun {
		slog.Info(
			"dry run, skipping push and publish",
			"tag", cfg.Tag,
		)

		return summary, writeSummary(cfg.Out, summary)
	}

	// Step 7: push branch and tag.
	ps := push.Manager{
		Runner:   runner,
		Notifier: cfg.Notifier,
	}

	remote, err := ps.Push(ctx, push.Request{
		Remote:   cfg.Remote,
		Branch:   cfg.Branch,
		Tag:      cfg.Tag,
		NoVerify: cfg.NoVerify,
	})
	if err != nil {
		return nil, fmt.Errorf(
			"%s: push: %w", errCtx, err,
		)
	}

	summary.Remote = remote

	// Step 8: publish the hosted release.
	if cfg.Publisher != nil {
		err = cfg.Publisher.PublishRelease(
			ctx,
			cfg.Tag,
			"Release "+cfg.Tag,
			notes,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: publish release: %w",
				errCtx, err,
			)
		}

		summary.Published = true
	}

	return summary, writeSummary(cfg.Out, summary)
}

// writeSummary encodes the summary to out when set.
func writeSummary(
	out io.Writer,
	summary *Summary,
) error {
	if out == nil {
		return nil
	}

	enc := json.NewEncoder(out)

	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf(
			"writing run summary: %w", err,
		)
	}

	return nil
}
