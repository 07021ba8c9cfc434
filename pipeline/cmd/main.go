// Command create_release drives one release: it
// collects the commit history, renders release notes,
// stages release artifacts, creates the annotated tag,
// pushes branch and tag, and optionally publishes a
// hosted release on the configured platform.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/byte4ever/release_ops/notify"
	"github.com/byte4ever/release_ops/pipeline"
	"github.com/byte4ever/release_ops/provider"
	"github.com/byte4ever/release_ops/provider/github"
	"github.com/byte4ever/release_ops/provider/gitlab"
	"github.com/byte4ever/release_ops/provider/webhook"
)

// sliceFlag implements flag.Value for multi-value
// string flags (repeated --flag=val usage).
type sliceFlag []string

// String returns the flag value as a comma-separated
// string representation.
func (s *sliceFlag) String() string {
	if s == nil {
		return ""
	}

	return strings.Join(*s, ",")
}

// Set appends a value to the slice.
func (s *sliceFlag) Set(val string) error {
	*s = append(*s, val)

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // CLI flag setup is inherently long
func run() error {
	const errCtx = "running create_release"

	// Run configuration.
	configFile := flag.String(
		"config", "",
		"YAML config file; flags override it",
	)
	repoDir := flag.String(
		"repo_dir", "",
		"Repository working directory",
	)
	remote := flag.String(
		"remote", "",
		"Remote to push to",
	)
	branch := flag.String(
		"branch", "",
		"Branch to push",
	)
	tagName := flag.String(
		"tag", "",
		"Release tag to create",
	)
	targetCommit := flag.String(
		"target_commit", "",
		"Commit the tag points at (default HEAD)",
	)
	from := flag.String(
		"from", "",
		"Lower-bound reference for the changelog",
	)
	path := flag.String(
		"path", "",
		"Restrict the changelog to this path",
	)
	notesTemplate := flag.String(
		"notes_template", "",
		"Release notes template",
	)

	var stagePaths sliceFlag

	flag.Var(
		&stagePaths,
		"stage_path",
		"File to stage before tagging (repeatable)",
	)

	retries := flag.Int(
		"retries", 2,
		"Tag creation retry budget",
	)
	dryRun := flag.Bool(
		"dry_run", false,
		"Create no tag, skip push and publish",
	)
	skipStage := flag.Bool(
		"skip_stage", false,
		"Skip the staging step",
	)
	noVerify := flag.Bool(
		"no_verify", false,
		"Skip remote verification hooks on push",
	)

	// Release platform selection.
	platform := flag.String(
		"platform", "",
		"Release platform: github, gitlab, "+
			"webhook, or empty for none",
	)

	// GitHub-specific flags.
	ghRepoOwner := flag.String(
		"github_repo_owner", "",
		"GitHub repository owner",
	)
	ghRepo := flag.String(
		"github_repo", "",
		"GitHub repository name",
	)
	ghToken := flag.String(
		"github_access_token", "",
		"GitHub personal access token",
	)
	ghEnterprise := flag.String(
		"github_enterprise_host", "",
		"GitHub Enterprise hostname",
	)

	// GitLab-specific flags.
	glHost := flag.String(
		"gitlab_host", "",
		"GitLab instance URL",
	)
	glRepo := flag.String(
		"gitlab_repo", "",
		"GitLab project path (org/project)",
	)
	glToken := flag.String(
		"gitlab_access_token", "",
		"GitLab personal access token",
	)

	// Webhook-specific flags.
	whEndpoint := flag.String(
		"webhook_endpoint", "",
		"Release announcement endpoint URL",
	)
	whToken := flag.String(
		"webhook_token", "",
		"Release announcement bearer token",
	)

	flag.Parse()

	// The retries flag default must not clobber a
	// file value, and zero is a valid budget, so
	// record whether the flag was set explicitly.
	retriesSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "retries" {
			retriesSet = true
		}
	})

	cfg := pipeline.Config{}

	if *configFile != "" {
		fc, err := pipeline.LoadFile(*configFile)
		if err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		cfg = fc.Config()
	}

	// Without a config file the flag default is the
	// only source for the budget.
	overrideRetries := retriesSet ||
		*configFile == ""

	applyFlagOverrides(&cfg, flagValues{
		repoDir:       *repoDir,
		remote:        *remote,
		branch:        *branch,
		tag:           *tagName,
		targetCommit:  *targetCommit,
		from:          *from,
		path:          *path,
		notesTemplate: *notesTemplate,
		stagePaths:    stagePaths,
		retries:       *retries,
		retriesSet:    overrideRetries,
		dryRun:        *dryRun,
		skipStage:     *skipStage,
		noVerify:      *noVerify,
	})

	// Build release publisher from flags.
	publisher, err := newPublisher(
		*platform,
		publisherFlags{
			ghRepoOwner:  *ghRepoOwner,
			ghRepo:       *ghRepo,
			ghToken:      *ghToken,
			ghEnterprise: *ghEnterprise,
			glHost:       *glHost,
			glRepo:       *glRepo,
			glToken:      *glToken,
			whEndpoint:   *whEndpoint,
			whToken:      *whToken,
		},
	)
	if err != nil {
		return fmt.Errorf(
			"%s: create publisher: %w", errCtx, err,
		)
	}

	cfg.Publisher = publisher
	cfg.Notifier = notify.Slog{}
	cfg.Out = os.Stdout

	if _, err := pipeline.Run(
		context.Background(), cfg,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// flagValues bundles the run flag values to keep
// applyFlagOverrides under the argument limit.
type flagValues struct {
	repoDir       string
	remote        string
	branch        string
	tag           string
	targetCommit  string
	from          string
	path          string
	notesTemplate string
	stagePaths    []string
	retries       int
	retriesSet    bool
	dryRun        bool
	skipStage     bool
	noVerify      bool
}

// applyFlagOverrides lays non-empty flag values over
// the file configuration.
func applyFlagOverrides(
	cfg *pipeline.Config,
	fv flagValues,
) {
	if fv.repoDir != "" {
		cfg.RepoDir = fv.repoDir
	}

	if fv.remote != "" {
		cfg.Remote = fv.remote
	}

	if fv.branch != "" {
		cfg.Branch = fv.branch
	}

	if fv.tag != "" {
		cfg.Tag = fv.tag
	}

	if fv.targetCommit != "" {
		cfg.TargetCommit = fv.targetCommit
	}

	if fv.from != "" {
		cfg.From = fv.from
	}

	if fv.path != "" {
		cfg.Path = fv.path
	}

	if fv.notesTemplate != "" {
		cfg.NotesTemplate = fv.notesTemplate
	}

	if len(fv.stagePaths) > 0 {
		cfg.StagePaths = fv.stagePaths
	}

	// Zero is a valid budget; only an explicitly set
	// flag overrides the file value.
	if fv.retriesSet {
		cfg.Retries = fv.retries
	}

	if fv.dryRun {
		cfg.DryRun = true
	}

	if fv.skipStage {
		cfg.SkipStage = true
	}

	if fv.noVerify {
		cfg.NoVerify = true
	}
}

// publisherFlags bundles platform-specific flag values
// to keep newPublisher under the 4-argument limit.
type publisherFlags struct {
	ghRepoOwner  string
	ghRepo       string
	ghToken      string
	ghEnterprise string
	glHost       string
	glRepo       string
	glToken      string
	whEndpoint   string
	whToken      string
}

// newPublisher creates a provider.Publisher based on
// the platform name. Pattern: Factory -- selects
// platform implementation at runtime.
func newPublisher(
	platform string,
	pf publisherFlags,
) (provider.Publisher, error) {
	const errCtx = "creating release publisher"

	switch platform {
	case "":
		return nil, nil

	case "github":
		p, err := github.NewProvider(github.Config{
			RepoOwner:      pf.ghRepoOwner,
			Repo:           pf.ghRepo,
			AccessToken:    pf.ghToken,
			EnterpriseHost: pf.ghEnterprise,
		})
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return p, nil

	case "gitlab":
		p, err := gitlab.NewProvider(gitlab.Config{
			Host:        pf.glHost,
			Repo:        pf.glRepo,
			AccessToken: pf.glToken,
		})
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return p, nil

	case "webhook":
		p, err := webhook.NewProvider(
			webhook.Config{
				Endpoint: pf.whEndpoint,
				Token:    pf.whToken,
			},
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return p, nil

	default:
		return nil, fmt.Errorf(
			"%s: unknown platform %q",
			errCtx, platform,
		)
	}
}
