package gitlab

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gl "gitlab.com/gitlab-org/api/client-go"
)

// Config holds the settings needed to create a GitLab
// release provider.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// Repo is the full project path
	// (e.g. "org/project").
	Repo string
	// AccessToken is a personal or project access
	// token used for authentication.
	AccessToken string
}

// Provider publishes releases on GitLab.
//
// Pattern: Strategy -- implements provider.Publisher.
type Provider struct {
	client *gl.Client
	repo   string
}

// NewProvider validates cfg and returns a Provider
// ready to publish releases.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating gitlab provider"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	host := cfg.Host
	if host == "" {
		host = "https://gitlab.com"
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Provider{
		client: client,
		repo:   cfg.Repo,
	}, nil
}

// PublishRelease creates a GitLab release for tag. If
// a release already exists for the tag (HTTP 409) the
// error is suppressed.
func (p *Provider) PublishRelease(
	ctx context.Context,
	tag string,
	title string,
	notes string,
) error {
	const errCtx = "creating gitlab release"

	opts := gl.CreateReleaseOptions{
		Name:        &title,
		TagName:     &tag,
		Description: &notes,
	}

	created, resp, err :=
		p.client.Releases.CreateRelease(
			p.repo, &opts, gl.WithContext(ctx),
		)
	if err == nil {
		slog.Info(
			"created release",
			"name", created.Name,
		)

		return nil
	}

	// HTTP 409: a release already exists for this
	// tag.
	if resp != nil &&
		resp.StatusCode == http.StatusConflict {
		slog.Info("reusing existing release")

		return nil
	}

	// Log the response body for debugging.
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close() //nolint:errcheck

		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			slog.Warn(
				"cannot read response body",
				"error", readErr,
			)
		} else {
			slog.Warn(
				"gitlab response",
				"body", string(rb),
			)
		}
	}

	return fmt.Errorf("%s: %w", errCtx, err)
}
