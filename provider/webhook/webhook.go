package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"
)

// Config holds the settings needed to create a webhook
// release provider.
type Config struct {
	// Endpoint is the full URL receiving the release
	// announcement (e.g. a deployment system hook).
	Endpoint string
	// Token is an optional bearer token sent in the
	// Authorization header.
	Token string
}

// Provider announces releases by posting a JSON
// payload to an HTTP endpoint.
//
// Pattern: Strategy -- implements provider.Publisher.
type Provider struct {
	endpoint string
	token    string
}

// announcement is the JSON body posted to the
// endpoint.
type announcement struct {
	Tag   string `json:"tag"`
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`
}

// NewProvider validates cfg and returns a Provider
// ready to announce releases.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating webhook provider"

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf(
			"%s: endpoint must be set", errCtx,
		)
	}

	return &Provider{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
	}, nil
}

// PublishRelease posts the release announcement.
// Returns nil on any 2xx status.
func (p *Provider) PublishRelease(
	ctx context.Context,
	tag string,
	title string,
	notes string,
) error {
	const errCtx = "announcing release"

	payload, err := json.Marshal(&announcement{
		Tag:   tag,
		Title: title,
		Notes: notes,
	})
	if err != nil {
		return fmt.Errorf(
			"%s: marshal request: %w", errCtx, err,
		)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.endpoint,
		bytes.NewBuffer(payload),
	)
	if err != nil {
		return fmt.Errorf(
			"%s: build request: %w", errCtx, err,
		)
	}

	req.Header.Set(
		"Content-Type",
		"application/json; charset=utf-8",
	)

	if p.token != "" {
		req.Header.Set(
			"Authorization", "Bearer "+p.token,
		)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf(
			"%s: send request: %w", errCtx, err,
		)
	}

	defer resp.Body.Close() //nolint:errcheck

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn(
			"cannot read response body",
			"error", err,
		)
	} else {
		slog.Info(
			"webhook response",
			"status", resp.Status,
			"body", string(rb),
		)
	}

	if resp.StatusCode >= 200 &&
		resp.StatusCode < 300 {
		slog.Info("release announced")

		return nil
	}

	return fmt.Errorf(
		"%s: unexpected status %s",
		errCtx, resp.Status,
	)
}
