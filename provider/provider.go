// Package provider defines a strategy interface for
// publishing a hosted release once the tag has been
// pushed. Implementations exist for GitHub, GitLab,
// and a generic webhook endpoint in sub-packages.
package provider

import "context"

// Pattern: Strategy -- swap release hosting platform
// without changing the pipeline.

// Publisher publishes a release for an existing tag.
type Publisher interface {
	PublishRelease(
		ctx context.Context,
		tag string,
		title string,
		notes string,
	) error
}

// PublisherFunc adapts a plain function to the
// Publisher interface. When title is empty the tag
// name is used as title.
type PublisherFunc func(
	ctx context.Context,
	tag string,
	title string,
	notes string,
) error

// PublishRelease delegates to the wrapped function. If
// title is empty, the tag name is substituted.
func (f PublisherFunc) PublishRelease(
	ctx context.Context,
	tag string,
	title string,
	notes string,
) error {
	if title == "" {
		title = tag
	}

	return f(ctx, tag, title, notes)
}
