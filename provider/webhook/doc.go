// Package webhook implements a provider.Publisher that announces releases by
// posting a JSON payload to an HTTP endpoint, typically a deployment system
// hook. Configure with a Config containing the endpoint URL and an optional
// bearer token.
package webhook
