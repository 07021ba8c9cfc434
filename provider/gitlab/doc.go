// Package gitlab implements a provider.Publisher that creates releases on
// GitLab (gitlab.com or self-managed). Configure with a Config containing
// the project path and an access token; set Host for self-managed
// installations.
package gitlab
