// Package github implements a provider.Publisher that creates releases on
// GitHub (cloud or enterprise). Configure with a Config containing the
// repository owner, name, and personal access token. Set EnterpriseHost for
// GitHub Enterprise installations.
package github
