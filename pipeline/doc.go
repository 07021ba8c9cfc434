// Package pipeline orchestrates one release run: it collects the commit
// history, renders release notes, stages release artifacts, creates the
// annotated tag with bounded retry, pushes branch and tag atomically, and
// optionally publishes a hosted release via a provider.Publisher.
//
// The main entry point is Run, which accepts a Config struct with all
// parameters for the workflow. LoadFile reads the plain settings from a
// YAML file.
package pipeline
