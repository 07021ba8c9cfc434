package pipeline

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// FileConfig is the YAML representation of the plain
// run settings. Collaborators (publisher, notifier,
// runner) are wired in code, not from the file.
type FileConfig struct {
	RepoDir       string   `yaml:"repo_dir"`
	Remote        string   `yaml:"remote"`
	Branch        string   `yaml:"branch"`
	Tag           string   `yaml:"tag"`
	TargetCommit  string   `yaml:"target_commit"`
	From          string   `yaml:"from"`
	Path          string   `yaml:"path"`
	NotesTemplate string   `yaml:"notes_template"`
	StagePaths    []string `yaml:"stage_paths"`
	Retries       int      `yaml:"retries"`
	DryRun        bool     `yaml:"dry_run"`
	SkipStage     bool     `yaml:"skip_stage"`
	NoVerify      bool     `yaml:"no_verify"`
}

// LoadFile reads and decodes a YAML run configuration.
func LoadFile(path string) (FileConfig, error) {
	const errCtx = "loading pipeline config"

	var fc FileConfig

	raw, err := os.ReadFile(path) //nolint:gosec // path comes from CLI flags
	if err != nil {
		return fc, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf(
			"%s: decoding yaml: %w", errCtx, err,
		)
	}

	return fc, nil
}

// Config converts the file settings into a run Config.
func (fc FileConfig) Config() Config {
	return Config{
		RepoDir:       fc.RepoDir,
		Remote:        fc.Remote,
		Branch:        fc.Branch,
		Tag:           fc.Tag,
		TargetCommit:  fc.TargetCommit,
		From:          fc.From,
		Path:          fc.Path,
		NotesTemplate: fc.NotesTemplate,
		StagePaths:    fc.StagePaths,
		Retries:       fc.Retries,
		DryRun:        fc.DryRun,
		SkipStage:     fc.SkipStage,
		NoVerify:      fc.NoVerify,
	}
}
