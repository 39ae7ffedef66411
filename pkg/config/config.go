// Package config provides project-level configuration for pullsmith.
// It supports loading configuration from .pullsmith/config.yaml files with
// proper precedence: CLI flags > project config > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name for pullsmith configuration
	ConfigDir = ".pullsmith"
	// ConfigFile is the name of the configuration file
	ConfigFile = "config.yaml"
	// ConfigPath is the full path to the config file relative to project root
	ConfigPath = ConfigDir + "/" + ConfigFile
)

// ProjectConfig represents the project-level configuration for pullsmith.
// It provides defaults that can be overridden by CLI flags.
type ProjectConfig struct {
	// AppName prefixes generated branch names ("{app_name}/{timestamp}")
	AppName string `yaml:"app_name,omitempty"`

	// BaseURL overrides the GitHub API endpoint (enterprise deployments)
	BaseURL string `yaml:"base_url,omitempty"`

	// LogLevel is the default log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level,omitempty"`

	// Defaults is the fallback PR configuration applied when a call
	// supplies neither an explicit config nor overrides
	Defaults PRDefaults `yaml:"defaults,omitempty"`

	// Git configures the identity used by the local clone workflow
	Git GitConfig `yaml:"git,omitempty"`
}

// PRDefaults mirrors the per-PR configuration knobs.
type PRDefaults struct {
	// BaseBranch is the branch PRs target (default "main")
	BaseBranch string `yaml:"base_branch,omitempty"`

	// Draft creates PRs as drafts
	Draft bool `yaml:"draft,omitempty"`

	// Labels are attached to every created PR
	Labels []string `yaml:"labels,omitempty"`

	// Reviewers are user logins requested on every created PR
	Reviewers []string `yaml:"reviewers,omitempty"`

	// TeamReviewers are team slugs requested on every created PR
	TeamReviewers []string `yaml:"team_reviewers,omitempty"`

	// MergeStrategy is the auto-merge method (merge, squash, rebase)
	MergeStrategy string `yaml:"merge_strategy,omitempty"`

	// AutoMerge enables auto-merge on every created PR
	AutoMerge bool `yaml:"auto_merge,omitempty"`

	// DeleteBranchOnMerge asks the repository to clean up head branches
	DeleteBranchOnMerge bool `yaml:"delete_branch_on_merge,omitempty"`
}

// GitConfig contains the git identity for local clone operations.
type GitConfig struct {
	// AuthorName overrides git user.name for commits
	AuthorName string `yaml:"author_name,omitempty"`

	// AuthorEmail overrides git user.email for commits
	AuthorEmail string `yaml:"author_email,omitempty"`
}

// Load loads the project configuration from the given directory.
// It searches for .pullsmith/config.yaml in the directory and its parents.
//
// If no config file is found, it returns a zero config and nil error.
// If a config file is found but cannot be parsed, it returns an error.
func Load(dir string) (*ProjectConfig, error) {
	configPath, err := findConfigPath(dir)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		// No config file found, return zero config
		return &ProjectConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads the project configuration from the current working directory.
func LoadFromCurrentDir() (*ProjectConfig, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return Load(dir)
}

// findConfigPath searches for .pullsmith/config.yaml in dir and its parent
// directories. It returns the full path to the config file, or empty string
// if not found.
func findConfigPath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	for {
		candidate := filepath.Join(absDir, ConfigDir, ConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return "", nil
		}
		absDir = parent
	}
}
