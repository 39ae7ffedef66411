package pr

import "fmt"

// MergeStrategy selects how an auto-merged pull request is merged.
type MergeStrategy string

const (
	MergeStrategyMerge  MergeStrategy = "merge"
	MergeStrategySquash MergeStrategy = "squash"
	MergeStrategyRebase MergeStrategy = "rebase"
)

// DefaultBaseBranch is used when neither config nor overrides name one.
const DefaultBaseBranch = "main"

// Config describes one pull request: its title, target branch, and the
// metadata attached after creation. A zero Config is valid; unset fields
// fall back to the process-level defaults at resolution time.
type Config struct {
	// Title is the PR title. If empty it is derived from the change set.
	Title string

	// Description is the PR body.
	Description string

	// BaseBranch is the branch the PR targets (default "main").
	BaseBranch string

	// Draft creates the PR as a draft.
	Draft bool

	// Labels are added to the PR after creation.
	Labels []string

	// Reviewers are user logins requested for review.
	Reviewers []string

	// TeamReviewers are team slugs requested for review.
	TeamReviewers []string

	// AutoMerge enables auto-merge on the PR using MergeStrategy.
	AutoMerge bool

	// MergeStrategy is the merge method for auto-merge (default squash).
	MergeStrategy MergeStrategy

	// DeleteBranchOnMerge asks the repository to delete the head branch
	// once the PR merges.
	DeleteBranchOnMerge bool
}

// Overrides carries loose per-call configuration, typically assembled from
// CLI flags or scripting. Only the documented keys are recognized; anything
// else is an InvalidArgumentError.
//
// Recognized keys: title, description, base_branch, draft, labels,
// reviewers, team_reviewers, merge_strategy, auto_merge,
// delete_branch_on_merge.
type Overrides map[string]any

// resolveConfig merges an explicit config or loose overrides with the
// process-level defaults into the effective configuration for one call.
// Supplying both an explicit config and overrides is ErrConfigConflict,
// never a silent merge.
func resolveConfig(explicit *Config, ov Overrides, defaults Config) (Config, error) {
	if explicit != nil && len(ov) > 0 {
		return Config{}, ErrConfigConflict
	}

	var cfg Config
	switch {
	case explicit != nil:
		cfg = *explicit
	case len(ov) > 0:
		cfg = defaults
		if err := applyOverrides(&cfg, ov); err != nil {
			return Config{}, err
		}
	default:
		cfg = defaults
	}

	if cfg.BaseBranch == "" {
		cfg.BaseBranch = defaults.BaseBranch
	}
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = DefaultBaseBranch
	}
	if cfg.MergeStrategy == "" {
		cfg.MergeStrategy = defaults.MergeStrategy
	}
	if cfg.MergeStrategy == "" {
		cfg.MergeStrategy = MergeStrategySquash
	}

	switch cfg.MergeStrategy {
	case MergeStrategyMerge, MergeStrategySquash, MergeStrategyRebase:
	default:
		return Config{}, &InvalidArgumentError{
			Key:    "merge_strategy",
			Reason: fmt.Sprintf("must be merge, squash, or rebase, got %q", cfg.MergeStrategy),
		}
	}

	return cfg, nil
}

// applyOverrides copies recognized override keys onto cfg, type-checking
// each value.
func applyOverrides(cfg *Config, ov Overrides) error {
	for key, value := range ov {
		switch key {
		case "title":
			s, err := stringValue(key, value)
			if err != nil {
				return err
			}
			cfg.Title = s
		case "description":
			s, err := stringValue(key, value)
			if err != nil {
				return err
			}
			cfg.Description = s
		case "base_branch":
			s, err := stringValue(key, value)
			if err != nil {
				return err
			}
			cfg.BaseBranch = s
		case "merge_strategy":
			s, err := stringValue(key, value)
			if err != nil {
				return err
			}
			cfg.MergeStrategy = MergeStrategy(s)
		case "draft":
			b, err := boolValue(key, value)
			if err != nil {
				return err
			}
			cfg.Draft = b
		case "auto_merge":
			b, err := boolValue(key, value)
			if err != nil {
				return err
			}
			cfg.AutoMerge = b
		case "delete_branch_on_merge":
			b, err := boolValue(key, value)
			if err != nil {
				return err
			}
			cfg.DeleteBranchOnMerge = b
		case "labels":
			list, err := stringListValue(key, value)
			if err != nil {
				return err
			}
			cfg.Labels = list
		case "reviewers":
			list, err := stringListValue(key, value)
			if err != nil {
				return err
			}
			cfg.Reviewers = list
		case "team_reviewers":
			list, err := stringListValue(key, value)
			if err != nil {
				return err
			}
			cfg.TeamReviewers = list
		default:
			return &InvalidArgumentError{Key: key, Reason: "unknown override key"}
		}
	}
	return nil
}

func stringValue(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", &InvalidArgumentError{Key: key, Reason: fmt.Sprintf("expected string, got %T", value)}
	}
	return s, nil
}

func boolValue(key string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, &InvalidArgumentError{Key: key, Reason: fmt.Sprintf("expected bool, got %T", value)}
	}
	return b, nil
}

func stringListValue(key string, value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case string:
		return []string{v}, nil
	default:
		return nil, &InvalidArgumentError{Key: key, Reason: fmt.Sprintf("expected []string, got %T", value)}
	}
}
