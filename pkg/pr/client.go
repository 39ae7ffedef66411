// Package pr turns a set of file changes into a GitHub pull request:
// it creates a branch off the base, commits every change through the
// hosting API, opens the PR, and attaches labels, reviewers, and
// auto-merge settings.
//
// The pipeline is strictly sequential within one call. Once the branch is
// created, later failures leave the branch in whatever partial state it
// reached; no compensating rollback is attempted. Post-creation metadata is
// best-effort: failures there are collected as warnings on the Result and
// never discard a successfully created PR.
package pr

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pullsmith/pullsmith/pkg/log"
)

// DefaultAppName prefixes generated branch names.
const DefaultAppName = "pullsmith"

// HostingAPI is the capability surface the orchestrator needs from the
// hosting service. It is stateless; implementations hold only credentials
// and must be safe for concurrent use by independent runs.
type HostingAPI interface {
	// GetDefaultBranch returns the repository's default branch name.
	GetDefaultBranch(ctx context.Context, owner, repo string) (string, error)

	// CreateBranch creates branch at base's head, force-resetting an
	// existing ref of the same name, and returns the head SHA.
	CreateBranch(ctx context.Context, owner, repo, branch, base string) (string, error)

	// UpdateFile creates or updates path on branch with content, or
	// deletes it when content is nil (a no-op if already absent).
	UpdateFile(ctx context.Context, owner, repo, path string, content *string, message, branch string) error

	// CreatePullRequest opens a PR and returns its HTML URL.
	CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string, draft bool) (string, error)

	// AddLabels adds labels to a PR.
	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error

	// AddReviewers requests reviews from user logins and team slugs.
	AddReviewers(ctx context.Context, owner, repo string, number int, reviewers, teamReviewers []string) error

	// EnableAutoMerge enables auto-merge with the given merge method.
	EnableAutoMerge(ctx context.Context, owner, repo string, number int, method string) error

	// SetDeleteBranchOnMerge requests head-branch deletion on merge.
	SetDeleteBranchOnMerge(ctx context.Context, owner, repo string, enabled bool) error
}

// Settings is the process-level configuration for a Client.
type Settings struct {
	// Token authenticates every hosting API call.
	Token string

	// BaseURL overrides the hosting API endpoint (enterprise deployments).
	BaseURL string

	// AppName prefixes generated branch names (default "pullsmith").
	AppName string

	// CommitAuthorName and CommitAuthorEmail set the git identity used by
	// the local clone workflow. Empty values keep the built-in identity.
	CommitAuthorName  string
	CommitAuthorEmail string

	// Defaults is the fallback PR configuration for calls that supply
	// neither an explicit config nor overrides.
	Defaults Config
}

// CreateOptions carries per-call configuration for CreatePR. Config and
// Overrides are mutually exclusive.
type CreateOptions struct {
	// Config is an explicit, fully formed PR configuration.
	Config *Config

	// Overrides are loose key/value settings applied over the defaults.
	Overrides Overrides

	// BranchName overrides the generated head branch name.
	BranchName string
}

// Result describes a successfully created pull request.
type Result struct {
	// URL is the PR's HTML URL.
	URL string

	// Number is the PR number, parsed from the URL.
	Number int

	// Branch is the head branch the PR was opened from.
	Branch string

	// Warnings lists metadata steps that failed after the PR was created.
	Warnings []Warning
}

// Client orchestrates pull request creation against a hosting API.
type Client struct {
	host        HostingAPI
	token       string
	appName     string
	authorName  string
	authorEmail string
	defaults    Config
	now         func() time.Time
}

// New creates a Client backed by the GitHub API.
func New(settings Settings) (*Client, error) {
	if settings.Token == "" {
		return nil, &InvalidArgumentError{Key: "token", Reason: "an access token is required"}
	}
	return NewWithHost(newGitHubHost(settings.Token, settings.BaseURL), settings), nil
}

// NewWithHost creates a Client on an explicit hosting API implementation.
func NewWithHost(host HostingAPI, settings Settings) *Client {
	appName := settings.AppName
	if appName == "" {
		appName = DefaultAppName
	}
	return &Client{
		host:        host,
		token:       settings.Token,
		appName:     appName,
		authorName:  settings.CommitAuthorName,
		authorEmail: settings.CommitAuthorEmail,
		defaults:    settings.Defaults,
		now:         time.Now,
	}
}

// DefaultBranch returns the default branch of the target repository.
func (c *Client) DefaultBranch(ctx context.Context, repo string) (string, error) {
	ref, err := ParseRepo(repo)
	if err != nil {
		return "", err
	}
	return c.host.GetDefaultBranch(ctx, ref.Owner, ref.Repo)
}

// CreatePR runs the full pipeline for one change set and returns the
// created PR. opts may be nil.
//
// Configuration and change-set errors abort before any remote call. After
// branch creation succeeds, a failure leaves the branch behind in its
// partial state by design.
func (c *Client) CreatePR(ctx context.Context, repo string, changes *ChangeSet, opts *CreateOptions) (*Result, error) {
	ref, err := ParseRepo(repo)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &CreateOptions{}
	}

	cfg, err := resolveConfig(opts.Config, opts.Overrides, c.defaults)
	if err != nil {
		return nil, err
	}

	if changes == nil || changes.Len() == 0 {
		return nil, &InvalidArgumentError{Reason: "change set is empty"}
	}

	if cfg.Title == "" {
		cfg.Title = defaultTitle(changes)
	}
	base := cfg.BaseBranch
	if ref.BaseBranch != "" {
		base = ref.BaseBranch
	}

	branch := opts.BranchName
	if branch == "" {
		branch = fmt.Sprintf("%s/%d", c.appName, c.now().Unix())
	}

	if _, err := c.host.CreateBranch(ctx, ref.Owner, ref.Repo, branch, base); err != nil {
		return nil, fmt.Errorf("failed to create branch %q: %w", branch, err)
	}
	log.Debug("created branch", "repo", ref.FullName(), "branch", branch, "base", base)

	// One commit per entry, in change-set order. A failure aborts the
	// remaining updates and leaves the branch partially updated.
	for _, change := range changes.Entries() {
		if err := c.host.UpdateFile(ctx, ref.Owner, ref.Repo, change.Path, change.Content, commitMessage(change), branch); err != nil {
			return nil, fmt.Errorf("failed to apply change for %q: %w", change.Path, err)
		}
	}

	url, err := c.host.CreatePullRequest(ctx, ref.Owner, ref.Repo, cfg.Title, cfg.Description, branch, base, cfg.Draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	number, err := parsePRNumber(url)
	if err != nil {
		return nil, err
	}

	result := &Result{
		URL:    url,
		Number: number,
		Branch: branch,
	}
	c.applyMetadata(ctx, ref, cfg, result)

	log.Info("created pull request", "repo", ref.FullName(), "url", url, "warnings", len(result.Warnings))
	return result, nil
}

// applyMetadata runs the best-effort post-creation steps. Each failure is
// recorded as a warning; none of them undo the created PR.
func (c *Client) applyMetadata(ctx context.Context, ref RepoRef, cfg Config, result *Result) {
	warn := func(step string, err error) {
		log.Warn("metadata step failed", "step", step, "repo", ref.FullName(), "pr", result.Number, "error", err)
		result.Warnings = append(result.Warnings, Warning{Step: step, Err: err})
	}

	if len(cfg.Labels) > 0 {
		if err := c.host.AddLabels(ctx, ref.Owner, ref.Repo, result.Number, cfg.Labels); err != nil {
			warn("add labels", err)
		}
	}

	if len(cfg.Reviewers) > 0 || len(cfg.TeamReviewers) > 0 {
		if err := c.host.AddReviewers(ctx, ref.Owner, ref.Repo, result.Number, cfg.Reviewers, cfg.TeamReviewers); err != nil {
			warn("add reviewers", err)
		}
	}

	if cfg.AutoMerge {
		if err := c.host.EnableAutoMerge(ctx, ref.Owner, ref.Repo, result.Number, string(cfg.MergeStrategy)); err != nil {
			warn("enable auto-merge", err)
		}
	}

	if cfg.DeleteBranchOnMerge {
		if err := c.host.SetDeleteBranchOnMerge(ctx, ref.Owner, ref.Repo, true); err != nil {
			warn("set delete-branch-on-merge", err)
		}
	}
}

// CreatePRFromFile creates a PR that writes one local file to upstreamPath.
func (c *Client) CreatePRFromFile(ctx context.Context, repo, localPath, upstreamPath string, opts *CreateOptions) (*Result, error) {
	changes, err := changeSetFromLocalFile(localPath, upstreamPath)
	if err != nil {
		return nil, err
	}
	return c.CreatePR(ctx, repo, changes, opts)
}

// CreatePRFromContent creates a PR that writes content to path.
func (c *Client) CreatePRFromContent(ctx context.Context, repo, content, path string, opts *CreateOptions) (*Result, error) {
	changes := NewChangeSet()
	if err := changes.Add(path, content); err != nil {
		return nil, err
	}
	return c.CreatePR(ctx, repo, changes, opts)
}

// CreatePRFromContents creates a PR from a path-to-content map.
func (c *Client) CreatePRFromContents(ctx context.Context, repo string, contents map[string]string, opts *CreateOptions) (*Result, error) {
	changes := NewChangeSet()
	paths := sortedKeys(contents)
	for _, path := range paths {
		if err := changes.Add(path, contents[path]); err != nil {
			return nil, err
		}
	}
	return c.CreatePR(ctx, repo, changes, opts)
}

// CreatePRFromFiles creates a PR from a local-path-to-upstream-path map,
// reading every local file up front. Any unreadable file fails the call
// before a single remote mutation.
func (c *Client) CreatePRFromFiles(ctx context.Context, repo string, files map[string]string, opts *CreateOptions) (*Result, error) {
	changes, err := changeSetFromLocalFiles(files)
	if err != nil {
		return nil, err
	}
	return c.CreatePR(ctx, repo, changes, opts)
}

// parsePRNumber derives the PR number from the trailing path segment of its
// URL. The segment must parse as a positive integer.
func parsePRNumber(url string) (int, error) {
	trimmed := strings.TrimRight(url, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return 0, &PRURLError{URL: url}
	}

	number, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || number <= 0 {
		return 0, &PRURLError{URL: url}
	}
	return number, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
