// Package git wraps the system git command for the local-clone workflow:
// cloning a repository, applying a diff, committing, and pushing a branch.
// It exists for the diff-apply path only; the primary PR pipeline talks to
// the hosting API and never touches a local clone.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Client represents a git client for operations on a repository.
type Client struct {
	// Dir is the working directory of the git repository.
	Dir string

	// Options provides optional git configuration.
	Options *ClientOptions
}

// ClientOptions holds configuration for git operations.
type ClientOptions struct {
	// UserName is the git user name for commits.
	UserName string

	// UserEmail is the git user email for commits.
	UserEmail string

	// Quiet suppresses output from git commands.
	Quiet bool
}

// DefaultClientOptions returns the default client options.
func DefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		UserName:  "Pullsmith Bot",
		UserEmail: "bot@pullsmith.dev",
		Quiet:     true,
	}
}

// NewClient creates a new git client for the given directory.
func NewClient(dir string) *Client {
	return &Client{
		Dir:     dir,
		Options: DefaultClientOptions(),
	}
}

// execCommand executes a git command in the client directory.
func (c *Client) execCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmdArgs := []string{"-C", c.Dir}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}

	return output, nil
}

// quietFlag returns the --quiet flag if enabled.
func (c *Client) quietFlag() string {
	if c.Options != nil && c.Options.Quiet {
		return "--quiet"
	}
	return ""
}

// CloneOptions specifies options for cloning a repository.
type CloneOptions struct {
	// Source is the repository URL or path to clone from.
	Source string

	// Dest is the destination directory.
	Dest string

	// Ref is the reference to checkout after clone (optional).
	Ref string

	// Depth specifies shallow clone depth (0 for full history).
	Depth int

	// Quiet suppresses output.
	Quiet bool
}

// Clone clones a repository and returns a client for the new working copy.
func Clone(ctx context.Context, opts CloneOptions) (*Client, error) {
	args := []string{"clone"}

	if opts.Quiet {
		args = append(args, "--quiet")
	}

	if opts.Depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", opts.Depth))
	}

	args = append(args, opts.Source, opts.Dest)

	cmd := exec.CommandContext(ctx, "git", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	client := NewClient(opts.Dest)
	if !client.IsRepo(ctx) {
		return nil, fmt.Errorf("git clone succeeded but destination is not a git repository")
	}

	if opts.Ref != "" {
		if err := client.Checkout(ctx, opts.Ref); err != nil {
			return nil, fmt.Errorf("checkout failed: %w", err)
		}
	}

	return client, nil
}

// IsRepo checks if the directory is a git repository.
func (c *Client) IsRepo(ctx context.Context) bool {
	_, err := c.execCommand(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// Init initializes a new git repository with the configured identity.
func (c *Client) Init(ctx context.Context) error {
	if _, err := c.execCommand(ctx, "init"); err != nil {
		return err
	}
	if err := c.SetConfig(ctx, "user.name", c.Options.UserName); err != nil {
		return err
	}
	return c.SetConfig(ctx, "user.email", c.Options.UserEmail)
}

// SetConfig sets a git configuration value.
func (c *Client) SetConfig(ctx context.Context, key, value string) error {
	_, err := c.execCommand(ctx, "config", key, value)
	return err
}

// Checkout checks out a reference (branch, tag, or commit).
func (c *Client) Checkout(ctx context.Context, ref string) error {
	args := []string{"checkout"}
	if q := c.quietFlag(); q != "" {
		args = append(args, q)
	}
	args = append(args, ref)
	_, err := c.execCommand(ctx, args...)
	return err
}

// Branch creates a new branch or checks out an existing one.
func (c *Client) Branch(ctx context.Context, name string, create bool) error {
	args := []string{"checkout"}
	if q := c.quietFlag(); q != "" {
		args = append(args, q)
	}
	if create {
		args = append(args, "-b", name)
	} else {
		args = append(args, name)
	}
	_, err := c.execCommand(ctx, args...)
	return err
}

// AddAll stages all changes, including untracked files.
func (c *Client) AddAll(ctx context.Context) error {
	_, err := c.execCommand(ctx, "add", "-A")
	return err
}

// Commit creates a commit with the given message and returns its SHA.
func (c *Client) Commit(ctx context.Context, message string) (string, error) {
	args := []string{"commit", "-m", message}
	if c.Options != nil && c.Options.UserName != "" {
		args = append(args, "--author", fmt.Sprintf("%s <%s>", c.Options.UserName, c.Options.UserEmail))
	}

	if _, err := c.execCommand(ctx, args...); err != nil {
		return "", fmt.Errorf("commit failed: %w", err)
	}

	return c.GetHeadSHA(ctx)
}

// GetHeadSHA returns the current HEAD SHA.
func (c *Client) GetHeadSHA(ctx context.Context) (string, error) {
	output, err := c.execCommand(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD SHA: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Apply applies a patch file to the working tree.
func (c *Client) Apply(ctx context.Context, patchPath string) error {
	if _, err := os.Stat(patchPath); err != nil {
		return fmt.Errorf("patch file not found: %w", err)
	}

	if _, err := c.execCommand(ctx, "apply", patchPath); err != nil {
		return fmt.Errorf("git apply failed: %w", err)
	}

	return nil
}

// Diff returns the unified diff of the working tree against HEAD,
// optionally restricted to the given paths.
func (c *Client) Diff(ctx context.Context, paths ...string) (string, error) {
	args := []string{"diff", "HEAD"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	output, err := c.execCommand(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("failed to get diff: %w", err)
	}
	return string(output), nil
}

// PushOptions specifies options for pushing to a remote.
type PushOptions struct {
	// Remote is the remote name (default: "origin").
	Remote string

	// Branch is the branch to push.
	Branch string

	// SetUpstream sets the upstream branch.
	SetUpstream bool
}

// Push pushes commits to a remote repository.
// Authentication comes from the remote URL or configured credentials.
func (c *Client) Push(ctx context.Context, opts PushOptions) error {
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.Branch == "" {
		return fmt.Errorf("branch name is required for push")
	}

	args := []string{"push"}
	if opts.SetUpstream {
		args = append(args, "-u")
	}
	args = append(args, opts.Remote, opts.Branch)

	if _, err := c.execCommand(ctx, args...); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	return nil
}

// IsClean returns true if the working tree has no uncommitted or untracked
// changes.
func (c *Client) IsClean(ctx context.Context) bool {
	output, err := c.execCommand(ctx, "status", "--porcelain")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) == ""
}
