package pr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pullsmith/pullsmith/pkg/git"
	"github.com/pullsmith/pullsmith/pkg/log"
)

// ApplyDiffToBranch clones the repository into a temporary directory,
// applies diff on branch (creating the branch if needed), commits, and
// pushes. It is the secondary, clone-based way to get changes onto a
// branch; the primary pipeline commits through the hosting API instead.
func (c *Client) ApplyDiffToBranch(ctx context.Context, repo, branch, diff string) error {
	if strings.TrimSpace(diff) == "" {
		return &InvalidArgumentError{Reason: "diff is empty"}
	}
	if c.token == "" {
		return &InvalidArgumentError{Key: "token", Reason: "an access token is required to clone and push"}
	}

	ref, err := ParseRepo(repo)
	if err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "pullsmith-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	workDir := filepath.Join(tempDir, "repo")
	client, err := git.Clone(ctx, git.CloneOptions{
		Source: ref.CloneURLWithToken(c.token),
		Dest:   workDir,
		Quiet:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", ref.FullName(), err)
	}
	client.Options = c.gitOptions()

	// Checkout the branch, creating it when it does not exist yet.
	if err := client.Branch(ctx, branch, false); err != nil {
		if err := client.Branch(ctx, branch, true); err != nil {
			return fmt.Errorf("failed to create branch %q: %w", branch, err)
		}
	}

	patchPath := filepath.Join(tempDir, "changes.diff")
	if err := os.WriteFile(patchPath, []byte(diff), 0o644); err != nil {
		return fmt.Errorf("failed to write diff file: %w", err)
	}

	if err := client.Apply(ctx, patchPath); err != nil {
		return fmt.Errorf("failed to apply diff: %w", err)
	}

	if err := client.AddAll(ctx); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	sha, err := client.Commit(ctx, "Apply changes")
	if err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	log.Debug("committed diff", "repo", ref.FullName(), "branch", branch, "commit", sha)

	if err := client.Push(ctx, git.PushOptions{Branch: branch, SetUpstream: true}); err != nil {
		return fmt.Errorf("failed to push branch %q: %w", branch, err)
	}

	return nil
}

// gitOptions returns the commit identity for clone operations, applying the
// configured author over the built-in defaults.
func (c *Client) gitOptions() *git.ClientOptions {
	opts := git.DefaultClientOptions()
	if c.authorName != "" {
		opts.UserName = c.authorName
	}
	if c.authorEmail != "" {
		opts.UserEmail = c.authorEmail
	}
	return opts
}

// LocalDiff returns the diff of a local working copy against HEAD,
// optionally restricted to paths. The output feeds ApplyDiffToBranch or the
// diff parser.
func LocalDiff(ctx context.Context, dir string, paths ...string) (string, error) {
	client := git.NewClient(dir)
	if !client.IsRepo(ctx) {
		return "", &InvalidArgumentError{Key: dir, Reason: "not a git repository"}
	}
	return client.Diff(ctx, paths...)
}
