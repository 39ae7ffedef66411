package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepo initializes a fresh repository with one committed file.
func newTestRepo(t *testing.T) *Client {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	client := NewClient(t.TempDir())
	ctx := context.Background()
	require.NoError(t, client.Init(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(client.Dir, "file.txt"), []byte("old content\nunchanged\n"), 0o644))
	require.NoError(t, client.AddAll(ctx))
	_, err := client.Commit(ctx, "initial commit")
	require.NoError(t, err)

	return client
}

func TestInitAndIsRepo(t *testing.T) {
	client := newTestRepo(t)
	ctx := context.Background()

	assert.True(t, client.IsRepo(ctx))
	assert.False(t, NewClient(t.TempDir()).IsRepo(ctx))
}

func TestCommitReturnsSHA(t *testing.T) {
	client := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(client.Dir, "second.txt"), []byte("data\n"), 0o644))
	require.NoError(t, client.AddAll(ctx))

	sha, err := client.Commit(ctx, "add second file")
	require.NoError(t, err)
	assert.Len(t, sha, 40)

	head, err := client.GetHeadSHA(ctx)
	require.NoError(t, err)
	assert.Equal(t, sha, head)
}

func TestIsClean(t *testing.T) {
	client := newTestRepo(t)
	ctx := context.Background()

	assert.True(t, client.IsClean(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(client.Dir, "dirty.txt"), []byte("x\n"), 0o644))
	assert.False(t, client.IsClean(ctx))
}

func TestBranchCreateAndCheckout(t *testing.T) {
	client := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, client.Branch(ctx, "feature/work", true))

	// Switching back and forth reuses the existing branch.
	require.Error(t, client.Branch(ctx, "feature/missing", false))
	require.NoError(t, client.Branch(ctx, "feature/work", false))
}

func TestDiffAndApplyRoundTrip(t *testing.T) {
	client := newTestRepo(t)
	ctx := context.Background()

	path := filepath.Join(client.Dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("new content\nunchanged\n"), 0o644))

	diff, err := client.Diff(ctx)
	require.NoError(t, err)
	assert.Contains(t, diff, "-old content")
	assert.Contains(t, diff, "+new content")

	// Revert, then re-apply the captured diff.
	require.NoError(t, client.Checkout(ctx, "."))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "old content\nunchanged\n", string(content))

	patchPath := filepath.Join(t.TempDir(), "changes.diff")
	require.NoError(t, os.WriteFile(patchPath, []byte(diff), 0o644))
	require.NoError(t, client.Apply(ctx, patchPath))

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new content\nunchanged\n", string(content))
}

func TestDiffRestrictedToPaths(t *testing.T) {
	client := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(client.Dir, "file.txt"), []byte("changed\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(client.Dir, "other.txt"), []byte("untracked\n"), 0o644))
	require.NoError(t, client.AddAll(ctx))

	diff, err := client.Diff(ctx, "file.txt")
	require.NoError(t, err)
	assert.Contains(t, diff, "file.txt")
	assert.NotContains(t, diff, "other.txt")
}

func TestApplyMissingPatch(t *testing.T) {
	client := newTestRepo(t)
	err := client.Apply(context.Background(), filepath.Join(t.TempDir(), "missing.diff"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patch file not found")
}

func TestCloneLocalRepo(t *testing.T) {
	source := newTestRepo(t)
	ctx := context.Background()

	dest := filepath.Join(t.TempDir(), "clone")
	clone, err := Clone(ctx, CloneOptions{Source: source.Dir, Dest: dest, Quiet: true})
	require.NoError(t, err)

	assert.True(t, clone.IsRepo(ctx))

	content, err := os.ReadFile(filepath.Join(dest, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old content\nunchanged\n", string(content))
}

func TestPushRequiresBranch(t *testing.T) {
	client := newTestRepo(t)
	err := client.Push(context.Background(), PushOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch name is required")
}

func TestPushToLocalRemote(t *testing.T) {
	source := newTestRepo(t)
	ctx := context.Background()

	// A bare repository stands in for the hosted remote.
	bare := filepath.Join(t.TempDir(), "remote.git")
	out, err := exec.CommandContext(ctx, "git", "init", "--bare", bare).CombinedOutput()
	require.NoError(t, err, string(out))

	_, err = source.execCommand(ctx, "remote", "add", "origin", bare)
	require.NoError(t, err)

	require.NoError(t, source.Branch(ctx, "feature/push", true))
	require.NoError(t, source.Push(ctx, PushOptions{Branch: "feature/push", SetUpstream: true}))
}
