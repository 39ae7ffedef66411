package pr

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost records every hosting call in order and can fail selected
// operations.
type fakeHost struct {
	calls []string
	prURL string

	failOps        map[string]error
	failUpdateAt   int // 1-based index of the UpdateFile call to fail, 0 = never
	updateAttempts int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		prURL:   "https://github.com/octo/widgets/pull/42",
		failOps: make(map[string]error),
	}
}

func (f *fakeHost) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeHost) GetDefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	f.record("default-branch %s/%s", owner, repo)
	return "main", f.failOps["default-branch"]
}

func (f *fakeHost) CreateBranch(ctx context.Context, owner, repo, branch, base string) (string, error) {
	f.record("create-branch %s from %s", branch, base)
	return "abc123", f.failOps["create-branch"]
}

func (f *fakeHost) UpdateFile(ctx context.Context, owner, repo, path string, content *string, message, branch string) error {
	f.updateAttempts++
	if content == nil {
		f.record("delete %s on %s: %s", path, branch, message)
	} else {
		f.record("update %s on %s: %s", path, branch, message)
	}
	if f.failUpdateAt > 0 && f.updateAttempts == f.failUpdateAt {
		return errors.New("update failed")
	}
	return f.failOps["update-file"]
}

func (f *fakeHost) CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string, draft bool) (string, error) {
	f.record("create-pr %q head=%s base=%s draft=%v", title, head, base, draft)
	return f.prURL, f.failOps["create-pr"]
}

func (f *fakeHost) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	f.record("add-labels #%d %v", number, labels)
	return f.failOps["add-labels"]
}

func (f *fakeHost) AddReviewers(ctx context.Context, owner, repo string, number int, reviewers, teamReviewers []string) error {
	f.record("add-reviewers #%d %v %v", number, reviewers, teamReviewers)
	return f.failOps["add-reviewers"]
}

func (f *fakeHost) EnableAutoMerge(ctx context.Context, owner, repo string, number int, method string) error {
	f.record("auto-merge #%d %s", number, method)
	return f.failOps["auto-merge"]
}

func (f *fakeHost) SetDeleteBranchOnMerge(ctx context.Context, owner, repo string, enabled bool) error {
	f.record("delete-branch-on-merge %v", enabled)
	return f.failOps["delete-branch-on-merge"]
}

func newTestClient(host *fakeHost) *Client {
	c := NewWithHost(host, Settings{Token: "test-token"})
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestCreatePRCommitsEachChangeInOrder(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	cs := NewChangeSet()
	require.NoError(t, cs.Add("b.txt", "bee"))
	require.NoError(t, cs.Add("a.txt", "ay"))
	require.NoError(t, cs.AddDeletion("old.txt"))

	result, err := client.CreatePR(context.Background(), "octo/widgets", cs, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"create-branch pullsmith/1700000000 from main",
		"update b.txt on pullsmith/1700000000: Update b.txt",
		"update a.txt on pullsmith/1700000000: Update a.txt",
		"delete old.txt on pullsmith/1700000000: Delete old.txt",
		`create-pr "Update 3 files" head=pullsmith/1700000000 base=main draft=false`,
	}, host.calls)

	assert.Equal(t, 42, result.Number)
	assert.Equal(t, "https://github.com/octo/widgets/pull/42", result.URL)
	assert.Equal(t, "pullsmith/1700000000", result.Branch)
	assert.Empty(t, result.Warnings)
}

func TestCreatePRSingleFileDefaultTitle(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	cs := NewChangeSet()
	require.NoError(t, cs.Add("README.md", "docs"))

	_, err := client.CreatePR(context.Background(), "octo/widgets", cs, nil)
	require.NoError(t, err)
	assert.Contains(t, host.calls, `create-pr "Update README.md" head=pullsmith/1700000000 base=main draft=false`)
}

func TestCreatePRAbortsOnMidChangeFailure(t *testing.T) {
	host := newFakeHost()
	host.failUpdateAt = 2
	client := newTestClient(host)

	cs := NewChangeSet()
	require.NoError(t, cs.Add("one.txt", "1"))
	require.NoError(t, cs.Add("two.txt", "2"))
	require.NoError(t, cs.Add("three.txt", "3"))

	_, err := client.CreatePR(context.Background(), "octo/widgets", cs, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two.txt")

	// The third update and the PR call never happen.
	assert.Equal(t, 2, host.updateAttempts)
	for _, call := range host.calls {
		assert.NotContains(t, call, "create-pr")
	}
}

func TestCreatePREmptyChangeSet(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	_, err := client.CreatePR(context.Background(), "octo/widgets", NewChangeSet(), nil)
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)

	_, err = client.CreatePR(context.Background(), "octo/widgets", nil, nil)
	require.ErrorAs(t, err, &invalid)

	assert.Empty(t, host.calls, "validation failures must not reach the host")
}

func TestCreatePRConfigConflictBeforeRemoteCalls(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	cs := NewChangeSet()
	require.NoError(t, cs.Add("a.txt", "x"))

	_, err := client.CreatePR(context.Background(), "octo/widgets", cs, &CreateOptions{
		Config:    &Config{Title: "t"},
		Overrides: Overrides{"title": "t"},
	})
	require.ErrorIs(t, err, ErrConfigConflict)
	assert.Empty(t, host.calls)
}

func TestCreatePRSuppliedBranchName(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	cs := NewChangeSet()
	require.NoError(t, cs.Add("a.txt", "x"))

	result, err := client.CreatePR(context.Background(), "octo/widgets", cs, &CreateOptions{
		BranchName: "feature/custom",
	})
	require.NoError(t, err)
	assert.Equal(t, "feature/custom", result.Branch)
	assert.Equal(t, "create-branch feature/custom from main", host.calls[0])
}

func TestCreatePRBaseFromRepoRef(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	cs := NewChangeSet()
	require.NoError(t, cs.Add("a.txt", "x"))

	_, err := client.CreatePR(context.Background(), "octo/widgets:develop", cs, &CreateOptions{
		Config: &Config{BaseBranch: "main"},
	})
	require.NoError(t, err)
	assert.Equal(t, "create-branch pullsmith/1700000000 from develop", host.calls[0],
		"repo ref base branch wins over config")
}

func TestCreatePRMetadataFailuresBecomeWarnings(t *testing.T) {
	host := newFakeHost()
	host.failOps["add-labels"] = errors.New("labels exploded")
	host.failOps["auto-merge"] = errors.New("merge queue full")
	client := newTestClient(host)

	cs := NewChangeSet()
	require.NoError(t, cs.Add("a.txt", "x"))

	result, err := client.CreatePR(context.Background(), "octo/widgets", cs, &CreateOptions{
		Config: &Config{
			Labels:              []string{"bot"},
			Reviewers:           []string{"alice"},
			AutoMerge:           true,
			MergeStrategy:       MergeStrategyRebase,
			DeleteBranchOnMerge: true,
		},
	})
	require.NoError(t, err, "metadata failures never discard the created PR")

	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "add labels", result.Warnings[0].Step)
	assert.Equal(t, "enable auto-merge", result.Warnings[1].Step)

	// The remaining steps still ran.
	assert.Contains(t, host.calls, "add-reviewers #42 [alice] []")
	assert.Contains(t, host.calls, "auto-merge #42 rebase")
	assert.Contains(t, host.calls, "delete-branch-on-merge true")
}

func TestCreatePRSkipsUnconfiguredMetadata(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	cs := NewChangeSet()
	require.NoError(t, cs.Add("a.txt", "x"))

	_, err := client.CreatePR(context.Background(), "octo/widgets", cs, nil)
	require.NoError(t, err)

	for _, call := range host.calls {
		assert.NotContains(t, call, "add-labels")
		assert.NotContains(t, call, "add-reviewers")
		assert.NotContains(t, call, "auto-merge")
		assert.NotContains(t, call, "delete-branch-on-merge")
	}
}

func TestCreatePRBadURL(t *testing.T) {
	host := newFakeHost()
	host.prURL = "https://github.com/octo/widgets/pulls"
	client := newTestClient(host)

	cs := NewChangeSet()
	require.NoError(t, cs.Add("a.txt", "x"))

	_, err := client.CreatePR(context.Background(), "octo/widgets", cs, nil)
	var urlErr *PRURLError
	require.ErrorAs(t, err, &urlErr)
	assert.Equal(t, "https://github.com/octo/widgets/pulls", urlErr.URL)
}

func TestCreatePRFromContent(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	result, err := client.CreatePRFromContent(context.Background(), "octo/widgets", "payload", "data/config.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, 42, result.Number)
	assert.Contains(t, host.calls, "update data/config.yaml on pullsmith/1700000000: Update data/config.yaml")
}

func TestCreatePRFromContentsOrdered(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	_, err := client.CreatePRFromContents(context.Background(), "octo/widgets", map[string]string{
		"z.txt": "z",
		"a.txt": "a",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "update a.txt on pullsmith/1700000000: Update a.txt", host.calls[1])
	assert.Equal(t, "update z.txt on pullsmith/1700000000: Update z.txt", host.calls[2])
}

func TestDefaultBranch(t *testing.T) {
	host := newFakeHost()
	client := newTestClient(host)

	branch, err := client.DefaultBranch(context.Background(), "octo/widgets")
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	_, err = client.DefaultBranch(context.Background(), "not a repo")
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Settings{})
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "token", invalid.Key)
}

func TestParsePRNumber(t *testing.T) {
	tests := []struct {
		url     string
		want    int
		wantErr bool
	}{
		{"https://github.com/octo/widgets/pull/42", 42, false},
		{"https://github.com/octo/widgets/pull/42/", 42, false},
		{"https://github.com/octo/widgets/pull/0", 0, true},
		{"https://github.com/octo/widgets/pulls", 0, true},
		{"", 0, true},
		{"42", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePRNumber(tt.url)
		if tt.wantErr {
			var urlErr *PRURLError
			require.ErrorAs(t, err, &urlErr, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got, tt.url)
	}
}
