package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"
)

// GetDefaultBranch returns the default branch of a repository
func (c *Client) GetDefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	repository, _, err := c.GitHubClient().Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return repository.GetDefaultBranch(), nil
}

// CreateBranch creates a branch pointing at the head commit of base.
//
// If the branch ref already exists it is force-updated to the base head SHA
// instead of failing, so re-running with the same generated branch name is
// safe. The resulting SHA is returned.
func (c *Client) CreateBranch(ctx context.Context, owner, repo, branch, base string) (string, error) {
	baseRef, _, err := c.GitHubClient().Git.GetRef(ctx, owner, repo, "heads/"+base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base branch %q: %w", base, err)
	}
	sha := baseRef.GetObject().GetSHA()

	newRef := &github.Reference{
		Ref:    github.Ptr("refs/heads/" + branch),
		Object: &github.GitObject{SHA: &sha},
	}

	_, _, err = c.GitHubClient().Git.CreateRef(ctx, owner, repo, newRef)
	if err == nil {
		return sha, nil
	}

	if !IsAlreadyExistsError(err) {
		return "", fmt.Errorf("failed to create branch %q: %w", branch, err)
	}

	// Idempotent re-run: reset the existing ref to the base head.
	_, _, err = c.GitHubClient().Git.UpdateRef(ctx, owner, repo, newRef, true)
	if err != nil {
		return "", fmt.Errorf("failed to update existing branch %q: %w", branch, err)
	}

	return sha, nil
}

// LookupContent resolves what a repository path points at on the given ref.
func (c *Client) LookupContent(ctx context.Context, owner, repo, path, ref string) (ContentLookup, error) {
	fileContent, directoryContent, _, err := c.GitHubClient().Repositories.GetContents(
		ctx, owner, repo, path,
		&github.RepositoryContentGetOptions{Ref: ref},
	)
	if err != nil {
		if IsNotFoundError(err) {
			return ContentLookup{State: ContentNotFound}, nil
		}
		return ContentLookup{}, fmt.Errorf("failed to look up %q on %q: %w", path, ref, err)
	}

	if directoryContent != nil {
		return ContentLookup{State: ContentDirectory}, nil
	}

	return ContentLookup{State: ContentFile, SHA: fileContent.GetSHA()}, nil
}

// UpdateFile creates, updates, or deletes a file on a branch.
//
// A non-nil content performs update-or-create depending on whether the file
// already exists. A nil content deletes the file; deleting an absent file is
// a no-op, not an error. A path that resolves to a directory fails.
func (c *Client) UpdateFile(ctx context.Context, owner, repo, path string, content *string, message, branch string) error {
	lookup, err := c.LookupContent(ctx, owner, repo, path, branch)
	if err != nil {
		return err
	}

	if lookup.State == ContentDirectory {
		return fmt.Errorf("path %q points to a directory", path)
	}

	if content == nil {
		if lookup.State == ContentNotFound {
			// Already absent, nothing to delete.
			return nil
		}
		_, _, err := c.GitHubClient().Repositories.DeleteFile(ctx, owner, repo, path, &github.RepositoryContentFileOptions{
			Message: &message,
			SHA:     &lookup.SHA,
			Branch:  &branch,
		})
		if err != nil {
			return fmt.Errorf("failed to delete %q on %q: %w", path, branch, err)
		}
		return nil
	}

	opts := &github.RepositoryContentFileOptions{
		Message: &message,
		Content: []byte(*content),
		Branch:  &branch,
	}

	if lookup.State == ContentFile {
		opts.SHA = &lookup.SHA
		_, _, err = c.GitHubClient().Repositories.UpdateFile(ctx, owner, repo, path, opts)
	} else {
		_, _, err = c.GitHubClient().Repositories.CreateFile(ctx, owner, repo, path, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to update %q on %q: %w", path, branch, err)
	}

	return nil
}

// CreatePullRequest creates a new pull request
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo string, newPR *NewPullRequest) (*PRInfo, error) {
	pr, _, err := c.GitHubClient().PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title:               &newPR.Title,
		Head:                &newPR.Head,
		Base:                &newPR.Base,
		Body:                &newPR.Body,
		Draft:               github.Ptr(newPR.Draft),
		MaintainerCanModify: github.Ptr(newPR.MaintainerCanModify),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	return convertFromGitHubPR(pr), nil
}

// GetPullRequest fetches basic pull request information
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PRInfo, error) {
	pr, _, err := c.GitHubClient().PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request #%d: %w", number, err)
	}
	return convertFromGitHubPR(pr), nil
}

// convertFromGitHubPR converts a github.PullRequest to our PRInfo type
func convertFromGitHubPR(pr *github.PullRequest) *PRInfo {
	var baseRef, headRef string
	if base := pr.GetBase(); base != nil {
		baseRef = base.GetRef()
	}
	if head := pr.GetHead(); head != nil {
		headRef = head.GetRef()
	}

	return &PRInfo{
		Number:  pr.GetNumber(),
		NodeID:  pr.GetNodeID(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		State:   pr.GetState(),
		URL:     pr.GetHTMLURL(),
		BaseRef: baseRef,
		HeadRef: headRef,
		Draft:   pr.GetDraft(),
	}
}

// AddLabels adds labels to a pull request
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	_, _, err := c.GitHubClient().Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
	if err != nil {
		return fmt.Errorf("failed to add labels to #%d: %w", number, err)
	}
	return nil
}

// AddReviewers requests reviews from users and team slugs on a pull request
func (c *Client) AddReviewers(ctx context.Context, owner, repo string, number int, reviewers, teamReviewers []string) error {
	_, _, err := c.GitHubClient().PullRequests.RequestReviewers(ctx, owner, repo, number, github.ReviewersRequest{
		Reviewers:     reviewers,
		TeamReviewers: teamReviewers,
	})
	if err != nil {
		return fmt.Errorf("failed to request reviewers on #%d: %w", number, err)
	}
	return nil
}

// SetDeleteBranchOnMerge requests that the repository delete head branches
// once their pull requests merge. This is a repository-level setting the
// hosting service enforces; we only ask for it.
func (c *Client) SetDeleteBranchOnMerge(ctx context.Context, owner, repo string, enabled bool) error {
	_, _, err := c.GitHubClient().Repositories.Edit(ctx, owner, repo, &github.Repository{
		DeleteBranchOnMerge: github.Ptr(enabled),
	})
	if err != nil {
		return fmt.Errorf("failed to set delete-branch-on-merge: %w", err)
	}
	return nil
}

// graphQLRequest is the request body for the GraphQL endpoint
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the response envelope from the GraphQL endpoint
type graphQLResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

const enableAutoMergeMutation = `mutation($id: ID!, $method: PullRequestMergeMethod!) {
  enablePullRequestAutoMerge(input: {pullRequestId: $id, mergeMethod: $method}) {
    clientMutationId
  }
}`

// EnableAutoMerge enables auto-merge on a pull request with the given merge
// method ("merge", "squash", or "rebase").
//
// The REST API has no endpoint for this, so it goes through the GraphQL
// enablePullRequestAutoMerge mutation using the PR's node ID.
func (c *Client) EnableAutoMerge(ctx context.Context, owner, repo string, number int, method string) error {
	var mergeMethod string
	switch strings.ToLower(method) {
	case "merge":
		mergeMethod = "MERGE"
	case "squash", "":
		mergeMethod = "SQUASH"
	case "rebase":
		mergeMethod = "REBASE"
	default:
		return fmt.Errorf("unknown merge method %q", method)
	}

	pr, err := c.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(graphQLRequest{
		Query: enableAutoMergeMutation,
		Variables: map[string]any{
			"id":     pr.NodeID,
			"method": mergeMethod,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	req, err := c.NewRequest(ctx, "POST", c.baseURL+"/graphql", bytes.NewReader(payload))
	if err != nil {
		return err
	}

	var result graphQLResponse
	if _, err := c.Do(req, &result); err != nil {
		return fmt.Errorf("failed to enable auto-merge on #%d: %w", number, err)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("failed to enable auto-merge on #%d: %s", number, result.Errors[0].Message)
	}

	return nil
}
