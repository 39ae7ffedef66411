package pr

import (
	"context"

	"github.com/pullsmith/pullsmith/pkg/github"
)

// githubHost adapts pkg/github's Client to the HostingAPI capability
// surface. Everything except CreatePullRequest matches directly.
type githubHost struct {
	*github.Client
}

func newGitHubHost(token, baseURL string) githubHost {
	opts := []github.ClientOption{}
	if baseURL != "" {
		opts = append(opts, github.WithBaseURL(baseURL))
	}
	return githubHost{Client: github.NewClient(token, opts...)}
}

func (h githubHost) CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string, draft bool) (string, error) {
	info, err := h.Client.CreatePullRequest(ctx, owner, repo, &github.NewPullRequest{
		Title:               title,
		Body:                body,
		Head:                head,
		Base:                base,
		Draft:               draft,
		MaintainerCanModify: true,
	})
	if err != nil {
		return "", err
	}
	return info.URL, nil
}
