package pr

import (
	"fmt"
	"regexp"
)

// Repo reference formats:
// - "owner/repo"
// - "owner/repo:base-branch"

var repoRefRegex = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)(?::([\w./-]+))?$`)

// RepoRef identifies a repository and, optionally, the base branch PRs
// should target.
type RepoRef struct {
	Owner      string
	Repo       string
	BaseBranch string
}

// ParseRepo parses an "owner/repo[:base-branch]" reference.
func ParseRepo(target string) (RepoRef, error) {
	matches := repoRefRegex.FindStringSubmatch(target)
	if matches == nil {
		return RepoRef{}, &InvalidArgumentError{
			Key:    target,
			Reason: "expected owner/repo[:base-branch]",
		}
	}

	return RepoRef{
		Owner:      matches[1],
		Repo:       matches[2],
		BaseBranch: matches[3],
	}, nil
}

// String returns the string representation of the reference.
func (r RepoRef) String() string {
	if r.BaseBranch == "" {
		return r.FullName()
	}
	return fmt.Sprintf("%s/%s:%s", r.Owner, r.Repo, r.BaseBranch)
}

// FullName returns the full repository name (owner/repo).
func (r RepoRef) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Repo)
}

// CloneURL returns the HTTPS clone URL for the repository.
func (r RepoRef) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", r.Owner, r.Repo)
}

// CloneURLWithToken returns the HTTPS clone URL with an embedded token.
func (r RepoRef) CloneURLWithToken(token string) string {
	return fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git", token, r.Owner, r.Repo)
}
