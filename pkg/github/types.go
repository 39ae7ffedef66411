package github

// PRInfo contains basic pull request information
type PRInfo struct {
	Number  int    `json:"number"`
	NodeID  string `json:"node_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
	URL     string `json:"url"`
	BaseRef string `json:"base_ref"`
	HeadRef string `json:"head_ref"`
	Draft   bool   `json:"draft"`
}

// NewPullRequest contains information for creating a new pull request
type NewPullRequest struct {
	Title               string `json:"title"`
	Head                string `json:"head"`
	Base                string `json:"base"`
	Body                string `json:"body"`
	Draft               bool   `json:"draft"`
	MaintainerCanModify bool   `json:"maintainer_can_modify"`
}

// ContentState classifies what a repository path points at on a branch.
type ContentState int

const (
	// ContentNotFound means no file or directory exists at the path.
	ContentNotFound ContentState = iota
	// ContentFile means the path is a regular file.
	ContentFile
	// ContentDirectory means the path is a directory.
	ContentDirectory
)

// ContentLookup is the result of resolving a repository path on a branch.
// SHA is set only when State is ContentFile.
type ContentLookup struct {
	State ContentState
	SHA   string
}
