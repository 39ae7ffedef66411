package pr

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Change is a single entry in a ChangeSet: new content for a
// repository-relative path, or a deletion when Content is nil.
type Change struct {
	Path    string
	Content *string
}

// IsDeletion reports whether this entry deletes the file.
func (c Change) IsDeletion() bool {
	return c.Content == nil
}

// ChangeSet is an ordered collection of file changes applied as one commit
// per entry, in insertion order. A path may appear at most once.
type ChangeSet struct {
	entries []Change
	paths   map[string]struct{}
}

// NewChangeSet returns an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{paths: make(map[string]struct{})}
}

// Add records new content for a path.
func (cs *ChangeSet) Add(path, content string) error {
	return cs.add(path, &content)
}

// AddDeletion records the deletion of a path.
func (cs *ChangeSet) AddDeletion(path string) error {
	return cs.add(path, nil)
}

func (cs *ChangeSet) add(path string, content *string) error {
	if path == "" {
		return &InvalidArgumentError{Reason: "change path must not be empty"}
	}
	if strings.HasPrefix(path, "/") {
		return &InvalidArgumentError{Key: path, Reason: "change path must be repository-relative, not absolute"}
	}
	if _, ok := cs.paths[path]; ok {
		return &InvalidArgumentError{Key: path, Reason: "path appears more than once in change set"}
	}

	cs.paths[path] = struct{}{}
	cs.entries = append(cs.entries, Change{Path: path, Content: content})
	return nil
}

// Len returns the number of entries.
func (cs *ChangeSet) Len() int {
	return len(cs.entries)
}

// Entries returns the changes in insertion order. The returned slice is a
// copy; mutating it cannot bypass the validation done on Add.
func (cs *ChangeSet) Entries() []Change {
	entries := make([]Change, len(cs.entries))
	copy(entries, cs.entries)
	return entries
}

// ChangeSetFromMap builds a change set from a path-to-content map, where a
// nil value marks a deletion. Map keys are unique so last-write-wins applies
// at the map level before this function ever sees the data; entries are
// ordered by path for a deterministic commit sequence.
func ChangeSetFromMap(changes map[string]*string) (*ChangeSet, error) {
	paths := make([]string, 0, len(changes))
	for path := range changes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	cs := NewChangeSet()
	for _, path := range paths {
		if err := cs.add(path, changes[path]); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// changeSetFromLocalFile reads one local file into a single-entry change set
// targeting upstreamPath.
func changeSetFromLocalFile(localPath, upstreamPath string) (*ChangeSet, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read local file %q: %w", localPath, err)
	}

	cs := NewChangeSet()
	if err := cs.Add(upstreamPath, string(content)); err != nil {
		return nil, err
	}
	return cs, nil
}

// changeSetFromLocalFiles reads every local file in the local-to-upstream
// mapping. Any unreadable file fails the whole call; a partial change set is
// never returned.
func changeSetFromLocalFiles(files map[string]string) (*ChangeSet, error) {
	localPaths := make([]string, 0, len(files))
	for localPath := range files {
		localPaths = append(localPaths, localPath)
	}
	sort.Strings(localPaths)

	cs := NewChangeSet()
	for _, localPath := range localPaths {
		content, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local file %q: %w", localPath, err)
		}
		if err := cs.Add(files[localPath], string(content)); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// defaultTitle derives a PR title from the change set when none was
// configured: "Update {path}" for one file, "Update {n} files" otherwise.
func defaultTitle(cs *ChangeSet) string {
	if cs.Len() == 1 {
		return fmt.Sprintf("Update %s", cs.entries[0].Path)
	}
	return fmt.Sprintf("Update %d files", cs.Len())
}

// commitMessage is the per-entry commit message visible in branch history.
func commitMessage(change Change) string {
	if change.IsDeletion() {
		return fmt.Sprintf("Delete %s", change.Path)
	}
	return fmt.Sprintf("Update %s", change.Path)
}
