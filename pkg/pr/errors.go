package pr

import (
	"errors"
	"fmt"
)

// ErrConfigConflict is returned when a call supplies both an explicit Config
// and non-empty Overrides. The two are mutually exclusive even when their
// values agree.
var ErrConfigConflict = errors.New("explicit config and overrides are mutually exclusive")

// InvalidArgumentError reports a caller error detected before any remote
// call: an unknown override key, a badly typed override value, or an invalid
// change-set entry.
type InvalidArgumentError struct {
	// Key is the offending override key or change-set path, when known.
	Key string

	// Reason describes what is wrong with it.
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invalid argument %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

// PRURLError reports a pull request creation URL whose trailing path segment
// did not parse as a PR number. The PR exists remotely; only its number could
// not be derived.
type PRURLError struct {
	URL string
}

func (e *PRURLError) Error() string {
	return fmt.Sprintf("cannot derive pull request number from URL %q", e.URL)
}

// Warning records a non-fatal failure from a post-creation metadata step
// (labels, reviewers, auto-merge, branch cleanup setting). The pull request
// itself was created; callers decide whether warnings matter.
type Warning struct {
	// Step names the metadata step that failed.
	Step string

	// Err is the underlying failure.
	Err error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Step, w.Err)
}
