package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v68/github"
)

// APIError represents a GitHub API error response
type APIError struct {
	StatusCode int
	Message    string
	Errors     []APIErrorDetail `json:"errors,omitempty"`
}

// APIErrorDetail represents individual error details from GitHub
type APIErrorDetail struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Error returns the error message
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("GitHub API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("GitHub API error (status %d)", e.StatusCode)
}

// IsNotFoundError returns true if the error is a not found error
func IsNotFoundError(err error) bool {
	if statusCode, ok := errorStatusCode(err); ok {
		return statusCode == http.StatusNotFound
	}
	return false
}

// IsAlreadyExistsError returns true if the error indicates the resource
// (typically a git ref) already exists. GitHub reports this as 422 with a
// "Reference already exists" message.
func IsAlreadyExistsError(err error) bool {
	statusCode, ok := errorStatusCode(err)
	if !ok || statusCode != http.StatusUnprocessableEntity {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// IsAuthenticationError returns true if the error is an authentication error
func IsAuthenticationError(err error) bool {
	if statusCode, ok := errorStatusCode(err); ok {
		return statusCode == http.StatusUnauthorized ||
			statusCode == http.StatusForbidden
	}
	return false
}

// errorStatusCode extracts the HTTP status code from our APIError or from
// go-github's ErrorResponse.
func errorStatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode, true
	}

	return 0, false
}

// parseErrorResponse parses an error response from GitHub
func parseErrorResponse(statusCode int, body []byte) *APIError {
	var apiErr APIError
	apiErr.StatusCode = statusCode

	// Try to parse as GitHub error response
	var githubErr struct {
		Message string           `json:"message"`
		Errors  []APIErrorDetail `json:"errors"`
	}
	if err := json.Unmarshal(body, &githubErr); err == nil {
		apiErr.Message = githubErr.Message
		apiErr.Errors = githubErr.Errors
	} else {
		// If parsing fails, use the body as the message
		apiErr.Message = string(body)
	}

	return &apiErr
}
