package github

import (
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v57/github"
)

var (
	// ErrRateLimited indicates the platform rejected the call due to rate limiting
	ErrRateLimited = errors.New("rate limit exceeded; retry later or supply a token")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")
)

// UpstreamError represents any other non-success response from the platform
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s", e.Status)
}

// classifyError maps a go-github error into the package's error taxonomy
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return ErrRateLimited
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return ErrRateLimited
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return classifyStatus(respErr.Response.StatusCode)
	}

	return err
}

// classifyStatus maps an HTTP status code into the package's error taxonomy
func classifyStatus(code int) error {
	switch {
	case code == http.StatusForbidden || code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return &UpstreamError{
			StatusCode: code,
			Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		}
	}
}
