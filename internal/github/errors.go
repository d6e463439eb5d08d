package github

import (
	"errors"
	"fmt"
)

// Errors returned by the GitHub client.
var (
	ErrUserNotFound     = errors.New("github user not found")
	ErrRateLimited      = errors.New("github api rate limit exceeded")
	ErrUnauthorized     = errors.New("github authentication failed")
	ErrInvalidUsername  = errors.New("invalid github username: only alphanumeric characters and hyphens allowed")
	ErrUsernameRequired = errors.New("github username is required")
)

// APIError is returned for non-OK responses without a dedicated sentinel.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error %d: %s", e.StatusCode, e.Body)
}

// statusError maps a response status to an error.
// Returns a nil error for 200, and whether the status is worth retrying.
func statusError(code int, body []byte) (retry bool, err error) {
	switch {
	case code == 200:
		return false, nil
	case code == 404:
		return false, ErrUserNotFound
	case code == 403:
		return false, ErrRateLimited
	case code == 401:
		return false, ErrUnauthorized
	case code == 429 || code >= 500:
		return true, &APIError{StatusCode: code, Body: truncate(body, 256)}
	default:
		return false, &APIError{StatusCode: code, Body: truncate(body, 256)}
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
