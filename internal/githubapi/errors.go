package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v68/github"

	"github.com/temirov/repoflat/internal/types"
)

const (
	statusErrorFormat       = "unexpected status %d for %s"
	operationErrorFormat    = "%s: %w"
	networkFailureFormat    = "%s: %w: %w"
	unknownRequestURLMarker = "unknown url"
)

// StatusError reports a non-OK response from one of the collaborator endpoints.
type StatusError struct {
	StatusCode int
	URL        string
}

func (statusError *StatusError) Error() string {
	return fmt.Sprintf(statusErrorFormat, statusError.StatusCode, statusError.URL)
}

// StatusCode extracts the status code carried by err, or zero when err is not a StatusError.
func StatusCode(err error) int {
	var statusError *StatusError
	if errors.As(err, &statusError) {
		return statusError.StatusCode
	}
	return 0
}

// classifyError maps transport and go-github errors to StatusError, cancellation, or network failure.
func classifyError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf(operationErrorFormat, operation, types.ErrOperationCancelled)
	}

	var errorResponse *gh.ErrorResponse
	if errors.As(err, &errorResponse) {
		return fmt.Errorf(operationErrorFormat, operation, newStatusError(errorResponse.Response))
	}
	var rateLimitError *gh.RateLimitError
	if errors.As(err, &rateLimitError) {
		return fmt.Errorf(operationErrorFormat, operation, newStatusError(rateLimitError.Response))
	}
	var abuseRateLimitError *gh.AbuseRateLimitError
	if errors.As(err, &abuseRateLimitError) {
		return fmt.Errorf(operationErrorFormat, operation, newStatusError(abuseRateLimitError.Response))
	}
	return fmt.Errorf(networkFailureFormat, operation, types.ErrNetworkFailure, err)
}

func newStatusError(response *http.Response) *StatusError {
	if response == nil {
		return &StatusError{URL: unknownRequestURLMarker}
	}
	requestURL := unknownRequestURLMarker
	if response.Request != nil && response.Request.URL != nil {
		requestURL = response.Request.URL.String()
	}
	return &StatusError{StatusCode: response.StatusCode, URL: requestURL}
}
