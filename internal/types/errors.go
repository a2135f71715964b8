package types

import (
	"context"
	"errors"
)

var (
	ErrInvalidReferenceFormat  = errors.New("invalid repository reference format")
	ErrRepositoryNotAccessible = errors.New("repository is not accessible")
	ErrNoFilesInScope          = errors.New("no files found in scope")
	ErrNoFilesToProcess        = errors.New("no files to process after applying filters")
	ErrIssuesAPI               = errors.New("issues api error")
	ErrOperationCancelled      = errors.New("operation cancelled")
	ErrNetworkFailure          = errors.New("network failure")
	ErrNoIssueStateSelected    = errors.New("select at least one issue state (open and/or closed) to export")
	ErrOperationInFlight       = errors.New("another operation is already running")
	ErrNoMatchingIssues        = errors.New("no issues match the selected filters")
)

// IsCancellation reports whether err represents a cooperative cancellation rather than a failure.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrOperationCancelled) || errors.Is(err, context.Canceled)
}
