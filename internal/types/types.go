// Package types defines every cross‑package data structure used by the repoflat CLI.
package types

import "time"

const (
	// EntryKindBlob marks tree entries that are regular files.
	EntryKindBlob = "blob"

	IssueStateOpen   = "open"
	IssueStateClosed = "closed"

	ExportKindRepository = "repository"
	ExportKindIssues     = "issues"
)

// RepositoryReference identifies a repository and an optional branch and subdirectory.
// It is produced once per operation from user input and never mutated.
type RepositoryReference struct {
	Owner         string
	Repository    string
	Branch        string
	Subdirectory  string
	OriginalInput string
}

// HasBranch reports whether the reference carried an explicit branch.
func (reference RepositoryReference) HasBranch() bool {
	return reference.Branch != ""
}

// DisplayPath returns owner/repo, followed by the subdirectory when one is set.
func (reference RepositoryReference) DisplayPath() string {
	basePath := reference.Owner + "/" + reference.Repository
	if reference.Subdirectory == "" {
		return basePath
	}
	return basePath + "/" + reference.Subdirectory
}

// RelativePath strips the subdirectory prefix from a repository-root-relative path.
func (reference RepositoryReference) RelativePath(path string) string {
	if reference.Subdirectory == "" {
		return path
	}
	prefix := reference.Subdirectory + "/"
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		return path[len(prefix):]
	}
	return path
}

// FileEntry is one tree-listing record.
type FileEntry struct {
	Path string
	Size int64
	Kind string
}

// IsBlob reports whether the entry is a regular file.
func (entry FileEntry) IsBlob() bool {
	return entry.Kind == EntryKindBlob
}

// FilterOptions configures file selection and transformation for a concatenation run.
type FilterOptions struct {
	SkipLargeFiles       bool
	RemoveLicenseHeaders bool
	SkipBinaryFiles      bool
	SkipPatterns         []string
}

// ResolvedRepository is the outcome of branch resolution: the accepted branch and in-scope blobs.
type ResolvedRepository struct {
	Reference RepositoryReference
	Branch    string
	Files     []FileEntry
}

// ConcatenationStats summarizes a finished concatenation run.
type ConcatenationStats struct {
	Processed  int
	Skipped    int
	TotalBytes int64
	TotalLines int
	TokenCount int
	TokenModel string
	TotalFiles int
	Branch     string
}

// ConcatenationResult is the immutable document produced by the concatenation pipeline.
type ConcatenationResult struct {
	Content string
	Stats   ConcatenationStats
}

// Issue is a validated issue record. Optional timestamps are nil when absent.
type Issue struct {
	Number        int
	Title         string
	State         string
	Author        string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	ClosedAt      *time.Time
	Comments      int
	Labels        []string
	Milestone     string
	Assignees     []string
	HTMLURL       string
	Body          string
	IsPullRequest bool
}

// IssuePagination describes how completely the issue pages were read. Truncated means the page
// cap was reached; SkippedPages lists pages lost to transport failures.
type IssuePagination struct {
	Truncated    bool
	SkippedPages []int
}

// Complete reports whether every page up to the last one was read.
func (pagination IssuePagination) Complete() bool {
	return !pagination.Truncated && len(pagination.SkippedPages) == 0
}

// IssueFetchResult holds fetched issues and how pagination ended.
type IssueFetchResult struct {
	Issues []Issue
	IssuePagination
}

// IssueStateFilter selects which issue states are rendered.
type IssueStateFilter struct {
	IncludeOpen   bool
	IncludeClosed bool
}

// IssueStats summarizes a rendered issue document.
type IssueStats struct {
	Total         int
	Open          int
	Closed        int
	LatestUpdated string
	IncludedState string
}

// IssueDocument is the rendered issues export.
type IssueDocument struct {
	Content string
	Stats   IssueStats
}
