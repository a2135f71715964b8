// Package issues paginates a repository's issues and renders them as a Markdown document.
package issues

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/temirov/repoflat/internal/types"
)

const (
	// PageSize is the number of issues requested per page.
	PageSize = 100
	// MaxPages caps pagination; reaching it with full pages marks the result truncated.
	MaxPages = 10

	fetchingPageStatus         = "Fetching issues page %d..."
	errorIssuesNotAccessible   = "%w: could not access issues for repository %q; verify the repository exists and is public"
	errorIssuesStatus          = "%w: HTTP %d: %w"
	errorIssuesCancelled       = "%w: fetching issues page %d"
	errorIssuesFirstPage       = "fetch issues page 1: %w"
	logMessagePageSkipped      = "skipping issues page after a network failure"
	logFieldPage               = "page"
	logFieldCollectedIssues    = "collected"
	issuesRepositoryPathFormat = "%s/%s"
)

// PageLister returns one raw page of issues, pull requests included and flagged.
type PageLister interface {
	ListIssues(ctx context.Context, owner string, repository string, page int, perPage int) ([]types.Issue, error)
}

// StatusReporter receives status messages while pages are fetched.
type StatusReporter interface {
	Status(message string)
}

// StatusCoder extracts the HTTP status carried by a lister error, or zero when there is none.
type StatusCoder func(err error) int

// Fetcher walks the issues endpoint page by page.
type Fetcher struct {
	lister     PageLister
	statusCode StatusCoder
	reporter   StatusReporter
	logger     *zap.Logger
}

// NewFetcher builds a Fetcher. statusCode extracts HTTP statuses from lister errors.
func NewFetcher(lister PageLister, statusCode StatusCoder, reporter StatusReporter, logger *zap.Logger) Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if statusCode == nil {
		statusCode = func(error) int { return 0 }
	}
	return Fetcher{lister: lister, statusCode: statusCode, reporter: reporter, logger: logger}
}

// Fetch collects every non-pull-request issue, stopping on an empty or short page or at MaxPages.
// A network failure on the first page fails the fetch; on a later page the page is recorded in
// SkippedPages and pagination moves on.
func (fetcher Fetcher) Fetch(ctx context.Context, reference types.RepositoryReference) (types.IssueFetchResult, error) {
	var result types.IssueFetchResult
	repositoryPath := fmt.Sprintf(issuesRepositoryPathFormat, reference.Owner, reference.Repository)

	for page := 1; ; page++ {
		if page > MaxPages {
			result.Truncated = true
			return result, nil
		}
		if ctx.Err() != nil {
			return types.IssueFetchResult{}, fmt.Errorf(errorIssuesCancelled, types.ErrOperationCancelled, page)
		}
		if fetcher.reporter != nil {
			fetcher.reporter.Status(fmt.Sprintf(fetchingPageStatus, page))
		}

		pageIssues, listError := fetcher.lister.ListIssues(ctx, reference.Owner, reference.Repository, page, PageSize)
		if listError != nil {
			if types.IsCancellation(listError) || ctx.Err() != nil {
				return types.IssueFetchResult{}, fmt.Errorf(errorIssuesCancelled, types.ErrOperationCancelled, page)
			}
			statusCode := fetcher.statusCode(listError)
			switch {
			case statusCode == http.StatusNotFound:
				return types.IssueFetchResult{}, fmt.Errorf(errorIssuesNotAccessible, types.ErrRepositoryNotAccessible, repositoryPath)
			case statusCode != 0:
				return types.IssueFetchResult{}, fmt.Errorf(errorIssuesStatus, types.ErrIssuesAPI, statusCode, listError)
			case page == 1:
				return types.IssueFetchResult{}, fmt.Errorf(errorIssuesFirstPage, listError)
			default:
				fetcher.logger.Warn(logMessagePageSkipped, zap.Int(logFieldPage, page), zap.Int(logFieldCollectedIssues, len(result.Issues)), zap.Error(listError))
				result.SkippedPages = append(result.SkippedPages, page)
				continue
			}
		}

		if len(pageIssues) == 0 {
			return result, nil
		}
		for _, issue := range pageIssues {
			if issue.IsPullRequest {
				continue
			}
			result.Issues = append(result.Issues, issue)
		}
		if len(pageIssues) < PageSize {
			return result, nil
		}
	}
}
