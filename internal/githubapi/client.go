// Package githubapi talks to the repository hosting API and the raw-content host.
package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/time/rate"

	"github.com/temirov/repoflat/internal/types"
)

const (
	// DefaultAPIBaseURL is the public GitHub REST endpoint.
	DefaultAPIBaseURL = "https://api.github.com/"
	// DefaultUserAgent identifies repoflat requests.
	DefaultUserAgent = "repoflat"
	// IssuesPerPage is the page size requested from the issues endpoint.
	IssuesPerPage = 100

	issueStateAll          = "all"
	operationListTree      = "list tree"
	operationListIssues    = "list issues"
	errorInvalidAPIBaseURL = "invalid api base url %q: %w"
)

// Client serves the tree-listing and issue-listing collaborator endpoints through go-github.
type Client struct {
	github  *gh.Client
	limiter *rate.Limiter
}

// NewClient wraps httpClient in a go-github client. An empty apiBaseURL keeps the public endpoint.
func NewClient(httpClient *http.Client, apiBaseURL string) (*Client, error) {
	githubClient := gh.NewClient(httpClient)
	githubClient.UserAgent = DefaultUserAgent
	trimmedBase := strings.TrimSpace(apiBaseURL)
	if trimmedBase != "" {
		if !strings.HasSuffix(trimmedBase, "/") {
			trimmedBase += "/"
		}
		parsedBase, parseError := url.Parse(trimmedBase)
		if parseError != nil {
			return nil, fmt.Errorf(errorInvalidAPIBaseURL, apiBaseURL, parseError)
		}
		githubClient.BaseURL = parsedBase
	}
	return &Client{github: githubClient}, nil
}

// WithUserAgent overrides the User-Agent header.
func (client *Client) WithUserAgent(agent string) *Client {
	if strings.TrimSpace(agent) != "" {
		client.github.UserAgent = agent
	}
	return client
}

// WithLimiter paces every request through limiter. A nil limiter disables pacing.
func (client *Client) WithLimiter(limiter *rate.Limiter) *Client {
	client.limiter = limiter
	return client
}

// ListTree returns the recursive tree listing of repository at branch.
func (client *Client) ListTree(ctx context.Context, owner string, repository string, branch string) ([]types.FileEntry, error) {
	if waitError := waitForLimiter(ctx, client.limiter, operationListTree); waitError != nil {
		return nil, waitError
	}
	tree, _, treeError := client.github.Git.GetTree(ctx, owner, repository, branch, true)
	if treeError != nil {
		return nil, classifyError(ctx, treeError, operationListTree)
	}
	entries := make([]types.FileEntry, 0, len(tree.Entries))
	for _, treeEntry := range tree.Entries {
		entries = append(entries, types.FileEntry{
			Path: treeEntry.GetPath(),
			Size: int64(treeEntry.GetSize()),
			Kind: treeEntry.GetType(),
		})
	}
	return entries, nil
}

// ListIssues returns one page of issues in every state. Pull requests are kept and flagged.
func (client *Client) ListIssues(ctx context.Context, owner string, repository string, page int, perPage int) ([]types.Issue, error) {
	if waitError := waitForLimiter(ctx, client.limiter, operationListIssues); waitError != nil {
		return nil, waitError
	}
	listOptions := &gh.IssueListByRepoOptions{
		State:       issueStateAll,
		ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
	}
	githubIssues, _, listError := client.github.Issues.ListByRepo(ctx, owner, repository, listOptions)
	if listError != nil {
		return nil, classifyError(ctx, listError, operationListIssues)
	}
	issues := make([]types.Issue, 0, len(githubIssues))
	for _, githubIssue := range githubIssues {
		if githubIssue == nil {
			continue
		}
		issues = append(issues, convertIssue(githubIssue))
	}
	return issues, nil
}

func convertIssue(githubIssue *gh.Issue) types.Issue {
	labels := make([]string, 0, len(githubIssue.Labels))
	for _, label := range githubIssue.Labels {
		if name := label.GetName(); name != "" {
			labels = append(labels, name)
		}
	}
	assignees := make([]string, 0, len(githubIssue.Assignees))
	for _, assignee := range githubIssue.Assignees {
		if login := assignee.GetLogin(); login != "" {
			assignees = append(assignees, login)
		}
	}
	return types.Issue{
		Number:        githubIssue.GetNumber(),
		Title:         githubIssue.GetTitle(),
		State:         githubIssue.GetState(),
		Author:        githubIssue.GetUser().GetLogin(),
		CreatedAt:     timestampPointer(githubIssue.CreatedAt),
		UpdatedAt:     timestampPointer(githubIssue.UpdatedAt),
		ClosedAt:      timestampPointer(githubIssue.ClosedAt),
		Comments:      githubIssue.GetComments(),
		Labels:        labels,
		Milestone:     githubIssue.GetMilestone().GetTitle(),
		Assignees:     assignees,
		HTMLURL:       githubIssue.GetHTMLURL(),
		Body:          githubIssue.GetBody(),
		IsPullRequest: githubIssue.IsPullRequest(),
	}
}

func timestampPointer(timestamp *gh.Timestamp) *time.Time {
	if timestamp == nil || timestamp.IsZero() {
		return nil
	}
	value := timestamp.UTC()
	return &value
}
