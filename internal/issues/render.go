package issues

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/temirov/repoflat/internal/types"
)

const (
	// GeneratedTimestampLayout matches the generation stamp of the code document.
	GeneratedTimestampLayout = "2006-01-02T15:04:05.000Z07:00"
	latestUpdatedLayout      = "2006-01-02"

	stateLabelOpen     = "Open"
	stateLabelClosed   = "Closed"
	stateLabelNone     = "None"
	headerStatesJoiner = ", "
	statsStatesJoiner  = " + "
	listJoiner         = ", "

	defaultAuthor    = "Unknown"
	defaultTimestamp = "N/A"
	defaultListValue = "None"

	documentTitleFormat      = "# Issues Export for %s\n\n"
	documentDescription      = "This document consolidates GitHub issues into a single Markdown file for review, backups, or AI ingestion.\n"
	truncationWarningFormat  = "\n> ⚠️ Only the first %d matching issues are included due to API pagination limits.\n"
	skippedPagesWarning      = "\n> ⚠️ Issues on page(s) %s could not be fetched and are missing from this export.\n"
	pageNumberJoiner         = ", "
	noIssuesSentence         = "\nNo issues were found for this repository with the current filters.\n"
	horizontalRule           = "\n---\n"
	issueHeadingFormat       = "\n## #%d: %s\n\n"
	descriptionHeadingFormat = "\n### Description\n\n%s\n"
	noDescriptionSentence    = "\n_No description provided._\n"
)

// FilterByState keeps issues whose state was requested, preserving order.
func FilterByState(issues []types.Issue, stateFilter types.IssueStateFilter) []types.Issue {
	filtered := make([]types.Issue, 0, len(issues))
	for _, issue := range issues {
		switch {
		case issue.State == types.IssueStateOpen && stateFilter.IncludeOpen:
			filtered = append(filtered, issue)
		case issue.State == types.IssueStateClosed && stateFilter.IncludeClosed:
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// ValidateStateFilter rejects a filter that selects no state.
func ValidateStateFilter(stateFilter types.IssueStateFilter) error {
	if !stateFilter.IncludeOpen && !stateFilter.IncludeClosed {
		return types.ErrNoIssueStateSelected
	}
	return nil
}

// Render produces the issues document for an already filtered issue set. Header counts describe
// the rendered set, and an empty set yields a minimal document rather than an error.
func Render(reference types.RepositoryReference, issues []types.Issue, pagination types.IssuePagination, stateFilter types.IssueStateFilter, generatedAt time.Time) types.IssueDocument {
	stats := ComputeStats(issues, stateFilter)
	var builder strings.Builder

	fmt.Fprintf(&builder, documentTitleFormat, reference.Owner+"/"+reference.Repository)
	fmt.Fprintf(&builder, "- **Generated:** %s\n", generatedAt.UTC().Format(GeneratedTimestampLayout))
	fmt.Fprintf(&builder, "- **Total Issues:** %d\n", stats.Total)
	fmt.Fprintf(&builder, "- **Open Issues:** %d\n", stats.Open)
	fmt.Fprintf(&builder, "- **Closed Issues:** %d\n", stats.Closed)
	fmt.Fprintf(&builder, "- **Included States:** %s\n\n", includedStates(stateFilter, headerStatesJoiner))
	builder.WriteString(documentDescription)

	if pagination.Truncated {
		fmt.Fprintf(&builder, truncationWarningFormat, len(issues))
	}
	if len(pagination.SkippedPages) > 0 {
		fmt.Fprintf(&builder, skippedPagesWarning, joinPageNumbers(pagination.SkippedPages))
	}
	if len(issues) == 0 {
		builder.WriteString(noIssuesSentence)
		return types.IssueDocument{Content: builder.String(), Stats: stats}
	}

	builder.WriteString(horizontalRule)
	for _, issue := range issues {
		writeIssueBlock(&builder, issue)
	}
	return types.IssueDocument{Content: builder.String(), Stats: stats}
}

func writeIssueBlock(builder *strings.Builder, issue types.Issue) {
	fmt.Fprintf(builder, issueHeadingFormat, issue.Number, issue.Title)
	fmt.Fprintf(builder, "- **State:** %s\n", strings.ToUpper(issue.State))
	fmt.Fprintf(builder, "- **Author:** %s\n", valueOrDefault(issue.Author, defaultAuthor))
	fmt.Fprintf(builder, "- **Created:** %s\n", formatTimestamp(issue.CreatedAt))
	fmt.Fprintf(builder, "- **Updated:** %s\n", formatTimestamp(issue.UpdatedAt))
	fmt.Fprintf(builder, "- **Closed:** %s\n", formatTimestamp(issue.ClosedAt))
	fmt.Fprintf(builder, "- **Comments:** %d\n", issue.Comments)
	fmt.Fprintf(builder, "- **Labels:** %s\n", joinOrDefault(issue.Labels))
	fmt.Fprintf(builder, "- **Milestone:** %s\n", valueOrDefault(issue.Milestone, defaultListValue))
	fmt.Fprintf(builder, "- **Assignees:** %s\n", joinOrDefault(issue.Assignees))
	fmt.Fprintf(builder, "- **URL:** %s\n", issue.HTMLURL)

	if strings.TrimSpace(issue.Body) != "" {
		fmt.Fprintf(builder, descriptionHeadingFormat, issue.Body)
	} else {
		builder.WriteString(noDescriptionSentence)
	}
	builder.WriteString(horizontalRule)
}

// ComputeStats summarizes the rendered issue set.
func ComputeStats(issues []types.Issue, stateFilter types.IssueStateFilter) types.IssueStats {
	stats := types.IssueStats{
		Total:         len(issues),
		LatestUpdated: defaultTimestamp,
		IncludedState: includedStates(stateFilter, statsStatesJoiner),
	}
	var latest *time.Time
	for _, issue := range issues {
		switch issue.State {
		case types.IssueStateOpen:
			stats.Open++
		case types.IssueStateClosed:
			stats.Closed++
		}
		if issue.UpdatedAt != nil && (latest == nil || issue.UpdatedAt.After(*latest)) {
			latest = issue.UpdatedAt
		}
	}
	if latest != nil {
		stats.LatestUpdated = latest.UTC().Format(latestUpdatedLayout)
	}
	return stats
}

func includedStates(stateFilter types.IssueStateFilter, joiner string) string {
	var labels []string
	if stateFilter.IncludeOpen {
		labels = append(labels, stateLabelOpen)
	}
	if stateFilter.IncludeClosed {
		labels = append(labels, stateLabelClosed)
	}
	if len(labels) == 0 {
		return stateLabelNone
	}
	return strings.Join(labels, joiner)
}

func formatTimestamp(timestamp *time.Time) string {
	if timestamp == nil || timestamp.IsZero() {
		return defaultTimestamp
	}
	return timestamp.UTC().Format(time.RFC3339)
}

func valueOrDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func joinPageNumbers(pages []int) string {
	labels := make([]string, 0, len(pages))
	for _, page := range pages {
		labels = append(labels, strconv.Itoa(page))
	}
	return strings.Join(labels, pageNumberJoiner)
}

func joinOrDefault(values []string) string {
	if len(values) == 0 {
		return defaultListValue
	}
	return strings.Join(values, listJoiner)
}
