package output

import (
	"strings"
	"time"

	"github.com/temirov/repoflat/internal/types"
)

const (
	filenameTimestampLayout = "2006-01-02T15-04-05"
	filenameSeparator       = "-"
	issuesFilenameSuffix    = "-issues"
	markdownExtension       = ".md"
)

// Filename builds {owner}-{repo}[-{subdirectory}][-issues]-{timestamp}.md. The subdirectory part
// only appears for repository exports and has its slashes replaced by dashes.
func Filename(kind string, reference types.RepositoryReference, now time.Time) string {
	var builder strings.Builder
	builder.WriteString(reference.Owner)
	builder.WriteString(filenameSeparator)
	builder.WriteString(reference.Repository)
	if kind == types.ExportKindRepository && reference.Subdirectory != "" {
		builder.WriteString(filenameSeparator)
		builder.WriteString(strings.ReplaceAll(reference.Subdirectory, "/", filenameSeparator))
	}
	if kind == types.ExportKindIssues {
		builder.WriteString(issuesFilenameSuffix)
	}
	builder.WriteString(filenameSeparator)
	builder.WriteString(now.UTC().Format(filenameTimestampLayout))
	builder.WriteString(markdownExtension)
	return builder.String()
}
