package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoflat/internal/config"
	"github.com/temirov/repoflat/internal/githubapi"
	"github.com/temirov/repoflat/internal/issues"
	"github.com/temirov/repoflat/internal/operation"
	"github.com/temirov/repoflat/internal/repository"
	"github.com/temirov/repoflat/internal/types"
)

const (
	issuesUse              = "issues <repository>"
	issuesAlias            = "i"
	issuesShortDescription = "export repository issues into one document (" + issuesAlias + ")"
	issuesLongDescription  = `Export the issues of a repository, pull requests excluded, as one Markdown document.
Both open and closed issues are included unless --open or --closed narrow the selection;
a selection that matches no issue is reported as an error and nothing is saved.
At most ten pages of one hundred issues are fetched; larger histories are marked as truncated.`
	issuesUsageExample = `  # Export every issue
  repoflat issues spf13/cobra

  # Export only open issues to the clipboard
  repoflat i spf13/cobra --closed=false --clipboard`

	openFlagName          = "open"
	closedFlagName        = "closed"
	openFlagDescription   = "include open issues"
	closedFlagDescription = "include closed issues"

	issuesSummaryFormat   = "exported %s issues (%s open, %s closed; %s), latest update %s"
	incompleteWarning     = "issue history is incomplete"
	errorNoMatchingIssues = "%w (%d fetched)"
	logFieldTruncated     = "truncated"
	logFieldSkippedPages  = "skipped_pages"
)

// issuesOptions stores values of the issues command flags.
type issuesOptions struct {
	includeOpen   bool
	includeClosed bool
	output        outputOptions
}

func (options issuesOptions) overlay(command *cobra.Command) config.IssuesConfiguration {
	flags := command.Flags()
	return config.IssuesConfiguration{
		IncludeOpen:   changedBoolean(flags, openFlagName, &options.includeOpen),
		IncludeClosed: changedBoolean(flags, closedFlagName, &options.includeClosed),
		Output:        options.output.overlay(command),
	}
}

// createIssuesCommand returns the issues subcommand.
func createIssuesCommand(app *application) *cobra.Command {
	var options issuesOptions

	issuesCommand := &cobra.Command{
		Use:     issuesUse,
		Aliases: []string{issuesAlias},
		Short:   issuesShortDescription,
		Long:    issuesLongDescription,
		Example: issuesUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			reference, parseErr := repository.ParseReference(arguments[0])
			if parseErr != nil {
				return parseErr
			}
			configuration, configErr := app.loadConfiguration(command)
			if configErr != nil {
				return configErr
			}
			configuration = configuration.Merge(config.ApplicationConfiguration{Issues: options.overlay(command)})
			return app.runIssues(command, reference, configuration.Issues, configuration.GitHub)
		},
	}

	flags := issuesCommand.Flags()
	registerBooleanFlag(flags, &options.includeOpen, openFlagName, true, openFlagDescription)
	registerBooleanFlag(flags, &options.includeClosed, closedFlagName, true, closedFlagDescription)
	addOutputFlags(issuesCommand, &options.output)
	return issuesCommand
}

func (app *application) runIssues(command *cobra.Command, reference types.RepositoryReference, issuesConfiguration config.IssuesConfiguration, githubConfiguration config.GitHubConfiguration) error {
	stateFilter := types.IssueStateFilter{
		IncludeOpen:   config.BoolValue(issuesConfiguration.IncludeOpen),
		IncludeClosed: config.BoolValue(issuesConfiguration.IncludeClosed),
	}
	if err := issues.ValidateStateFilter(stateFilter); err != nil {
		return err
	}
	apiClient, _, clientsErr := app.newGitHubClients(command.Context(), githubConfiguration)
	if clientsErr != nil {
		return clientsErr
	}

	return app.runExport(command, types.ExportKindIssues, reference, issuesConfiguration.Output, func(current *operation.Operation, logger *zap.Logger) (string, error) {
		fetcher := issues.NewFetcher(apiClient, githubapi.StatusCode, logReporter{logger: logger}, logger)
		fetched, fetchErr := fetcher.Fetch(current.Context(), current.Reference)
		if fetchErr != nil {
			return "", fetchErr
		}
		if !fetched.Complete() {
			logger.Warn(incompleteWarning,
				zap.Bool(logFieldTruncated, fetched.Truncated),
				zap.Ints(logFieldSkippedPages, fetched.SkippedPages),
				zap.Int(logFieldTotal, len(fetched.Issues)))
		}
		selected := issues.FilterByState(fetched.Issues, stateFilter)
		if len(selected) == 0 {
			return "", fmt.Errorf(errorNoMatchingIssues, types.ErrNoMatchingIssues, len(fetched.Issues))
		}
		document := issues.Render(current.Reference, selected, fetched.IssuePagination, stateFilter, app.now())
		logger.Info(formatIssuesSummary(document.Stats))
		return document.Content, nil
	})
}

func formatIssuesSummary(stats types.IssueStats) string {
	return fmt.Sprintf(issuesSummaryFormat,
		humanize.Comma(int64(stats.Total)),
		humanize.Comma(int64(stats.Open)),
		humanize.Comma(int64(stats.Closed)),
		stats.IncludedState,
		stats.LatestUpdated,
	)
}
