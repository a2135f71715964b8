package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoflat/internal/config"
	"github.com/temirov/repoflat/internal/operation"
	"github.com/temirov/repoflat/internal/pipeline"
	"github.com/temirov/repoflat/internal/repository"
	"github.com/temirov/repoflat/internal/tokenizer"
	"github.com/temirov/repoflat/internal/types"
	"github.com/temirov/repoflat/internal/utils"
)

const (
	codeUse              = "code <repository>"
	codeAlias            = "c"
	codeShortDescription = "concatenate repository files into one document (" + codeAlias + ")"
	codeLongDescription  = `Download every file of a repository branch and concatenate them behind a directory tree.
The repository may be given as owner/repo or as a github.com URL; URLs of the form
/tree/<branch>/<path> select the branch and limit the export to that subdirectory.
Without an explicit branch, main, master, dev and develop are tried in that order; an explicit
branch that has no files falls back to the same list.`
	codeUsageExample = `  # Export a whole repository
  repoflat code spf13/cobra

  # Export one directory of a branch, skipping tests, to standard output
  repoflat code https://github.com/spf13/cobra/tree/main/doc --skip test --stdout

  # Strip license headers and download four files at a time
  repoflat c spf13/cobra --strip-license --concurrency 4`

	skipLargeFilesFlagName      = "skip-large-files"
	stripLicenseFlagName        = "strip-license"
	skipBinaryFlagName          = "skip-binary"
	skipPatternFlagName         = "skip"
	skipPatternsFileFlagName    = "skip-file"
	concurrencyFlagName         = "concurrency"
	tokensFlagName              = "tokens"
	modelFlagName               = "model"
	skipLargeFilesDescription   = "skip files larger than 1 MiB"
	stripLicenseDescription     = "remove license headers from file contents"
	skipBinaryDescription       = "skip files with binary extensions (images, archives, fonts, ...)"
	skipPatternDescription      = "skip paths matching a glob or substring; repeatable or comma separated, added to configured patterns"
	skipPatternsFileDescription = "file listing one skip pattern per line"
	concurrencyDescription      = "number of files downloaded at once"
	tokensDescription           = "count tokens of the finished document"
	modelDescription            = "tokenizer model used for token counting"

	codeSummaryFormat  = "exported %s of %s files (%s skipped) from branch %s: %s, %s lines"
	tokenSummaryFormat = ", %s tokens (%s)"
	errorConcurrency   = "concurrency must be at least 1, got %d"
)

// codeOptions stores values of the code command flags.
type codeOptions struct {
	skipLargeFiles   bool
	stripLicense     bool
	skipBinary       bool
	skipPatterns     []string
	skipPatternsFile string
	concurrency      int
	tokens           bool
	model            string
	output           outputOptions
}

func (options codeOptions) overlay(command *cobra.Command) config.CodeConfiguration {
	flags := command.Flags()
	override := config.CodeConfiguration{
		SkipLargeFiles:       changedBoolean(flags, skipLargeFilesFlagName, &options.skipLargeFiles),
		RemoveLicenseHeaders: changedBoolean(flags, stripLicenseFlagName, &options.stripLicense),
		SkipBinaryFiles:      changedBoolean(flags, skipBinaryFlagName, &options.skipBinary),
		Tokens: config.TokenConfiguration{
			Enabled: changedBoolean(flags, tokensFlagName, &options.tokens),
		},
		Output: options.output.overlay(command),
	}
	if flags.Changed(skipPatternsFileFlagName) {
		override.SkipPatternsFile = options.skipPatternsFile
	}
	if flags.Changed(concurrencyFlagName) {
		concurrency := options.concurrency
		override.Concurrency = &concurrency
	}
	if flags.Changed(modelFlagName) {
		override.Tokens.Model = options.model
	}
	return override
}

// createCodeCommand returns the code subcommand.
func createCodeCommand(app *application) *cobra.Command {
	var options codeOptions

	codeCommand := &cobra.Command{
		Use:     codeUse,
		Aliases: []string{codeAlias},
		Short:   codeShortDescription,
		Long:    codeLongDescription,
		Example: codeUsageExample,
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
			configuration = configuration.Merge(config.ApplicationConfiguration{Code: options.overlay(command)})
			codeConfiguration := configuration.Code
			for _, rawPatterns := range options.skipPatterns {
				codeConfiguration.SkipPatterns = append(codeConfiguration.SkipPatterns, utils.SplitPatternList(rawPatterns)...)
			}
			codeConfiguration.SkipPatterns = utils.DeduplicatePatterns(codeConfiguration.SkipPatterns)
			return app.runCode(command, reference, codeConfiguration, configuration.GitHub)
		},
	}

	flags := codeCommand.Flags()
	registerBooleanFlag(flags, &options.skipLargeFiles, skipLargeFilesFlagName, true, skipLargeFilesDescription)
	registerBooleanFlag(flags, &options.stripLicense, stripLicenseFlagName, false, stripLicenseDescription)
	registerBooleanFlag(flags, &options.skipBinary, skipBinaryFlagName, false, skipBinaryDescription)
	flags.StringArrayVarP(&options.skipPatterns, skipPatternFlagName, "s", nil, skipPatternDescription)
	flags.StringVar(&options.skipPatternsFile, skipPatternsFileFlagName, "", skipPatternsFileDescription)
	flags.IntVarP(&options.concurrency, concurrencyFlagName, "j", 1, concurrencyDescription)
	registerBooleanFlag(flags, &options.tokens, tokensFlagName, true, tokensDescription)
	flags.StringVar(&options.model, modelFlagName, tokenizer.DefaultModel, modelDescription)
	addOutputFlags(codeCommand, &options.output)
	return codeCommand
}

func (app *application) runCode(command *cobra.Command, reference types.RepositoryReference, codeConfiguration config.CodeConfiguration, githubConfiguration config.GitHubConfiguration) error {
	concurrency := 1
	if codeConfiguration.Concurrency != nil {
		concurrency = *codeConfiguration.Concurrency
	}
	if concurrency < 1 {
		return fmt.Errorf(errorConcurrency, concurrency)
	}
	skipPatterns, patternsErr := codeConfiguration.CombinedSkipPatterns()
	if patternsErr != nil {
		return patternsErr
	}
	apiClient, blobFetcher, clientsErr := app.newGitHubClients(command.Context(), githubConfiguration)
	if clientsErr != nil {
		return clientsErr
	}
	var counter tokenizer.Counter
	if config.BoolValue(codeConfiguration.Tokens.Enabled) {
		counter = tokenizer.NewCounter(tokenizer.Config{Model: codeConfiguration.Tokens.Model})
	}
	filterOptions := types.FilterOptions{
		SkipLargeFiles:       config.BoolValue(codeConfiguration.SkipLargeFiles),
		RemoveLicenseHeaders: config.BoolValue(codeConfiguration.RemoveLicenseHeaders),
		SkipBinaryFiles:      config.BoolValue(codeConfiguration.SkipBinaryFiles),
		SkipPatterns:         skipPatterns,
	}

	return app.runExport(command, types.ExportKindRepository, reference, codeConfiguration.Output, func(current *operation.Operation, logger *zap.Logger) (string, error) {
		concatenation := pipeline.New(repository.NewResolver(apiClient, logger), blobFetcher, pipeline.Options{
			Filter:      filterOptions,
			Concurrency: concurrency,
			Counter:     counter,
			Reporter:    logReporter{logger: logger},
			Logger:      logger,
			Now:         app.now,
		})
		result, runErr := concatenation.Run(current.Context(), current.Reference)
		if runErr != nil {
			return "", runErr
		}
		logger.Info(formatCodeSummary(result.Stats))
		return result.Content, nil
	})
}

func formatCodeSummary(stats types.ConcatenationStats) string {
	summary := fmt.Sprintf(codeSummaryFormat,
		humanize.Comma(int64(stats.Processed)),
		humanize.Comma(int64(stats.TotalFiles)),
		humanize.Comma(int64(stats.Skipped)),
		stats.Branch,
		humanize.Bytes(uint64(stats.TotalBytes)),
		humanize.Comma(int64(stats.TotalLines)),
	)
	if stats.TokenModel != "" {
		summary += fmt.Sprintf(tokenSummaryFormat, humanize.Comma(int64(stats.TokenCount)), stats.TokenModel)
	}
	return summary
}
