// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/repoflat/internal/operation"
	"github.com/temirov/repoflat/internal/services/clipboard"
	"github.com/temirov/repoflat/internal/utils"
)

const (
	configFlagName            = "config"
	verboseFlagName           = "verbose"
	versionFlagName           = "version"
	apiURLFlagName            = "api-url"
	rawURLFlagName            = "raw-url"
	timeoutFlagName           = "timeout"
	requestsPerSecondFlagName = "requests-per-second"
	userAgentFlagName         = "user-agent"

	versionTemplate      = "repoflat version: %s\n"
	rootUse              = "repoflat"
	rootShortDescription = "flatten GitHub repositories and issues into Markdown"
	rootLongDescription  = `repoflat exports a public GitHub repository as one Markdown document.
The code command concatenates every file of a branch (optionally scoped to a subdirectory) behind
a directory tree overview. The issues command exports the repository's issues with their metadata.
Documents are written to the current directory unless --stdout or --output-dir say otherwise.`

	configFlagDescription            = "configuration file used instead of ./" + utils.LocalConfigFileName
	verboseFlagDescription           = "log progress for every file"
	versionFlagDescription           = "display application version"
	apiURLFlagDescription            = "GitHub REST API base URL"
	rawURLFlagDescription            = "raw content base URL"
	timeoutFlagDescription           = "timeout for a single request"
	requestsPerSecondFlagDescription = "pace requests to this rate (0 disables pacing)"
	userAgentFlagDescription         = "User-Agent header sent with every request"
)

// rootOptions holds values of the persistent flags shared by every command.
type rootOptions struct {
	configPath        string
	verbose           bool
	showVersion       bool
	apiURL            string
	rawURL            string
	timeout           time.Duration
	requestsPerSecond float64
	userAgent         string
}

// application carries the collaborators commands share. Tests replace the writer, clipboard,
// clock and logger.
type application struct {
	logger           *zap.Logger
	stdout           io.Writer
	copier           clipboard.Copier
	state            *operation.State
	now              func() time.Time
	workingDirectory string
	lookupToken      func() string
	options          rootOptions
}

func newApplication() *application {
	return &application{
		copier: clipboard.NewService(),
		state:  operation.NewState(),
		now:    time.Now,
		lookupToken: func() string {
			return os.Getenv(utils.GitHubTokenEnvironmentVariable)
		},
	}
}

// Execute runs the repoflat application.
func Execute() error {
	rootCommand := createRootCommand(newApplication())
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if app.options.showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			return app.initializeLogger()
		},
	}
	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&app.options.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(persistentFlags, &app.options.verbose, verboseFlagName, false, verboseFlagDescription)
	persistentFlags.BoolVar(&app.options.showVersion, versionFlagName, false, versionFlagDescription)
	persistentFlags.StringVar(&app.options.apiURL, apiURLFlagName, "", apiURLFlagDescription)
	persistentFlags.StringVar(&app.options.rawURL, rawURLFlagName, "", rawURLFlagDescription)
	persistentFlags.DurationVar(&app.options.timeout, timeoutFlagName, 0, timeoutFlagDescription)
	persistentFlags.Float64Var(&app.options.requestsPerSecond, requestsPerSecondFlagName, 0, requestsPerSecondFlagDescription)
	persistentFlags.StringVar(&app.options.userAgent, userAgentFlagName, "", userAgentFlagDescription)

	rootCommand.AddCommand(
		createCodeCommand(app),
		createIssuesCommand(app),
		createConfigCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func (app *application) initializeLogger() error {
	if app.logger != nil {
		return nil
	}
	level := zapcore.InfoLevel
	if app.options.verbose {
		level = zapcore.DebugLevel
	}
	logger, err := utils.NewApplicationLoggerAtLevel(level)
	if err != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, err)
	}
	app.logger = logger
	return nil
}
