package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoflat/internal/config"
	"github.com/temirov/repoflat/internal/githubapi"
	"github.com/temirov/repoflat/internal/operation"
	"github.com/temirov/repoflat/internal/output"
	"github.com/temirov/repoflat/internal/types"
)

const (
	logFieldOperation   = "operation"
	logFieldReference   = "repository"
	logFieldDestination = "destination"
	logFieldCurrent     = "current"
	logFieldTotal       = "total"

	logMessageStarted   = "export started"
	logMessageCancelled = "operation cancelled"
	logMessageSaved     = "document saved"
	logMessageProgress  = "progress"

	outputDirectoryFlagName        = "output-dir"
	stdoutFlagName                 = "stdout"
	clipboardFlagName              = "clipboard"
	outputDirectoryFlagDescription = "directory receiving the Markdown document"
	stdoutFlagDescription          = "write the document to standard output instead of a file"
	clipboardFlagDescription       = "also copy the document to the clipboard"
)

// exportFunc runs the network part of one export and returns the finished document.
type exportFunc func(current *operation.Operation, logger *zap.Logger) (string, error)

// logReporter forwards pipeline and fetcher callbacks to the operation logger.
type logReporter struct {
	logger *zap.Logger
}

func (reporter logReporter) Status(message string) {
	reporter.logger.Info(message)
}

func (reporter logReporter) Progress(current int, total int) {
	reporter.logger.Debug(logMessageProgress, zap.Int(logFieldCurrent, current), zap.Int(logFieldTotal, total))
}

// loadConfiguration reads the configuration files and overlays the persistent flags set on the
// command line.
func (app *application) loadConfiguration(command *cobra.Command) (config.ApplicationConfiguration, error) {
	configuration, err := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: app.workingDirectory,
		ExplicitFilePath: app.options.configPath,
	})
	if err != nil {
		return config.ApplicationConfiguration{}, err
	}
	flags := command.Flags()
	override := config.GitHubConfiguration{}
	if flags.Changed(apiURLFlagName) {
		override.APIBaseURL = app.options.apiURL
	}
	if flags.Changed(rawURLFlagName) {
		override.RawBaseURL = app.options.rawURL
	}
	if flags.Changed(timeoutFlagName) {
		override.Timeout = app.options.timeout.String()
	}
	if flags.Changed(requestsPerSecondFlagName) {
		requestsPerSecond := app.options.requestsPerSecond
		override.RequestsPerSecond = &requestsPerSecond
	}
	if flags.Changed(userAgentFlagName) {
		override.UserAgent = app.options.userAgent
	}
	return configuration.Merge(config.ApplicationConfiguration{GitHub: override}), nil
}

// newGitHubClients builds the API client and the raw blob fetcher over one shared HTTP client
// and one shared limiter.
func (app *application) newGitHubClients(ctx context.Context, githubConfiguration config.GitHubConfiguration) (*githubapi.Client, githubapi.BlobFetcher, error) {
	timeout, timeoutErr := githubConfiguration.RequestTimeout()
	if timeoutErr != nil {
		return nil, githubapi.BlobFetcher{}, timeoutErr
	}
	var requestsPerSecond float64
	if githubConfiguration.RequestsPerSecond != nil {
		requestsPerSecond = *githubConfiguration.RequestsPerSecond
	}
	httpClient := githubapi.NewHTTPClient(ctx, app.lookupToken(), timeout)
	limiter := githubapi.NewLimiter(requestsPerSecond)

	apiClient, clientErr := githubapi.NewClient(httpClient, githubConfiguration.APIBaseURL)
	if clientErr != nil {
		return nil, githubapi.BlobFetcher{}, clientErr
	}
	apiClient = apiClient.WithUserAgent(githubConfiguration.UserAgent).WithLimiter(limiter)
	blobFetcher := githubapi.NewBlobFetcher(httpClient).
		WithRawBase(githubConfiguration.RawBaseURL).
		WithUserAgent(githubConfiguration.UserAgent).
		WithLimiter(limiter)
	return apiClient, blobFetcher, nil
}

// runExport admits one operation, cancels it on SIGINT or SIGTERM, and persists its document.
// A cancelled operation ends quietly with no document and a nil error.
func (app *application) runExport(command *cobra.Command, kind string, reference types.RepositoryReference, outputConfiguration config.OutputConfiguration, export exportFunc) error {
	parentContext := command.Context()
	if parentContext == nil {
		parentContext = context.Background()
	}
	current, beginErr := app.state.Begin(parentContext, kind, reference)
	if beginErr != nil {
		return beginErr
	}
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	stopWatching := app.cancelOnSignal(signals)
	defer stopWatching()
	operationLogger := app.logger.With(zap.String(logFieldOperation, current.ShortID()))
	operationLogger.Info(logMessageStarted, zap.String(logFieldReference, reference.DisplayPath()))

	content, exportErr := export(current, operationLogger)
	if exportErr != nil {
		app.state.Complete(current, nil)
		if types.IsCancellation(exportErr) {
			operationLogger.Info(logMessageCancelled)
			return nil
		}
		return exportErr
	}
	app.state.Complete(current, &operation.Result{Kind: kind, Reference: reference, Content: content})

	filename := output.Filename(kind, reference, app.now())
	destinations, persistErr := output.PersistAll(app.persisters(command, outputConfiguration), content, filename)
	for _, destination := range destinations {
		operationLogger.Info(logMessageSaved, zap.String(logFieldDestination, destination))
	}
	return persistErr
}

// cancelOnSignal cancels the live operation when a signal arrives. The returned function stops
// watching.
func (app *application) cancelOnSignal(signals <-chan os.Signal) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-signals:
			app.state.CancelCurrent()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// persisters maps output settings to destinations. Standard output replaces the file; the
// clipboard is added to either.
func (app *application) persisters(command *cobra.Command, outputConfiguration config.OutputConfiguration) []output.Persister {
	var persisters []output.Persister
	if config.BoolValue(outputConfiguration.Stdout) {
		writer := app.stdout
		if writer == nil {
			writer = command.OutOrStdout()
		}
		persisters = append(persisters, output.WriterPersister{Writer: writer})
	} else {
		persisters = append(persisters, output.FilePersister{Directory: outputConfiguration.Directory})
	}
	if config.BoolValue(outputConfiguration.Clipboard) {
		persisters = append(persisters, output.ClipboardPersister{Copier: app.copier})
	}
	return persisters
}

// addOutputFlags registers the flags shared by both export commands.
func addOutputFlags(command *cobra.Command, options *outputOptions) {
	flags := command.Flags()
	flags.StringVarP(&options.directory, outputDirectoryFlagName, "o", "", outputDirectoryFlagDescription)
	registerBooleanFlag(flags, &options.stdout, stdoutFlagName, false, stdoutFlagDescription)
	registerBooleanFlag(flags, &options.clipboard, clipboardFlagName, false, clipboardFlagDescription)
}

// outputOptions stores values of the output flags.
type outputOptions struct {
	directory string
	stdout    bool
	clipboard bool
}

func (options outputOptions) overlay(command *cobra.Command) config.OutputConfiguration {
	flags := command.Flags()
	override := config.OutputConfiguration{
		Stdout:    changedBoolean(flags, stdoutFlagName, &options.stdout),
		Clipboard: changedBoolean(flags, clipboardFlagName, &options.clipboard),
	}
	if flags.Changed(outputDirectoryFlagName) {
		override.Directory = options.directory
	}
	return override
}
