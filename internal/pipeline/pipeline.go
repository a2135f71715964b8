// Package pipeline assembles a repository into a single flattened document.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/repoflat/internal/filter"
	"github.com/temirov/repoflat/internal/license"
	"github.com/temirov/repoflat/internal/tokenizer"
	"github.com/temirov/repoflat/internal/tree"
	"github.com/temirov/repoflat/internal/types"
)

const (
	separatorWidth      = 80
	separatorCharacter  = "="
	fileMarkerPrefix    = "// File: "
	newline             = "\n"
	processingStatus    = "Processing %d files..."
	downloadingStatus   = "(%d/%d) Downloading %s"
	errorRenderPreamble = "render preamble: %w"
	errorCancelledFetch = "%w: downloading %s"
	errorNoFilesFormat  = "%w: all %d files in %s were filtered out"

	logMessageSkippedFile       = "skipping file"
	logMessageTokenCountFailure = "token counting failed"
	logFieldPath                = "path"
)

var fileSeparator = strings.Repeat(separatorCharacter, separatorWidth)

// Reporter receives progress and status updates while files are downloaded.
type Reporter interface {
	Progress(current int, total int)
	Status(message string)
}

// RepositoryResolver resolves a reference to its accepted branch and in-scope files.
type RepositoryResolver interface {
	Resolve(ctx context.Context, reference types.RepositoryReference) (types.ResolvedRepository, error)
}

// BlobFetcher retrieves raw file contents.
type BlobFetcher interface {
	FetchBlob(ctx context.Context, owner string, repository string, branch string, filePath string) (string, error)
}

// Options configures a Pipeline. Zero values give sequential downloads, no token counting,
// a silent reporter and the wall clock.
type Options struct {
	Filter      types.FilterOptions
	Concurrency int
	Counter     tokenizer.Counter
	Reporter    Reporter
	Logger      *zap.Logger
	Now         func() time.Time
}

// Pipeline orchestrates branch resolution, filtering, tree rendering, download and assembly.
type Pipeline struct {
	resolver RepositoryResolver
	fetcher  BlobFetcher
	options  Options
}

type silentReporter struct{}

func (silentReporter) Progress(int, int) {}
func (silentReporter) Status(string)     {}

// New builds a Pipeline over the provided collaborators.
func New(resolver RepositoryResolver, fetcher BlobFetcher, options Options) Pipeline {
	if options.Reporter == nil {
		options.Reporter = silentReporter{}
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	return Pipeline{resolver: resolver, fetcher: fetcher, options: options}
}

type fileOutcome struct {
	content    string
	downloaded bool
}

// Run produces the concatenated document for reference. Cancellation discards all partial output.
func (pipeline Pipeline) Run(ctx context.Context, reference types.RepositoryReference) (types.ConcatenationResult, error) {
	resolved, resolveError := pipeline.resolver.Resolve(ctx, reference)
	if resolveError != nil {
		return types.ConcatenationResult{}, resolveError
	}

	retainedFiles, filteredCount := filter.New(pipeline.options.Filter).Partition(resolved.Files)
	if len(retainedFiles) == 0 {
		return types.ConcatenationResult{}, fmt.Errorf(errorNoFilesFormat, types.ErrNoFilesToProcess, len(resolved.Files), reference.DisplayPath())
	}

	displayPaths := make([]string, len(retainedFiles))
	for fileIndex, fileEntry := range retainedFiles {
		displayPaths[fileIndex] = reference.RelativePath(fileEntry.Path)
	}

	preamble, preambleError := renderPreamble(preambleData{
		RepositoryPath: reference.DisplayPath(),
		Branch:         resolved.Branch,
		TotalFiles:     len(resolved.Files),
		Generated:      pipeline.options.Now().UTC().Format(GeneratedTimestampLayout),
		Tree:           tree.RenderPaths(displayPaths),
	})
	if preambleError != nil {
		return types.ConcatenationResult{}, fmt.Errorf(errorRenderPreamble, preambleError)
	}

	pipeline.options.Reporter.Status(fmt.Sprintf(processingStatus, len(retainedFiles)))
	outcomes, downloadError := pipeline.download(ctx, reference, resolved.Branch, retainedFiles, displayPaths)
	if downloadError != nil {
		return types.ConcatenationResult{}, downloadError
	}

	var documentBuilder strings.Builder
	documentBuilder.WriteString(preamble)
	stats := types.ConcatenationStats{
		Skipped:    filteredCount,
		TotalFiles: len(resolved.Files),
		Branch:     resolved.Branch,
	}
	for fileIndex, outcome := range outcomes {
		if !outcome.downloaded {
			stats.Skipped++
			continue
		}
		fileContent := outcome.content
		if pipeline.options.Filter.RemoveLicenseHeaders {
			fileContent = license.StripHeader(fileContent)
		}
		writeFileBlock(&documentBuilder, displayPaths[fileIndex], fileContent)
		stats.Processed++
		stats.TotalBytes += int64(len(fileContent))
	}

	content := documentBuilder.String()
	stats.TotalLines = len(strings.Split(content, newline))
	stats.TokenCount, stats.TokenModel = pipeline.countTokens(content)
	return types.ConcatenationResult{Content: content, Stats: stats}, nil
}

func writeFileBlock(builder *strings.Builder, displayPath string, fileContent string) {
	builder.WriteString(fileSeparator + newline)
	builder.WriteString(fileMarkerPrefix + displayPath + newline)
	builder.WriteString(fileSeparator + newline)
	builder.WriteString(fileContent)
	if !strings.HasSuffix(fileContent, newline) {
		builder.WriteString(newline)
	}
	builder.WriteString(newline)
}

func (pipeline Pipeline) countTokens(content string) (int, string) {
	if pipeline.options.Counter == nil {
		return 0, ""
	}
	tokenCount, countError := tokenizer.Count(pipeline.options.Counter, content)
	if countError != nil {
		pipeline.options.Logger.Warn(logMessageTokenCountFailure, zap.Error(countError))
		return 0, pipeline.options.Counter.Name()
	}
	return tokenCount, pipeline.options.Counter.Name()
}

func (pipeline Pipeline) download(ctx context.Context, reference types.RepositoryReference, branch string, files []types.FileEntry, displayPaths []string) ([]fileOutcome, error) {
	if pipeline.options.Concurrency > 1 {
		return pipeline.downloadConcurrently(ctx, reference, branch, files, displayPaths)
	}
	outcomes := make([]fileOutcome, len(files))
	total := len(files)
	for fileIndex, fileEntry := range files {
		if ctx.Err() != nil {
			return nil, fmt.Errorf(errorCancelledFetch, types.ErrOperationCancelled, displayPaths[fileIndex])
		}
		pipeline.options.Reporter.Progress(fileIndex+1, total)
		pipeline.options.Reporter.Status(fmt.Sprintf(downloadingStatus, fileIndex+1, total, displayPaths[fileIndex]))
		outcome, fetchError := pipeline.fetchOne(ctx, reference, branch, fileEntry, displayPaths[fileIndex])
		if fetchError != nil {
			return nil, fetchError
		}
		outcomes[fileIndex] = outcome
	}
	return outcomes, nil
}

// downloadConcurrently keeps at most Concurrency requests in flight. Outcomes stay indexed by
// listing position so assembly order never depends on completion order.
func (pipeline Pipeline) downloadConcurrently(ctx context.Context, reference types.RepositoryReference, branch string, files []types.FileEntry, displayPaths []string) ([]fileOutcome, error) {
	outcomes := make([]fileOutcome, len(files))
	total := len(files)
	var progressMutex sync.Mutex
	completed := 0

	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(pipeline.options.Concurrency)
	for fileIndex, fileEntry := range files {
		if groupContext.Err() != nil {
			break
		}
		fileIndex, fileEntry := fileIndex, fileEntry
		group.Go(func() error {
			outcome, fetchError := pipeline.fetchOne(groupContext, reference, branch, fileEntry, displayPaths[fileIndex])
			if fetchError != nil {
				return fetchError
			}
			outcomes[fileIndex] = outcome
			progressMutex.Lock()
			completed++
			pipeline.options.Reporter.Progress(completed, total)
			pipeline.options.Reporter.Status(fmt.Sprintf(downloadingStatus, completed, total, displayPaths[fileIndex]))
			progressMutex.Unlock()
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf(errorCancelledFetch, types.ErrOperationCancelled, reference.DisplayPath())
	}
	return outcomes, nil
}

// fetchOne downloads one file. Cancellation is returned as an error; every other failure is a skip.
func (pipeline Pipeline) fetchOne(ctx context.Context, reference types.RepositoryReference, branch string, fileEntry types.FileEntry, displayPath string) (fileOutcome, error) {
	fileContent, fetchError := pipeline.fetcher.FetchBlob(ctx, reference.Owner, reference.Repository, branch, fileEntry.Path)
	if fetchError == nil {
		return fileOutcome{content: fileContent, downloaded: true}, nil
	}
	if types.IsCancellation(fetchError) || ctx.Err() != nil {
		return fileOutcome{}, fmt.Errorf(errorCancelledFetch, types.ErrOperationCancelled, displayPath)
	}
	pipeline.options.Logger.Warn(logMessageSkippedFile, zap.String(logFieldPath, fileEntry.Path), zap.Error(fetchError))
	return fileOutcome{}, nil
}
