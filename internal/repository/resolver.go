package repository

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoflat/internal/types"
)

const (
	errorNotAccessibleFormat    = "%w: could not access repository %q; verify the repository exists and is public"
	errorNoFilesInRepository    = "%w: no files found in repository %q"
	errorNoFilesInSubdirectory  = "%w: no files found in subdirectory %q of repository %q"
	errorCancelledDuringProbing = "%w: branch probing for %q"
)

var defaultBranchCandidates = []string{"main", "master", "dev", "develop"}

// TreeLister lists the recursive tree of a repository at a branch.
type TreeLister interface {
	ListTree(ctx context.Context, owner string, repository string, branch string) ([]types.FileEntry, error)
}

// Resolver probes candidate branches until one yields a non-empty tree.
type Resolver struct {
	lister TreeLister
	logger *zap.Logger
}

// NewResolver builds a Resolver. A nil logger disables logging.
func NewResolver(lister TreeLister, logger *zap.Logger) Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Resolver{lister: lister, logger: logger}
}

// CandidateBranches returns the probing order. The hint is tried first and is not de-duplicated.
func CandidateBranches(hint string) []string {
	candidates := make([]string, 0, len(defaultBranchCandidates)+1)
	if hint != "" {
		candidates = append(candidates, hint)
	}
	return append(candidates, defaultBranchCandidates...)
}

// Resolve finds the first candidate branch with a non-empty tree and returns its in-scope blobs.
func (resolver Resolver) Resolve(ctx context.Context, reference types.RepositoryReference) (types.ResolvedRepository, error) {
	repositoryName := reference.Owner + "/" + reference.Repository
	var acceptedBranch string
	var acceptedEntries []types.FileEntry

	for _, candidateBranch := range CandidateBranches(reference.Branch) {
		if ctx.Err() != nil {
			return types.ResolvedRepository{}, fmt.Errorf(errorCancelledDuringProbing, types.ErrOperationCancelled, repositoryName)
		}
		entries, listError := resolver.lister.ListTree(ctx, reference.Owner, reference.Repository, candidateBranch)
		if listError != nil {
			if types.IsCancellation(listError) || ctx.Err() != nil {
				return types.ResolvedRepository{}, fmt.Errorf(errorCancelledDuringProbing, types.ErrOperationCancelled, repositoryName)
			}
			resolver.logger.Debug("branch probe failed", zap.String("branch", candidateBranch), zap.Error(listError))
			continue
		}
		if len(entries) == 0 {
			resolver.logger.Debug("branch probe returned an empty tree", zap.String("branch", candidateBranch))
			continue
		}
		acceptedBranch = candidateBranch
		acceptedEntries = entries
		break
	}

	if acceptedBranch == "" {
		return types.ResolvedRepository{}, fmt.Errorf(errorNotAccessibleFormat, types.ErrRepositoryNotAccessible, repositoryName)
	}

	scopedFiles := ScopeEntries(acceptedEntries, reference.Subdirectory)
	if len(scopedFiles) == 0 {
		if reference.Subdirectory != "" {
			return types.ResolvedRepository{}, fmt.Errorf(errorNoFilesInSubdirectory, types.ErrNoFilesInScope, reference.Subdirectory, repositoryName)
		}
		return types.ResolvedRepository{}, fmt.Errorf(errorNoFilesInRepository, types.ErrNoFilesInScope, repositoryName)
	}

	if reference.HasBranch() && acceptedBranch != reference.Branch {
		resolver.logger.Warn("requested branch unavailable, using fallback",
			zap.String("requested", reference.Branch),
			zap.String("branch", acceptedBranch))
	}
	resolver.logger.Debug("branch resolved", zap.String("branch", acceptedBranch), zap.Int("files", len(scopedFiles)))
	return types.ResolvedRepository{
		Reference: reference,
		Branch:    acceptedBranch,
		Files:     scopedFiles,
	}, nil
}

// ScopeEntries keeps blob entries, restricted to the subdirectory when one is set.
func ScopeEntries(entries []types.FileEntry, subdirectory string) []types.FileEntry {
	prefix := ""
	if subdirectory != "" {
		prefix = subdirectory + "/"
	}
	scoped := make([]types.FileEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsBlob() {
			continue
		}
		if prefix != "" && !strings.HasPrefix(entry.Path, prefix) {
			continue
		}
		scoped = append(scoped, entry)
	}
	return scoped
}
