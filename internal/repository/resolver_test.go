package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repoflat/internal/types"
)

type stubTreeLister struct {
	trees   map[string][]types.FileEntry
	errors  map[string]error
	probed  []string
	onProbe func(branch string)
}

func (lister *stubTreeLister) ListTree(ctx context.Context, owner string, repository string, branch string) ([]types.FileEntry, error) {
	lister.probed = append(lister.probed, branch)
	if lister.onProbe != nil {
		lister.onProbe(branch)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if probeError, exists := lister.errors[branch]; exists {
		return nil, probeError
	}
	return lister.trees[branch], nil
}

func TestCandidateBranches(t *testing.T) {
	if got := CandidateBranches(""); !reflect.DeepEqual(got, []string{"main", "master", "dev", "develop"}) {
		t.Fatalf("unexpected default candidates %v", got)
	}
	if got := CandidateBranches("main"); !reflect.DeepEqual(got, []string{"main", "main", "master", "dev", "develop"}) {
		t.Fatalf("hint must be tried first without de-duplication, got %v", got)
	}
}

func TestResolverFallsBackAcrossBranches(t *testing.T) {
	lister := &stubTreeLister{
		trees: map[string][]types.FileEntry{
			"main":   {},
			"master": {{Path: "README.md", Kind: "blob", Size: 10}, {Path: "docs", Kind: "tree"}},
		},
		errors: map[string]error{"feature": errors.New("404")},
	}
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	resolver := NewResolver(lister, zap.New(observedCore))
	resolved, err := resolver.Resolve(context.Background(), types.RepositoryReference{Owner: "octo", Repository: "widgets", Branch: "feature"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if resolved.Branch != "master" {
		t.Fatalf("expected master, got %q", resolved.Branch)
	}
	if !reflect.DeepEqual(lister.probed, []string{"feature", "main", "master"}) {
		t.Fatalf("unexpected probe order %v", lister.probed)
	}
	if len(resolved.Files) != 1 || resolved.Files[0].Path != "README.md" {
		t.Fatalf("expected only blob entries, got %+v", resolved.Files)
	}
	fallbackWarnings := observedLogs.FilterField(zap.String("requested", "feature")).All()
	if len(fallbackWarnings) != 1 || fallbackWarnings[0].ContextMap()["branch"] != "master" {
		t.Fatalf("expected one fallback warning naming master, got %+v", observedLogs.All())
	}
}

func TestResolverDoesNotWarnWithoutRequestedBranch(t *testing.T) {
	lister := &stubTreeLister{trees: map[string][]types.FileEntry{
		"master": {{Path: "README.md", Kind: "blob", Size: 10}},
	}}
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	if _, err := NewResolver(lister, zap.New(observedCore)).Resolve(context.Background(), types.RepositoryReference{Owner: "octo", Repository: "widgets"}); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if observedLogs.Len() != 0 {
		t.Fatalf("expected no warnings for default probing, got %+v", observedLogs.All())
	}
}

func TestResolverReportsInaccessibleRepository(t *testing.T) {
	lister := &stubTreeLister{errors: map[string]error{
		"main":    errors.New("boom"),
		"master":  errors.New("boom"),
		"dev":     errors.New("boom"),
		"develop": errors.New("boom"),
	}}
	_, err := NewResolver(lister, nil).Resolve(context.Background(), types.RepositoryReference{Owner: "octo", Repository: "widgets"})
	if !errors.Is(err, types.ErrRepositoryNotAccessible) {
		t.Fatalf("expected ErrRepositoryNotAccessible, got %v", err)
	}
	if len(lister.probed) != 4 {
		t.Fatalf("expected all four candidates to be probed, got %v", lister.probed)
	}
}

func TestResolverScopesSubdirectory(t *testing.T) {
	lister := &stubTreeLister{trees: map[string][]types.FileEntry{
		"main": {
			{Path: "pkg/core/a.go", Kind: "blob"},
			{Path: "pkg/corelib/b.go", Kind: "blob"},
			{Path: "README.md", Kind: "blob"},
		},
	}}
	resolved, err := NewResolver(lister, nil).Resolve(context.Background(), types.RepositoryReference{Owner: "octo", Repository: "widgets", Subdirectory: "pkg/core"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(resolved.Files) != 1 || resolved.Files[0].Path != "pkg/core/a.go" {
		t.Fatalf("unexpected scoped files %+v", resolved.Files)
	}

	_, missingErr := NewResolver(lister, nil).Resolve(context.Background(), types.RepositoryReference{Owner: "octo", Repository: "widgets", Subdirectory: "missing"})
	if !errors.Is(missingErr, types.ErrNoFilesInScope) {
		t.Fatalf("expected ErrNoFilesInScope, got %v", missingErr)
	}
}

func TestResolverAbortsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lister := &stubTreeLister{
		trees:   map[string][]types.FileEntry{"master": {{Path: "a", Kind: "blob"}}},
		onProbe: func(string) { cancel() },
	}
	_, err := NewResolver(lister, nil).Resolve(ctx, types.RepositoryReference{Owner: "octo", Repository: "widgets"})
	if !errors.Is(err, types.ErrOperationCancelled) {
		t.Fatalf("expected ErrOperationCancelled, got %v", err)
	}
	if len(lister.probed) != 1 {
		t.Fatalf("cancellation must not fall through to the next candidate, probed %v", lister.probed)
	}
}
