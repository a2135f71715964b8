package operation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/temirov/repoflat/internal/types"
)

var testReference = types.RepositoryReference{Owner: "octo", Repository: "demo"}

func TestBeginRefusesWhileBusy(t *testing.T) {
	state := NewState()
	first, err := state.Begin(context.Background(), types.ExportKindRepository, testReference)
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !state.Busy() {
		t.Fatalf("expected state to be busy")
	}
	if _, secondErr := state.Begin(context.Background(), types.ExportKindIssues, testReference); !errors.Is(secondErr, types.ErrOperationInFlight) {
		t.Fatalf("expected ErrOperationInFlight, got %v", secondErr)
	}

	state.Complete(first, &Result{Kind: types.ExportKindRepository, Reference: testReference, Content: "doc"})
	if state.Busy() {
		t.Fatalf("expected state to be idle after completion")
	}
	if first.Context().Err() == nil {
		t.Fatalf("expected completed operation context to be released")
	}
	if _, againErr := state.Begin(context.Background(), types.ExportKindIssues, testReference); againErr != nil {
		t.Fatalf("expected a new operation after completion, got %v", againErr)
	}
}

func TestCompleteKeepsPreviousResultOnFailure(t *testing.T) {
	state := NewState()
	first, _ := state.Begin(context.Background(), types.ExportKindRepository, testReference)
	state.Complete(first, &Result{Content: "first"})

	second, _ := state.Begin(context.Background(), types.ExportKindIssues, testReference)
	state.Complete(second, nil)
	if last := state.LastResult(); last == nil || last.Content != "first" {
		t.Fatalf("expected previous result to survive a failed operation, got %+v", last)
	}

	state.Complete(second, &Result{Content: "stale"})
	if state.LastResult().Content != "first" {
		t.Fatalf("expected completion of a finished operation to be ignored")
	}
}

func TestCancelCurrentCancelsContext(t *testing.T) {
	state := NewState()
	if state.CancelCurrent() {
		t.Fatalf("expected no operation to cancel")
	}
	started, _ := state.Begin(context.Background(), types.ExportKindRepository, testReference)
	if !state.CancelCurrent() {
		t.Fatalf("expected live operation to be cancelled")
	}
	if !errors.Is(started.Context().Err(), context.Canceled) {
		t.Fatalf("expected cancelled context, got %v", started.Context().Err())
	}
}

func TestOperationIdentifiers(t *testing.T) {
	state := NewState()
	started, _ := state.Begin(context.Background(), types.ExportKindRepository, testReference)
	if _, err := uuid.Parse(started.ID); err != nil {
		t.Fatalf("expected uuid identifier, got %q", started.ID)
	}
	if len(started.ShortID()) != shortIdentifierLength || started.ShortID() != started.ID[:shortIdentifierLength] {
		t.Fatalf("unexpected short identifier %q", started.ShortID())
	}
	if started.Kind != types.ExportKindRepository || started.Reference != testReference {
		t.Fatalf("unexpected operation metadata %+v", started)
	}
}
