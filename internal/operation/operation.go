// Package operation models one export run: its identity, cancellation and the single-flight slot
// that remembers the last completed result.
package operation

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/temirov/repoflat/internal/types"
)

const shortIdentifierLength = 8

// Operation is created fresh for every export and threaded through every collaborator call.
type Operation struct {
	ID        string
	Kind      string
	Reference types.RepositoryReference
	ctx       context.Context
	cancel    context.CancelFunc
}

// Context returns the context every network call of this operation must use.
func (operation *Operation) Context() context.Context {
	return operation.ctx
}

// ShortID returns the first characters of the identifier for log fields.
func (operation *Operation) ShortID() string {
	if len(operation.ID) <= shortIdentifierLength {
		return operation.ID
	}
	return operation.ID[:shortIdentifierLength]
}

// Result is a finished export ready for persistence.
type Result struct {
	Kind      string
	Reference types.RepositoryReference
	Content   string
}

// State admits one live operation at a time and keeps the last completed result.
type State struct {
	mutex      sync.Mutex
	current    *Operation
	lastResult *Result
}

// NewState returns an idle State.
func NewState() *State {
	return &State{}
}

// Begin starts an operation derived from parent. It refuses while another operation is live.
func (state *State) Begin(parent context.Context, kind string, reference types.RepositoryReference) (*Operation, error) {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	if state.current != nil {
		return nil, types.ErrOperationInFlight
	}
	operationContext, cancel := context.WithCancel(parent)
	started := &Operation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Reference: reference,
		ctx:       operationContext,
		cancel:    cancel,
	}
	state.current = started
	return started, nil
}

// Complete ends operation. A non-nil result replaces the last result; failed or cancelled
// operations pass nil and leave the previous result untouched.
func (state *State) Complete(finished *Operation, result *Result) {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	if finished == nil || state.current != finished {
		return
	}
	finished.cancel()
	state.current = nil
	if result != nil {
		state.lastResult = result
	}
}

// CancelCurrent cancels the live operation, if any.
func (state *State) CancelCurrent() bool {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	if state.current == nil {
		return false
	}
	state.current.cancel()
	return true
}

// Busy reports whether an operation is live.
func (state *State) Busy() bool {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.current != nil
}

// LastResult returns the most recent completed result, or nil.
func (state *State) LastResult() *Result {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.lastResult
}
