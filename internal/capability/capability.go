// Package capability defines the uniform contract the orchestrator uses to
// invoke its three capabilities (passage retrieval, deep research, medical
// reasoning) and the adapters implementing it.
package capability

import (
	"context"
	"errors"
	"fmt"
)

// Query carries the inputs of one capability invocation. Question is always
// set; Evidence is only consumed by the reasoning capability.
type Query struct {
	Question string
	Evidence string
}

// Passage is one retrieved reference snippet with its relevance score.
// Scores are in [0,1], descending within a result set.
type Passage struct {
	Text  string
	Score float64
}

// ToolResult is the output of one capability invocation. Exactly one field
// group is populated, selected by Kind. Results are scoped to a single
// orchestration run and never shared across runs.
type ToolResult struct {
	Kind ResultKind

	Passages      []Passage // Kind == ResultPassages
	ResearchText  string    // Kind == ResultResearch
	ReasoningText string    // Kind == ResultReasoning
}

// ResultKind tags which variant of ToolResult is populated
type ResultKind int

const (
	ResultPassages ResultKind = iota
	ResultResearch
	ResultReasoning
)

// Capability is the interface all adapters implement. Invoke either returns
// a ToolResult or fails with an *Error carrying a diagnosable kind.
type Capability interface {
	// Name returns the unique identifier for this capability
	Name() string

	// Description returns a human-readable summary used for introspection
	Description() string

	// Invoke executes the capability. Implementations performing network
	// I/O must honor ctx cancellation and enforce their own per-call
	// timeout.
	Invoke(ctx context.Context, q Query) (*ToolResult, error)
}

// ErrorKind classifies adapter failures so the orchestrator can decide
// recoverable vs fatal without inspecting third-party error bodies.
type ErrorKind int

const (
	KindTimeout ErrorKind = iota
	KindUnauthorized
	KindMalformedResponse
	KindUnreachable
)

// String returns the kind name for logs
func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindMalformedResponse:
		return "malformed_response"
	case KindUnreachable:
		return "unreachable"
	}
	return "unknown"
}

// Error is the uniform failure type returned by adapters
type Error struct {
	Capability string
	Kind       ErrorKind
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("capability %s failed (%s): %v", e.Capability, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a capability failure of the given kind
func NewError(capability string, kind ErrorKind, err error) *Error {
	return &Error{Capability: capability, Kind: kind, Err: err}
}

// AsError extracts a *Error from err, if present
func AsError(err error) (*Error, bool) {
	var capErr *Error
	if errors.As(err, &capErr) {
		return capErr, true
	}
	return nil, false
}
