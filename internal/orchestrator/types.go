package orchestrator

import (
	"errors"
	"strings"

	"github.com/examobuddy/answer-service/internal/capability"
)

var (
	// ErrInvalidInput is returned for empty or whitespace-only questions,
	// before any capability is invoked
	ErrInvalidInput = errors.New("question must not be empty")

	// ErrAnswerUnavailable is returned when the reasoning capability
	// fails; retrieval and research failures never surface it on their own
	ErrAnswerUnavailable = errors.New("answer unavailable")
)

// evidence accumulates the partial results of one orchestration run. It is
// owned by a single run and never shared across runs.
type evidence struct {
	passages      []capability.Passage
	researchText  string
	contextString string
}

// bundle renders the gathered evidence into the text handed to the
// reasoner: retrieved passages first, then research findings, then prior
// conversation context. Empty sections are omitted.
func (e *evidence) bundle() string {
	var sections []string

	if len(e.passages) > 0 {
		parts := make([]string, 0, len(e.passages))
		for _, p := range e.passages {
			parts = append(parts, p.Text)
		}
		sections = append(sections, strings.Join(parts, "\n\n"))
	}

	if e.researchText != "" {
		sections = append(sections, e.researchText)
	}

	if e.contextString != "" {
		sections = append(sections, e.contextString)
	}

	return strings.Join(sections, "\n\n")
}
