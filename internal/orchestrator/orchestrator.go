// Package orchestrator owns the decision procedure that turns a question
// and a conversation context into one synthesized answer. It always runs
// retrieval, runs deep research when the policy enables it, and folds
// whatever evidence was gathered into a mandatory reasoning pass.
package orchestrator

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/examobuddy/answer-service/internal/capability"
	"github.com/examobuddy/answer-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Orchestrator coordinates the three capabilities for one question at a
// time. It holds no per-request state, so a single instance serves
// concurrent requests; each Answer call owns its own evidence.
type Orchestrator struct {
	retriever capability.Capability
	research  capability.Capability // nil when deep research is disabled by policy
	reasoner  capability.Capability
	logger    zerolog.Logger
}

// New creates an orchestrator over the given capabilities. retriever and
// reasoner are required; research may be nil, which disables the deep
// research step entirely.
func New(retriever, research, reasoner capability.Capability) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		research:  research,
		reasoner:  reasoner,
		logger:    observability.GetLogger().With().Str("component", "orchestrator").Logger(),
	}
}

// Answer produces one answer for the question, using contextString as prior
// conversation context. Retrieval and research failures degrade gracefully:
// the reasoner is invoked with whatever evidence was gathered. A reasoner
// failure is fatal and surfaces as ErrAnswerUnavailable. The caller's ctx
// cancels all in-flight capability calls.
func (o *Orchestrator) Answer(ctx context.Context, question, contextString string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrInvalidInput
	}

	metrics := observability.NewQuestionMetrics()
	metrics.RecordStart()

	ev := &evidence{contextString: contextString}

	// Retrieval and research are independent; run them concurrently.
	// Each goroutine writes only its own evidence field.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ev.passages = o.gatherPassages(gctx, question, metrics)
		return nil
	})

	if o.research != nil {
		g.Go(func() error {
			ev.researchText = o.gatherResearch(gctx, question, metrics)
			return nil
		})
	}

	// Goroutines absorb their own failures, so this only synchronizes.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		metrics.RecordEnd("unavailable")
		return "", err
	}

	metrics.RecordCapabilityStart(o.reasoner.Name())
	result, err := o.reasoner.Invoke(ctx, capability.Query{
		Question: question,
		Evidence: ev.bundle(),
	})
	if err != nil {
		metrics.RecordCapabilityEnd(o.reasoner.Name(), false)
		metrics.RecordEnd("unavailable")
		o.logCapabilityFailure(o.reasoner.Name(), err)
		return "", ErrAnswerUnavailable
	}
	metrics.RecordCapabilityEnd(o.reasoner.Name(), true)

	metrics.RecordEnd("answered")
	return result.ReasoningText, nil
}

// gatherPassages runs the retrieval capability; failures are absorbed and
// yield no passages
func (o *Orchestrator) gatherPassages(ctx context.Context, question string, metrics *observability.QuestionMetrics) []capability.Passage {
	metrics.RecordCapabilityStart(o.retriever.Name())
	result, err := o.retriever.Invoke(ctx, capability.Query{Question: question})
	if err != nil {
		metrics.RecordCapabilityEnd(o.retriever.Name(), false)
		o.logCapabilityFailure(o.retriever.Name(), err)
		return nil
	}
	metrics.RecordCapabilityEnd(o.retriever.Name(), true)
	metrics.RecordRetrievedPassages(len(result.Passages))
	return result.Passages
}

// gatherResearch runs the deep research capability; failures are absorbed
// and yield an empty research text
func (o *Orchestrator) gatherResearch(ctx context.Context, question string, metrics *observability.QuestionMetrics) string {
	metrics.RecordCapabilityStart(o.research.Name())
	result, err := o.research.Invoke(ctx, capability.Query{Question: question})
	if err != nil {
		metrics.RecordCapabilityEnd(o.research.Name(), false)
		o.logCapabilityFailure(o.research.Name(), err)
		return ""
	}
	metrics.RecordCapabilityEnd(o.research.Name(), true)
	return result.ResearchText
}

// logCapabilityFailure logs which capability failed and with which error
// kind, without leaking third-party response bodies past the adapter
func (o *Orchestrator) logCapabilityFailure(name string, err error) {
	event := o.logger.Warn().Str("capability", name)
	if capErr, ok := capability.AsError(err); ok {
		event = event.Str("kind", capErr.Kind.String())
		observability.RecordError(capErr.Kind.String(), name)
	} else {
		observability.RecordError("unknown", name)
	}
	event.Err(err).Msg("Capability invocation failed")
}
