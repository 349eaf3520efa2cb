package capability

import (
	"context"
	"errors"
	"time"

	"github.com/examobuddy/answer-service/internal/config"
	"github.com/examobuddy/answer-service/internal/observability"
	"github.com/examobuddy/answer-service/internal/resilience"
)

// Research performs deep research through the Perplexity chat completions
// API. Its failures are always recoverable from the orchestrator's point of
// view, so the adapter is free to shield the upstream service with a
// circuit breaker and a small bounded retry for transient network errors.
type Research struct {
	client  *chatClient
	breaker *resilience.CircuitBreaker
	retry   *resilience.RetryConfig
}

// NewResearch creates the Perplexity research adapter from config
func NewResearch(cfg *config.Config) *Research {
	breaker := resilience.NewCircuitBreaker(
		"perplexity",
		cfg.CircuitBreakerMaxFailures,
		time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second,
	)
	breaker.OnStateChange(func(name string, state resilience.CircuitState) {
		observability.UpdateCircuitBreakerState(name, int(state))
		if state == resilience.StateOpen {
			observability.IncrementCircuitBreakerFailures(name)
		}
	})

	return &Research{
		client: newChatClient(
			"deep_research",
			cfg.PerplexityURL,
			cfg.PerplexityAPIKey,
			cfg.PerplexityModel,
			time.Duration(cfg.RequestTimeoutMs)*time.Millisecond,
		),
		breaker: breaker,
		retry: &resilience.RetryConfig{
			MaxAttempts:       cfg.ResearchRetryMaxAttempts,
			InitialBackoff:    time.Duration(cfg.ResearchRetryBackoff) * time.Millisecond,
			MaxBackoff:        5 * time.Second,
			BackoffMultiplier: 2.0,
		},
	}
}

// Name implements Capability
func (r *Research) Name() string {
	return "deep_research"
}

// Description implements Capability
func (r *Research) Description() string {
	return "Perform deep research on medical topics via the Perplexity API"
}

// Invoke sends q.Question to the research endpoint and returns the response
// text as a ResultResearch ToolResult
func (r *Research) Invoke(ctx context.Context, q Query) (*ToolResult, error) {
	var text string

	call := func() error {
		return r.breaker.Call(func() error {
			var err error
			text, err = r.client.complete(ctx, []chatMessage{
				{Role: "user", Content: q.Question},
			})
			return err
		})
	}

	err := resilience.Retry(ctx, call, r.retry, isTransient)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, NewError(r.Name(), KindUnreachable, err)
		}
		if capErr, ok := AsError(err); ok {
			return nil, capErr
		}
		return nil, NewError(r.Name(), KindUnreachable, err)
	}

	return &ToolResult{Kind: ResultResearch, ResearchText: text}, nil
}

// isTransient reports whether a failed research attempt is worth retrying.
// Auth and parse failures will not improve on retry; an open circuit means
// the service is being shielded and should not be probed harder.
func isTransient(err error) bool {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}
	if capErr, ok := AsError(err); ok {
		return capErr.Kind == KindTimeout || capErr.Kind == KindUnreachable
	}
	return false
}
