package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/examobuddy/answer-service/internal/config"
)

const reasonerSystemPrompt = "You are a medical reasoning assistant."

// Reasoner applies structured medical reasoning over a question and its
// assembled evidence through the OpenRouter chat completions API. It is the
// one capability the orchestrator cannot answer without, so it is
// single-shot: its caller owns any retry policy.
type Reasoner struct {
	client *chatClient
}

// NewReasoner creates the OpenRouter reasoning adapter from config
func NewReasoner(cfg *config.Config) *Reasoner {
	return &Reasoner{
		client: newChatClient(
			"medical_reasoning",
			cfg.OpenRouterURL,
			cfg.OpenRouterAPIKey,
			cfg.OpenRouterModel,
			time.Duration(cfg.RequestTimeoutMs)*time.Millisecond,
		),
	}
}

// Name implements Capability
func (r *Reasoner) Name() string {
	return "medical_reasoning"
}

// Description implements Capability
func (r *Reasoner) Description() string {
	return "Apply medical reasoning to analyze a question against gathered evidence"
}

// Invoke sends the question plus evidence to the reasoning model and
// returns the generated text as a ResultReasoning ToolResult
func (r *Reasoner) Invoke(ctx context.Context, q Query) (*ToolResult, error) {
	text, err := r.client.complete(ctx, []chatMessage{
		{Role: "system", Content: reasonerSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Question: %s\n\nContext: %s", q.Question, q.Evidence)},
	})
	if err != nil {
		return nil, err
	}

	return &ToolResult{Kind: ResultReasoning, ReasoningText: text}, nil
}
