package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// chatMessage is one message in an OpenAI-style chat completion request
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request payload shared by the Perplexity and
// OpenRouter chat completion endpoints
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatResponse holds the subset of the response we consume:
// choices[0].message.content
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatClient posts chat completion requests to one OpenAI-compatible
// endpoint with bearer auth and a per-call timeout
type chatClient struct {
	name       string
	url        string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

func newChatClient(name, url, apiKey, model string, timeout time.Duration) *chatClient {
	return &chatClient{
		name:    name,
		url:     url,
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		// Timeout is enforced per call via context so cancellation from
		// the caller composes with it.
		httpClient: &http.Client{},
	}
}

// complete sends the messages and returns choices[0].message.content.
// Failures are returned as *Error with a diagnosable kind; raw response
// bodies never escape this function.
func (c *chatClient) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewError(c.name, KindMalformedResponse, fmt.Errorf("failed to marshal request: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", NewError(c.name, KindUnreachable, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", NewError(c.name, classifyTransportError(err), fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused; the body is never
		// surfaced to callers.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		kind := KindUnreachable
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = KindUnauthorized
		}
		return "", NewError(c.name, kind, fmt.Errorf("endpoint returned status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", NewError(c.name, KindMalformedResponse, fmt.Errorf("failed to decode response: %w", err))
	}

	if len(parsed.Choices) == 0 {
		return "", NewError(c.name, KindMalformedResponse, fmt.Errorf("response has no choices"))
	}

	return parsed.Choices[0].Message.Content, nil
}

// classifyTransportError maps a transport-level failure to an ErrorKind
func classifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnreachable
}
