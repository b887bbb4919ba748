package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kotoba-tutor/internal/observability"
)

// ErrUpstreamUnavailable is returned when the completion service cannot be
// reached or rejects the request before producing any output.
var ErrUpstreamUnavailable = errors.New("completion service unavailable")

// Message is a single chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client calls an OpenAI-compatible chat-completions API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a completion client. baseURL points at the API root,
// e.g. https://api.openai.com/v1.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// No overall timeout: streamed completions legitimately run for
		// minutes. Callers bound the call through ctx.
		httpClient: &http.Client{},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete performs a non-streaming completion and returns the full text.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	resp, err := c.post(ctx, chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		observability.LLMRequestDuration.WithLabelValues("complete", req.Model, "error").Observe(time.Since(start).Seconds())
		return "", err
	}
	defer resp.Body.Close()

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		observability.LLMRequestDuration.WithLabelValues("complete", req.Model, "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("%w: decode: %v", ErrUpstreamUnavailable, err)
	}

	observability.LLMRequestDuration.WithLabelValues("complete", req.Model, "ok").Observe(time.Since(start).Seconds())

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstreamUnavailable)
	}
	return result.Choices[0].Message.Content, nil
}

// TextStream is a lazy, finite, non-restartable sequence of text fragments.
// Recv returns io.EOF once the sequence ends; Close releases the upstream
// connection and must always be called.
type TextStream interface {
	Recv() (string, error)
	Close() error
}

// Stream starts a streaming completion. A failure before the first fragment
// surfaces as ErrUpstreamUnavailable; a failure mid-stream ends the sequence.
func (c *Client) Stream(ctx context.Context, req Request) (TextStream, error) {
	start := time.Now()

	resp, err := c.post(ctx, chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		observability.LLMRequestDuration.WithLabelValues("stream", req.Model, "error").Observe(time.Since(start).Seconds())
		return nil, err
	}

	observability.LLMRequestDuration.WithLabelValues("stream", req.Model, "ok").Observe(time.Since(start).Seconds())
	observability.LLMStreamsActive.Inc()

	return &sseStream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

func (c *Client) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: upstream returned %d: %s", ErrUpstreamUnavailable, resp.StatusCode, string(detail))
	}

	return resp, nil
}

// sseStream reads server-sent completion fragments from the upstream body.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
	done    bool
}

// Recv returns the next text fragment. It returns io.EOF when the upstream
// signals completion, and the underlying read error if the connection drops
// mid-stream.
func (s *sseStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed keepalive noise rather than killing the stream.
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		return chunk.Choices[0].Delta.Content, nil
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close releases the upstream connection. Safe to call more than once.
func (s *sseStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	observability.LLMStreamsActive.Dec()
	return s.body.Close()
}
