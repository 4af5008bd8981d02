package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/brad-luo/web-tools/internal/config"
	"github.com/brad-luo/web-tools/internal/pkg/ulid"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	Model    string        `json:"model,omitempty"`
}

type upstreamChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

// ChatRelay forwards chat completions to an OpenAI-compatible upstream.
type ChatRelay interface {
	Enabled() bool
	// Forward sends the conversation upstream. The caller owns the response body.
	Forward(ctx context.Context, req *ChatRequest) (*http.Response, error)
}

type chatRelay struct {
	baseURL      string
	apiKey       string
	defaultModel string
	maxTokens    int
	temperature  float64
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewChatRelay creates a relay from configuration.
func NewChatRelay(cfg config.ChatConfig, logger *slog.Logger) ChatRelay {
	return NewChatRelayWithClient(cfg, logger, nil)
}

// NewChatRelayWithClient creates a relay with a custom HTTP client.
// This is primarily used for testing.
func NewChatRelayWithClient(cfg config.ChatConfig, logger *slog.Logger, httpClient *http.Client) ChatRelay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &chatRelay{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		defaultModel: cfg.DefaultModel,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		httpClient:   httpClient,
		logger:       logger,
	}
}

func (c *chatRelay) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// model keeps OpenAI model names and maps anything else to the default.
func (c *chatRelay) model(requested string) string {
	if strings.HasPrefix(requested, "gpt-") || strings.HasPrefix(requested, "o1-") {
		return requested
	}
	return c.defaultModel
}

func (c *chatRelay) Forward(ctx context.Context, req *ChatRequest) (*http.Response, error) {
	if !c.Enabled() {
		return nil, ErrUpstreamUnavailable
	}

	body, err := json.Marshal(upstreamChatRequest{
		Model:       c.model(req.Model),
		Messages:    req.Messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := ulid.New()
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("X-Client-Request-Id", requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("chat upstream failed",
			slog.String("chat_request_id", requestID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	c.logger.Info("chat forwarded",
		slog.String("chat_request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Int("messages", len(req.Messages)),
	)
	return resp, nil
}

// Compile-time check to ensure chatRelay implements ChatRelay.
var _ ChatRelay = (*chatRelay)(nil)
