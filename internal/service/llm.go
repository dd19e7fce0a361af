package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/internal/logger"
)

// ErrProviderNotConfigured is returned when no API key is available for the generation provider
var ErrProviderNotConfigured = errors.New("generation provider not configured")

// ProviderConfig configures the chat-completions client
type ProviderConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Message is a single chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the chat-completions request body
type ChatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// ChatResponse is the subset of the chat-completions response we read
type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIProvider talks to an OpenAI-compatible chat-completions endpoint.
// The API key never leaves this process.
type OpenAIProvider struct {
	client *resty.Client
	cfg    ProviderConfig
	log    *zap.Logger
}

var _ CompletionProvider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(cfg ProviderConfig, log *zap.Logger) *OpenAIProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &OpenAIProvider{
		client: client,
		cfg:    cfg,
		log:    logger.Component(log, "llm"),
	}
}

// Complete sends one chat-completions call and returns the raw assistant text
func (p *OpenAIProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	if p.cfg.APIKey == "" {
		return "", ErrProviderNotConfigured
	}

	req := ChatRequest{
		Model: p.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    p.cfg.Temperature,
		MaxTokens:      p.cfg.MaxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	start := time.Now()
	var out ChatResponse
	var apiErr chatError
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to call generation provider: %w", err)
	}

	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return "", fmt.Errorf("generation provider returned status %d: %s", resp.StatusCode(), msg)
	}

	if len(out.Choices) == 0 {
		return "", errors.New("generation provider returned no choices")
	}

	p.log.Debug("completion received",
		zap.String("model", p.cfg.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("total_tokens", out.Usage.TotalTokens),
		zap.String("finish_reason", out.Choices[0].FinishReason),
	)
	return out.Choices[0].Message.Content, nil
}
