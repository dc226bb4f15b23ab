package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	CohereBaseURL = "https://api.cohere.com"
	serviceName   = "cohere"
)

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// CohereAdapter implements domain.TextGenerator with the Cohere chat endpoint.
type CohereAdapter struct {
	opts    Options
	client  *http.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewCohereAdapter(opts Options, m *metrics.Metrics, logger *zap.Logger) *CohereAdapter {
	if opts.BaseURL == "" {
		opts.BaseURL = CohereBaseURL
	}
	if opts.Model == "" {
		opts.Model = "command-a-03-2025"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CohereAdapter{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		metrics: m,
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Message     string        `json:"message"`
	ChatHistory []chatMessage `json:"chat_history,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}

// Generate sends one chat call with system as the SYSTEM history entry and returns the trimmed reply.
func (c *CohereAdapter) Generate(ctx context.Context, system, prompt string) (string, error) {
	payload := chatRequest{
		Model:       c.opts.Model,
		Message:     prompt,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	}
	if system != "" {
		payload.ChatHistory = []chatMessage{{Role: "SYSTEM", Message: system}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.opts.BaseURL, "/")+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(serviceName, "chat", 0, time.Since(start))
		return "", fmt.Errorf("%w: cohere chat: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(serviceName, "chat", resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result chatResponse
	if resp.StatusCode >= 400 {
		_ = json.Unmarshal(respBody, &result)
		msg := result.Message
		if msg == "" {
			msg = string(respBody)
		}
		return "", &domain.UpstreamStatusError{Service: serviceName, StatusCode: resp.StatusCode, Body: msg}
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode cohere chat response: %w", err)
	}

	c.logger.Debug("Cohere chat completed",
		zap.String("model", c.opts.Model),
		zap.Int("chars", len(result.Text)),
		zap.Duration("took", time.Since(start)),
	)
	return strings.TrimSpace(result.Text), nil
}
