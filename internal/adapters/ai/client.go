package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/internal/adapters/config"
	"github.com/selivandex/situation-monitor/pkg/logger"
)

// Message is one chat message sent to the completion endpoint
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer sends prompt messages to an external AI completion service
// and returns the raw response text. Treated as unreliable and slow:
// callers must have a fail path producing a safe default.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	IsEnabled() bool
}

// Client implements Completer against the toolkit /agent/chat endpoint
type Client struct {
	baseURL string
	enabled bool
	client  *http.Client
}

// NewClient creates new completion client
func NewClient(cfg *config.AIConfig) *Client {
	return &Client{
		baseURL: cfg.ToolkitURL,
		enabled: cfg.ToolkitURL != "",
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// IsEnabled reports whether a toolkit URL is configured
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// Complete sends one chat completion request
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("AI service not configured")
	}

	endpoint, err := url.JoinPath(c.baseURL, "/agent/chat")
	if err != nil {
		return "", fmt.Errorf("invalid toolkit URL: %w", err)
	}

	reqBody := map[string]interface{}{
		"messages": messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("AI request failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
		Content string `json:"content"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	content := result.Content
	if len(result.Messages) > 0 {
		content = result.Messages[0].Content
	}

	logger.Debug("AI completion received",
		zap.Duration("latency", time.Since(startTime)),
		zap.Int("length", len(content)),
	)

	return content, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
