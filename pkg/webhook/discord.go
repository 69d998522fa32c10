// Package webhook posts structured messages to a Discord webhook. Posting is
// fire-and-forget: no part of the response body is relied upon beyond the
// status code.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sink posts a single structured message to an external channel
type Sink interface {
	Post(ctx context.Context, embed Embed) error
}

// Embed is a Discord message embed
type Embed struct {
	Title     string  `json:"title"`
	Color     int     `json:"color"`
	Fields    []Field `json:"fields"`
	Timestamp string  `json:"timestamp"`
	Footer    Footer  `json:"footer"`
}

// Field is one name/value block inside an embed
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Footer is the embed footer line
type Footer struct {
	Text string `json:"text"`
}

// DiscordClient posts embeds to a configured Discord webhook URL
type DiscordClient struct {
	url        string
	httpClient *http.Client
}

// NewDiscordClient creates a Discord webhook client. An empty URL yields a
// client whose Post reports ErrNotConfigured.
func NewDiscordClient(url string) *DiscordClient {
	return &DiscordClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ErrNotConfigured is returned when no webhook URL is set
var ErrNotConfigured = fmt.Errorf("webhook URL is not configured")

// Post sends one embed to the webhook
func (c *DiscordClient) Post(ctx context.Context, embed Embed) error {
	if c.url == "" {
		return ErrNotConfigured
	}

	payload := map[string]interface{}{
		"embeds": []Embed{embed},
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// MockSink records posted embeds for testing
type MockSink struct {
	Posted []Embed
	Err    error
}

// NewMockSink creates a recording Sink
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Post records the embed
func (s *MockSink) Post(_ context.Context, embed Embed) error {
	if s.Err != nil {
		return s.Err
	}
	s.Posted = append(s.Posted, embed)
	return nil
}
