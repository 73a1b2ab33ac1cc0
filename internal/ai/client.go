// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/telemetry"
)

const providerName = "ai-gateway"

// Sentinel error kinds surfaced to the handler boundary. The 429 and 402
// statuses from the gateway pass through as their own kinds so the caller
// can return them verbatim.
var (
	ErrNotConfigured   = errors.New("AI gateway key not configured")
	ErrRateLimited     = errors.New("AI gateway rate limit exceeded")
	ErrPaymentRequired = errors.New("AI gateway payment required")
)

// UpstreamError covers every other non-2xx gateway response. It carries an
// excerpt of the body for the 500 the handler returns.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI gateway returned status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	httpClient *http.Client
	url        string
	key        string
	model      string
	registry   *telemetry.Registry
}

func NewClient(url, key, model string, registry *telemetry.Registry) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		url:        url,
		key:        key,
		model:      model,
		registry:   registry,
	}
}

func (c *Client) Configured() bool {
	return c.key != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat-completion request and returns the assistant's
// raw text. A single upstream failure is surfaced immediately; there are
// no retries against the metered gateway.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPayload},
	})
}

// CompleteWithImage sends a vision-style request with the prompt text and a
// base64 data-URI image as content parts.
func (c *Client) CompleteWithImage(ctx context.Context, systemPrompt, userPrompt, imageDataURI string) (string, error) {
	parts := []map[string]any{
		{"type": "text", "text": userPrompt},
		{"type": "image_url", "image_url": map[string]string{"url": imageDataURI}},
	}
	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: parts},
	})
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.key)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(err.Error())
		return "", fmt.Errorf("AI gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.recordFailure(err.Error())
		return "", fmt.Errorf("failed to read AI gateway response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.recordFailure("rate limited")
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		c.recordFailure("payment required")
		return "", ErrPaymentRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		excerpt := string(respBody)
		if len(excerpt) > 300 {
			excerpt = excerpt[:300]
		}
		c.recordFailure(fmt.Sprintf("status %d", resp.StatusCode))
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: excerpt}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.recordFailure("unparsable response envelope")
		return "", fmt.Errorf("failed to parse AI gateway response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		c.recordFailure("empty choices")
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: "no completion choices returned"}
	}

	c.recordSuccess(time.Since(start))
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) recordSuccess(latency time.Duration) {
	if c.registry != nil {
		c.registry.RecordSuccess(providerName, latency)
	}
}

func (c *Client) recordFailure(msg string) {
	if c.registry != nil {
		c.registry.RecordFailure(providerName, msg)
	}
	slog.Warn("AI gateway call failed", "error", msg)
}
