// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/telemetry"
)

const testModel = "google/gemini-2.5-flash"

func gatewayStub(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		if req["model"] != testModel {
			t.Errorf("expected model %q, got %v", testModel, req["model"])
		}

		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]string{"content": reply}},
				},
			})
		} else {
			w.Write([]byte(reply))
		}
	}))
}

func TestCompleteSuccess(t *testing.T) {
	ts := gatewayStub(t, http.StatusOK, `{"is_threat": false}`)
	defer ts.Close()

	client := ai.NewClient(ts.URL, "test-key", testModel, telemetry.NewRegistry())
	got, err := client.Complete(context.Background(), "system", "payload")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"is_threat": false}` {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestCompleteNotConfigured(t *testing.T) {
	client := ai.NewClient("http://unused.invalid", "", testModel, nil)
	_, err := client.Complete(context.Background(), "system", "payload")
	if !errors.Is(err, ai.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCompleteRateLimited(t *testing.T) {
	ts := gatewayStub(t, http.StatusTooManyRequests, "slow down")
	defer ts.Close()

	client := ai.NewClient(ts.URL, "test-key", testModel, nil)
	_, err := client.Complete(context.Background(), "system", "payload")
	if !errors.Is(err, ai.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestCompletePaymentRequired(t *testing.T) {
	ts := gatewayStub(t, http.StatusPaymentRequired, "add credits")
	defer ts.Close()

	client := ai.NewClient(ts.URL, "test-key", testModel, nil)
	_, err := client.Complete(context.Background(), "system", "payload")
	if !errors.Is(err, ai.ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	ts := gatewayStub(t, http.StatusBadGateway, "gateway exploded")
	defer ts.Close()

	client := ai.NewClient(ts.URL, "test-key", testModel, nil)
	_, err := client.Complete(context.Background(), "system", "payload")

	var upstream *ai.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", upstream.StatusCode)
	}
	if upstream.Body != "gateway exploded" {
		t.Errorf("expected body excerpt, got %q", upstream.Body)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer ts.Close()

	client := ai.NewClient(ts.URL, "test-key", testModel, nil)
	_, err := client.Complete(context.Background(), "system", "payload")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestCompleteRecordsTelemetry(t *testing.T) {
	ts := gatewayStub(t, http.StatusOK, "ok")
	defer ts.Close()

	registry := telemetry.NewRegistry()
	client := ai.NewClient(ts.URL, "test-key", testModel, registry)

	if _, err := client.Complete(context.Background(), "system", "payload"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := registry.GetStats("ai-gateway")
	if stats.SuccessCount != 1 {
		t.Errorf("expected 1 recorded success, got %d", stats.SuccessCount)
	}
	if stats.State != telemetry.Healthy {
		t.Errorf("expected healthy state, got %s", stats.State)
	}
}

func TestCompleteWithImageSendsParts(t *testing.T) {
	var captured map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "seen"}},
			},
		})
	}))
	defer ts.Close()

	client := ai.NewClient(ts.URL, "test-key", testModel, nil)
	got, err := client.CompleteWithImage(context.Background(), "system", "look at this", "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "seen" {
		t.Errorf("unexpected reply %q", got)
	}

	messages, ok := captured["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %v", captured["messages"])
	}
	userMsg := messages[1].(map[string]any)
	parts, ok := userMsg["content"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("expected 2 content parts, got %v", userMsg["content"])
	}
	imagePart := parts[1].(map[string]any)
	if imagePart["type"] != "image_url" {
		t.Errorf("expected image_url part, got %v", imagePart["type"])
	}
}
