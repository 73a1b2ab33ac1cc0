// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/store"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/validate"

	"github.com/gin-gonic/gin"
)

const (
	phishingSystemPrompt = `You are a phishing detection expert. Analyze the given message content for phishing indicators: urgency pressure, credential harvesting, spoofed senders, suspicious links, payment lures.
Respond ONLY with a JSON object of this exact shape:
{"status": "safe"|"suspicious"|"phishing", "confidence": number 0-100, "threat_indicators": [string], "detected_urls": [string], "explanation": string}`

	maxPhishingContent = 5000
	previewLength      = 200
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

type PhishingHandler struct {
	Store *store.Store
	AI    *ai.Client
}

func NewPhishingHandler(st *store.Store, aiClient *ai.Client) *PhishingHandler {
	return &PhishingHandler{Store: st, AI: aiClient}
}

type phishingVerdict struct {
	Status           string   `json:"status"`
	Confidence       int      `json:"confidence"`
	ThreatIndicators []string `json:"threat_indicators"`
	DetectedURLs     []string `json:"detected_urls"`
	Explanation      string   `json:"explanation"`
}

// AnalyzePhishing classifies submitted content. URLs found by the local
// regexp are merged with the model's list, and a non-safe verdict feeds
// the daily analytics aggregate.
func (h *PhishingHandler) AnalyzePhishing(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	content = validate.Truncate(content, maxPhishingContent)

	raw, err := h.AI.Complete(c.Request.Context(), phishingSystemPrompt, content)
	if err != nil {
		respondAIError(c, err)
		return
	}

	verdict := ai.DecodeOrFallback(raw, phishingVerdict{
		Status:           models.ScanStatusSuspicious,
		Confidence:       50,
		ThreatIndicators: []string{"Automated analysis was inconclusive"},
		Explanation:      "The content could not be conclusively classified. Treat it with caution.",
	})
	verdict.Confidence = models.ClampConfidence(verdict.Confidence)
	if !models.ValidScanStatus(verdict.Status) {
		verdict.Status = models.ScanStatusSuspicious
	}

	verdict.DetectedURLs = mergeURLs(verdict.DetectedURLs, urlPattern.FindAllString(content, -1))

	if matched := intel.URLsInPhishFeed(verdict.DetectedURLs); len(matched) > 0 {
		verdict.Status = models.ScanStatusPhishing
		verdict.ThreatIndicators = append(verdict.ThreatIndicators,
			"URL matches OpenPhish public feed: "+strings.Join(matched, ", "))
	}

	scan := models.PhishingScan{
		ContentPreview:   validate.Truncate(content, previewLength),
		Status:           verdict.Status,
		Confidence:       verdict.Confidence,
		ThreatIndicators: verdict.ThreatIndicators,
		DetectedURLs:     verdict.DetectedURLs,
	}

	ctx := c.Request.Context()
	traceID, _ := c.Get("trace_id")
	if err := h.Store.InsertPhishingScan(ctx, &scan); err != nil {
		slog.Error("Phishing scan insert failed", "trace_id", traceID, "error", err)
	}

	if verdict.Status != models.ScanStatusSafe {
		if err := h.Store.IncrementThreatAnalytics(ctx, "phishing", severityForScan(verdict.Status)); err != nil {
			slog.Error("Analytics upsert failed", "trace_id", traceID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            verdict.Status,
		"confidence":        verdict.Confidence,
		"threat_indicators": verdict.ThreatIndicators,
		"detected_urls":     verdict.DetectedURLs,
		"explanation":       verdict.Explanation,
	})
}

func severityForScan(status string) string {
	if status == models.ScanStatusPhishing {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

func mergeURLs(fromModel, fromRegexp []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range [][]string{fromModel, fromRegexp} {
		for _, u := range list {
			u = strings.TrimRight(u, ".,;)")
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			merged = append(merged, u)
		}
	}
	return merged
}
