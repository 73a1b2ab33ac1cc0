// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

const threatSystemPrompt = `You are a network security analyst. Analyze the given network traffic data and decide whether it represents a threat.
Respond ONLY with a JSON object of this exact shape:
{"is_threat": boolean, "threat_type": string, "severity": "low"|"medium"|"high"|"critical", "confidence": number 0-100, "explanation": string}`

type ThreatHandler struct {
	Store *store.Store
	AI    *ai.Client
}

func NewThreatHandler(st *store.Store, aiClient *ai.Client) *ThreatHandler {
	return &ThreatHandler{Store: st, AI: aiClient}
}

type networkData struct {
	SourceIP    string `json:"source_ip"`
	Destination string `json:"destination"`
	Protocol    string `json:"protocol"`
	Bytes       int64  `json:"bytes,omitempty"`
	Location    string `json:"location,omitempty"`
}

type threatVerdict struct {
	IsThreat    bool   `json:"is_threat"`
	ThreatType  string `json:"threat_type"`
	Severity    string `json:"severity"`
	Confidence  int    `json:"confidence"`
	Explanation string `json:"explanation"`
}

// AnalyzeThreat runs the model over one traffic sample. A detected threat
// triggers two best-effort writes: the immutable record and the per-IP
// counter. Neither failing fails the request.
func (h *ThreatHandler) AnalyzeThreat(c *gin.Context) {
	var req struct {
		NetworkData networkData `json:"networkData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.NetworkData.SourceIP == "" || req.NetworkData.Destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_ip and destination are required"})
		return
	}

	payload, _ := json.Marshal(req.NetworkData)
	raw, err := h.AI.Complete(c.Request.Context(), threatSystemPrompt, string(payload))
	if err != nil {
		respondAIError(c, err)
		return
	}

	verdict := ai.DecodeOrFallback(raw, threatVerdict{
		IsThreat:    false,
		ThreatType:  "unknown",
		Severity:    models.SeverityLow,
		Confidence:  50,
		Explanation: "Automated analysis was inconclusive.",
	})
	verdict.Confidence = models.ClampConfidence(verdict.Confidence)
	if !models.ValidSeverity(verdict.Severity) {
		verdict.Severity = models.SeverityLow
	}

	if verdict.IsThreat {
		h.persistThreat(c, req.NetworkData, verdict)
	}

	c.JSON(http.StatusOK, gin.H{
		"is_threat":   verdict.IsThreat,
		"threat_type": verdict.ThreatType,
		"severity":    verdict.Severity,
		"confidence":  verdict.Confidence,
		"explanation": verdict.Explanation,
	})
}

func (h *ThreatHandler) persistThreat(c *gin.Context, data networkData, verdict threatVerdict) {
	ctx := c.Request.Context()
	traceID, _ := c.Get("trace_id")

	record := models.ThreatRecord{
		SourceIP:    data.SourceIP,
		Destination: data.Destination,
		Protocol:    data.Protocol,
		ThreatType:  verdict.ThreatType,
		Severity:    verdict.Severity,
		Confidence:  verdict.Confidence,
		Status:      "active",
	}
	if err := h.Store.InsertThreatRecord(ctx, &record); err != nil {
		slog.Error("Threat record insert failed", "trace_id", traceID, "error", err)
	}

	if err := h.Store.RecordSuspiciousIP(ctx, data.SourceIP, verdict.Severity); err != nil {
		slog.Error("Suspicious IP upsert failed", "trace_id", traceID, "ip", data.SourceIP, "error", err)
	}

	_ = h.Store.LogActivity(ctx, "threat_detected",
		"Threat detected from "+data.SourceIP,
		gin.H{"threat_type": verdict.ThreatType, "severity": verdict.Severity})
}
