// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"

	"github.com/gin-gonic/gin"
)

const screenshotSystemPrompt = `You are a visual phishing detection expert. Examine the screenshot of a web page and decide whether it impersonates a known brand or login flow.
Respond ONLY with a JSON object of this exact shape:
{"is_phishing": boolean, "impersonated_brand": string, "confidence": number 0-100, "visual_indicators": [string], "summary": string}`

type ScreenshotHandler struct {
	Shots *intel.ScreenshotClient
	AI    *ai.Client
}

func NewScreenshotHandler(shots *intel.ScreenshotClient, aiClient *ai.Client) *ScreenshotHandler {
	return &ScreenshotHandler{Shots: shots, AI: aiClient}
}

func (h *ScreenshotHandler) CaptureScreenshot(c *gin.Context) {
	var req struct {
		URL      string `json:"url"`
		FullPage bool   `json:"fullPage"`
		Device   string `json:"device"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pageURL := strings.TrimSpace(req.URL)
	if pageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required", "field": "url"})
		return
	}
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = "https://" + pageURL
	}

	shot, err := h.Shots.Capture(c.Request.Context(), pageURL, req.FullPage, req.Device)
	if err != nil {
		if errors.Is(err, intel.ErrScreenshotNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Screenshot provider is not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Screenshot capture failed. Please try again."})
		return
	}

	c.JSON(http.StatusOK, shot)
}

type screenshotVerdict struct {
	IsPhishing        bool     `json:"is_phishing"`
	ImpersonatedBrand string   `json:"impersonated_brand"`
	Confidence        int      `json:"confidence"`
	VisualIndicators  []string `json:"visual_indicators"`
	Summary           string   `json:"summary"`
}

// AnalyzeScreenshot sends a captured page image through the vision prompt.
// The image arrives base64-encoded, with or without a data-URI prefix.
func (h *ScreenshotHandler) AnalyzeScreenshot(c *gin.Context) {
	var req struct {
		Screenshot string `json:"screenshot"`
		URL        string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Screenshot) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screenshot is required", "field": "screenshot"})
		return
	}

	dataURI := req.Screenshot
	if !strings.HasPrefix(dataURI, "data:") {
		dataURI = "data:image/png;base64," + dataURI
	}

	userPrompt := "Analyze this page screenshot for phishing."
	if req.URL != "" {
		userPrompt = "Analyze the screenshot of " + req.URL + " for phishing."
	}

	raw, err := h.AI.CompleteWithImage(c.Request.Context(), screenshotSystemPrompt, userPrompt, dataURI)
	if err != nil {
		respondAIError(c, err)
		return
	}

	verdict := ai.DecodeOrFallback(raw, screenshotVerdict{
		IsPhishing: false,
		Confidence: 50,
		Summary:    "The screenshot could not be conclusively analyzed.",
	})
	verdict.Confidence = models.ClampConfidence(verdict.Confidence)

	c.JSON(http.StatusOK, gin.H{
		"is_phishing":        verdict.IsPhishing,
		"impersonated_brand": verdict.ImpersonatedBrand,
		"confidence":         verdict.Confidence,
		"visual_indicators":  verdict.VisualIndicators,
		"summary":            verdict.Summary,
		"url":                req.URL,
	})
}
