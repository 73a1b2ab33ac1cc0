// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package handlers contains the JSON API surface of the dashboard. Each
// handler struct groups the endpoints of one concern and is constructed
// once at startup with its dependencies.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/validate"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 50

// respondAIError maps the AI client error taxonomy onto HTTP statuses.
// Parse failures never reach here; handlers fall back silently on those.
func respondAIError(c *gin.Context, err error) {
	traceID, _ := c.Get("trace_id")

	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "AI gateway is not configured",
		})
	case errors.Is(err, ai.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Rate limit exceeded. Please try again later.",
		})
	case errors.Is(err, ai.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": "AI credits exhausted. Please add funds to your workspace.",
		})
	default:
		var upstream *ai.UpstreamError
		if errors.As(err, &upstream) {
			slog.Error("AI gateway error",
				"trace_id", traceID,
				"status", upstream.StatusCode,
				"body", upstream.Body,
			)
		} else {
			slog.Error("AI request failed", "trace_id", traceID, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Analysis failed. Please try again.",
		})
	}
}

// respondValidationError returns 400 for field errors and 500 otherwise.
func respondValidationError(c *gin.Context, err error) {
	var fieldErr *validate.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fieldErr.Message,
			"field": fieldErr.Field,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func respondStoreError(c *gin.Context, action string, err error) {
	traceID, _ := c.Get("trace_id")
	slog.Error("Database operation failed",
		"trace_id", traceID,
		"action", action,
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "A storage error occurred. Please try again.",
	})
}

// listLimit reads ?limit= and clamps it to 1..200.
func listLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultListLimit
	}
	if n > 200 {
		n = 200
	}
	return n
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
