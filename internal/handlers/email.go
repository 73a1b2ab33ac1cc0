// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/dnsclient"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/store"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/validate"

	"github.com/gin-gonic/gin"
)

const breachSystemPrompt = `You are a data breach analyst. Given an email address, assess the likelihood its domain and mailbox appear in known credential dumps. Consider domain age signals, provider reputation and common breach corpora.
Respond ONLY with a JSON object of this exact shape:
{"breach_likelihood": "low"|"medium"|"high", "known_breaches": [string], "recommendations": [string], "summary": string}`

const darkWebSystemPrompt = `You are a dark web monitoring analyst. Given an email address, report plausible exposure categories for that identity on underground markets and paste sites.
Respond ONLY with a JSON object of this exact shape:
{"exposure_level": "low"|"medium"|"high", "categories": [string], "recommendations": [string], "summary": string}`

type EmailHandler struct {
	Store *store.Store
	AI    *ai.Client
	DNS   *dnsclient.Client
}

func NewEmailHandler(st *store.Store, aiClient *ai.Client, dnsClient *dnsclient.Client) *EmailHandler {
	return &EmailHandler{Store: st, AI: aiClient, DNS: dnsClient}
}

type breachVerdict struct {
	BreachLikelihood string   `json:"breach_likelihood"`
	KnownBreaches    []string `json:"known_breaches"`
	Recommendations  []string `json:"recommendations"`
	Summary          string   `json:"summary"`
}

type breachPayload struct {
	EmailValid   bool          `json:"email_valid"`
	EmailExists  bool          `json:"email_exists"`
	Verdict      breachVerdict `json:"verdict"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// CheckEmailBreach validates and probes the address before spending an
// AI call. A malformed address is a 200 with email_valid:false, matching
// what the dashboard renders inline. Results for reachable domains are
// cached for 24 hours.
func (h *EmailHandler) CheckEmailBreach(c *gin.Context) {
	var req struct {
		Email        string `json:"email"`
		ForceRefresh bool   `json:"forceRefresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	email, err := validate.NormalizeEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"email_valid":   false,
			"email_exists":  false,
			"error_message": "The email address format is invalid.",
		})
		return
	}

	ctx := c.Request.Context()
	traceID, _ := c.Get("trace_id")

	if !req.ForceRefresh {
		cached, err := h.Store.LatestEmailBreachCheck(ctx, email)
		if err != nil {
			respondStoreError(c, "breach_cache_read", err)
			return
		}
		if cached != nil && time.Since(cached.CheckedAt) < models.CacheWindow {
			var payload breachPayload
			if json.Unmarshal(cached.Payload, &payload) == nil {
				c.JSON(http.StatusOK, gin.H{
					"email":      cached.Email,
					"cached":     true,
					"checked_at": cached.CheckedAt.Format(time.RFC3339),
					"result":     payload,
				})
				return
			}
		}
	}

	domainAnswers := h.DNS.EmailDomainAnswers(ctx, validate.EmailDomain(email))
	if !domainAnswers {
		c.JSON(http.StatusOK, gin.H{
			"email":  email,
			"cached": false,
			"result": breachPayload{
				EmailValid:   true,
				EmailExists:  false,
				ErrorMessage: "The email domain does not answer; the address likely does not exist.",
			},
		})
		return
	}

	raw, err := h.AI.Complete(ctx, breachSystemPrompt, email)
	if err != nil {
		respondAIError(c, err)
		return
	}

	verdict := ai.DecodeOrFallback(raw, breachVerdict{
		BreachLikelihood: "medium",
		Recommendations:  []string{"Rotate the password for this account", "Enable multi-factor authentication"},
		Summary:          "The exposure could not be conclusively assessed.",
	})

	payload := breachPayload{EmailValid: true, EmailExists: true, Verdict: verdict}

	check := models.EmailBreachCheck{Email: email, Payload: mustJSON(payload)}
	if err := h.Store.InsertEmailBreachCheck(ctx, &check); err != nil {
		slog.Error("Breach check insert failed", "trace_id", traceID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"email":      email,
		"cached":     false,
		"checked_at": time.Now().UTC().Format(time.RFC3339),
		"result":     payload,
	})
}

type darkWebVerdict struct {
	ExposureLevel   string   `json:"exposure_level"`
	Categories      []string `json:"categories"`
	Recommendations []string `json:"recommendations"`
	Summary         string   `json:"summary"`
}

// DarkWebMonitor differs from the breach check on purpose: an invalid
// address here is a hard 500, which is what the monitoring widget expects.
func (h *EmailHandler) DarkWebMonitor(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	email, err := validate.NormalizeEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid email address"})
		return
	}

	raw, err := h.AI.Complete(c.Request.Context(), darkWebSystemPrompt, email)
	if err != nil {
		respondAIError(c, err)
		return
	}

	verdict := ai.DecodeOrFallback(raw, darkWebVerdict{
		ExposureLevel: "low",
		Summary:       "No confirmed dark web exposure was identified.",
	})

	c.JSON(http.StatusOK, gin.H{
		"email":           validate.MaskEmail(email),
		"exposure_level":  verdict.ExposureLevel,
		"categories":      verdict.Categories,
		"recommendations": verdict.Recommendations,
		"summary":         verdict.Summary,
		"last_scanned":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *EmailHandler) ListEmailBreachChecks(c *gin.Context) {
	checks, err := h.Store.ListEmailBreachChecks(c.Request.Context(), listLimit(c))
	if err != nil {
		respondStoreError(c, "breach_check_list", err)
		return
	}
	if checks == nil {
		checks = []models.EmailBreachCheck{}
	}
	c.JSON(http.StatusOK, gin.H{"checks": checks})
}

func (h *EmailHandler) DeleteEmailBreachCheck(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.Store.DeleteEmailBreachCheck(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, "breach_check_delete", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "check not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
