// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/dnsclient"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/validate"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/publicsuffix"
)

const reputationSystemPrompt = `You are a domain reputation analyst. Assess the given domain for phishing, malware distribution, typosquatting and abuse history signals.
Respond ONLY with a JSON object of this exact shape:
{"risk_level": "low"|"medium"|"high"|"critical", "reputation_score": number 0-100, "categories": [string], "concerns": [string], "summary": string}`

type DomainHandler struct {
	AI  *ai.Client
	DNS *dnsclient.Client
}

func NewDomainHandler(aiClient *ai.Client, dnsClient *dnsclient.Client) *DomainHandler {
	return &DomainHandler{AI: aiClient, DNS: dnsClient}
}

type reputationVerdict struct {
	RiskLevel       string   `json:"risk_level"`
	ReputationScore int      `json:"reputation_score"`
	Categories      []string `json:"categories"`
	Concerns        []string `json:"concerns"`
	Summary         string   `json:"summary"`
}

// DomainReputation normalizes the submitted URL to a domain, asks the
// model for an assessment and enriches it with local signals: registrable
// root domain, homepage technology fingerprint and the phishing feed.
func (h *DomainHandler) DomainReputation(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	domain := validate.NormalizeDomain(req.URL)
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required", "field": "url"})
		return
	}

	asciiDomain, err := dnsclient.DomainToASCII(domain)
	if err != nil || !dnsclient.ValidateDomain(asciiDomain) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid domain name", "field": "url"})
		return
	}

	raw, err := h.AI.Complete(c.Request.Context(), reputationSystemPrompt, asciiDomain)
	if err != nil {
		respondAIError(c, err)
		return
	}

	verdict := ai.DecodeOrFallback(raw, reputationVerdict{
		RiskLevel:       models.SeverityMedium,
		ReputationScore: 50,
		Concerns:        []string{"Automated analysis was inconclusive"},
		Summary:         "The domain could not be conclusively assessed.",
	})
	verdict.ReputationScore = models.ClampConfidence(verdict.ReputationScore)
	if !models.ValidSeverity(verdict.RiskLevel) {
		verdict.RiskLevel = models.SeverityMedium
	}

	rootDomain, err := publicsuffix.EffectiveTLDPlusOne(asciiDomain)
	if err != nil {
		rootDomain = asciiDomain
	}

	inPhishFeed := intel.DomainInPhishFeed(asciiDomain)
	if inPhishFeed {
		verdict.RiskLevel = models.SeverityCritical
		verdict.Concerns = append(verdict.Concerns, "Domain appears in the OpenPhish public feed")
	}

	technologies := intel.FingerprintTechnologies(c.Request.Context(), asciiDomain)

	c.JSON(http.StatusOK, gin.H{
		"domain":           asciiDomain,
		"root_domain":      rootDomain,
		"risk_level":       verdict.RiskLevel,
		"reputation_score": verdict.ReputationScore,
		"categories":       verdict.Categories,
		"concerns":         verdict.Concerns,
		"summary":          verdict.Summary,
		"technologies":     technologies,
		"in_phishing_feed": inPhishFeed,
	})
}
