// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"
	"strings"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/dnsclient"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/validate"

	"github.com/gin-gonic/gin"
)

const intelSystemPrompt = `You are a threat intelligence analyst. Assess the given indicator (IP address or domain) for known malicious activity, botnet membership, scanning behavior and abuse reports.
Respond ONLY with a JSON object of this exact shape:
{"verdict": "benign"|"suspicious"|"malicious", "confidence": number 0-100, "tags": [string], "summary": string}`

type IntelHandler struct {
	AI     *ai.Client
	IPInfo *intel.IPInfoClient
	DNS    *dnsclient.Client
}

func NewIntelHandler(aiClient *ai.Client, ipinfo *intel.IPInfoClient, dnsClient *dnsclient.Client) *IntelHandler {
	return &IntelHandler{AI: aiClient, IPInfo: ipinfo, DNS: dnsClient}
}

type intelVerdict struct {
	Verdict    string   `json:"verdict"`
	Confidence int      `json:"confidence"`
	Tags       []string `json:"tags"`
	Summary    string   `json:"summary"`
}

// ThreatIntel accepts an IP or a domain indicator. IPs additionally get
// the racing geolocation lookups; domains get a resolution probe and the
// phishing feed check.
func (h *IntelHandler) ThreatIntel(c *gin.Context) {
	var req struct {
		Indicator string `json:"indicator"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	indicator := strings.TrimSpace(req.Indicator)
	if indicator == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "indicator is required", "field": "indicator"})
		return
	}

	isIP := validate.ValidateIPv4(indicator) == nil
	if !isIP {
		indicator = validate.NormalizeDomain(indicator)
		ascii, err := dnsclient.DomainToASCII(indicator)
		if err != nil || !dnsclient.ValidateDomain(ascii) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "indicator must be an IPv4 address or a domain name",
				"field": "indicator",
			})
			return
		}
		indicator = ascii
	}

	raw, err := h.AI.Complete(c.Request.Context(), intelSystemPrompt, indicator)
	if err != nil {
		respondAIError(c, err)
		return
	}

	verdict := ai.DecodeOrFallback(raw, intelVerdict{
		Verdict:    "suspicious",
		Confidence: 50,
		Summary:    "The indicator could not be conclusively assessed.",
	})
	verdict.Confidence = models.ClampConfidence(verdict.Confidence)

	response := gin.H{
		"indicator":  indicator,
		"type":       indicatorType(isIP),
		"verdict":    verdict.Verdict,
		"confidence": verdict.Confidence,
		"tags":       verdict.Tags,
		"summary":    verdict.Summary,
	}

	if isIP {
		response["geo"] = intel.Geolocate(c.Request.Context(), indicator, h.IPInfo)
	} else {
		exists, cname := h.DNS.ProbeExists(c.Request.Context(), indicator)
		response["resolves"] = exists
		if cname != "" {
			response["cname"] = cname
		}
		if intel.DomainInPhishFeed(indicator) {
			response["in_phishing_feed"] = true
			response["verdict"] = "malicious"
		}
	}

	c.JSON(http.StatusOK, response)
}

func indicatorType(isIP bool) string {
	if isIP {
		return "ip"
	}
	return "domain"
}
