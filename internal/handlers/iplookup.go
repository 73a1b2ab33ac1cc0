// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"
	"strings"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/config"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/dnsclient"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/validate"

	"github.com/gin-gonic/gin"
)

type IPHandler struct {
	IPInfo *intel.IPInfoClient
	Tuning config.Tuning
}

func NewIPHandler(ipinfo *intel.IPInfoClient, tuning config.Tuning) *IPHandler {
	return &IPHandler{IPInfo: ipinfo, Tuning: tuning}
}

// LookupIP geolocates a strict IPv4 address and applies local heuristics.
// Well-known resolver IPs are always reported low risk with no VPN or
// proxy flags, whatever the provider data says about their org.
func (h *IPHandler) LookupIP(c *gin.Context) {
	var req struct {
		IP string `json:"ip"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ip := strings.TrimSpace(req.IP)
	if err := validate.ValidateIPv4(ip); err != nil {
		respondValidationError(c, err)
		return
	}

	geo := intel.Geolocate(c.Request.Context(), ip, h.IPInfo)

	wellKnown := h.Tuning.IsWellKnownIP(ip)
	isPrivate := dnsclient.IsPrivateIP(ip)

	vpnSuspected := false
	if !wellKnown {
		orgLower := strings.ToLower(geo.Org + " " + geo.ISP)
		for _, kw := range h.Tuning.VPNKeywords {
			if strings.Contains(orgLower, kw) {
				vpnSuspected = true
				break
			}
		}
	}

	riskLevel := models.SeverityLow
	var riskFactors []string
	switch {
	case isPrivate:
		riskFactors = append(riskFactors, "Private or reserved address range")
	case wellKnown:
		riskFactors = append(riskFactors, "Well-known public resolver")
	case vpnSuspected:
		riskLevel = models.SeverityMedium
		riskFactors = append(riskFactors, "Organization suggests VPN, proxy or hosting infrastructure")
	}

	c.JSON(http.StatusOK, gin.H{
		"ip":            ip,
		"geo":           geo,
		"is_private":    isPrivate,
		"is_well_known": wellKnown,
		"vpn_suspected": vpnSuspected,
		"tor_suspected": false,
		"risk_level":    riskLevel,
		"risk_factors":  riskFactors,
	})
}

// MyConnection echoes what the service sees about the caller.
func (h *IPHandler) MyConnection(c *gin.Context) {
	clientIP := c.ClientIP()

	response := gin.H{
		"ip":         clientIP,
		"user_agent": c.Request.UserAgent(),
		"forwarded":  c.GetHeader("X-Forwarded-For"),
	}

	if !dnsclient.IsPrivateIP(clientIP) {
		response["geo"] = intel.Geolocate(c.Request.Context(), clientIP, h.IPInfo)
	}

	c.JSON(http.StatusOK, response)
}
