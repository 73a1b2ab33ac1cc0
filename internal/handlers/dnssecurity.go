// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"
	"strings"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/config"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/dnsclient"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/validate"

	"github.com/gin-gonic/gin"
)

// Common selectors probed when looking for DKIM keys without a report
// from the domain owner.
var dkimSelectors = []string{"default", "google", "selector1", "selector2", "k1", "dkim"}

type DNSSecurityHandler struct {
	DNS    *dnsclient.Client
	Tuning config.Tuning
}

func NewDNSSecurityHandler(dnsClient *dnsclient.Client, tuning config.Tuning) *DNSSecurityHandler {
	return &DNSSecurityHandler{DNS: dnsClient, Tuning: tuning}
}

// CheckDNSSecurity inspects the mail and integrity posture of a domain:
// DNSSEC chain, SPF, DMARC, DKIM selectors and CAA. Each present control
// contributes its configured weight to security_score.
func (h *DNSSecurityHandler) CheckDNSSecurity(c *gin.Context) {
	var req struct {
		Domain string `json:"domain"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	domain := validate.NormalizeDomain(req.Domain)
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain is required", "field": "domain"})
		return
	}
	asciiDomain, err := dnsclient.DomainToASCII(domain)
	if err != nil || !dnsclient.ValidateDomain(asciiDomain) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid domain name", "field": "domain"})
		return
	}

	ctx := c.Request.Context()

	dnskeys := h.DNS.QueryDNS(ctx, "DNSKEY", asciiDomain)
	dsRecords := h.DNS.QueryDNS(ctx, "DS", asciiDomain)
	adValidated, adKnown := h.DNS.CheckDNSSECValidated(ctx, asciiDomain)
	dnssecEnabled := len(dnskeys) > 0 && (len(dsRecords) > 0 || (adKnown && adValidated))

	spfRecord := findTXT(h.DNS.QueryDNS(ctx, "TXT", asciiDomain), "v=spf1")
	dmarcRecord := findTXT(h.DNS.QueryDNS(ctx, "TXT", "_dmarc."+asciiDomain), "v=dmarc1")

	var foundSelectors []string
	for _, sel := range dkimSelectors {
		name := sel + "._domainkey." + asciiDomain
		records := h.DNS.QueryDNS(ctx, "TXT", name)
		if findTXT(records, "v=dkim1") != "" || findTXT(records, "k=rsa") != "" {
			foundSelectors = append(foundSelectors, sel)
		}
	}

	caaRecords := h.DNS.QueryDNS(ctx, "CAA", asciiDomain)
	mxRecords := h.DNS.QueryDNS(ctx, "MX", asciiDomain)

	weights := h.Tuning.DNSWeights
	score := 0
	if dnssecEnabled {
		score += weights["dnssec"]
	}
	if spfRecord != "" {
		score += weights["spf"]
	}
	if dmarcRecord != "" {
		score += weights["dmarc"]
	}
	if len(foundSelectors) > 0 {
		score += weights["dkim"]
	}
	if len(caaRecords) > 0 {
		score += weights["caa"]
	}

	c.JSON(http.StatusOK, gin.H{
		"domain": asciiDomain,
		"dnssec": gin.H{
			"enabled":          dnssecEnabled,
			"dnskey_count":     len(dnskeys),
			"ds_count":         len(dsRecords),
			"ad_flag_verified": adKnown && adValidated,
		},
		"spf": gin.H{
			"present": spfRecord != "",
			"record":  spfRecord,
		},
		"dmarc": gin.H{
			"present": dmarcRecord != "",
			"record":  dmarcRecord,
			"policy":  dmarcPolicy(dmarcRecord),
		},
		"dkim": gin.H{
			"present":   len(foundSelectors) > 0,
			"selectors": foundSelectors,
		},
		"caa": gin.H{
			"present": len(caaRecords) > 0,
			"records": caaRecords,
		},
		"mx_records":     mxRecords,
		"security_score": score,
		"risk_level":     riskLevelForScore(score),
	})
}

func findTXT(records []string, prefix string) string {
	for _, r := range records {
		cleaned := strings.Trim(r, `"`)
		if strings.HasPrefix(strings.ToLower(cleaned), prefix) {
			return cleaned
		}
	}
	return ""
}

func dmarcPolicy(record string) string {
	if record == "" {
		return ""
	}
	for _, part := range strings.Split(record, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "p=") {
			return strings.ToLower(part[2:])
		}
	}
	return ""
}

func riskLevelForScore(score int) string {
	switch {
	case score >= 75:
		return models.SeverityLow
	case score >= 50:
		return models.SeverityMedium
	case score >= 25:
		return models.SeverityHigh
	default:
		return models.SeverityCritical
	}
}
