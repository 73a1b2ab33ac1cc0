// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/dnsclient"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/store"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/validate"

	"github.com/gin-gonic/gin"
)

// sslStore is the slice of the store the SSL handler touches.
type sslStore interface {
	LatestSSLCheck(ctx context.Context, domain string) (*models.SSLCheck, error)
	InsertSSLCheck(ctx context.Context, check *models.SSLCheck) error
	DeleteSSLCheck(ctx context.Context, id int64) (bool, error)
	DeleteAllSSLChecks(ctx context.Context) (int64, error)
	ListSSLChecks(ctx context.Context, limit int) ([]models.SSLCheck, error)
}

type domainResolver interface {
	DomainResolves(ctx context.Context, domain string) bool
}

type SSLHandler struct {
	Store sslStore
	DNS   domainResolver

	probeCert func(ctx context.Context, domain string) (*intel.CertInfo, error)
}

func NewSSLHandler(st *store.Store, dnsClient *dnsclient.Client) *SSLHandler {
	return &SSLHandler{Store: st, DNS: dnsClient, probeCert: intel.ProbeCertificate}
}

type sslPayload struct {
	DomainExists bool            `json:"domain_exists"`
	HasSSL       bool            `json:"has_ssl"`
	Certificate  *intel.CertInfo `json:"certificate,omitempty"`
	Grade        string          `json:"grade"`
	Issues       []string        `json:"issues"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// CheckSSL serves a fresh-enough cached result before doing any network
// work. An unresolvable domain is reported but never persisted, so a typo
// cannot poison the cache.
func (h *SSLHandler) CheckSSL(c *gin.Context) {
	var req struct {
		Domain       string `json:"domain"`
		ForceRefresh bool   `json:"forceRefresh"`
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
	traceID, _ := c.Get("trace_id")

	if !req.ForceRefresh {
		cached, err := h.Store.LatestSSLCheck(ctx, asciiDomain)
		if err != nil {
			respondStoreError(c, "ssl_cache_read", err)
			return
		}
		if cached != nil && time.Since(cached.CheckedAt) < models.CacheWindow {
			var payload sslPayload
			if json.Unmarshal(cached.Payload, &payload) == nil {
				c.JSON(http.StatusOK, gin.H{
					"domain":     cached.Domain,
					"cached":     true,
					"checked_at": cached.CheckedAt.Format(time.RFC3339),
					"result":     payload,
				})
				return
			}
		}
	}

	payload := h.analyze(c, asciiDomain)

	if payload.DomainExists {
		check := models.SSLCheck{Domain: asciiDomain, Payload: mustJSON(payload)}
		if err := h.Store.InsertSSLCheck(ctx, &check); err != nil {
			slog.Error("SSL check insert failed", "trace_id", traceID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"domain":     asciiDomain,
		"cached":     false,
		"checked_at": time.Now().UTC().Format(time.RFC3339),
		"result":     payload,
	})
}

func (h *SSLHandler) analyze(c *gin.Context, domain string) sslPayload {
	ctx := c.Request.Context()

	if !h.DNS.DomainResolves(ctx, domain) {
		return sslPayload{
			DomainExists: false,
			Grade:        "N/A",
			ErrorMessage: "Domain does not resolve",
		}
	}

	cert, err := h.probeCert(ctx, domain)
	if err != nil {
		return sslPayload{
			DomainExists: true,
			HasSSL:       false,
			Grade:        "F",
			Issues:       []string{"No valid TLS endpoint on port 443"},
		}
	}

	return sslPayload{
		DomainExists: true,
		HasSSL:       true,
		Certificate:  cert,
		Grade:        gradeCertificate(cert),
		Issues:       certificateIssues(cert),
	}
}

func gradeCertificate(cert *intel.CertInfo) string {
	switch {
	case cert.Expired || cert.SelfSigned:
		return "F"
	case cert.DaysRemaining < 7:
		return "C"
	case cert.DaysRemaining < 30 || cert.TLSVersion == "TLS 1.0" || cert.TLSVersion == "TLS 1.1":
		return "B"
	default:
		return "A"
	}
}

func certificateIssues(cert *intel.CertInfo) []string {
	var issues []string
	if cert.Expired {
		issues = append(issues, "Certificate has expired")
	}
	if cert.SelfSigned {
		issues = append(issues, "Certificate is self-signed")
	}
	if !cert.Expired && cert.DaysRemaining < 30 {
		issues = append(issues, "Certificate expires within 30 days")
	}
	if cert.TLSVersion == "TLS 1.0" || cert.TLSVersion == "TLS 1.1" {
		issues = append(issues, "Server negotiated a legacy TLS version")
	}
	return issues
}

func (h *SSLHandler) DeleteSSLCheck(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.Store.DeleteSSLCheck(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, "ssl_check_delete", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "check not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *SSLHandler) DeleteAllSSLChecks(c *gin.Context) {
	n, err := h.Store.DeleteAllSSLChecks(c.Request.Context())
	if err != nil {
		respondStoreError(c, "ssl_check_delete_all", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "count": n})
}

func (h *SSLHandler) ListSSLChecks(c *gin.Context) {
	checks, err := h.Store.ListSSLChecks(c.Request.Context(), listLimit(c))
	if err != nil {
		respondStoreError(c, "ssl_check_list", err)
		return
	}
	if checks == nil {
		checks = []models.SSLCheck{}
	}
	c.JSON(http.StatusOK, gin.H{"checks": checks})
}
