// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

// ListHandler serves the read side of the dashboard feeds plus the block
// action, all against the store with no upstream calls.
type ListHandler struct {
	Store *store.Store
}

func NewListHandler(st *store.Store) *ListHandler {
	return &ListHandler{Store: st}
}

func (h *ListHandler) ListThreats(c *gin.Context) {
	records, err := h.Store.ListThreatRecords(c.Request.Context(), listLimit(c))
	if err != nil {
		respondStoreError(c, "threat_list", err)
		return
	}
	if records == nil {
		records = []models.ThreatRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"threats": records})
}

func (h *ListHandler) ListSuspiciousIPs(c *gin.Context) {
	ips, err := h.Store.ListSuspiciousIPs(c.Request.Context(), listLimit(c))
	if err != nil {
		respondStoreError(c, "suspicious_ip_list", err)
		return
	}
	if ips == nil {
		ips = []models.SuspiciousIP{}
	}
	c.JSON(http.StatusOK, gin.H{"suspicious_ips": ips})
}

func (h *ListHandler) BlockIP(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	blocked, err := h.Store.BlockIP(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, "block_ip", err)
		return
	}
	if !blocked {
		c.JSON(http.StatusNotFound, gin.H{"error": "suspicious IP not found"})
		return
	}

	_ = h.Store.LogActivity(c.Request.Context(), "ip_blocked",
		"Suspicious IP blocked", gin.H{"id": id})

	c.JSON(http.StatusOK, gin.H{"blocked": true})
}

func (h *ListHandler) ListPhishingScans(c *gin.Context) {
	scans, err := h.Store.ListPhishingScans(c.Request.Context(), listLimit(c))
	if err != nil {
		respondStoreError(c, "phishing_scan_list", err)
		return
	}
	if scans == nil {
		scans = []models.PhishingScan{}
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans})
}

func (h *ListHandler) ListActivity(c *gin.Context) {
	logs, err := h.Store.ListActivityLogs(c.Request.Context(), listLimit(c))
	if err != nil {
		respondStoreError(c, "activity_list", err)
		return
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}
	c.JSON(http.StatusOK, gin.H{"activity": logs})
}

func (h *ListHandler) ListAnalytics(c *gin.Context) {
	days := 30
	analytics, err := h.Store.ListThreatAnalytics(c.Request.Context(), days)
	if err != nil {
		respondStoreError(c, "analytics_list", err)
		return
	}
	if analytics == nil {
		analytics = []models.ThreatAnalytics{}
	}
	c.JSON(http.StatusOK, gin.H{"analytics": analytics})
}
