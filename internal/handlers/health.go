// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/db"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/telemetry"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	DB        *db.Database
	Registry  *telemetry.Registry
	IPInfo    *intel.IPInfoClient
	Version   string
	StartTime time.Time
}

func NewHealthHandler(database *db.Database, registry *telemetry.Registry, ipinfo *intel.IPInfoClient, version string) *HealthHandler {
	return &HealthHandler{
		DB:        database,
		Registry:  registry,
		IPInfo:    ipinfo,
		Version:   version,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "healthy"
	if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := gin.H{
		"status":  "ok",
		"version": h.Version,
		"uptime":  time.Since(h.StartTime).String(),
		"database": gin.H{
			"status": dbStatus,
		},
		"memory": gin.H{
			"alloc_mb":       memStats.Alloc / 1024 / 1024,
			"sys_mb":         memStats.Sys / 1024 / 1024,
			"num_goroutines": runtime.NumGoroutine(),
		},
	}

	providerStats := h.Registry.AllStats()
	providers := make([]gin.H, 0, len(providerStats))
	overallState := telemetry.Healthy
	for _, ps := range providerStats {
		p := gin.H{
			"name":                 ps.Name,
			"state":                string(ps.State),
			"total_requests":       ps.TotalRequests,
			"success_count":        ps.SuccessCount,
			"failure_count":        ps.FailureCount,
			"consecutive_failures": ps.ConsecFailures,
			"avg_latency_ms":       ps.AvgLatencyMs,
			"p95_latency_ms":       ps.P95LatencyMs,
		}
		if ps.LastError != "" {
			p["last_error"] = ps.LastError
		}
		providers = append(providers, p)

		if ps.State == telemetry.Unhealthy {
			overallState = telemetry.Unhealthy
		} else if ps.State == telemetry.Degraded && overallState == telemetry.Healthy {
			overallState = telemetry.Degraded
		}
	}
	response["providers"] = providers
	response["overall_provider_health"] = string(overallState)

	if h.IPInfo != nil {
		cs := h.IPInfo.CacheStats()
		response["caches"] = []gin.H{{
			"name":     cs.Name,
			"size":     cs.Size,
			"max_size": cs.MaxSize,
			"hits":     cs.Hits,
			"misses":   cs.Misses,
			"hit_rate": cs.HitRate,
		}}
	}

	c.JSON(http.StatusOK, response)
}
