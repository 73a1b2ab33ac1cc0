// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/config"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/db"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/dnsclient"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/handlers"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/middleware"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/store"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/telemetry"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	st := store.New(database.Pool)
	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.Migrate(migrateCtx); err != nil {
		cancel()
		slog.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}
	cancel()
	slog.Info("Schema applied")

	registry := telemetry.NewRegistry()
	aiClient := ai.NewClient(cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AIModel, registry)
	if !aiClient.Configured() {
		slog.Warn("AI gateway key not set; analysis endpoints will report not configured")
	}

	dnsClient := dnsclient.New()
	ipinfoClient := intel.NewIPInfoClient(cfg.IPInfoToken, registry)
	vtClient := intel.NewVirusTotalClient(cfg.VirusTotalAPIKey, registry)
	shotClient := intel.NewScreenshotClient(cfg.ScreenshotAPIKey, registry)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.RequestContext())
	router.Use(middleware.CORS())

	rateLimiter := middleware.NewInMemoryRateLimiter()
	slog.Info("Rate limiter initialized", "backend", "in-memory",
		"max_requests", middleware.RateLimitMaxRequests, "window_seconds", middleware.RateLimitWindow)

	threatHandler := handlers.NewThreatHandler(st, aiClient)
	phishingHandler := handlers.NewPhishingHandler(st, aiClient)
	domainHandler := handlers.NewDomainHandler(aiClient, dnsClient)
	sslHandler := handlers.NewSSLHandler(st, dnsClient)
	emailHandler := handlers.NewEmailHandler(st, aiClient, dnsClient)
	dnsSecurityHandler := handlers.NewDNSSecurityHandler(dnsClient, cfg.Tuning)
	ipHandler := handlers.NewIPHandler(ipinfoClient, cfg.Tuning)
	intelHandler := handlers.NewIntelHandler(aiClient, ipinfoClient, dnsClient)
	vtHandler := handlers.NewVirusTotalHandler(vtClient)
	shotHandler := handlers.NewScreenshotHandler(shotClient, aiClient)
	chatHandler := handlers.NewChatHandler(st, aiClient)
	listHandler := handlers.NewListHandler(st)
	exportHandler := handlers.NewExportHandler(st)
	healthHandler := handlers.NewHealthHandler(database, registry, ipinfoClient, cfg.AppVersion)

	api := router.Group("/api/v1")

	limited := api.Group("", middleware.AnalyzeRateLimit(rateLimiter))
	limited.POST("/analyze-threat", threatHandler.AnalyzeThreat)
	limited.POST("/analyze-phishing", phishingHandler.AnalyzePhishing)
	limited.POST("/domain-reputation", domainHandler.DomainReputation)
	limited.POST("/check-ssl", sslHandler.CheckSSL)
	limited.POST("/check-email-breach", emailHandler.CheckEmailBreach)
	limited.POST("/dark-web-monitor", emailHandler.DarkWebMonitor)
	limited.POST("/dns-security", dnsSecurityHandler.CheckDNSSecurity)
	limited.POST("/ip-lookup", ipHandler.LookupIP)
	limited.POST("/threat-intel", intelHandler.ThreatIntel)
	limited.POST("/virustotal", vtHandler.ScanFile)
	limited.POST("/capture-screenshot", shotHandler.CaptureScreenshot)
	limited.POST("/analyze-screenshot", shotHandler.AnalyzeScreenshot)
	limited.POST("/chat", chatHandler.PostMessage)

	api.GET("/my-connection", ipHandler.MyConnection)
	api.GET("/chat", chatHandler.ListMessages)
	api.DELETE("/chat", chatHandler.ClearMessages)

	api.GET("/threats", listHandler.ListThreats)
	api.GET("/suspicious-ips", listHandler.ListSuspiciousIPs)
	api.POST("/suspicious-ips/:id/block", listHandler.BlockIP)
	api.GET("/phishing-scans", listHandler.ListPhishingScans)
	api.GET("/activity", listHandler.ListActivity)
	api.GET("/analytics", listHandler.ListAnalytics)

	api.GET("/ssl-checks", sslHandler.ListSSLChecks)
	api.DELETE("/ssl-checks/:id", sslHandler.DeleteSSLCheck)
	api.DELETE("/ssl-checks", sslHandler.DeleteAllSSLChecks)
	api.GET("/email-breach-checks", emailHandler.ListEmailBreachChecks)
	api.DELETE("/email-breach-checks/:id", emailHandler.DeleteEmailBreachCheck)

	api.GET("/export/threats", exportHandler.ExportThreats)
	api.GET("/health", healthHandler.HealthCheck)

	addr := ":" + cfg.Port
	slog.Info("Starting server", "addr", addr, "version", cfg.AppVersion)
	if err := router.Run(addr); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
