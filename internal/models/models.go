// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package models

import (
	"encoding/json"
	"time"
)

// Severity buckets used by threat records, suspicious IPs and analytics.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Phishing scan outcomes.
const (
	ScanStatusSafe       = "safe"
	ScanStatusSuspicious = "suspicious"
	ScanStatusPhishing   = "phishing"
)

func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

func ValidScanStatus(s string) bool {
	switch s {
	case ScanStatusSafe, ScanStatusSuspicious, ScanStatusPhishing:
		return true
	}
	return false
}

// ClampConfidence forces a model-reported confidence into the 0..100 range.
func ClampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// ThreatRecord is an immutable detection produced by the threat analyzer.
type ThreatRecord struct {
	ID          int64     `json:"id" db:"id"`
	SourceIP    string    `json:"source_ip" db:"source_ip"`
	Destination string    `json:"destination" db:"destination"`
	Protocol    string    `json:"protocol" db:"protocol"`
	ThreatType  string    `json:"threat_type" db:"threat_type"`
	Severity    string    `json:"severity" db:"severity"`
	Confidence  int       `json:"confidence" db:"confidence"`
	Status      string    `json:"status" db:"status"`
	DetectedAt  time.Time `json:"detected_at" db:"detected_at"`
}

// SuspiciousIP is the mutable per-IP counter updated on repeat detections.
// AttemptCount never decreases; IsBlocked flips true only through the
// explicit block action and never auto-reverts.
type SuspiciousIP struct {
	ID           int64     `json:"id" db:"id"`
	IPAddress    string    `json:"ip_address" db:"ip_address"`
	AttemptCount int       `json:"attempt_count" db:"attempt_count"`
	Severity     string    `json:"severity" db:"severity"`
	IsBlocked    bool      `json:"is_blocked" db:"is_blocked"`
	LastSeenAt   time.Time `json:"last_seen_at" db:"last_seen_at"`
}

// PhishingScan stores one content analysis. ContentPreview holds at most
// the first 200 characters of the submitted content, never the full text.
type PhishingScan struct {
	ID               int64     `json:"id" db:"id"`
	ContentPreview   string    `json:"content_preview" db:"content_preview"`
	Status           string    `json:"status" db:"status"`
	Confidence       int       `json:"confidence" db:"confidence"`
	ThreatIndicators []string  `json:"threat_indicators" db:"threat_indicators"`
	DetectedURLs     []string  `json:"detected_urls" db:"detected_urls"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// SSLCheck caches one SSL/domain analysis keyed by normalized domain.
// Entries are valid for 24 hours from CheckedAt.
type SSLCheck struct {
	ID        int64           `json:"id" db:"id"`
	Domain    string          `json:"domain" db:"domain"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	CheckedAt time.Time       `json:"checked_at" db:"checked_at"`
}

// EmailBreachCheck caches one breach lookup keyed by normalized email.
type EmailBreachCheck struct {
	ID        int64           `json:"id" db:"id"`
	Email     string          `json:"email" db:"email"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	CheckedAt time.Time       `json:"checked_at" db:"checked_at"`
}

// CacheWindow is how long a cached SSL or email-breach result stays fresh.
const CacheWindow = 24 * time.Hour

type ChatMessage struct {
	ID         int64     `json:"id" db:"id"`
	SenderName string    `json:"sender_name" db:"sender_name"`
	Content    string    `json:"content" db:"content"`
	IsAI       bool      `json:"is_ai" db:"is_ai"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type ActivityLog struct {
	ID          int64           `json:"id" db:"id"`
	ActionType  string          `json:"action_type" db:"action_type"`
	Description string          `json:"description" db:"description"`
	Metadata    json.RawMessage `json:"metadata" db:"metadata"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// ThreatAnalytics is the daily aggregate, one row per
// (date, threat_type, severity).
type ThreatAnalytics struct {
	ID         int64     `json:"id" db:"id"`
	Date       time.Time `json:"date" db:"date"`
	ThreatType string    `json:"threat_type" db:"threat_type"`
	Severity   string    `json:"severity" db:"severity"`
	Count      int       `json:"count" db:"count"`
}
