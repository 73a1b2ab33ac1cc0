// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package store_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/db"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/store"
)

func getTestStore(t *testing.T) *store.Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	database, err := db.Connect(dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	st := store.New(database.Pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return st
}

func TestInsertAndListThreatRecords(t *testing.T) {
	st := getTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record := models.ThreatRecord{
		SourceIP:    "203.0.113.50",
		Destination: "10.0.0.7",
		Protocol:    "tcp",
		ThreatType:  "port_scan",
		Severity:    models.SeverityMedium,
		Confidence:  82,
		Status:      "active",
	}
	if err := st.InsertThreatRecord(ctx, &record); err != nil {
		t.Fatalf("InsertThreatRecord failed: %v", err)
	}
	if record.ID == 0 {
		t.Error("expected generated ID")
	}
	if record.DetectedAt.IsZero() {
		t.Error("expected server-side detected_at")
	}

	records, err := st.ListThreatRecords(ctx, 10)
	if err != nil {
		t.Fatalf("ListThreatRecords failed: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected at least one record")
	}
	t.Logf("Listed %d threat records, newest from %s", len(records), records[0].SourceIP)
}

func TestRecordSuspiciousIPIncrements(t *testing.T) {
	st := getTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unique per run so repeat invocations do not interfere.
	ip := fmt.Sprintf("198.51.100.%d", time.Now().UnixNano()%200+1)

	if err := st.RecordSuspiciousIP(ctx, ip, models.SeverityMedium); err != nil {
		t.Fatalf("first RecordSuspiciousIP failed: %v", err)
	}
	if err := st.RecordSuspiciousIP(ctx, ip, models.SeverityHigh); err != nil {
		t.Fatalf("second RecordSuspiciousIP failed: %v", err)
	}

	ips, err := st.ListSuspiciousIPs(ctx, 500)
	if err != nil {
		t.Fatalf("ListSuspiciousIPs failed: %v", err)
	}
	var found *models.SuspiciousIP
	for i := range ips {
		if ips[i].IPAddress == ip {
			found = &ips[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("IP %s not found after upserts", ip)
	}
	if found.AttemptCount < 2 {
		t.Errorf("expected attempt_count >= 2, got %d", found.AttemptCount)
	}
	if found.Severity != models.SeverityHigh {
		t.Errorf("expected latest severity high, got %s", found.Severity)
	}

	blocked, err := st.BlockIP(ctx, found.ID)
	if err != nil {
		t.Fatalf("BlockIP failed: %v", err)
	}
	if !blocked {
		t.Error("expected BlockIP to report a matched row")
	}
}

func TestBlockIPUnknownID(t *testing.T) {
	st := getTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	blocked, err := st.BlockIP(ctx, 0)
	if err != nil {
		t.Fatalf("BlockIP failed: %v", err)
	}
	if blocked {
		t.Error("expected no match for id 0")
	}
}

func TestSSLCheckCacheRoundTrip(t *testing.T) {
	st := getTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	domain := fmt.Sprintf("cache-%d.example.com", time.Now().UnixNano())

	missing, err := st.LatestSSLCheck(ctx, domain)
	if err != nil {
		t.Fatalf("LatestSSLCheck failed: %v", err)
	}
	if missing != nil {
		t.Fatal("expected no cached row before insert")
	}

	payload, _ := json.Marshal(map[string]any{"has_ssl": true, "ssl_grade": "A"})
	check := models.SSLCheck{Domain: domain, Payload: payload}
	if err := st.InsertSSLCheck(ctx, &check); err != nil {
		t.Fatalf("InsertSSLCheck failed: %v", err)
	}

	cached, err := st.LatestSSLCheck(ctx, domain)
	if err != nil {
		t.Fatalf("LatestSSLCheck after insert failed: %v", err)
	}
	if cached == nil {
		t.Fatal("expected cached row")
	}
	if time.Since(cached.CheckedAt) > models.CacheWindow {
		t.Error("fresh row should be inside the cache window")
	}

	deleted, err := st.DeleteSSLCheck(ctx, cached.ID)
	if err != nil {
		t.Fatalf("DeleteSSLCheck failed: %v", err)
	}
	if !deleted {
		t.Error("expected delete to match the inserted row")
	}
}

func TestEmailBreachCheckLatestWins(t *testing.T) {
	st := getTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := fmt.Sprintf("user-%d@example.com", time.Now().UnixNano())

	first, _ := json.Marshal(map[string]any{"breach_count": 1})
	second, _ := json.Marshal(map[string]any{"breach_count": 4})
	if err := st.InsertEmailBreachCheck(ctx, &models.EmailBreachCheck{Email: email, Payload: first}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := st.InsertEmailBreachCheck(ctx, &models.EmailBreachCheck{Email: email, Payload: second}); err != nil {
		t.Fatalf("second insert failed: %v", err)
	}

	latest, err := st.LatestEmailBreachCheck(ctx, email)
	if err != nil {
		t.Fatalf("LatestEmailBreachCheck failed: %v", err)
	}
	if latest == nil {
		t.Fatal("expected cached row")
	}
	var payload struct {
		BreachCount int `json:"breach_count"`
	}
	if err := json.Unmarshal(latest.Payload, &payload); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if payload.BreachCount != 4 {
		t.Errorf("expected most recent payload, got breach_count=%d", payload.BreachCount)
	}
}

func TestPhishingScanStoresEmptySlices(t *testing.T) {
	st := getTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scan := models.PhishingScan{
		ContentPreview: "Please verify your account",
		Status:         "suspicious",
		Confidence:     60,
	}
	if err := st.InsertPhishingScan(ctx, &scan); err != nil {
		t.Fatalf("InsertPhishingScan failed: %v", err)
	}

	scans, err := st.ListPhishingScans(ctx, 5)
	if err != nil {
		t.Fatalf("ListPhishingScans failed: %v", err)
	}
	if len(scans) == 0 {
		t.Fatal("expected at least one scan")
	}
	t.Logf("Newest scan: %q status=%s", scans[0].ContentPreview, scans[0].Status)
}

func TestIncrementThreatAnalytics(t *testing.T) {
	st := getTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := st.IncrementThreatAnalytics(ctx, "phishing", models.SeverityHigh); err != nil {
		t.Fatalf("first increment failed: %v", err)
	}
	if err := st.IncrementThreatAnalytics(ctx, "phishing", models.SeverityHigh); err != nil {
		t.Fatalf("second increment failed: %v", err)
	}

	rows, err := st.ListThreatAnalytics(ctx, 1)
	if err != nil {
		t.Fatalf("ListThreatAnalytics failed: %v", err)
	}
	var todayCount int
	for _, r := range rows {
		if r.ThreatType == "phishing" && r.Severity == models.SeverityHigh {
			todayCount = r.Count
		}
	}
	if todayCount < 2 {
		t.Errorf("expected today's phishing/high count >= 2, got %d", todayCount)
	}
}

func TestChatAndActivityLogs(t *testing.T) {
	st := getTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := models.ChatMessage{SenderName: "analyst", Content: "What is DNSSEC?"}
	if err := st.InsertChatMessage(ctx, &msg); err != nil {
		t.Fatalf("InsertChatMessage failed: %v", err)
	}

	history, err := st.ListChatMessages(ctx, 50)
	if err != nil {
		t.Fatalf("ListChatMessages failed: %v", err)
	}
	if len(history) == 0 {
		t.Fatal("expected chat history")
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.Before(history[i-1].CreatedAt) {
			t.Fatal("chat history should be in ascending time order")
		}
	}

	if err := st.LogActivity(ctx, "test_event", "integration probe", map[string]string{"k": "v"}); err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}
	logs, err := st.ListActivityLogs(ctx, 10)
	if err != nil {
		t.Fatalf("ListActivityLogs failed: %v", err)
	}
	t.Logf("Found %d activity entries", len(logs))
}
