// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package telemetry_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/telemetry"
)

const testProvider = "test-provider"

func TestRegistryInitialStateHealthy(t *testing.T) {
	r := telemetry.NewRegistry()
	stats := r.GetStats(testProvider)
	if stats.State != telemetry.Healthy {
		t.Errorf("expected healthy initial state, got %s", stats.State)
	}
}

func TestRegistryDegradedAfterConsecutiveFailures(t *testing.T) {
	r := telemetry.NewRegistry()

	for i := 0; i < 3; i++ {
		r.RecordFailure(testProvider, "timeout")
	}

	stats := r.GetStats(testProvider)
	if stats.State != telemetry.Degraded {
		t.Errorf("expected degraded after 3 failures, got %s", stats.State)
	}
	if stats.FailureCount != 3 {
		t.Errorf("expected 3 failures, got %d", stats.FailureCount)
	}
}

func TestRegistryUnhealthyAfterMoreFailures(t *testing.T) {
	r := telemetry.NewRegistry()

	for i := 0; i < 5; i++ {
		r.RecordFailure(testProvider, "timeout")
	}

	if got := r.GetStats(testProvider).State; got != telemetry.Unhealthy {
		t.Errorf("expected unhealthy after 5 failures, got %s", got)
	}
}

func TestRegistrySuccessResetsConsecutiveFailures(t *testing.T) {
	r := telemetry.NewRegistry()

	for i := 0; i < 4; i++ {
		r.RecordFailure(testProvider, "timeout")
	}
	r.RecordSuccess(testProvider, 100*time.Millisecond)

	stats := r.GetStats(testProvider)
	if stats.State != telemetry.Healthy {
		t.Errorf("expected healthy after success, got %s", stats.State)
	}
	if stats.ConsecFailures != 0 {
		t.Errorf("expected consecutive failures reset, got %d", stats.ConsecFailures)
	}
	if stats.FailureCount != 4 {
		t.Errorf("total failure count should be preserved, got %d", stats.FailureCount)
	}
}

func TestRegistryLatencyStats(t *testing.T) {
	r := telemetry.NewRegistry()

	for i := 1; i <= 10; i++ {
		r.RecordSuccess(testProvider, time.Duration(i*10)*time.Millisecond)
	}

	stats := r.GetStats(testProvider)
	if stats.AvgLatencyMs < 50 || stats.AvgLatencyMs > 60 {
		t.Errorf("expected avg latency around 55ms, got %.1f", stats.AvgLatencyMs)
	}
	if stats.P95LatencyMs < stats.AvgLatencyMs {
		t.Errorf("p95 (%.1f) should not be below avg (%.1f)", stats.P95LatencyMs, stats.AvgLatencyMs)
	}
}

func TestRegistryAllStatsSorted(t *testing.T) {
	r := telemetry.NewRegistry()
	r.RecordSuccess("zeta", time.Millisecond)
	r.RecordSuccess("alpha", time.Millisecond)
	r.RecordSuccess("mid", time.Millisecond)

	stats := r.AllStats()
	if len(stats) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(stats))
	}
	if stats[0].Name != "alpha" || stats[2].Name != "zeta" {
		t.Errorf("providers not sorted by name: %s, %s, %s", stats[0].Name, stats[1].Name, stats[2].Name)
	}
}

func TestTTLCacheHitAndMiss(t *testing.T) {
	cache := telemetry.NewTTLCache[string]("test", 10, time.Minute)

	if _, ok := cache.Get("missing"); ok {
		t.Fatal("expected miss for absent key")
	}

	cache.Set("key", "value")
	got, ok := cache.Get("key")
	if !ok || got != "value" {
		t.Fatalf("expected hit with 'value', got %q ok=%v", got, ok)
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected 1 hit / 1 miss, got %d / %d", stats.Hits, stats.Misses)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	cache := telemetry.NewTTLCache[int]("test", 10, 10*time.Millisecond)

	cache.Set("key", 42)
	time.Sleep(25 * time.Millisecond)

	if _, ok := cache.Get("key"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestTTLCacheEviction(t *testing.T) {
	cache := telemetry.NewTTLCache[int]("test", 3, time.Minute)

	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("key%d", i), i)
	}

	if size := cache.Stats().Size; size > 3 {
		t.Errorf("cache exceeded max size: %d", size)
	}
}
