// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	t.Setenv(key, value)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoad_DefaultPort(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://test")
	setEnv(t, "PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
}

func TestLoad_CustomPort(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://test")
	setEnv(t, "PORT", "3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Port)
	}
}

func TestLoad_DefaultModel(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://test")
	setEnv(t, "AI_MODEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AIModel != "google/gemini-2.5-flash" {
		t.Errorf("unexpected default model: %s", cfg.AIModel)
	}
	if cfg.AIGatewayURL == "" {
		t.Error("expected a default gateway URL")
	}
}

func TestLoad_ProviderKeysOptional(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://test")
	setEnv(t, "AI_GATEWAY_KEY", "")
	setEnv(t, "VIRUSTOTAL_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("missing provider keys must not fail startup: %v", err)
	}
	if cfg.AIGatewayKey != "" || cfg.VirusTotalAPIKey != "" {
		t.Error("expected empty provider keys")
	}
}

func TestDefaultTuning(t *testing.T) {
	tuning := defaultTuning()

	if !tuning.IsWellKnownIP("8.8.8.8") {
		t.Error("8.8.8.8 should be well known by default")
	}
	if tuning.IsWellKnownIP("203.0.113.9") {
		t.Error("203.0.113.9 should not be well known")
	}

	total := 0
	for _, w := range tuning.DNSWeights {
		total += w
	}
	if total != 100 {
		t.Errorf("default DNS weights should sum to 100, got %d", total)
	}
}

func TestLoad_TuningFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	contents := []byte("well_known_ips:\n  - \"192.0.2.1\"\ndns_weights:\n  dnssec: 40\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	setEnv(t, "DATABASE_URL", "postgres://test")
	setEnv(t, "TUNING_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Tuning.IsWellKnownIP("192.0.2.1") {
		t.Error("overlay should replace the well-known list")
	}
	if cfg.Tuning.IsWellKnownIP("8.8.8.8") {
		t.Error("default well-known list should be replaced, not merged")
	}
	// Partial weight maps merge onto the defaults.
	if cfg.Tuning.DNSWeights["dnssec"] != 40 {
		t.Errorf("expected overridden dnssec weight 40, got %d", cfg.Tuning.DNSWeights["dnssec"])
	}
	if cfg.Tuning.DNSWeights["spf"] != 20 {
		t.Errorf("expected default spf weight 20, got %d", cfg.Tuning.DNSWeights["spf"])
	}
}

func TestLoad_BadTuningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("well_known_ips: {not valid"), 0o600); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	setEnv(t, "DATABASE_URL", "postgres://test")
	setEnv(t, "TUNING_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed tuning file")
	}
}
