// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultGatewayURL = "https://ai.gateway.lovable.dev/v1/chat/completions"

type Config struct {
	DatabaseURL string
	Port        string
	AppVersion  string

	// Provider secrets. A missing key does not fail startup; the handler
	// that needs it responds 500 "not configured" instead.
	AIGatewayURL     string
	AIGatewayKey     string
	AIModel          string
	ScreenshotAPIKey string
	VirusTotalAPIKey string
	IPInfoToken      string

	Tuning Tuning
}

// Tuning carries the scoring knobs that operators may override via an
// optional YAML file (TUNING_FILE).
type Tuning struct {
	WellKnownIPs []string       `yaml:"well_known_ips"`
	DNSWeights   map[string]int `yaml:"dns_weights"`
	VPNKeywords  []string       `yaml:"vpn_keywords"`
}

func defaultTuning() Tuning {
	return Tuning{
		WellKnownIPs: []string{
			"8.8.8.8", "8.8.4.4",
			"1.1.1.1", "1.0.0.1",
			"9.9.9.9", "208.67.222.222",
		},
		DNSWeights: map[string]int{
			"dnssec": 30,
			"spf":    20,
			"dmarc":  25,
			"dkim":   15,
			"caa":    10,
		},
		VPNKeywords: []string{"vpn", "proxy", "hosting", "datacenter", "colo"},
	}
}

func (t Tuning) IsWellKnownIP(ip string) bool {
	for _, known := range t.WellKnownIPs {
		if known == ip {
			return true
		}
	}
	return false
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	gatewayURL := os.Getenv("AI_GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = defaultGatewayURL
	}

	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = "google/gemini-2.5-flash"
	}

	tuning := defaultTuning()
	if path := os.Getenv("TUNING_FILE"); path != "" {
		if err := loadTuningFile(path, &tuning); err != nil {
			return nil, fmt.Errorf("failed to load tuning file %s: %w", path, err)
		}
	}

	return &Config{
		DatabaseURL:      dbURL,
		Port:             port,
		AppVersion:       "1.4.2",
		AIGatewayURL:     gatewayURL,
		AIGatewayKey:     os.Getenv("AI_GATEWAY_KEY"),
		AIModel:          model,
		ScreenshotAPIKey: os.Getenv("SCREENSHOT_API_KEY"),
		VirusTotalAPIKey: os.Getenv("VIRUSTOTAL_API_KEY"),
		IPInfoToken:      os.Getenv("IPINFO_TOKEN"),
		Tuning:           tuning,
	}, nil
}

// loadTuningFile overlays file values onto the defaults, so a partial file
// only overrides the sections it names.
func loadTuningFile(path string, tuning *Tuning) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var overlay Tuning
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return err
	}

	if len(overlay.WellKnownIPs) > 0 {
		tuning.WellKnownIPs = overlay.WellKnownIPs
	}
	if len(overlay.DNSWeights) > 0 {
		for k, v := range overlay.DNSWeights {
			tuning.DNSWeights[k] = v
		}
	}
	if len(overlay.VPNKeywords) > 0 {
		tuning.VPNKeywords = overlay.VPNKeywords
	}
	return nil
}
