// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package intel_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/telemetry"
)

const testHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestVirusTotalNotConfigured(t *testing.T) {
	client := intel.NewVirusTotalClient("", nil)
	_, err := client.LookupHash(context.Background(), testHash)
	if !errors.Is(err, intel.ErrVTNotConfigured) {
		t.Fatalf("expected ErrVTNotConfigured, got %v", err)
	}
}

func TestVirusTotalFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-apikey") != "vt-key" {
			t.Errorf("missing x-apikey header")
		}
		if r.URL.Path != "/files/"+testHash {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"attributes": map[string]any{
					"last_analysis_stats": map[string]int{
						"malicious": 12, "suspicious": 3, "harmless": 50, "undetected": 10,
					},
					"names":      []string{"a.exe", "b.exe", "c.exe", "d.exe", "e.exe", "f.exe"},
					"type_tag":   "peexe",
					"reputation": -40,
				},
			},
		})
	}))
	defer ts.Close()

	client := intel.NewVirusTotalClient("vt-key", telemetry.NewRegistry())
	client.SetBaseURL(ts.URL)

	report, err := client.LookupHash(context.Background(), testHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Found {
		t.Fatal("expected Found=true")
	}
	if report.Malicious != 12 || report.Suspicious != 3 {
		t.Errorf("unexpected stats: %+v", report)
	}
	if len(report.Names) != 5 {
		t.Errorf("names should be capped at 5, got %d", len(report.Names))
	}
}

func TestVirusTotalUnknownHashIsClean(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := intel.NewVirusTotalClient("vt-key", nil)
	client.SetBaseURL(ts.URL)

	report, err := client.LookupHash(context.Background(), testHash)
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if report.Found {
		t.Fatal("expected Found=false for unknown hash")
	}
}

func TestScreenshotNotConfigured(t *testing.T) {
	client := intel.NewScreenshotClient("", nil)
	_, err := client.Capture(context.Background(), "https://example.com", false, "desktop")
	if !errors.Is(err, intel.ErrScreenshotNotConfigured) {
		t.Fatalf("expected ErrScreenshotNotConfigured, got %v", err)
	}
}

func TestScreenshotCapture(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("access_key") != "shot-key" {
			t.Errorf("missing access_key")
		}
		if q.Get("viewport_width") != "390" {
			t.Errorf("expected mobile width 390, got %q", q.Get("viewport_width"))
		}
		if q.Get("full_page") != "true" {
			t.Errorf("expected full_page=true")
		}
		w.Write([]byte("PNGDATA"))
	}))
	defer ts.Close()

	client := intel.NewScreenshotClient("shot-key", nil)
	client.SetBaseURL(ts.URL)

	shot, err := client.Capture(context.Background(), "https://example.com", true, "mobile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shot.Device != "mobile" || shot.Viewport.Width != 390 {
		t.Errorf("unexpected viewport: %+v", shot)
	}
	if shot.ImageBase64 == "" {
		t.Error("expected base64 image data")
	}
}

func TestViewportForUnknownDefaultsDesktop(t *testing.T) {
	device, vp := intel.ViewportFor("fridge")
	if device != "desktop" || vp.Width != 1920 {
		t.Errorf("unknown device should default to desktop, got %s %+v", device, vp)
	}
}

func TestGeolocateMergesIPAPI(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success", "country": "United States", "city": "Mountain View",
			"regionName": "California", "isp": "Google LLC", "org": "Google Public DNS",
			"lat": 37.4056, "lon": -122.0775,
		})
	}))
	defer ts.Close()
	intel.SetIPAPIBaseURL(ts.URL)
	defer intel.SetIPAPIBaseURL("http://ip-api.com/json")

	// Unconfigured ipinfo contributes nothing; the merge must tolerate it.
	ipinfo := intel.NewIPInfoClient("", nil)

	geo := intel.Geolocate(context.Background(), "8.8.8.8", ipinfo)
	if geo.Country != "United States" || geo.City != "Mountain View" {
		t.Errorf("unexpected geo: %+v", geo)
	}
	if geo.ISP != "Google LLC" {
		t.Errorf("expected ISP from ip-api, got %q", geo.ISP)
	}
	if len(geo.Sources) != 1 || geo.Sources[0] != "ip-api" {
		t.Errorf("expected single ip-api source, got %v", geo.Sources)
	}
}

func TestGeolocateAllSourcesFailing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "fail"})
	}))
	defer ts.Close()
	intel.SetIPAPIBaseURL(ts.URL)
	defer intel.SetIPAPIBaseURL("http://ip-api.com/json")

	geo := intel.Geolocate(context.Background(), "203.0.113.9", intel.NewIPInfoClient("", nil))
	if geo.IP != "203.0.113.9" {
		t.Errorf("result should carry the IP, got %q", geo.IP)
	}
	if len(geo.Sources) != 0 {
		t.Errorf("no sources should be recorded, got %v", geo.Sources)
	}
}
