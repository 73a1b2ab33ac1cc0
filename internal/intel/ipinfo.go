// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/telemetry"
)

// IPInfoResult is the subset of the ipinfo.io response the dashboard uses.
type IPInfoResult struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Timezone string `json:"timezone"`
	Anycast  bool   `json:"anycast"`
	Bogon    bool   `json:"bogon"`
}

type IPInfoClient struct {
	httpClient *http.Client
	token      string
	cache      *telemetry.TTLCache[*IPInfoResult]
	registry   *telemetry.Registry
}

func NewIPInfoClient(token string, registry *telemetry.Registry) *IPInfoClient {
	return &IPInfoClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
		cache:      telemetry.NewTTLCache[*IPInfoResult]("ipinfo", 1024, 24*time.Hour),
		registry:   registry,
	}
}

func (c *IPInfoClient) Configured() bool {
	return c.token != ""
}

func (c *IPInfoClient) CacheStats() telemetry.CacheStats {
	return c.cache.Stats()
}

func (c *IPInfoClient) Lookup(ctx context.Context, ip string) (*IPInfoResult, error) {
	if !c.Configured() {
		return nil, nil
	}

	if cached, ok := c.cache.Get(ip); ok {
		return cached, nil
	}

	url := fmt.Sprintf("https://ipinfo.io/%s/json?token=%s", ip, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.fail(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		c.fail("rate limited")
		return nil, fmt.Errorf("ipinfo rate limit exceeded")
	case http.StatusForbidden, http.StatusUnauthorized:
		c.fail("invalid token")
		return nil, fmt.Errorf("ipinfo: invalid or expired token")
	}
	if resp.StatusCode != http.StatusOK {
		c.fail(fmt.Sprintf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("ipinfo: unexpected status %d", resp.StatusCode)
	}

	var result IPInfoResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.fail("unparsable response")
		return nil, err
	}

	c.cache.Set(ip, &result)
	if c.registry != nil {
		c.registry.RecordSuccess("ipinfo", time.Since(start))
	}
	return &result, nil
}

func (c *IPInfoClient) fail(msg string) {
	if c.registry != nil {
		c.registry.RecordFailure("ipinfo", msg)
	}
	slog.Warn("ipinfo lookup failed", "error", msg)
}
