// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSSLStore struct {
	cached      *models.SSLCheck
	latestCalls int
	inserted    []models.SSLCheck
}

func (f *fakeSSLStore) LatestSSLCheck(ctx context.Context, domain string) (*models.SSLCheck, error) {
	f.latestCalls++
	return f.cached, nil
}

func (f *fakeSSLStore) InsertSSLCheck(ctx context.Context, check *models.SSLCheck) error {
	f.inserted = append(f.inserted, *check)
	return nil
}

func (f *fakeSSLStore) DeleteSSLCheck(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (f *fakeSSLStore) DeleteAllSSLChecks(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeSSLStore) ListSSLChecks(ctx context.Context, limit int) ([]models.SSLCheck, error) {
	return nil, nil
}

type staticResolver struct {
	resolves bool
	calls    int
}

func (r *staticResolver) DomainResolves(ctx context.Context, domain string) bool {
	r.calls++
	return r.resolves
}

func newSSLTestHandler(st *fakeSSLStore, resolver *staticResolver, probeCalls *int) *SSLHandler {
	return &SSLHandler{
		Store: st,
		DNS:   resolver,
		probeCert: func(ctx context.Context, domain string) (*intel.CertInfo, error) {
			*probeCalls++
			return &intel.CertInfo{
				Subject:       domain,
				Issuer:        "Test CA",
				DaysRemaining: 90,
				TLSVersion:    "TLS 1.3",
			}, nil
		},
	}
}

func runCheckSSL(t *testing.T, h *SSLHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.POST("/check-ssl", h.CheckSSL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/check-ssl", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func freshSSLRow(t *testing.T, domain string, age time.Duration) *models.SSLCheck {
	t.Helper()
	payload, err := json.Marshal(sslPayload{DomainExists: true, HasSSL: true, Grade: "A"})
	if err != nil {
		t.Fatalf("payload marshal: %v", err)
	}
	return &models.SSLCheck{
		ID:        1,
		Domain:    domain,
		Payload:   payload,
		CheckedAt: time.Now().Add(-age),
	}
}

func TestCheckSSLServesFreshCacheWithoutProbing(t *testing.T) {
	st := &fakeSSLStore{cached: freshSSLRow(t, "example.com", time.Hour)}
	resolver := &staticResolver{resolves: true}
	probeCalls := 0
	h := newSSLTestHandler(st, resolver, &probeCalls)

	w := runCheckSSL(t, h, `{"domain": "example.com"}`)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body["cached"] != true {
		t.Errorf("expected cached=true, got %v", body["cached"])
	}
	if resolver.calls != 0 || probeCalls != 0 {
		t.Errorf("fresh cache hit must not touch the network: resolver=%d probe=%d", resolver.calls, probeCalls)
	}
	if len(st.inserted) != 0 {
		t.Errorf("cache hit must not write a new row, got %d inserts", len(st.inserted))
	}
}

func TestCheckSSLForceRefreshBypassesCacheRead(t *testing.T) {
	st := &fakeSSLStore{cached: freshSSLRow(t, "example.com", time.Hour)}
	resolver := &staticResolver{resolves: true}
	probeCalls := 0
	h := newSSLTestHandler(st, resolver, &probeCalls)

	w := runCheckSSL(t, h, `{"domain": "example.com", "forceRefresh": true}`)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["cached"] != false {
		t.Errorf("forceRefresh response must not be marked cached, got %v", body["cached"])
	}
	if st.latestCalls != 0 {
		t.Errorf("forceRefresh must skip the cache read, got %d reads", st.latestCalls)
	}
	if probeCalls != 1 {
		t.Errorf("expected exactly one probe, got %d", probeCalls)
	}
	if len(st.inserted) != 1 {
		t.Fatalf("refreshed result should be persisted once, got %d inserts", len(st.inserted))
	}
}

func TestCheckSSLStaleCacheRefetches(t *testing.T) {
	st := &fakeSSLStore{cached: freshSSLRow(t, "example.com", models.CacheWindow+time.Hour)}
	resolver := &staticResolver{resolves: true}
	probeCalls := 0
	h := newSSLTestHandler(st, resolver, &probeCalls)

	w := runCheckSSL(t, h, `{"domain": "example.com"}`)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if st.latestCalls != 1 {
		t.Errorf("expected one cache read, got %d", st.latestCalls)
	}
	if probeCalls != 1 {
		t.Errorf("stale cache must trigger a fresh probe, got %d", probeCalls)
	}
	if len(st.inserted) != 1 {
		t.Errorf("stale refresh should persist the new observation, got %d inserts", len(st.inserted))
	}
}

func TestCheckSSLUnresolvableDomainNotPersisted(t *testing.T) {
	st := &fakeSSLStore{}
	resolver := &staticResolver{resolves: false}
	probeCalls := 0
	h := newSSLTestHandler(st, resolver, &probeCalls)

	w := runCheckSSL(t, h, `{"domain": "no-such-host.example"}`)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Result sslPayload `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body.Result.DomainExists {
		t.Error("unresolvable domain reported as existing")
	}
	if probeCalls != 0 {
		t.Errorf("no TLS probe expected for an unresolvable domain, got %d", probeCalls)
	}
	if len(st.inserted) != 0 {
		t.Errorf("unresolvable result must not be cached, got %d inserts", len(st.inserted))
	}
}
