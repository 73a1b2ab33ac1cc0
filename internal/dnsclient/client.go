// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/miekg/dns"
	"codeberg.org/miekg/dns/dnsutil"
)

var DefaultResolvers = []string{"1.1.1.1", "8.8.8.8", "9.9.9.9"}

const (
	dohGoogleURL   = "https://dns.google/resolve"
	defaultTimeout = 2 * time.Second
	queryCacheTTL  = 5 * time.Minute
	queryCacheMax  = 2048
)

var UserAgent = "CyberShield-SecurityDashboard/1.0"

// Client answers record queries over DNS-over-HTTPS with plain UDP
// fallback, with a small TTL cache in front.
type Client struct {
	resolvers  []string
	httpClient *http.Client
	timeout    time.Duration

	cacheMu sync.RWMutex
	cache   map[string]cacheEntry
}

type cacheEntry struct {
	data      []string
	timestamp time.Time
}

type Option func(*Client)

func WithResolvers(r []string) Option {
	return func(c *Client) { c.resolvers = r }
}

func WithTimeout(t time.Duration) Option {
	return func(c *Client) { c.timeout = t }
}

func New(opts ...Option) *Client {
	c := &Client{
		resolvers: DefaultResolvers,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		timeout: defaultTimeout,
		cache:   make(map[string]cacheEntry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) cacheGet(key string) ([]string, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || time.Since(entry.timestamp) > queryCacheTTL {
		return nil, false
	}
	return entry.data, true
}

func (c *Client) cacheSet(key string, data []string) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cacheEntry{data: data, timestamp: time.Now()}
	if len(c.cache) > queryCacheMax {
		cutoff := time.Now().Add(-queryCacheTTL)
		for k, v := range c.cache {
			if v.timestamp.Before(cutoff) {
				delete(c.cache, k)
			}
		}
	}
}

func dnsTypeFromString(recordType string) (uint16, error) {
	switch strings.ToUpper(recordType) {
	case "A":
		return dns.TypeA, nil
	case "AAAA":
		return dns.TypeAAAA, nil
	case "MX":
		return dns.TypeMX, nil
	case "TXT":
		return dns.TypeTXT, nil
	case "NS":
		return dns.TypeNS, nil
	case "CNAME":
		return dns.TypeCNAME, nil
	case "CAA":
		return dns.TypeCAA, nil
	case "DNSKEY":
		return dns.TypeDNSKEY, nil
	case "DS":
		return dns.TypeDS, nil
	default:
		return 0, fmt.Errorf("unsupported record type: %s", recordType)
	}
}

func rrToString(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.String()
	case *dns.AAAA:
		return v.AAAA.String()
	case *dns.MX:
		return fmt.Sprintf("%d %s", v.Preference, v.Mx)
	case *dns.TXT:
		return strings.Join(v.Txt, "")
	case *dns.NS:
		return v.Ns
	case *dns.CNAME:
		return v.Target
	case *dns.CAA:
		return fmt.Sprintf("%d %s \"%s\"", v.Flag, v.Tag, v.Value)
	case *dns.DNSKEY:
		return v.String()
	case *dns.DS:
		return v.String()
	default:
		hdr := rr.Header()
		return strings.TrimPrefix(rr.String(), hdr.String())
	}
}

// QueryDNS returns record data strings for one (type, domain) pair. DoH is
// tried first, then each configured UDP resolver.
func (c *Client) QueryDNS(ctx context.Context, recordType, domain string) []string {
	if domain == "" || recordType == "" {
		return nil
	}

	cacheKey := fmt.Sprintf("%s:%s", strings.ToUpper(recordType), strings.ToLower(domain))
	if cached, ok := c.cacheGet(cacheKey); ok {
		return cached
	}

	results := c.dohQuery(ctx, domain, recordType)
	if len(results) > 0 {
		c.cacheSet(cacheKey, results)
		return results
	}

	for _, resolver := range c.resolvers {
		results = c.udpQuery(ctx, domain, recordType, resolver)
		if len(results) > 0 {
			c.cacheSet(cacheKey, results)
			return results
		}
	}

	return nil
}

type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Data string `json:"data"`
	} `json:"Answer"`
}

func (c *Client) dohQuery(ctx context.Context, domain, recordType string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dohGoogleURL, nil)
	if err != nil {
		return nil
	}

	q := url.Values{}
	q.Set("name", domain)
	q.Set("type", strings.ToUpper(recordType))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/dns-json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("DoH query failed", "domain", domain, "type", recordType, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}

	return ParseDoHAnswer(body, recordType)
}

// ParseDoHAnswer decodes a dns-json body into deduplicated record strings.
func ParseDoHAnswer(body []byte, recordType string) []string {
	var data dohResponse
	if json.Unmarshal(body, &data) != nil {
		return nil
	}
	if data.Status != 0 || len(data.Answer) == 0 {
		return nil
	}

	var results []string
	seen := make(map[string]bool)
	for _, answer := range data.Answer {
		rd := strings.TrimSpace(answer.Data)
		if rd == "" {
			continue
		}
		if strings.ToUpper(recordType) == "TXT" {
			rd = strings.Trim(rd, "\"")
		}
		if !seen[rd] {
			results = append(results, rd)
			seen[rd] = true
		}
	}
	return results
}

func (c *Client) udpQuery(ctx context.Context, domain, recordType, resolverIP string) []string {
	qtype, err := dnsTypeFromString(recordType)
	if err != nil {
		return nil
	}

	fqdn := dnsutil.Fqdn(domain)
	msg := dns.NewMsg(fqdn, qtype)
	msg.RecursionDesired = true

	dnsClient := newDNSClient(c.timeout)

	r, _, err := dnsClient.Exchange(ctx, msg, "udp", net.JoinHostPort(resolverIP, "53"))
	if err != nil || r.Rcode == dns.RcodeNameError {
		return nil
	}

	var results []string
	for _, rr := range r.Answer {
		if s := rrToString(rr); s != "" {
			results = append(results, s)
		}
	}
	return results
}

// CheckDNSSECValidated asks a validating resolver for the AD flag on the
// domain's A record (falling back to SOA when the answer is empty).
func (c *Client) CheckDNSSECValidated(ctx context.Context, domain string) (validated bool, ok bool) {
	for _, resolverIP := range []string{"8.8.8.8", "1.1.1.1"} {
		fqdn := dnsutil.Fqdn(domain)
		msg := dns.NewMsg(fqdn, dns.TypeA)
		msg.RecursionDesired = true
		msg.UDPSize, msg.Security = 4096, true

		dnsClient := newDNSClient(3 * time.Second)

		r, _, err := dnsClient.Exchange(ctx, msg, "udp", net.JoinHostPort(resolverIP, "53"))
		if err != nil {
			continue
		}
		if r.Rcode == dns.RcodeNameError {
			return false, false
		}

		if len(r.Answer) == 0 {
			msg2 := dns.NewMsg(fqdn, dns.TypeSOA)
			msg2.RecursionDesired = true
			msg2.UDPSize, msg2.Security = 4096, true
			if r2, _, err2 := dnsClient.Exchange(ctx, msg2, "udp", net.JoinHostPort(resolverIP, "53")); err2 == nil {
				r = r2
			}
		}

		return r.AuthenticatedData, true
	}
	return false, false
}

// ProbeExists reports whether the domain answers an A query, and the CNAME
// target if the name is an alias.
func (c *Client) ProbeExists(ctx context.Context, domain string) (exists bool, cname string) {
	fqdn := dnsutil.Fqdn(domain)
	msg := dns.NewMsg(fqdn, dns.TypeA)
	msg.RecursionDesired = true

	dnsClient := newDNSClient(3 * time.Second)

	resolverIP := "8.8.8.8"
	r, _, err := dnsClient.Exchange(ctx, msg, "udp", net.JoinHostPort(resolverIP, "53"))
	if err != nil {
		resolverIP = "1.1.1.1"
		r, _, err = dnsClient.Exchange(ctx, msg, "udp", net.JoinHostPort(resolverIP, "53"))
		if err != nil {
			return false, ""
		}
	}

	if r.Rcode == dns.RcodeNameError {
		return false, ""
	}

	hasA := false
	cnameTarget := ""
	for _, rr := range r.Answer {
		switch v := rr.(type) {
		case *dns.A:
			hasA = true
		case *dns.CNAME:
			if cnameTarget == "" {
				cnameTarget = strings.TrimSuffix(v.Target, ".")
			}
		}
	}

	if hasA || cnameTarget != "" {
		return true, cnameTarget
	}
	return false, ""
}

func newDNSClient(timeout time.Duration) *dns.Client {
	return &dns.Client{
		Transport: &dns.Transport{
			Dialer: &net.Dialer{
				Timeout: timeout,
			},
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}
