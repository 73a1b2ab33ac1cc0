// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package intel

import (
	"bufio"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	phishFeedURL      = "https://raw.githubusercontent.com/openphish/public_feed/refs/heads/main/feed.txt"
	phishFeedCacheTTL = 12 * time.Hour
)

var (
	phishFeedCache map[string]bool
	phishFeedTime  time.Time
	phishFeedMu    sync.RWMutex
)

func fetchPhishFeed() map[string]bool {
	phishFeedMu.RLock()
	if phishFeedCache != nil && time.Since(phishFeedTime) < phishFeedCacheTTL {
		defer phishFeedMu.RUnlock()
		return phishFeedCache
	}
	phishFeedMu.RUnlock()

	phishFeedMu.Lock()
	defer phishFeedMu.Unlock()

	if phishFeedCache != nil && time.Since(phishFeedTime) < phishFeedCacheTTL {
		return phishFeedCache
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(phishFeedURL)
	if err != nil {
		return phishFeedCache
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return phishFeedCache
	}

	feed := make(map[string]bool)
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parsed, err := url.Parse(line)
		if err == nil && parsed.Host != "" {
			feed[strings.ToLower(parsed.Host)] = true
		}
	}

	if len(feed) > 0 {
		phishFeedCache = feed
		phishFeedTime = time.Now()
	}

	return phishFeedCache
}

// DomainInPhishFeed reports whether the domain appears as a host in the
// OpenPhish public feed. A stale or unreachable feed never fails the
// caller; it simply reports no match.
func DomainInPhishFeed(domain string) bool {
	feed := fetchPhishFeed()
	if len(feed) == 0 {
		return false
	}
	return feed[strings.ToLower(domain)]
}

// URLsInPhishFeed returns the distinct hosts from urls that match the feed.
func URLsInPhishFeed(urls []string) []string {
	feed := fetchPhishFeed()
	if len(feed) == 0 {
		return nil
	}

	var matched []string
	seen := make(map[string]bool)
	for _, rawURL := range urls {
		parsed, err := url.Parse(rawURL)
		if err != nil || parsed.Host == "" {
			continue
		}
		host := strings.ToLower(parsed.Host)
		if seen[host] {
			continue
		}
		seen[host] = true
		if feed[host] {
			matched = append(matched, host)
		}
	}
	return matched
}
