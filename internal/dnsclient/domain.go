// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var (
	labelRegex    = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	tldRegex      = regexp.MustCompile(`^[a-zA-Z]{2,}$`)
	asciiRegex    = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)
	hexLabelRegex = regexp.MustCompile(`^[0-9a-f]+$`)
)

const maxLabelDepth = 10

// DomainToASCII converts an internationalized domain to its punycode form.
func DomainToASCII(domain string) (string, error) {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimRight(domain, ".")

	p := idna.New(idna.MapForLookup(), idna.Transitional(false))
	ascii, err := p.ToASCII(domain)
	if err != nil {
		if asciiRegex.MatchString(domain) {
			for _, label := range strings.Split(domain, ".") {
				if label == "" || len(label) > 63 || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
					return "", err
				}
			}
			return domain, nil
		}
		return "", err
	}
	return ascii, nil
}

// ValidateDomain checks overall shape: label syntax, depth, TLD, and a few
// scanner-probe patterns that should never reach the analysis pipeline.
func ValidateDomain(domain string) bool {
	if domain == "" || len(domain) > 253 {
		return false
	}

	domain = strings.TrimSpace(domain)
	domain = strings.TrimRight(domain, ".")
	if domain == "" {
		return false
	}

	ascii, err := DomainToASCII(domain)
	if err != nil {
		return false
	}

	if strings.Contains(ascii, "..") || strings.HasPrefix(ascii, ".") || strings.HasPrefix(ascii, "-") {
		return false
	}

	labels := strings.Split(ascii, ".")
	if len(labels) < 2 || len(labels) > maxLabelDepth {
		return false
	}

	for _, label := range labels {
		if label == "" || len(label) > 63 {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		if !labelRegex.MatchString(label) {
			return false
		}
	}

	if looksLikeScannerProbe(ascii) {
		return false
	}

	tld := labels[len(labels)-1]
	return tldRegex.MatchString(tld) || strings.HasPrefix(tld, "xn--")
}

var probePatterns = []string{
	"ssrf", "oastify", "burpcollaborator", "interact.sh",
	"canarytokens", "dnslog", "ceye.io",
}

func looksLikeScannerProbe(domain string) bool {
	lower := strings.ToLower(domain)
	for _, pat := range probePatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}

	// Two or more long hex labels is the shape of an exfil token, not a
	// domain a person typed in.
	longHexCount := 0
	for _, label := range strings.Split(lower, ".") {
		if len(label) >= 20 && hexLabelRegex.MatchString(label) {
			longHexCount++
		}
	}
	return longHexCount >= 2
}
