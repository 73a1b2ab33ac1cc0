// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FieldError names the offending input field. Handlers map it to a 400.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	emailRegex = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
	ipv4Regex  = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)
)

// NormalizeDomain strips a leading http:// or https:// scheme, cuts
// everything after the first slash, trims whitespace and lower-cases.
// Normalizing an already-normalized value returns it unchanged.
func NormalizeDomain(input string) string {
	domain := strings.ToLower(strings.TrimSpace(input))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	if idx := strings.Index(domain, "/"); idx != -1 {
		domain = domain[:idx]
	}
	return domain
}

// NormalizeEmail trims and lower-cases, then validates against a
// conservative local@domain.tld pattern.
func NormalizeEmail(input string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(input))
	if !emailRegex.MatchString(email) {
		return "", &FieldError{Field: "email", Message: "invalid email format"}
	}
	return email, nil
}

// ValidateIPv4 accepts strict dotted-quad notation with each octet in
// 0..255. Hostnames, IPv6 and out-of-range octets are rejected.
func ValidateIPv4(ip string) error {
	m := ipv4Regex.FindStringSubmatch(strings.TrimSpace(ip))
	if m == nil {
		return &FieldError{Field: "ip", Message: "invalid IPv4 address format"}
	}
	for _, octet := range m[1:] {
		n, err := strconv.Atoi(octet)
		if err != nil || n > 255 {
			return &FieldError{Field: "ip", Message: "IPv4 octet out of range"}
		}
	}
	return nil
}

// EmailDomain returns the part after the @ of an already-normalized email.
func EmailDomain(email string) string {
	if idx := strings.LastIndex(email, "@"); idx != -1 {
		return email[idx+1:]
	}
	return ""
}

// MaskEmail hides most of the local part, keeping the first and last
// character: "someone@example.com" -> "s*****e@example.com".
func MaskEmail(email string) string {
	idx := strings.LastIndex(email, "@")
	if idx <= 0 {
		return email
	}
	local, domain := email[:idx], email[idx:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + domain
}

// Truncate cuts s to at most n bytes without splitting a rune, so the
// result is always valid UTF-8. Content previews and prompt payloads both
// rely on this bound; Postgres rejects TEXT values with broken encoding.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
