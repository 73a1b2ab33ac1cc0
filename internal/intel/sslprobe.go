// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package intel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// CertInfo holds what the dashboard reports about a site certificate.
type CertInfo struct {
	Subject       string   `json:"subject"`
	Issuer        string   `json:"issuer"`
	Serial        string   `json:"serial"`
	DNSNames      []string `json:"dns_names"`
	ValidFrom     string   `json:"valid_from"`
	ValidUntil    string   `json:"valid_until"`
	DaysRemaining int      `json:"days_remaining"`
	Expired       bool     `json:"expired"`
	SelfSigned    bool     `json:"self_signed"`
	TLSVersion    string   `json:"tls_version"`
}

// ProbeCertificate performs a TLS handshake against port 443 and reads
// the leaf certificate. Verification is skipped so expired and
// self-signed certificates can still be inspected and reported.
func ProbeCertificate(ctx context.Context, domain string) (*CertInfo, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 8 * time.Second},
		Config: &tls.Config{
			InsecureSkipVerify: true,
			ServerName:         domain,
		},
	}
	conn, err := dialer.DialContext(ctx, "tcp", domain+":443")
	if err != nil {
		return nil, fmt.Errorf("TLS handshake with %s failed: %w", domain, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, fmt.Errorf("no certificate presented by %s", domain)
	}
	cert := state.PeerCertificates[0]

	now := time.Now()
	info := &CertInfo{
		Subject:       cert.Subject.CommonName,
		Issuer:        cert.Issuer.CommonName,
		Serial:        cert.SerialNumber.String(),
		DNSNames:      cert.DNSNames,
		ValidFrom:     cert.NotBefore.Format("2006-01-02"),
		ValidUntil:    cert.NotAfter.Format("2006-01-02"),
		DaysRemaining: int(cert.NotAfter.Sub(now).Hours() / 24),
		Expired:       now.After(cert.NotAfter),
		SelfSigned:    cert.Subject.String() == cert.Issuer.String(),
		TLSVersion:    tls.VersionName(state.Version),
	}
	return info, nil
}
