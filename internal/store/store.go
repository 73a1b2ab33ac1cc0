// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package store holds all SQL against the dashboard schema. Queries are
// plain pgx; writes that back analysis endpoints are best-effort and the
// callers decide whether a failure is fatal to the request.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS threat_records (
		id BIGSERIAL PRIMARY KEY,
		source_ip TEXT NOT NULL,
		destination TEXT NOT NULL,
		protocol TEXT NOT NULL,
		threat_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		confidence INT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		detected_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_threat_records_detected_at
		ON threat_records (detected_at DESC)`,
	`CREATE TABLE IF NOT EXISTS suspicious_ips (
		id BIGSERIAL PRIMARY KEY,
		ip_address TEXT NOT NULL UNIQUE,
		attempt_count INT NOT NULL DEFAULT 1,
		severity TEXT NOT NULL,
		is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
		last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS phishing_scans (
		id BIGSERIAL PRIMARY KEY,
		content_preview TEXT NOT NULL,
		status TEXT NOT NULL,
		confidence INT NOT NULL,
		threat_indicators TEXT[] NOT NULL DEFAULT '{}',
		detected_urls TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ssl_checks (
		id BIGSERIAL PRIMARY KEY,
		domain TEXT NOT NULL,
		payload JSONB NOT NULL,
		checked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ssl_checks_domain
		ON ssl_checks (domain, checked_at DESC)`,
	`CREATE TABLE IF NOT EXISTS email_breach_checks (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL,
		payload JSONB NOT NULL,
		checked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_email_breach_checks_email
		ON email_breach_checks (email, checked_at DESC)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		sender_name TEXT NOT NULL,
		content TEXT NOT NULL,
		is_ai BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id BIGSERIAL PRIMARY KEY,
		action_type TEXT NOT NULL,
		description TEXT NOT NULL,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS threat_analytics (
		id BIGSERIAL PRIMARY KEY,
		date DATE NOT NULL,
		threat_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		count INT NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_threat_analytics_day
		ON threat_analytics (date, threat_type, severity)`,
}

// Migrate applies the schema. Statements are idempotent so startup can
// run them unconditionally.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
