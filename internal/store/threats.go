// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (s *Store) InsertThreatRecord(ctx context.Context, r *models.ThreatRecord) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO threat_records (source_ip, destination, protocol, threat_type, severity, confidence, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, detected_at
	`, r.SourceIP, r.Destination, r.Protocol, r.ThreatType, r.Severity, r.Confidence, r.Status).
		Scan(&r.ID, &r.DetectedAt)
}

func (s *Store) ListThreatRecords(ctx context.Context, limit int) ([]models.ThreatRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, source_ip, destination, protocol, threat_type, severity, confidence, status, detected_at
		FROM threat_records ORDER BY detected_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ThreatRecord
	for rows.Next() {
		var r models.ThreatRecord
		if err := rows.Scan(&r.ID, &r.SourceIP, &r.Destination, &r.Protocol,
			&r.ThreatType, &r.Severity, &r.Confidence, &r.Status, &r.DetectedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ForEachThreatRecord streams every threat record newest-first into fn.
// Used by the export endpoint so the full table never sits in memory.
func (s *Store) ForEachThreatRecord(ctx context.Context, fn func(models.ThreatRecord) error) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, source_ip, destination, protocol, threat_type, severity, confidence, status, detected_at
		FROM threat_records ORDER BY detected_at DESC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r models.ThreatRecord
		if err := rows.Scan(&r.ID, &r.SourceIP, &r.Destination, &r.Protocol,
			&r.ThreatType, &r.Severity, &r.Confidence, &r.Status, &r.DetectedAt); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// RecordSuspiciousIP applies the read-then-write counter update: an existing
// row gets attempt_count+1 plus fresh severity and last_seen_at, a missing
// row is inserted with attempt_count 1. Concurrent callers can lose an
// increment; the counter is a signal, not an audit total.
func (s *Store) RecordSuspiciousIP(ctx context.Context, ipAddress, severity string) error {
	var id int64
	var attempts int
	err := s.pool.QueryRow(ctx,
		`SELECT id, attempt_count FROM suspicious_ips WHERE ip_address = $1`, ipAddress).
		Scan(&id, &attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO suspicious_ips (ip_address, attempt_count, severity)
			VALUES ($1, 1, $2)
		`, ipAddress, severity)
		return err
	}
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE suspicious_ips
		SET attempt_count = $2, severity = $3, last_seen_at = NOW()
		WHERE id = $1
	`, id, attempts+1, severity)
	return err
}

func (s *Store) ListSuspiciousIPs(ctx context.Context, limit int) ([]models.SuspiciousIP, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ip_address, attempt_count, severity, is_blocked, last_seen_at
		FROM suspicious_ips ORDER BY last_seen_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ips []models.SuspiciousIP
	for rows.Next() {
		var ip models.SuspiciousIP
		if err := rows.Scan(&ip.ID, &ip.IPAddress, &ip.AttemptCount,
			&ip.Severity, &ip.IsBlocked, &ip.LastSeenAt); err != nil {
			return nil, err
		}
		ips = append(ips, ip)
	}
	return ips, rows.Err()
}

// BlockIP marks the IP blocked. Blocking is one-way; there is no unblock.
func (s *Store) BlockIP(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE suspicious_ips SET is_blocked = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementThreatAnalytics bumps today's (threat_type, severity) aggregate.
// Same read-then-write shape as RecordSuspiciousIP, same accepted race.
func (s *Store) IncrementThreatAnalytics(ctx context.Context, threatType, severity string) error {
	today := pgtype.Date{Time: time.Now().UTC().Truncate(24 * time.Hour), Valid: true}

	var id int64
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT id, count FROM threat_analytics
		WHERE date = $1 AND threat_type = $2 AND severity = $3
	`, today, threatType, severity).Scan(&id, &count)
	if errors.Is(err, pgx.ErrNoRows) {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO threat_analytics (date, threat_type, severity, count)
			VALUES ($1, $2, $3, 1)
		`, today, threatType, severity)
		return err
	}
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE threat_analytics SET count = $2 WHERE id = $1`, id, count+1)
	return err
}

func (s *Store) ListThreatAnalytics(ctx context.Context, days int) ([]models.ThreatAnalytics, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, date, threat_type, severity, count
		FROM threat_analytics
		WHERE date >= CURRENT_DATE - $1::INT
		ORDER BY date DESC, count DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ThreatAnalytics
	for rows.Next() {
		var a models.ThreatAnalytics
		var d pgtype.Date
		if err := rows.Scan(&a.ID, &d, &a.ThreatType, &a.Severity, &a.Count); err != nil {
			return nil, err
		}
		a.Date = d.Time
		out = append(out, a)
	}
	return out, rows.Err()
}
