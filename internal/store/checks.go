// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package store

import (
	"context"
	"errors"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"

	"github.com/jackc/pgx/v5"
)

// LatestSSLCheck returns the newest stored check for the domain, or nil
// when none exists. Callers apply the freshness window themselves.
func (s *Store) LatestSSLCheck(ctx context.Context, domain string) (*models.SSLCheck, error) {
	var check models.SSLCheck
	err := s.pool.QueryRow(ctx, `
		SELECT id, domain, payload, checked_at
		FROM ssl_checks WHERE domain = $1
		ORDER BY checked_at DESC LIMIT 1
	`, domain).Scan(&check.ID, &check.Domain, &check.Payload, &check.CheckedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

func (s *Store) InsertSSLCheck(ctx context.Context, check *models.SSLCheck) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO ssl_checks (domain, payload) VALUES ($1, $2)
		RETURNING id, checked_at
	`, check.Domain, check.Payload).Scan(&check.ID, &check.CheckedAt)
}

func (s *Store) ListSSLChecks(ctx context.Context, limit int) ([]models.SSLCheck, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, domain, payload, checked_at
		FROM ssl_checks ORDER BY checked_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []models.SSLCheck
	for rows.Next() {
		var check models.SSLCheck
		if err := rows.Scan(&check.ID, &check.Domain, &check.Payload, &check.CheckedAt); err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

func (s *Store) DeleteSSLCheck(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ssl_checks WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteAllSSLChecks(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ssl_checks`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) LatestEmailBreachCheck(ctx context.Context, email string) (*models.EmailBreachCheck, error) {
	var check models.EmailBreachCheck
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, payload, checked_at
		FROM email_breach_checks WHERE email = $1
		ORDER BY checked_at DESC LIMIT 1
	`, email).Scan(&check.ID, &check.Email, &check.Payload, &check.CheckedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

func (s *Store) InsertEmailBreachCheck(ctx context.Context, check *models.EmailBreachCheck) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO email_breach_checks (email, payload) VALUES ($1, $2)
		RETURNING id, checked_at
	`, check.Email, check.Payload).Scan(&check.ID, &check.CheckedAt)
}

func (s *Store) ListEmailBreachChecks(ctx context.Context, limit int) ([]models.EmailBreachCheck, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, payload, checked_at
		FROM email_breach_checks ORDER BY checked_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []models.EmailBreachCheck
	for rows.Next() {
		var check models.EmailBreachCheck
		if err := rows.Scan(&check.ID, &check.Email, &check.Payload, &check.CheckedAt); err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

func (s *Store) DeleteEmailBreachCheck(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM email_breach_checks WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
