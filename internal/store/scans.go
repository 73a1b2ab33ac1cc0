// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package store

import (
	"context"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
)

func (s *Store) InsertPhishingScan(ctx context.Context, scan *models.PhishingScan) error {
	indicators := scan.ThreatIndicators
	if indicators == nil {
		indicators = []string{}
	}
	urls := scan.DetectedURLs
	if urls == nil {
		urls = []string{}
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO phishing_scans (content_preview, status, confidence, threat_indicators, detected_urls)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, scan.ContentPreview, scan.Status, scan.Confidence, indicators, urls).
		Scan(&scan.ID, &scan.CreatedAt)
}

func (s *Store) ListPhishingScans(ctx context.Context, limit int) ([]models.PhishingScan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, content_preview, status, confidence, threat_indicators, detected_urls, created_at
		FROM phishing_scans ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []models.PhishingScan
	for rows.Next() {
		var scan models.PhishingScan
		if err := rows.Scan(&scan.ID, &scan.ContentPreview, &scan.Status,
			&scan.Confidence, &scan.ThreatIndicators, &scan.DetectedURLs, &scan.CreatedAt); err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}
