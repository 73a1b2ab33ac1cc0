// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package store

import (
	"context"
	"encoding/json"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
)

func (s *Store) InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (sender_name, content, is_ai)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, msg.SenderName, msg.Content, msg.IsAI).Scan(&msg.ID, &msg.CreatedAt)
}

// ListChatMessages returns the newest messages in chronological order so
// the client can render the transcript top to bottom.
func (s *Store) ListChatMessages(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender_name, content, is_ai, created_at FROM (
			SELECT id, sender_name, content, is_ai, created_at
			FROM chat_messages ORDER BY created_at DESC LIMIT $1
		) latest ORDER BY created_at ASC
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SenderName, &m.Content, &m.IsAI, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *Store) ClearChatMessages(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_messages`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// LogActivity appends an audit row. Metadata may be nil.
func (s *Store) LogActivity(ctx context.Context, actionType, description string, metadata any) error {
	var metaJSON []byte
	if metadata != nil {
		metaJSON, _ = json.Marshal(metadata)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO activity_logs (action_type, description, metadata)
		VALUES ($1, $2, $3)
	`, actionType, description, metaJSON)
	return err
}

func (s *Store) ListActivityLogs(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, action_type, description, metadata, created_at
		FROM activity_logs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.ActionType, &l.Description, &l.Metadata, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
