// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	Store *store.Store
}

func NewExportHandler(st *store.Store) *ExportHandler {
	return &ExportHandler{Store: st}
}

// ExportThreats streams the full threat table as NDJSON, one record per
// line, flushed as it goes.
func (h *ExportHandler) ExportThreats(c *gin.Context) {
	timestamp := time.Now().UTC().Format("20060102_150405")
	filename := fmt.Sprintf("cybershield_threats_%s.ndjson", timestamp)

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Status(http.StatusOK)

	err := h.Store.ForEachThreatRecord(c.Request.Context(), func(r models.ThreatRecord) error {
		line, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := c.Writer.Write(line); err != nil {
			return err
		}
		if _, err := c.Writer.Write([]byte("\n")); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		// Headers are already out; the truncated stream is the signal.
		return
	}
}
