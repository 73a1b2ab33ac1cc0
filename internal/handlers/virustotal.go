// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/intel"

	"github.com/gin-gonic/gin"
)

var hashPattern = regexp.MustCompile(`^[a-fA-F0-9]{32}$|^[a-fA-F0-9]{40}$|^[a-fA-F0-9]{64}$`)

type VirusTotalHandler struct {
	VT *intel.VirusTotalClient
}

func NewVirusTotalHandler(vt *intel.VirusTotalClient) *VirusTotalHandler {
	return &VirusTotalHandler{VT: vt}
}

// ScanFile looks up a file by hash. When raw content is submitted instead
// the sha256 is computed locally, so the file itself never leaves the
// service.
func (h *VirusTotalHandler) ScanFile(c *gin.Context) {
	var req struct {
		FileHash    string `json:"fileHash"`
		FileContent string `json:"fileContent"`
		FileName    string `json:"fileName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	hash := strings.TrimSpace(req.FileHash)
	switch {
	case hash != "":
		if !hashPattern.MatchString(hash) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "fileHash must be an MD5, SHA-1 or SHA-256 hex digest",
				"field": "fileHash",
			})
			return
		}
		hash = strings.ToLower(hash)
	case req.FileContent != "":
		content, err := base64.StdEncoding.DecodeString(req.FileContent)
		if err != nil {
			content = []byte(req.FileContent)
		}
		sum := sha256.Sum256(content)
		hash = hex.EncodeToString(sum[:])
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either fileHash or fileContent is required"})
		return
	}

	report, err := h.VT.LookupHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, intel.ErrVTNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "VirusTotal is not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "VirusTotal lookup failed. Please try again."})
		return
	}

	response := gin.H{
		"file_hash": hash,
		"report":    report,
	}
	if req.FileName != "" {
		response["file_name"] = req.FileName
	}
	c.JSON(http.StatusOK, response)
}
