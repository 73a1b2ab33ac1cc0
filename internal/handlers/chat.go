// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/models"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/store"
	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/validate"

	"github.com/gin-gonic/gin"
)

const chatSystemPrompt = `You are CyberShield, a concise security operations assistant embedded in a monitoring dashboard. Answer questions about threats, incidents and security hygiene. Keep answers short and practical.`

const maxChatMessage = 2000

type ChatHandler struct {
	Store *store.Store
	AI    *ai.Client
}

func NewChatHandler(st *store.Store, aiClient *ai.Client) *ChatHandler {
	return &ChatHandler{Store: st, AI: aiClient}
}

// PostMessage stores the user message and the assistant reply as a pair.
// The user row is written before the gateway call so a failed completion
// still leaves the question in the transcript.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Message    string `json:"message"`
		SenderName string `json:"sender_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	content := strings.TrimSpace(req.Message)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required", "field": "message"})
		return
	}
	content = validate.Truncate(content, maxChatMessage)

	sender := strings.TrimSpace(req.SenderName)
	if sender == "" {
		sender = "analyst"
	}

	ctx := c.Request.Context()
	traceID, _ := c.Get("trace_id")

	userMsg := models.ChatMessage{SenderName: sender, Content: content, IsAI: false}
	if err := h.Store.InsertChatMessage(ctx, &userMsg); err != nil {
		respondStoreError(c, "chat_insert", err)
		return
	}

	reply, err := h.AI.Complete(ctx, chatSystemPrompt, content)
	if err != nil {
		respondAIError(c, err)
		return
	}

	aiMsg := models.ChatMessage{SenderName: "CyberShield AI", Content: reply, IsAI: true}
	if err := h.Store.InsertChatMessage(ctx, &aiMsg); err != nil {
		slog.Error("Assistant message insert failed", "trace_id", traceID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": userMsg,
		"reply":   aiMsg,
	})
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	msgs, err := h.Store.ListChatMessages(c.Request.Context(), listLimit(c))
	if err != nil {
		respondStoreError(c, "chat_list", err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *ChatHandler) ClearMessages(c *gin.Context) {
	n, err := h.Store.ClearChatMessages(c.Request.Context())
	if err != nil {
		respondStoreError(c, "chat_clear", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "count": n})
}
