// Copyright (c) 2025-2026 CyberShield AI.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package ai_test

import (
	"testing"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/ai"
)

func TestExtractJSONPlain(t *testing.T) {
	input := `{"is_threat": true, "severity": "high"}`
	if got := ai.ExtractJSON(input); got != input {
		t.Errorf("plain JSON should pass through, got %q", got)
	}
}

func TestExtractJSONFenced(t *testing.T) {
	input := "```json\n{\"status\": \"safe\"}\n```"
	expected := `{"status": "safe"}`
	if got := ai.ExtractJSON(input); got != expected {
		t.Errorf("ExtractJSON = %q, want %q", got, expected)
	}
}

func TestExtractJSONBareFence(t *testing.T) {
	input := "```\n{\"status\": \"safe\"}\n```"
	expected := `{"status": "safe"}`
	if got := ai.ExtractJSON(input); got != expected {
		t.Errorf("ExtractJSON = %q, want %q", got, expected)
	}
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	input := `Here is my analysis: {"verdict": "benign", "confidence": 90} I hope that helps.`
	expected := `{"verdict": "benign", "confidence": 90}`
	if got := ai.ExtractJSON(input); got != expected {
		t.Errorf("ExtractJSON = %q, want %q", got, expected)
	}
}

func TestExtractJSONNestedBraces(t *testing.T) {
	input := `{"outer": {"inner": {"deep": 1}}, "tail": "x"}`
	if got := ai.ExtractJSON(input); got != input {
		t.Errorf("nested braces mishandled, got %q", got)
	}
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	input := `{"note": "a } brace and a \" quote", "n": 1}`
	if got := ai.ExtractJSON(input); got != input {
		t.Errorf("brace inside string mishandled, got %q", got)
	}
}

func TestDecodeOrFallbackSuccess(t *testing.T) {
	type verdict struct {
		Status     string `json:"status"`
		Confidence int    `json:"confidence"`
	}

	got := ai.DecodeOrFallback("```json\n{\"status\": \"phishing\", \"confidence\": 95}\n```",
		verdict{Status: "suspicious", Confidence: 50})
	if got.Status != "phishing" || got.Confidence != 95 {
		t.Errorf("unexpected decode result: %+v", got)
	}
}

func TestDecodeOrFallbackUnparsable(t *testing.T) {
	type verdict struct {
		Status     string `json:"status"`
		Confidence int    `json:"confidence"`
	}
	fallback := verdict{Status: "suspicious", Confidence: 50}

	for _, input := range []string{
		"The model refuses to answer.",
		"",
		"{broken json",
	} {
		got := ai.DecodeOrFallback(input, fallback)
		if got != fallback {
			t.Errorf("DecodeOrFallback(%q) = %+v, want fallback", input, got)
		}
	}
}
