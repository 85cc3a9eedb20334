package stepgen

import (
	"encoding/json"
	"strings"
)

// StepDraft is the model's JSON shape for a single generated step.
type StepDraft struct {
	Title   string `json:"step_title"`
	Content string `json:"step_content"`
}

// SequenceDraft is the argument payload of the sequence generation function.
type SequenceDraft struct {
	Title string      `json:"sequence_title"`
	Steps []StepDraft `json:"steps"`
}

// ParsedStep is the outcome of parsing a model reply that should contain one
// step. Structured is false when the reply was not valid JSON; in that case
// the raw text is used as both title and content.
type ParsedStep struct {
	Structured bool
	Title      string
	Content    string
}

// StripCodeFence removes a surrounding markdown code fence, tolerating a
// language tag on the opening fence. Models routinely wrap JSON this way.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || strings.EqualFold(firstLine, "json") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ParseStep decodes a single-step JSON reply, falling back to treating the
// whole reply as freeform text when decoding fails.
func ParseStep(raw string) ParsedStep {
	cleaned := StripCodeFence(raw)

	var draft StepDraft
	if err := json.Unmarshal([]byte(cleaned), &draft); err == nil && (draft.Title != "" || draft.Content != "") {
		return ParsedStep{
			Structured: true,
			Title:      draft.Title,
			Content:    draft.Content,
		}
	}

	return ParsedStep{
		Structured: false,
		Title:      cleaned,
		Content:    cleaned,
	}
}
