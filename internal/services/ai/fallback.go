// File: internal/services/ai/fallback.go
package ai

import (
	"fmt"
	"strings"
)

// demoKeys fixes the match order: "hello" must win over "hi" for a
// message containing both, so the table cannot be an unordered map.
var demoKeys = []string{"hello", "hi", "how are you", "what can you do"}

var demoResponses = map[string]string{
	"hello":           "Hello! I'm a simple AI assistant running in demo mode. No API key is configured yet.",
	"hi":              "Hi there! I'm here to help, though I'm running in demo mode.",
	"how are you":     "I'm doing well, thank you! I'm an AI assistant.",
	"what can you do": "I can have conversations with you. For full AI capabilities, please configure an API key.",
}

// fallbackResponse answers from the canned table when no API key is
// configured. Matching is a case-insensitive substring search in fixed
// key order; an unmatched message is echoed back verbatim. Never fails.
func fallbackResponse(message string) string {
	lowered := strings.ToLower(strings.TrimSpace(message))
	for _, key := range demoKeys {
		if strings.Contains(lowered, key) {
			return demoResponses[key]
		}
	}
	return fmt.Sprintf("I received your message: '%s'. I'm a demo AI assistant. To enable full AI capabilities, please configure an API key in the settings.", message)
}

// truncateWithEllipsis shortens s to at most max runes, marking the cut.
func truncateWithEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
