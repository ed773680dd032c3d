// Package llm - util.go provides shared utilities for LLM prompt and response processing.
package llm

import "strings"

// CleanJSONBlock strips a markdown code fence from around a JSON response.
// Models often wrap JSON in ```json fences even when told not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	body := strings.TrimPrefix(text, "```")
	if rest, ok := strings.CutPrefix(body, "json"); ok {
		body = rest
	} else if nl := strings.Index(body, "\n"); nl >= 0 {
		// Drop an info string (javascript, yaml, ...) if the fence line
		// carries one. A line with spaces or braces is content, not an
		// info string.
		info := body[:nl]
		if len(info) < 20 && !strings.Contains(info, " ") && !strings.Contains(info, "{") {
			body = body[nl+1:]
		}
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// TruncateForPrompt caps text fed into a prompt at maxChars, appending an
// ellipsis marker when content was dropped. Page dumps can otherwise blow the
// context budget of lite-tier models.
func TruncateForPrompt(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "..."
}
