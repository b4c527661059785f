package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NoContextSentinel is returned by FormatContext when retrieval produced
// nothing. Prompts interpolate the context section unconditionally, so the
// formatter never returns an empty string.
const NoContextSentinel = "No relevant information found."

// FormatContext renders retrieved passages as a numbered context block for
// prompt injection:
//
//	[1] Source: boxing/jab_basics.md
//	<passage text>
//
//	[2] Source: ...
//
// Character budgets are call-site policy (chat and plan generation differ);
// see TruncateContext.
func FormatContext(passages []Passage) string {
	if len(passages) == 0 {
		return NoContextSentinel
	}

	parts := make([]string, 0, len(passages))
	for i, p := range passages {
		sport := p.Sport
		if sport == "" {
			sport = "unknown"
		}
		source := p.Source
		if source == "" {
			source = "unknown"
		}
		parts = append(parts, fmt.Sprintf("[%d] Source: %s/%s\n%s", i+1, sport, source, p.Text))
	}

	return strings.Join(parts, "\n\n")
}

// TruncateContext hard-truncates a formatted context block to at most maxChars
// bytes, appending an ellipsis marker when it cuts. The cut never splits a
// UTF-8 sequence; it backs up to the nearest rune start.
func TruncateContext(context string, maxChars int) string {
	if maxChars <= 0 || len(context) <= maxChars {
		return context
	}
	for maxChars > 0 && !utf8.RuneStart(context[maxChars]) {
		maxChars--
	}
	return context[:maxChars] + "..."
}
