// Package extractor implements the per-field extraction strategies. Every
// strategy follows the same three-phase shape: retrieve relevant sections,
// invoke the language model under the field's contract, normalize the raw
// response into a typed field with a citation.
//
// Model invocation failures (transport errors, malformed structured output)
// are absorbed at the strategy boundary and degrade to the same result as a
// retrieval miss. Domain validation failures (confidence or ratio outside
// [0,1]) and section-store failures propagate to the caller.
package extractor

import (
	"fmt"
	"strings"

	"regintel/internal/config"
	"regintel/internal/port"
)

const (
	invokeTemperature float32 = 0.1
	invokeMaxTokens           = 1000
)

func generateInput(prompt string) port.GenerateInput {
	return port.GenerateInput{
		Prompt:      prompt,
		Temperature: invokeTemperature,
		MaxTokens:   invokeMaxTokens,
		JSONMode:    true,
	}
}

// prefix bounds s to its first n characters, never splitting a rune.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// buildArticleContext concatenates bounded prefixes of the retrieved
// sections in rank order.
func buildArticleContext(results []port.RetrievalResult, cfg config.ExtractionConfig) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, prefix(r.Section.Text, cfg.ArticleWindowChars))
	}
	return strings.Join(parts, "\n\n")
}

// buildFieldContext annotates each bounded section prefix with its starting
// page, using at most cfg.ContextSections of the retrieved results.
func buildFieldContext(results []port.RetrievalResult, cfg config.ExtractionConfig) string {
	n := cfg.ContextSections
	if n > len(results) {
		n = len(results)
	}
	parts := make([]string, 0, n)
	for _, r := range results[:n] {
		parts = append(parts, fmt.Sprintf("[Page %d]\n%s", r.Section.PageStart, prefix(r.Section.Text, cfg.FieldWindowChars)))
	}
	return strings.Join(parts, "\n\n")
}
