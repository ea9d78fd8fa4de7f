package ingest

import (
	"strings"
	"unicode/utf8"
)

// extractText decodes plain-text content, replacing invalid UTF-8 sequences,
// and reports basic structural metadata.
func extractText(content []byte) (string, map[string]any) {
	text := decodeText(content)

	lineCount := strings.Count(text, "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		lineCount++
	}

	paragraphs := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			paragraphs++
		}
	}

	return text, map[string]any{
		"line_count":      lineCount,
		"paragraph_count": paragraphs,
	}
}

func decodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	return strings.ToValidUTF8(string(content), "�")
}
