package relation

import (
	"strings"
	"unicode/utf8"
)

// Sentence is one sentence of the source text with its byte span.
type Sentence struct {
	Start int
	End   int
	Text  string
}

// sentence terminals, shared with description expansion in the recognizer.
const terminals = ".!?。！？"

// SplitSentences segments text into sentences with byte spans. A sentence
// ends at a terminal punctuation mark or at a blank line. Spans cover the
// trimmed sentence text so entity spans anchored inside a sentence stay
// inside its span.
func SplitSentences(text string) []Sentence {
	var sentences []Sentence
	start := 0

	flush := func(end int) {
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := strings.Index(raw, trimmed)
			sentences = append(sentences, Sentence{
				Start: start + lead,
				End:   start + lead + len(trimmed),
				Text:  trimmed,
			})
		}
		start = end
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if strings.ContainsRune(terminals, r) {
			flush(i + size)
			i += size
			continue
		}
		if r == '\n' && strings.HasPrefix(text[i:], "\n\n") {
			flush(i)
		}
		i += size
	}
	flush(len(text))

	return sentences
}

// contains reports whether the byte span [start, end) lies fully within the
// sentence.
func (s Sentence) contains(start, end int) bool {
	return start >= s.Start && end <= s.End
}
