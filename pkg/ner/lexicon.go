package ner

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// builtin span patterns recognized without a lexicon entry.
var builtinPatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"DATE", regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)},
	{"DATE", regexp.MustCompile(`\d{4}年(\d{1,2}月(\d{1,2}日)?)?`)},
	{"MONEY", regexp.MustCompile(`[$€£¥]\d[\d,.]*`)},
	{"PERCENT", regexp.MustCompile(`\d+(?:\.\d+)?%`)},
}

// LexiconTagger is a deterministic rule-based tagger: it matches a fixed
// name lexicon plus a handful of regex patterns for dates, money and
// percentages. It stands in for a pretrained model in offline deployments
// and in tests.
type LexiconTagger struct {
	entries map[string]string
	names   []string
}

// NewLexiconTagger creates a tagger from name to tagger-label entries, e.g.
// {"张三": "PERSON", "北京科技公司": "ORG"}.
func NewLexiconTagger(entries map[string]string) *LexiconTagger {
	names := make([]string, 0, len(entries))
	for name := range entries {
		if name != "" {
			names = append(names, name)
		}
	}
	// Longer names first so "北京科技公司" wins over "北京".
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return &LexiconTagger{entries: entries, names: names}
}

// Tag scans the text for lexicon names and builtin patterns. Overlapping
// matches are resolved in favor of the span that starts first; among spans
// starting at the same offset the longer one wins.
func (t *LexiconTagger) Tag(ctx context.Context, text string) ([]Span, error) {
	var spans []Span

	for _, name := range t.names {
		label := t.entries[name]
		for from := 0; ; {
			idx := strings.Index(text[from:], name)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, Span{
				Text:  name,
				Label: label,
				Start: start,
				End:   start + len(name),
			})
			from = start + len(name)
		}
	}

	for _, p := range builtinPatterns {
		for _, m := range p.re.FindAllStringIndex(text, -1) {
			spans = append(spans, Span{
				Text:  text[m[0]:m[1]],
				Label: p.label,
				Start: m[0],
				End:   m[1],
			})
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	deduped := spans[:0]
	lastEnd := -1
	for _, s := range spans {
		if s.Start < lastEnd {
			continue
		}
		deduped = append(deduped, s)
		lastEnd = s.End
	}

	return deduped, nil
}
