package util

import (
	"strings"
	"unicode/utf8"
)

// SanitizeText strips invalid UTF-8 sequences and NUL bytes so excerpts and
// document text can be stored in Postgres text columns.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// SnapToRuneStart moves a byte offset left until it points at the start of a
// UTF-8 rune. Offsets out of range are clamped to [0, len(s)].
func SnapToRuneStart(s string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(s) {
		return len(s)
	}
	for offset > 0 && !utf8.RuneStart(s[offset]) {
		offset--
	}
	return offset
}

// SnapToRuneEnd moves a byte offset right until it points just past the end
// of a UTF-8 rune. Offsets out of range are clamped to [0, len(s)].
func SnapToRuneEnd(s string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(s) {
		return len(s)
	}
	for offset < len(s) && !utf8.RuneStart(s[offset]) {
		offset++
	}
	return offset
}

// TruncateRunes cuts s to at most limit bytes without splitting a rune.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	return s[:SnapToRuneStart(s, limit)]
}
