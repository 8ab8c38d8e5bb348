package pdftext

import (
	"strings"
	"unicode"
)

// Matches reports whether text contains search, ignoring case.
func Matches(text, search string) bool {
	if search == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(search))
}

// ReplaceSpanText derives the new text of a span.
//
// Exact-case occurrences are all replaced. Otherwise the first
// case-insensitive occurrence is replaced and the rest of the text keeps its
// casing. If even that lookup fails the lowered search string is replaced by
// the lowered replacement.
func ReplaceSpanText(text, search, replacement string) string {
	if search == "" {
		return text
	}
	if strings.Contains(text, search) {
		return strings.ReplaceAll(text, search, replacement)
	}

	runes := []rune(text)
	needle := []rune(search)
	if idx := indexFold(runes, needle); idx >= 0 {
		return string(runes[:idx]) + replacement + string(runes[idx+len(needle):])
	}
	return strings.ReplaceAll(text, strings.ToLower(search), strings.ToLower(replacement))
}

// indexFold finds needle in hay comparing lower-cased runes one by one, so
// indexes stay aligned with the original text.
func indexFold(hay, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j, r := range needle {
			if unicode.ToLower(hay[i+j]) != unicode.ToLower(r) {
				continue outer
			}
		}
		return i
	}
	return -1
}
