// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptLength is the excerpt bound used when none is configured.
const DefaultExcerptLength = 160

const ellipsis = "..."

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripTags removes markup tags, decodes entities and collapses whitespace.
func StripTags(body string) string {
	text := tagRegex.ReplaceAllString(body, " ")
	text = html.UnescapeString(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// DeriveExcerpt returns a plain-text preview of body at most maxLength
// characters long. Longer text is cut to maxLength-3 characters and an
// ellipsis is appended. A non-positive maxLength uses DefaultExcerptLength.
func DeriveExcerpt(body string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}

	text := StripTags(body)
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	if maxLength <= len(ellipsis) {
		return ellipsis[:maxLength]
	}

	return strings.TrimRight(truncateRunes(text, maxLength-len(ellipsis)), " ") + ellipsis
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
