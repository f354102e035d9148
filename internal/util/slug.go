// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug and excerpt derivation for Bengali and Latin text.
package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Bengali script block.
const (
	bengaliFirst = 'ঀ'
	bengaliLast  = '৿'
)

var (
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)

	// latinFold strips combining accents from Latin letters
	latinFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// isBengali reports whether r is in the Bengali script block.
func isBengali(r rune) bool {
	return r >= bengaliFirst && r <= bengaliLast
}

// isSeparator reports whether r separates words: whitespace, punctuation,
// symbols, and the Devanagari danda and double danda used as Bengali
// sentence terminators.
func isSeparator(r rune) bool {
	switch r {
	case '।', '॥':
		return true
	}
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// foldLatin transliterates a non-ASCII Latin letter to ASCII.
// "é" becomes "e", "ß" becomes "ss".
func foldLatin(r rune) string {
	folded, _, err := transform.String(latinFold, string(r))
	if err == nil && len(folded) == 1 && folded[0] < unicode.MaxASCII {
		return folded
	}
	return unidecode.Unidecode(string(r))
}

// DeriveSlug converts a title to a URL-friendly slug.
// Bengali letters, vowel signs and digits are kept as-is; Latin letters are
// lowercased and folded to ASCII; whitespace and punctuation become single
// hyphens; everything else is dropped. The result may be empty.
func DeriveSlug(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))

	var sb strings.Builder
	sb.Grow(len(title))

	for _, r := range title {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(r)
		case r == '-' || isSeparator(r):
			sb.WriteByte('-')
		case isBengali(r):
			sb.WriteRune(r)
		case unicode.In(r, unicode.Latin):
			for _, f := range strings.ToLower(foldLatin(r)) {
				if f < unicode.MaxASCII && (unicode.IsLetter(f) || unicode.IsDigit(f)) {
					sb.WriteRune(f)
				}
			}
		}
	}

	result := multipleHyphens.ReplaceAllString(sb.String(), "-")
	return strings.Trim(result, "-")
}

// SlugOrFallback derives a slug from title, or returns "<kind>-<epochMillis>"
// when the title yields nothing usable.
func SlugOrFallback(title, kind string, now time.Time) string {
	if slug := DeriveSlug(title); slug != "" {
		return slug
	}
	return FallbackSlug(kind, now)
}

// FallbackSlug returns "<kind>-<epochMillis>".
func FallbackSlug(kind string, now time.Time) string {
	return fmt.Sprintf("%s-%d", kind, now.UnixMilli())
}

// IsSlugRune reports whether r may appear in a slug.
func IsSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || isBengali(r)
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !IsSlugRune(r) {
			return false
		}
	}

	// Check that it doesn't start or end with a hyphen
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	// Check for consecutive hyphens
	if strings.Contains(s, "--") {
		return false
	}

	return true
}
