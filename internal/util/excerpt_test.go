// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "সাধারণ লেখা", "সাধারণ লেখা"},
		{"paragraphs", "<p>প্রথম</p><p>দ্বিতীয়</p>", "প্রথম দ্বিতীয়"},
		{"attributes", `<a href="/x" class="y">link</a> text`, "link text"},
		{"entities", "Tom &amp; Jerry &lt;3", "Tom & Jerry <3"},
		{"whitespace", "  a \n\n b\t c ", "a b c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}

func TestDeriveExcerptShortBodyUnchanged(t *testing.T) {
	assert.Equal(t, "ছোট খবর", DeriveExcerpt("<p>ছোট খবর</p>", 50))
}

func TestDeriveExcerptExactLength(t *testing.T) {
	body := strings.Repeat("ক", 20)
	assert.Equal(t, body, DeriveExcerpt(body, 20))
}

func TestDeriveExcerptTruncates(t *testing.T) {
	body := "<p>" + strings.Repeat("বাংলা ", 50) + "</p>"
	got := DeriveExcerpt(body, 30)

	assert.LessOrEqual(t, utf8.RuneCountInString(got), 30)
	assert.True(t, strings.HasSuffix(got, "..."), "excerpt should end with ellipsis: %q", got)
	assert.NotContains(t, got, "<p>")
}

func TestDeriveExcerptBound(t *testing.T) {
	bodies := []string{
		"",
		"a",
		"<b>bold</b> and <i>italic</i>",
		strings.Repeat("খবর ", 100),
		strings.Repeat("x", 500),
		"<div>" + strings.Repeat("<span>জ</span>", 80) + "</div>",
	}

	for _, body := range bodies {
		for _, m := range []int{4, 5, 10, 37, 160, 1000} {
			got := DeriveExcerpt(body, m)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), m, "body=%q m=%d", body, m)
			if utf8.RuneCountInString(StripTags(body)) > m {
				assert.True(t, strings.HasSuffix(got, "..."), "body=%q m=%d got=%q", body, m, got)
			} else {
				assert.Equal(t, StripTags(body), got)
			}
		}
	}
}

func TestDeriveExcerptDefaultLength(t *testing.T) {
	got := DeriveExcerpt(strings.Repeat("y", 400), 0)
	assert.Equal(t, DefaultExcerptLength, utf8.RuneCountInString(got))
}

func TestDeriveExcerptTinyBound(t *testing.T) {
	assert.Equal(t, "...", DeriveExcerpt("abcdef", 3))
	assert.Equal(t, "..", DeriveExcerpt("abcdef", 2))
}
