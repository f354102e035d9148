// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "strconv"

// Key prefixes. Invalidation deletes by prefix, so every key of a family
// must start with its prefix.
const (
	PrefixCategories = "categories:"
	PrefixPopular    = "popular:"
)

// CategoriesKey is the key of the full ordered category list.
func CategoriesKey() string {
	return PrefixCategories + "all"
}

// PopularKey is the key of the most-read list for a content kind.
func PopularKey(kind string, limit int) string {
	return PrefixPopular + kind + ":" + strconv.Itoa(limit)
}

// PopularKindPrefix matches every popular-list key of one kind.
func PopularKindPrefix(kind string) string {
	return PrefixPopular + kind + ":"
}
