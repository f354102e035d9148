// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"strconv"
)

// Integer is the set of integer types stored in nullable INTEGER columns.
type Integer interface {
	~int | ~int32 | ~int64
}

// NullInt64FromPtr converts an optional value into sql.NullInt64.
// A nil pointer becomes SQL NULL.
func NullInt64FromPtr[T Integer](ptr *T) sql.NullInt64 {
	if ptr == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*ptr), Valid: true}
}

// PtrFromNullInt64 is the inverse of NullInt64FromPtr.
func PtrFromNullInt64[T Integer](n sql.NullInt64) *T {
	if !n.Valid {
		return nil
	}
	v := T(n.Int64)
	return &v
}

// ParseNullInt64Positive parses a query value such as ?category=3.
// Empty, malformed and non-positive input yields an invalid NullInt64.
func ParseNullInt64Positive(s string) sql.NullInt64 {
	if s == "" {
		return sql.NullInt64{}
	}
	if val, err := strconv.ParseInt(s, 10, 64); err == nil && val > 0 {
		return sql.NullInt64{Int64: val, Valid: true}
	}
	return sql.NullInt64{}
}
