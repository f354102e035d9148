// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"testing"
)

func TestNullInt64FromPtr(t *testing.T) {
	if got := NullInt64FromPtr[int64](nil); got.Valid {
		t.Errorf("nil category = %+v, want NULL", got)
	}

	category := int64(7)
	if got := NullInt64FromPtr(&category); !got.Valid || got.Int64 != 7 {
		t.Errorf("category = %+v, want 7", got)
	}

	rating := 4
	if got := NullInt64FromPtr(&rating); !got.Valid || got.Int64 != 4 {
		t.Errorf("rating = %+v, want 4", got)
	}
}

func TestPtrFromNullInt64(t *testing.T) {
	if got := PtrFromNullInt64[int](sql.NullInt64{}); got != nil {
		t.Errorf("NULL = %v, want nil", *got)
	}

	got := PtrFromNullInt64[int](sql.NullInt64{Int64: 3, Valid: true})
	if got == nil || *got != 3 {
		t.Fatalf("got %v, want 3", got)
	}

	// Round trip keeps the value.
	back := NullInt64FromPtr(got)
	if back != (sql.NullInt64{Int64: 3, Valid: true}) {
		t.Errorf("round trip = %+v", back)
	}
}

func TestParseNullInt64Positive(t *testing.T) {
	tests := []struct {
		input string
		want  sql.NullInt64
	}{
		{"", sql.NullInt64{}},
		{"12", sql.NullInt64{Int64: 12, Valid: true}},
		{"0", sql.NullInt64{}},
		{"-3", sql.NullInt64{}},
		{"abc", sql.NullInt64{}},
		{"১২", sql.NullInt64{}}, // Bengali digits are not accepted
		{"99999999999999999999", sql.NullInt64{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseNullInt64Positive(tt.input); got != tt.want {
				t.Errorf("ParseNullInt64Positive(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
