// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

// Pagination limits.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ListParams selects one page of a listing. Zero values take defaults.
type ListParams struct {
	Page    int
	PerPage int
}

func (lp ListParams) normalize() ListParams {
	if lp.Page < 1 {
		lp.Page = 1
	}
	if lp.PerPage < 1 {
		lp.PerPage = DefaultPerPage
	}
	if lp.PerPage > MaxPerPage {
		lp.PerPage = MaxPerPage
	}
	return lp
}

func (lp ListParams) limitOffset() (int64, int64) {
	return int64(lp.PerPage), int64((lp.Page - 1) * lp.PerPage)
}

// Page is one page of results with the totals needed to render navigation.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

func newPage[T any](items []T, total int64, lp ListParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(lp.PerPage) - 1) / int64(lp.PerPage))
	if pages < 1 {
		pages = 1
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       lp.Page,
		PerPage:    lp.PerPage,
		TotalPages: pages,
	}
}
