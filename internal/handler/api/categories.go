// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/service"
)

// ListCategories handles GET /api/categories, ordered by serial.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Categories.List(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, cats, nil)
}

// GetCategory handles GET /api/categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	cat, err := h.Categories.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, cat, nil)
}

// GetCategoryBySlug handles GET /api/categories/slug/{slug}.
func (h *Handler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	slug, err := url.PathUnescape(chi.URLParam(r, "slug"))
	if err != nil || slug == "" {
		WriteBadRequest(w, "Invalid slug")
		return
	}
	cat, err := h.Categories.GetBySlug(r.Context(), slug)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, cat, nil)
}

// CreateCategory handles POST /api/admin/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	cat, err := h.Categories.Create(r.Context(), middleware.GetPrincipal(r), in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, cat)
}

// UpdateCategory handles PUT /api/admin/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var in service.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	cat, err := h.Categories.Update(r.Context(), middleware.GetPrincipal(r), id, in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, cat, nil)
}

// DeleteCategory handles DELETE /api/admin/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := h.Categories.Delete(r.Context(), middleware.GetPrincipal(r), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
