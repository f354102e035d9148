// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/sangbad-cms/internal/handler"
	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/service"
	"github.com/olegiv/sangbad-cms/internal/util"
)

// MaxPopularLimit caps ?limit= on the most-read endpoint.
const MaxPopularLimit = 50

// ListContent handles GET /api/{kind}.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}

	filter := service.PublicFilter{ListParams: handler.ParseListParams(r)}
	if raw := r.URL.Query().Get("category"); raw != "" {
		id := util.ParseNullInt64Positive(raw)
		if !id.Valid {
			WriteBadRequest(w, "Invalid category")
			return
		}
		filter.CategoryID = &id.Int64
	}

	page, err := h.Content.ListPublic(r.Context(), kind, filter)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WritePage(w, page)
}

// PopularContent handles GET /api/{kind}/popular.
func (h *Handler) PopularContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}

	limit := handler.ParseIntParam(r, "limit", service.DefaultPopularLimit, 1, MaxPopularLimit)
	items, err := h.Content.Popular(r.Context(), kind, limit)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, items, nil)
}

// GetContent handles GET /api/{kind}/{id}. Each call counts one view.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	c, err := h.Content.GetPublic(r.Context(), kind, id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c, nil)
}

// GetContentBySlug handles GET /api/{kind}/slug/{slug}. Each call counts one
// view.
func (h *Handler) GetContentBySlug(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}
	slug, err := url.PathUnescape(chi.URLParam(r, "slug"))
	if err != nil || slug == "" {
		WriteBadRequest(w, "Invalid slug")
		return
	}

	c, err := h.Content.GetPublicBySlug(r.Context(), kind, slug)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c, nil)
}

// EditorListContent handles GET /api/editor/{kind}. Writers see their own
// rows; admins and editors see everything, drafts included.
func (h *Handler) EditorListContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}

	page, err := h.Content.ListForEditor(r.Context(), middleware.GetPrincipal(r), kind, handler.ParseListParams(r))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WritePage(w, page)
}

// EditorGetContent handles GET /api/editor/{kind}/{id}.
func (h *Handler) EditorGetContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	c, err := h.Content.GetForEditor(r.Context(), middleware.GetPrincipal(r), kind, id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c, nil)
}

// CreateContent handles POST /api/editor/{kind}.
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}
	var in service.ContentInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.Content.Create(r.Context(), middleware.GetPrincipal(r), kind, in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, c)
}

// UpdateContent handles PUT /api/editor/{kind}/{id}.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var in service.ContentInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.Content.Update(r.Context(), middleware.GetPrincipal(r), kind, id, in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c, nil)
}

// DeleteContent handles DELETE /api/editor/{kind}/{id}.
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	if err := h.Content.Delete(r.Context(), middleware.GetPrincipal(r), kind, id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TogglePublish handles POST /api/editor/{kind}/{id}/publish.
func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	kind, ok := requireKind(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	c, err := h.Content.TogglePublish(r.Context(), middleware.GetPrincipal(r), kind, id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c, nil)
}
