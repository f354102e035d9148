// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/sangbad-cms/internal/handler"
	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/service"
)

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.Users.List(r.Context(), middleware.GetPrincipal(r), handler.ParseListParams(r))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WritePage(w, page)
}

// GetUser handles GET /api/admin/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	u, err := h.Users.Get(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, u, nil)
}

// CreateUser handles POST /api/admin/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.Users.Create(r.Context(), middleware.GetPrincipal(r), in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, u)
}

// UpdateUser handles PUT /api/admin/users/{id}. Empty password and role
// keep the stored values.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var in service.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.Users.Update(r.Context(), middleware.GetPrincipal(r), id, in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, u, nil)
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := h.Users.Delete(r.Context(), middleware.GetPrincipal(r), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
