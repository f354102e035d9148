// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/render"
	"github.com/olegiv/sangbad-cms/internal/service"
)

// AdminHandler serves the admin dashboard and the editor console pages.
// Editing itself happens through the JSON API.
type AdminHandler struct {
	renderer *render.Renderer
	content  *service.ContentService
	users    *service.UserService
	events   *service.EventService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(renderer *render.Renderer, content *service.ContentService, users *service.UserService, events *service.EventService) *AdminHandler {
	return &AdminHandler{
		renderer: renderer,
		content:  content,
		users:    users,
		events:   events,
	}
}

// KindCount is the number of rows of one kind.
type KindCount struct {
	Kind  model.Kind
	Total int64
}

// DashboardData is the admin dashboard model.
type DashboardData struct {
	Users  int64
	Counts []KindCount
	Events []model.Event
}

// Dashboard renders /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := middleware.GetPrincipal(r)
	one := service.ListParams{PerPage: 1}

	users, err := h.users.List(ctx, p, one)
	if err != nil {
		logAndInternalError(w, "failed to count users", "error", err)
		return
	}

	data := DashboardData{Users: users.Total}
	for _, kind := range model.Kinds {
		page, err := h.content.ListForEditor(ctx, p, kind, one)
		if err != nil {
			logAndInternalError(w, "failed to count content", "kind", string(kind), "error", err)
			return
		}
		data.Counts = append(data.Counts, KindCount{Kind: kind, Total: page.Total})
	}

	events, err := h.events.List(ctx, p, service.ListParams{PerPage: adminEventsLimit})
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}
	data.Events = events.Items

	h.renderer.MustRender(w, r, http.StatusOK, render.PageAdmin, render.TemplateData{
		Title: "অ্যাডমিন",
		Data:  data,
	})
}

// EditorSection is one kind's rows in the editor console.
type EditorSection struct {
	Kind  model.Kind
	Items []model.Content
}

// EditorData is the editor console model.
type EditorData struct {
	Sections []EditorSection
}

// Editor renders /editor: the most recently created rows of every kind,
// drafts included. Writers only see their own rows.
func (h *AdminHandler) Editor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := middleware.GetPrincipal(r)

	var data EditorData
	for _, kind := range model.Kinds {
		page, err := h.content.ListForEditor(ctx, p, kind, service.ListParams{PerPage: editorListLimit})
		if err != nil {
			logAndInternalError(w, "failed to list content", "kind", string(kind), "error", err)
			return
		}
		data.Sections = append(data.Sections, EditorSection{Kind: kind, Items: page.Items})
	}

	h.renderer.MustRender(w, r, http.StatusOK, render.PageEditor, render.TemplateData{
		Title: "সম্পাদনা",
		Data:  data,
	})
}
