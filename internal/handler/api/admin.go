// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/sangbad-cms/internal/handler"
	"github.com/olegiv/sangbad-cms/internal/middleware"
)

// ListEvents handles GET /api/admin/events, newest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page, err := h.Events.List(r.Context(), middleware.GetPrincipal(r), handler.ParseListParams(r))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WritePage(w, page)
}

// ListJobs handles GET /api/admin/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, h.Jobs.List(), nil)
}

// TriggerJob handles POST /api/admin/jobs/{name}/run.
func (h *Handler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	found := false
	for _, job := range h.Jobs.List() {
		if job.Name == name {
			found = true
			break
		}
	}
	if !found {
		WriteNotFound(w, "job "+name+" not found")
		return
	}

	p := middleware.GetPrincipal(r)
	slog.Info("job triggered from admin console", "name", name, "user_id", p.ID)

	if err := h.Jobs.TriggerNow(name); err != nil {
		WriteError(w, http.StatusBadGateway, "job_failed", err.Error(), nil)
		return
	}
	WriteSuccess(w, map[string]string{"status": "completed", "name": name}, nil)
}
