// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/render"
	"github.com/olegiv/sangbad-cms/internal/service"
)

// FrontendHandler serves the public reader pages.
type FrontendHandler struct {
	renderer   *render.Renderer
	content    *service.ContentService
	categories *service.CategoryService
	logger     *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(renderer *render.Renderer, content *service.ContentService, categories *service.CategoryService, logger *slog.Logger) *FrontendHandler {
	return &FrontendHandler{
		renderer:   renderer,
		content:    content,
		categories: categories,
		logger:     logger,
	}
}

// HomeData is the model of the home and section pages.
type HomeData struct {
	Latest     []model.Content
	Popular    []model.Content
	Categories []model.Category
	Page       int
	TotalPages int
}

// Home handles the homepage: latest and most-read news, optionally
// narrowed to one category with ?category=.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.section(w, r, model.KindNews, "")
}

// Section lists the published rows of one kind, e.g. /opinions.
func (h *FrontendHandler) Section(w http.ResponseWriter, r *http.Request) {
	kind, ok := KindParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	h.section(w, r, kind, render.KindLabel(kind))
}

func (h *FrontendHandler) section(w http.ResponseWriter, r *http.Request, kind model.Kind, title string) {
	ctx := r.Context()

	filter := service.PublicFilter{
		ListParams: service.ListParams{
			Page:    ParseIntParam(r, "page", 1, 1, 1<<20),
			PerPage: homeLatestLimit,
		},
	}
	if id := ParseIntParam(r, "category", 0, 1, math.MaxInt32); id > 0 && kind == model.KindNews {
		categoryID := int64(id)
		filter.CategoryID = &categoryID
	}

	latest, err := h.content.ListPublic(ctx, kind, filter)
	if err != nil {
		h.renderError(w, r, "failed to list content", err)
		return
	}

	popular, err := h.content.Popular(ctx, kind, homePopularLimit)
	if err != nil {
		h.logger.Error("failed to load popular content", "kind", string(kind), "error", err)
	}

	categories, err := h.categories.List(ctx)
	if err != nil {
		h.logger.Error("failed to load categories", "error", err)
	}

	h.renderer.MustRender(w, r, http.StatusOK, render.PageHome, render.TemplateData{
		Title: title,
		Data: HomeData{
			Latest:     latest.Items,
			Popular:    popular,
			Categories: categories,
			Page:       latest.Page,
			TotalPages: latest.TotalPages,
		},
	})
}

// Article renders one published row by slug and counts the view.
func (h *FrontendHandler) Article(w http.ResponseWriter, r *http.Request) {
	kind, ok := KindParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	slug, err := url.PathUnescape(chi.URLParam(r, "slug"))
	if err != nil || slug == "" {
		h.NotFound(w, r)
		return
	}

	item, err := h.content.GetPublicBySlug(r.Context(), kind, slug)
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			h.NotFound(w, r)
			return
		}
		h.renderError(w, r, "failed to load article", err)
		return
	}

	h.renderer.MustRender(w, r, http.StatusOK, render.PageArticle, render.TemplateData{
		Title: item.Title,
		Data:  item,
	})
}

// NotFound renders the 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.MustRender(w, r, http.StatusNotFound, render.PageNotFound, render.TemplateData{
		Title: "পাওয়া যায়নি",
	})
}

func (h *FrontendHandler) renderError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
