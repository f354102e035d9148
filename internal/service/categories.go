// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/sangbad-cms/internal/cache"
	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/store"
	"github.com/olegiv/sangbad-cms/internal/util"
)

// CategoryInput carries the editable fields of a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Serial      int64  `json:"serial"`
}

// CategoryService manages news categories. The ordered list is cached and
// invalidated on every write.
type CategoryService struct {
	queries *store.Queries
	list    *cache.TypedCache[[]model.Category]
	events  *EventService
	now     func() time.Time
}

// NewCategoryService creates a new CategoryService. A nil cache disables caching.
func NewCategoryService(db *sql.DB, c cache.Cacher, ttl time.Duration, events *EventService) *CategoryService {
	s := &CategoryService{
		queries: store.New(db),
		events:  events,
		now:     time.Now,
	}
	if c != nil {
		s.list = cache.NewTypedCache[[]model.Category](c, ttl)
	}
	return s
}

// List returns all categories ordered by serial.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	load := func() ([]model.Category, error) {
		cats, err := s.queries.ListCategories(ctx)
		if cats == nil {
			cats = []model.Category{}
		}
		return cats, err
	}
	if s.list == nil {
		return load()
	}
	return s.list.GetOrSet(ctx, cache.CategoriesKey(), load)
}

// Get returns a category by id.
func (s *CategoryService) Get(ctx context.Context, id int64) (model.Category, error) {
	return s.queries.GetCategory(ctx, id)
}

// GetBySlug returns a category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	return s.queries.GetCategoryBySlug(ctx, slug)
}

// Create adds a category. Admin only.
func (s *CategoryService) Create(ctx context.Context, p *model.Principal, in CategoryInput) (model.Category, error) {
	if err := requireAdmin(p); err != nil {
		return model.Category{}, err
	}
	in, err := s.prepareCategory(in)
	if err != nil {
		return model.Category{}, err
	}

	cat, err := s.queries.CreateCategory(ctx, store.CategoryParams{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Serial:      in.Serial,
		Now:         s.now().UTC(),
	})
	if err != nil {
		return model.Category{}, err
	}

	s.invalidate(ctx)
	_ = s.events.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryCategory, "category created",
		principalID(p), map[string]any{"id": cat.ID, "slug": cat.Slug})
	return cat, nil
}

// Update changes a category. An empty slug keeps the stored one. Admin only.
func (s *CategoryService) Update(ctx context.Context, p *model.Principal, id int64, in CategoryInput) (model.Category, error) {
	if err := requireAdmin(p); err != nil {
		return model.Category{}, err
	}
	existing, err := s.queries.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, err
	}
	if strings.TrimSpace(in.Slug) == "" {
		in.Slug = existing.Slug
	}
	in, err = s.prepareCategory(in)
	if err != nil {
		return model.Category{}, err
	}

	cat, err := s.queries.UpdateCategory(ctx, id, store.CategoryParams{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Serial:      in.Serial,
		Now:         s.now().UTC(),
	})
	if err != nil {
		return model.Category{}, err
	}

	s.invalidate(ctx)
	_ = s.events.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryCategory, "category updated",
		principalID(p), map[string]any{"id": id})
	return cat, nil
}

// Delete removes a category that no content references. Admin only.
func (s *CategoryService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if _, err := s.queries.GetCategory(ctx, id); err != nil {
		return err
	}
	refs, err := s.queries.CountContentByCategory(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &model.InUseError{Entity: "category", Refs: refs}
	}

	if err := s.queries.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	_ = s.events.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryCategory, "category deleted",
		principalID(p), map[string]any{"id": id})
	return nil
}

// prepareCategory validates in and derives the slug when it is empty.
func (s *CategoryService) prepareCategory(in CategoryInput) (CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" {
		return in, model.NewRequiredError("name")
	}
	if in.Serial < 1 {
		return in, &model.ValidationError{Field: "serial", Message: "must be a positive number"}
	}

	if in.Slug == "" {
		in.Slug = util.SlugOrFallback(in.Name, "category", s.now())
	} else if !util.IsValidSlug(in.Slug) {
		return in, &model.ValidationError{Field: "slug", Message: "may contain only lowercase letters, digits, Bengali characters and hyphens"}
	}
	return in, nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.list == nil {
		return
	}
	if err := s.list.DeleteByPrefix(ctx, cache.PrefixCategories); err != nil {
		slog.Warn("failed to invalidate category cache", "error", err)
	}
}
