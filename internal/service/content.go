// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/sangbad-cms/internal/cache"
	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/store"
	"github.com/olegiv/sangbad-cms/internal/util"
)

// DefaultPopularLimit is the length of a most-read list.
const DefaultPopularLimit = 10

// MaxRating is the top of the book review scale.
const MaxRating = 5

// ContentInput carries the editable fields of a content row.
type ContentInput struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	Slug         string `json:"slug"`
	Excerpt      string `json:"excerpt"`
	CategoryID   *int64 `json:"category_id"`
	ImageURL     string `json:"image_url"`
	Published    *bool  `json:"published"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	BookTitle    string `json:"book_title"`
	BookAuthor   string `json:"book_author"`
	Rating       *int   `json:"rating"`
}

// ContentOptions configures a ContentService.
type ContentOptions struct {
	ExcerptLength int
	Cache         cache.Cacher // nil disables popular-list caching
	CacheTTL      time.Duration
	Events        *EventService
}

// ContentService implements the news, opinion, video and book review
// workflow shared by the API and page handlers.
type ContentService struct {
	queries       *store.Queries
	sanitizer     *bluemonday.Policy
	excerptLength int
	popular       *cache.TypedCache[[]model.Content]
	events        *EventService
	now           func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(db *sql.DB, opts ContentOptions) *ContentService {
	if opts.ExcerptLength <= 0 {
		opts.ExcerptLength = util.DefaultExcerptLength
	}
	s := &ContentService{
		queries:       store.New(db),
		sanitizer:     bluemonday.UGCPolicy(),
		excerptLength: opts.ExcerptLength,
		events:        opts.Events,
		now:           time.Now,
	}
	if opts.Cache != nil {
		s.popular = cache.NewTypedCache[[]model.Content](opts.Cache, opts.CacheTTL)
	}
	return s
}

// Create validates in, derives slug and excerpt, and stores a new row
// authored by p. Published defaults to true.
func (s *ContentService) Create(ctx context.Context, p *model.Principal, kind model.Kind, in ContentInput) (model.Content, error) {
	if err := requireStaff(p); err != nil {
		return model.Content{}, err
	}
	if !kind.Valid() {
		return model.Content{}, &model.ValidationError{Field: "kind", Message: "is not a content kind"}
	}

	now := s.now().UTC()
	c := model.Content{
		Kind:      kind,
		AuthorID:  p.ID,
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(&c, in)

	if err := s.prepareContent(ctx, &c); err != nil {
		return model.Content{}, err
	}

	created, err := s.queries.CreateContent(ctx, c)
	if err != nil {
		return model.Content{}, err
	}

	s.invalidatePopular(ctx, kind)
	_ = s.events.LogContentEvent(ctx, p, kind.Label()+" created", map[string]any{
		"id": created.ID, "slug": created.Slug,
	})
	return created, nil
}

// Update applies in to an existing row. Slug and excerpt stay as stored
// unless in supplies new values.
func (s *ContentService) Update(ctx context.Context, p *model.Principal, kind model.Kind, id int64, in ContentInput) (model.Content, error) {
	if err := requireStaff(p); err != nil {
		return model.Content{}, err
	}
	existing, err := s.queries.GetContent(ctx, kind, id)
	if err != nil {
		return model.Content{}, err
	}
	if err := authorizeMutation(p, existing); err != nil {
		return model.Content{}, err
	}

	c := existing
	applyInput(&c, in)
	if in.Slug == "" {
		c.Slug = existing.Slug
	}
	if in.Excerpt == "" {
		c.Excerpt = existing.Excerpt
	}
	c.UpdatedAt = s.now().UTC()

	if err := s.prepareContent(ctx, &c); err != nil {
		return model.Content{}, err
	}

	updated, err := s.queries.UpdateContent(ctx, c)
	if err != nil {
		return model.Content{}, err
	}

	s.invalidatePopular(ctx, kind)
	_ = s.events.LogContentEvent(ctx, p, kind.Label()+" updated", map[string]any{"id": id})
	return updated, nil
}

// Delete removes a row. Admins may delete anything, editors and writers
// only their own rows.
func (s *ContentService) Delete(ctx context.Context, p *model.Principal, kind model.Kind, id int64) error {
	if err := requireStaff(p); err != nil {
		return err
	}
	existing, err := s.queries.GetContent(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := authorizeMutation(p, existing); err != nil {
		return err
	}

	if err := s.queries.DeleteContent(ctx, kind, id); err != nil {
		return err
	}

	s.invalidatePopular(ctx, kind)
	_ = s.events.LogContentEvent(ctx, p, kind.Label()+" deleted", map[string]any{
		"id": id, "slug": existing.Slug,
	})
	return nil
}

// TogglePublish flips the published flag and returns the updated row.
// Admins and editors may toggle any row, writers only their own.
func (s *ContentService) TogglePublish(ctx context.Context, p *model.Principal, kind model.Kind, id int64) (model.Content, error) {
	if err := requireStaff(p); err != nil {
		return model.Content{}, err
	}
	existing, err := s.queries.GetContent(ctx, kind, id)
	if err != nil {
		return model.Content{}, err
	}
	if err := authorizePublish(p, existing); err != nil {
		return model.Content{}, err
	}

	published := !existing.Published
	if err := s.queries.SetContentPublished(ctx, kind, id, published, s.now().UTC()); err != nil {
		return model.Content{}, err
	}

	s.invalidatePopular(ctx, kind)
	action := " unpublished"
	if published {
		action = " published"
	}
	_ = s.events.LogContentEvent(ctx, p, kind.Label()+action, map[string]any{"id": id})

	return s.queries.GetContent(ctx, kind, id)
}

// GetForEditor returns a row including drafts, for editing.
func (s *ContentService) GetForEditor(ctx context.Context, p *model.Principal, kind model.Kind, id int64) (model.Content, error) {
	if err := requireStaff(p); err != nil {
		return model.Content{}, err
	}
	c, err := s.queries.GetContent(ctx, kind, id)
	if err != nil {
		return model.Content{}, err
	}
	if err := authorizeRead(p, c); err != nil {
		return model.Content{}, err
	}
	return c, nil
}

// GetPublic returns a published row and counts one view. Unpublished rows
// are reported as not found.
func (s *ContentService) GetPublic(ctx context.Context, kind model.Kind, id int64) (model.Content, error) {
	return s.queries.IncrementContentViews(ctx, kind, id)
}

// GetPublicBySlug is GetPublic keyed by slug.
func (s *ContentService) GetPublicBySlug(ctx context.Context, kind model.Kind, slug string) (model.Content, error) {
	return s.queries.IncrementContentViewsBySlug(ctx, kind, slug)
}

// PublicFilter narrows a public listing.
type PublicFilter struct {
	CategoryID *int64
	ListParams
}

// ListPublic returns one page of published rows, newest first.
func (s *ContentService) ListPublic(ctx context.Context, kind model.Kind, f PublicFilter) (Page[model.Content], error) {
	published := true
	return s.list(ctx, store.ContentFilter{
		Kind:       kind,
		Published:  &published,
		CategoryID: f.CategoryID,
	}, f.ListParams)
}

// ListForEditor returns one page of rows including drafts. Writers see
// their own rows, admins and editors see all.
func (s *ContentService) ListForEditor(ctx context.Context, p *model.Principal, kind model.Kind, params ListParams) (Page[model.Content], error) {
	if err := requireStaff(p); err != nil {
		return Page[model.Content]{}, err
	}
	f := store.ContentFilter{Kind: kind}
	if p.Role == model.RoleWriter {
		id := p.ID
		f.AuthorID = &id
	}
	return s.list(ctx, f, params)
}

func (s *ContentService) list(ctx context.Context, f store.ContentFilter, params ListParams) (Page[model.Content], error) {
	if !f.Kind.Valid() {
		return Page[model.Content]{}, &model.ValidationError{Field: "kind", Message: "is not a content kind"}
	}
	params = params.normalize()
	f.Limit, f.Offset = params.limitOffset()

	items, err := s.queries.ListContent(ctx, f)
	if err != nil {
		return Page[model.Content]{}, err
	}
	total, err := s.queries.CountContent(ctx, f)
	if err != nil {
		return Page[model.Content]{}, err
	}
	return newPage(items, total, params), nil
}

// Popular returns the most-read published rows of a kind. The list is
// served from the cache when one is configured.
func (s *ContentService) Popular(ctx context.Context, kind model.Kind, limit int) ([]model.Content, error) {
	if !kind.Valid() {
		return nil, &model.ValidationError{Field: "kind", Message: "is not a content kind"}
	}
	if limit <= 0 || limit > MaxPerPage {
		limit = DefaultPopularLimit
	}

	load := func() ([]model.Content, error) {
		items, err := s.queries.ListPopularContent(ctx, kind, int64(limit))
		if items == nil {
			items = []model.Content{}
		}
		return items, err
	}
	if s.popular == nil {
		return load()
	}
	return s.popular.GetOrSet(ctx, cache.PopularKey(string(kind), limit), load)
}

// RefreshPopular recomputes the default most-read list of every kind and
// drops other cached lengths. It runs from the scheduler.
func (s *ContentService) RefreshPopular(ctx context.Context) error {
	if s.popular == nil {
		return nil
	}
	var errs []error
	for _, kind := range model.Kinds {
		items, err := s.queries.ListPopularContent(ctx, kind, DefaultPopularLimit)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if items == nil {
			items = []model.Content{}
		}
		s.invalidatePopular(ctx, kind)
		if err := s.popular.Set(ctx, cache.PopularKey(string(kind), DefaultPopularLimit), items); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *ContentService) invalidatePopular(ctx context.Context, kind model.Kind) {
	if s.popular == nil {
		return
	}
	if err := s.popular.DeleteByPrefix(ctx, cache.PopularKindPrefix(string(kind))); err != nil {
		slog.Warn("failed to invalidate popular list", "kind", kind, "error", err)
	}
}

// applyInput copies the editable fields of in onto c.
func applyInput(c *model.Content, in ContentInput) {
	c.Title = strings.TrimSpace(in.Title)
	c.Body = in.Body
	c.Slug = strings.TrimSpace(in.Slug)
	c.Excerpt = strings.TrimSpace(in.Excerpt)
	c.CategoryID = in.CategoryID
	c.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Published != nil {
		c.Published = *in.Published
	}
	c.VideoURL = strings.TrimSpace(in.VideoURL)
	c.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	c.BookTitle = strings.TrimSpace(in.BookTitle)
	c.BookAuthor = strings.TrimSpace(in.BookAuthor)
	c.Rating = in.Rating
}

// prepareContent validates c and fills derived fields before it is stored.
// A slug or excerpt that is already set is kept.
func (s *ContentService) prepareContent(ctx context.Context, c *model.Content) error {
	if c.Title == "" {
		return model.NewRequiredError("title")
	}
	if c.AuthorID == 0 {
		return model.NewRequiredError("author_id")
	}

	c.Body = strings.TrimSpace(s.sanitizer.Sanitize(c.Body))
	if strings.TrimSpace(util.StripTags(c.Body)) == "" {
		return model.NewRequiredError("body")
	}

	if c.Kind == model.KindNews && c.CategoryID == nil {
		return model.NewRequiredError("category_id")
	}
	if c.CategoryID != nil {
		if _, err := s.queries.GetCategory(ctx, *c.CategoryID); err != nil {
			var nf *model.NotFoundError
			if errors.As(err, &nf) {
				return &model.ValidationError{Field: "category_id", Message: "does not exist"}
			}
			return err
		}
	}

	if c.Slug == "" {
		c.Slug = util.SlugOrFallback(c.Title, string(c.Kind), s.now())
	} else if !util.IsValidSlug(c.Slug) {
		return &model.ValidationError{Field: "slug", Message: "may contain only lowercase letters, digits, Bengali characters and hyphens"}
	}

	if c.Excerpt == "" {
		c.Excerpt = util.DeriveExcerpt(c.Body, s.excerptLength)
	}

	switch c.Kind {
	case model.KindVideo:
		if err := prepareVideo(c); err != nil {
			return err
		}
	default:
		c.VideoURL, c.VideoID, c.ThumbnailURL = "", "", ""
	}

	if c.Kind == model.KindBookReview {
		if c.Rating != nil && (*c.Rating < 0 || *c.Rating > MaxRating) {
			return &model.ValidationError{Field: "rating", Message: "must be between 0 and 5"}
		}
	} else {
		c.BookTitle, c.BookAuthor, c.Rating = "", "", nil
	}

	return nil
}

// prepareVideo requires a video link or an image, extracts the video id
// and synthesises a thumbnail when none is set.
func prepareVideo(c *model.Content) error {
	if c.VideoURL == "" {
		if c.ImageURL == "" {
			return &model.ValidationError{Field: "video_url", Message: "a video link or an image is required"}
		}
		c.VideoID = ""
		return nil
	}

	id, err := util.ExtractVideoID(c.VideoURL)
	if err != nil {
		return &model.ValidationError{Field: "video_url", Message: "is not a recognised YouTube link"}
	}
	c.VideoID = id
	if c.ThumbnailURL == "" {
		c.ThumbnailURL = util.VideoThumbnailURL(id)
	}
	return nil
}
