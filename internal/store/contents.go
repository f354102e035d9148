// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/util"
)

const contentSelect = `SELECT c.id, c.kind, c.title, c.body, c.slug, c.excerpt, c.category_id,
	c.author_id, c.image_url, c.published, c.views, c.video_url, c.video_id, c.thumbnail_url,
	c.book_title, c.book_author, c.rating, c.created_at, c.updated_at,
	COALESCE(u.name, ''), COALESCE(cat.name, '')
	FROM contents c
	LEFT JOIN users u ON u.id = c.author_id
	LEFT JOIN categories cat ON cat.id = c.category_id`

func scanContent(row interface{ Scan(...any) error }) (model.Content, error) {
	var (
		c        model.Content
		kind     string
		category sql.NullInt64
		rating   sql.NullInt64
	)
	err := row.Scan(&c.ID, &kind, &c.Title, &c.Body, &c.Slug, &c.Excerpt, &category,
		&c.AuthorID, &c.ImageURL, &c.Published, &c.Views, &c.VideoURL, &c.VideoID, &c.ThumbnailURL,
		&c.BookTitle, &c.BookAuthor, &rating, &c.CreatedAt, &c.UpdatedAt,
		&c.AuthorName, &c.CategoryName)
	if err != nil {
		return c, err
	}
	c.Kind = model.Kind(kind)
	c.CategoryID = util.PtrFromNullInt64[int64](category)
	c.Rating = util.PtrFromNullInt64[int](rating)
	return c, nil
}

// CreateContent inserts c and returns the stored record. Views always start at zero.
func (q *Queries) CreateContent(ctx context.Context, c model.Content) (model.Content, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO contents (kind, title, body, slug, excerpt, category_id, author_id, image_url,
			published, views, video_url, video_id, thumbnail_url, book_title, book_author, rating,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		string(c.Kind), c.Title, c.Body, c.Slug, c.Excerpt, util.NullInt64FromPtr(c.CategoryID), c.AuthorID,
		c.ImageURL, c.Published, c.VideoURL, c.VideoID, c.ThumbnailURL, c.BookTitle, c.BookAuthor,
		util.NullInt64FromPtr(c.Rating), c.CreatedAt, c.UpdatedAt).Scan(&id)
	if err != nil {
		return model.Content{}, translateError(err, "create content", string(c.Kind), c.Slug)
	}
	return q.GetContent(ctx, c.Kind, id)
}

// GetContent returns content of the given kind by id regardless of publication state.
func (q *Queries) GetContent(ctx context.Context, kind model.Kind, id int64) (model.Content, error) {
	row := q.db.QueryRowContext(ctx, contentSelect+` WHERE c.kind = ? AND c.id = ?`, string(kind), id)
	c, err := scanContent(row)
	return c, translateError(err, "get content", string(kind), strconv.FormatInt(id, 10))
}

// GetContentBySlug returns content of the given kind by slug regardless of publication state.
func (q *Queries) GetContentBySlug(ctx context.Context, kind model.Kind, slug string) (model.Content, error) {
	row := q.db.QueryRowContext(ctx, contentSelect+` WHERE c.kind = ? AND c.slug = ?`, string(kind), slug)
	c, err := scanContent(row)
	return c, translateError(err, "get content by slug", string(kind), slug)
}

// ContentFilter narrows ListContent. Nil pointers do not filter.
type ContentFilter struct {
	Kind       model.Kind
	Published  *bool
	AuthorID   *int64
	CategoryID *int64
	Limit      int64
	Offset     int64
}

func (f ContentFilter) where() (string, []any) {
	clauses := []string{"c.kind = ?"}
	args := []any{string(f.Kind)}
	if f.Published != nil {
		clauses = append(clauses, "c.published = ?")
		args = append(args, *f.Published)
	}
	if f.AuthorID != nil {
		clauses = append(clauses, "c.author_id = ?")
		args = append(args, *f.AuthorID)
	}
	if f.CategoryID != nil {
		clauses = append(clauses, "c.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListContent returns content matching f, newest first.
func (q *Queries) ListContent(ctx context.Context, f ContentFilter) ([]model.Content, error) {
	where, args := f.where()
	args = append(args, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx,
		contentSelect+where+` ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, translateError(err, "list content", string(f.Kind), "")
	}
	return collectContent(rows, "list content", f.Kind)
}

// CountContent returns the number of rows ListContent would page through.
func (q *Queries) CountContent(ctx context.Context, f ContentFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contents c`+where, args...).Scan(&n)
	return n, translateError(err, "count content", string(f.Kind), "")
}

// ListPopularContent returns published content ordered by view count.
func (q *Queries) ListPopularContent(ctx context.Context, kind model.Kind, limit int64) ([]model.Content, error) {
	rows, err := q.db.QueryContext(ctx,
		contentSelect+` WHERE c.kind = ? AND c.published = 1
		ORDER BY c.views DESC, c.created_at DESC LIMIT ?`, string(kind), limit)
	if err != nil {
		return nil, translateError(err, "list popular content", string(kind), "")
	}
	return collectContent(rows, "list popular content", kind)
}

func collectContent(rows *sql.Rows, op string, kind model.Kind) ([]model.Content, error) {
	defer func() { _ = rows.Close() }()

	var out []model.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, translateError(err, op, string(kind), "")
		}
		out = append(out, c)
	}
	return out, translateError(rows.Err(), op, string(kind), "")
}

// UpdateContent overwrites the editable fields of c. Views and author are left alone.
func (q *Queries) UpdateContent(ctx context.Context, c model.Content) (model.Content, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE contents SET title = ?, body = ?, slug = ?, excerpt = ?, category_id = ?,
			image_url = ?, published = ?, video_url = ?, video_id = ?, thumbnail_url = ?,
			book_title = ?, book_author = ?, rating = ?, updated_at = ?
		 WHERE kind = ? AND id = ?`,
		c.Title, c.Body, c.Slug, c.Excerpt, util.NullInt64FromPtr(c.CategoryID), c.ImageURL, c.Published,
		c.VideoURL, c.VideoID, c.ThumbnailURL, c.BookTitle, c.BookAuthor, util.NullInt64FromPtr(c.Rating),
		c.UpdatedAt, string(c.Kind), c.ID)
	if err != nil {
		return model.Content{}, translateError(err, "update content", string(c.Kind), strconv.FormatInt(c.ID, 10))
	}
	if err := expectAffected(res, "update content", string(c.Kind), c.ID); err != nil {
		return model.Content{}, err
	}
	return q.GetContent(ctx, c.Kind, c.ID)
}

// SetContentPublished sets the published flag.
func (q *Queries) SetContentPublished(ctx context.Context, kind model.Kind, id int64, published bool, now time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE contents SET published = ?, updated_at = ? WHERE kind = ? AND id = ?`,
		published, now, string(kind), id)
	if err != nil {
		return translateError(err, "set published", string(kind), strconv.FormatInt(id, 10))
	}
	return expectAffected(res, "set published", string(kind), id)
}

// DeleteContent removes content by id.
func (q *Queries) DeleteContent(ctx context.Context, kind model.Kind, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM contents WHERE kind = ? AND id = ?`, string(kind), id)
	if err != nil {
		return translateError(err, "delete content", string(kind), strconv.FormatInt(id, 10))
	}
	return expectAffected(res, "delete content", string(kind), id)
}

// IncrementContentViews adds one view to published content and returns the
// record carrying the post-increment count. The increment is a single
// UPDATE so concurrent readers never lose a view.
func (q *Queries) IncrementContentViews(ctx context.Context, kind model.Kind, id int64) (model.Content, error) {
	var views int64
	err := q.db.QueryRowContext(ctx,
		`UPDATE contents SET views = views + 1
		 WHERE kind = ? AND id = ? AND published = 1
		 RETURNING views`, string(kind), id).Scan(&views)
	if err != nil {
		return model.Content{}, translateError(err, "increment views", string(kind), strconv.FormatInt(id, 10))
	}
	c, err := q.GetContent(ctx, kind, id)
	if err != nil {
		return c, err
	}
	c.Views = views
	return c, nil
}

// IncrementContentViewsBySlug is IncrementContentViews keyed by slug.
func (q *Queries) IncrementContentViewsBySlug(ctx context.Context, kind model.Kind, slug string) (model.Content, error) {
	var (
		id    int64
		views int64
	)
	err := q.db.QueryRowContext(ctx,
		`UPDATE contents SET views = views + 1
		 WHERE kind = ? AND slug = ? AND published = 1
		 RETURNING id, views`, string(kind), slug).Scan(&id, &views)
	if err != nil {
		return model.Content{}, translateError(err, "increment views", string(kind), slug)
	}
	c, err := q.GetContent(ctx, kind, id)
	if err != nil {
		return c, err
	}
	c.Views = views
	return c, nil
}
