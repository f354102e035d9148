// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strconv"
	"time"

	"github.com/olegiv/sangbad-cms/internal/model"
)

const categoryColumns = `id, name, slug, description, serial, created_at, updated_at`

// CategoryParams holds the writable fields of a category.
type CategoryParams struct {
	Name        string
	Slug        string
	Description string
	Serial      int64
	Now         time.Time
}

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Serial, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) CreateCategory(ctx context.Context, arg CategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, slug, description, serial, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+categoryColumns,
		arg.Name, arg.Slug, arg.Description, arg.Serial, arg.Now, arg.Now)
	c, err := scanCategory(row)
	return c, translateError(err, "create category", "category", arg.Slug)
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	return c, translateError(err, "get category", "category", strconv.FormatInt(id, 10))
}

func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	c, err := scanCategory(row)
	return c, translateError(err, "get category by slug", "category", slug)
}

// ListCategories returns all categories in display (serial) order.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY serial ASC`)
	if err != nil {
		return nil, translateError(err, "list categories", "category", "")
	}
	defer func() { _ = rows.Close() }()

	var out []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, translateError(err, "list categories", "category", "")
		}
		out = append(out, c)
	}
	return out, translateError(rows.Err(), "list categories", "category", "")
}

func (q *Queries) UpdateCategory(ctx context.Context, id int64, arg CategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ?, serial = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING `+categoryColumns,
		arg.Name, arg.Slug, arg.Description, arg.Serial, arg.Now, id)
	c, err := scanCategory(row)
	return c, translateError(err, "update category", "category", strconv.FormatInt(id, 10))
}

// DeleteCategory removes a category. Categories still used by content yield InUseError.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return translateError(err, "delete category", "category", strconv.FormatInt(id, 10))
	}
	return expectAffected(res, "delete category", "category", id)
}

// CountContentByCategory returns how many content items reference the category.
func (q *Queries) CountContentByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contents WHERE category_id = ?`, categoryID).Scan(&n)
	return n, translateError(err, "count content by category", "content", "")
}
