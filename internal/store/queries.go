// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/olegiv/sangbad-cms/internal/model"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the application's SQL against a DBTX.
type Queries struct {
	db DBTX
}

// New creates Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to the transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// uniqueFields maps "table.column" in SQLite constraint messages to the
// field name reported to clients.
var uniqueFields = map[string]string{
	"users.email":       "email",
	"categories.name":   "name",
	"categories.slug":   "slug",
	"categories.serial": "serial",
	"contents.slug":     "slug",
}

// translateError converts driver errors into domain errors.
// sql.ErrNoRows becomes NotFoundError, UNIQUE violations become
// DuplicateKeyError and everything else a StorageError.
func translateError(err error, op, entity, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &model.NotFoundError{Entity: entity, Key: key}
	}

	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		cols := strings.Split(msg[i+len("UNIQUE constraint failed: "):], ", ")
		// For composite keys such as (kind, slug) report the last column.
		col := strings.TrimSpace(cols[len(cols)-1])
		if end := strings.IndexAny(col, " )"); end >= 0 {
			col = col[:end]
		}
		if field, ok := uniqueFields[col]; ok {
			return &model.DuplicateKeyError{Field: field}
		}
		return &model.DuplicateKeyError{Field: col}
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return &model.InUseError{Entity: entity}
	}

	return &model.StorageError{Op: op, Err: err}
}
