// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/olegiv/sangbad-cms/internal/model"
)

const userColumns = `id, name, email, password_hash, role, last_login_at, created_at, updated_at`

// CreateUserParams holds the fields for a new user.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         model.Role
	CreatedAt    time.Time
}

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	u.Role = model.Role(role)
	return u, err
}

// CreateUser inserts a user and returns it.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+userColumns,
		arg.Name, arg.Email, arg.PasswordHash, string(arg.Role), arg.CreatedAt, arg.CreatedAt)
	u, err := scanUser(row)
	return u, translateError(err, "create user", "user", arg.Email)
}

// GetUserByID returns a user by id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	return u, translateError(err, "get user", "user", strconv.FormatInt(id, 10))
}

// GetUserByEmail returns a user by email, compared case-insensitively.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)
	u, err := scanUser(row)
	return u, translateError(err, "get user by email", "user", email)
}

// ListUsers returns users ordered by creation time, newest first.
func (q *Queries) ListUsers(ctx context.Context, limit, offset int64) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, translateError(err, "list users", "user", "")
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translateError(err, "list users", "user", "")
		}
		users = append(users, u)
	}
	return users, translateError(rows.Err(), "list users", "user", "")
}

// CountUsers returns the number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, translateError(err, "count users", "user", "")
}

// UpdateUserParams holds the mutable profile fields of a user.
type UpdateUserParams struct {
	ID        int64
	Name      string
	Email     string
	Role      model.Role
	UpdatedAt time.Time
}

// UpdateUser changes name, email and role.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE users SET name = ?, email = ?, role = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING `+userColumns,
		arg.Name, arg.Email, string(arg.Role), arg.UpdatedAt, arg.ID)
	u, err := scanUser(row)
	return u, translateError(err, "update user", "user", strconv.FormatInt(arg.ID, 10))
}

// UpdateUserPassword replaces the stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, hash string, now time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, now, id)
	return translateError(err, "update user password", "user", strconv.FormatInt(id, 10))
}

// UpdateUserLastLogin records a successful login.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, sql.NullTime{Time: at, Valid: true}, id)
	return translateError(err, "update last login", "user", strconv.FormatInt(id, 10))
}

// DeleteUser removes a user. A user still referenced by content yields InUseError.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return translateError(err, "delete user", "user", strconv.FormatInt(id, 10))
	}
	return expectAffected(res, "delete user", "user", id)
}

// CountContentByAuthor returns how many content items reference the user.
func (q *Queries) CountContentByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contents WHERE author_id = ?`, authorID).Scan(&n)
	return n, translateError(err, "count content by author", "content", "")
}

// expectAffected turns a zero-row mutation into NotFoundError.
func expectAffected(res sql.Result, op, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &model.StorageError{Op: op, Err: err}
	}
	if n == 0 {
		return &model.NotFoundError{Entity: entity, Key: strconv.FormatInt(id, 10)}
	}
	return nil
}
