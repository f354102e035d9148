// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/olegiv/sangbad-cms/internal/auth"
	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/store"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// UserInput carries the editable fields of a user. On update an empty
// Password keeps the current one.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserService manages staff and reader accounts and checks credentials.
type UserService struct {
	db      *sql.DB
	queries *store.Queries
	events  *EventService
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, events *EventService) *UserService {
	return &UserService{
		db:      db,
		queries: store.New(db),
		events:  events,
		now:     time.Now,
	}
}

// Authenticate checks an email and password pair. Unknown emails and wrong
// passwords both yield AuthenticationError. Legacy or outdated hashes are
// upgraded on success.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	email = normalizeEmail(email)
	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			return model.User{}, &model.AuthenticationError{}
		}
		return model.User{}, err
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Warn("unreadable password hash", "user_id", user.ID, "error", err)
		return model.User{}, &model.AuthenticationError{}
	}
	if !ok {
		return model.User{}, &model.AuthenticationError{}
	}

	now := s.now().UTC()
	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, user.ID, hash, now); err != nil {
				slog.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
			} else {
				user.PasswordHash = hash
			}
		}
	}
	if err := s.queries.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = sql.NullTime{Time: now, Valid: true}

	_ = s.events.LogAuthEvent(ctx, model.EventLevelInfo, "user signed in", &user.ID, nil)
	return user, nil
}

// List returns one page of users. Admin only.
func (s *UserService) List(ctx context.Context, p *model.Principal, params ListParams) (Page[model.User], error) {
	if err := requireAdmin(p); err != nil {
		return Page[model.User]{}, err
	}
	params = params.normalize()
	limit, offset := params.limitOffset()

	users, err := s.queries.ListUsers(ctx, limit, offset)
	if err != nil {
		return Page[model.User]{}, err
	}
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return Page[model.User]{}, err
	}
	return newPage(users, total, params), nil
}

// Get returns a user. Admins may read anyone, other principals themselves.
func (s *UserService) Get(ctx context.Context, p *model.Principal, id int64) (model.User, error) {
	if p == nil {
		return model.User{}, &model.AuthenticationError{}
	}
	if !p.IsAdmin() && p.ID != id {
		return model.User{}, &model.ForbiddenRoleError{Role: p.Role, Required: capAdmin}
	}
	return s.queries.GetUserByID(ctx, id)
}

// Create adds a user. Admin only.
func (s *UserService) Create(ctx context.Context, p *model.Principal, in UserInput) (model.User, error) {
	if err := requireAdmin(p); err != nil {
		return model.User{}, err
	}
	in, role, err := prepareUser(in, true)
	if err != nil {
		return model.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return model.User{}, err
	}

	_ = s.events.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryUser, "user created",
		principalID(p), map[string]any{"id": user.ID, "role": string(user.Role)})
	return user, nil
}

// Update changes a user. Admin only; admins cannot change their own role.
func (s *UserService) Update(ctx context.Context, p *model.Principal, id int64, in UserInput) (model.User, error) {
	if err := requireAdmin(p); err != nil {
		return model.User{}, err
	}
	existing, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(in.Role) == "" {
		in.Role = string(existing.Role)
	}
	in, role, err := prepareUser(in, false)
	if err != nil {
		return model.User{}, err
	}
	if id == p.ID && role != existing.Role {
		return model.User{}, &model.ValidationError{Field: "role", Message: "cannot change your own role"}
	}

	var hash string
	if in.Password != "" {
		if hash, err = auth.HashPassword(in.Password); err != nil {
			return model.User{}, err
		}
	}

	// Profile and password change together or not at all.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("begin user update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	qtx := s.queries.WithTx(tx)

	now := s.now().UTC()
	user, err := qtx.UpdateUser(ctx, store.UpdateUserParams{
		ID:        id,
		Name:      in.Name,
		Email:     in.Email,
		Role:      role,
		UpdatedAt: now,
	})
	if err != nil {
		return model.User{}, err
	}
	if hash != "" {
		if err := qtx.UpdateUserPassword(ctx, id, hash, now); err != nil {
			return model.User{}, err
		}
		user.PasswordHash = hash
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, fmt.Errorf("commit user update: %w", err)
	}

	_ = s.events.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryUser, "user updated",
		principalID(p), map[string]any{"id": id, "role": string(role)})
	return user, nil
}

// Delete removes a user who authored no content. Admin only; admins cannot
// delete themselves.
func (s *UserService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if id == p.ID {
		return &model.ValidationError{Field: "id", Message: "cannot delete your own account"}
	}
	if _, err := s.queries.GetUserByID(ctx, id); err != nil {
		return err
	}

	refs, err := s.queries.CountContentByAuthor(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &model.InUseError{Entity: "user", Refs: refs}
	}

	if err := s.queries.DeleteUser(ctx, id); err != nil {
		return err
	}

	_ = s.events.LogEvent(ctx, model.EventLevelWarning, model.EventCategoryUser, "user deleted",
		principalID(p), map[string]any{"id": id})
	return nil
}

// prepareUser validates in and canonicalises email and role. The password
// is required on create and optional on update.
func prepareUser(in UserInput, create bool) (UserInput, model.Role, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if in.Name == "" {
		return in, "", model.NewRequiredError("name")
	}
	if in.Email == "" {
		return in, "", model.NewRequiredError("email")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return in, "", &model.ValidationError{Field: "email", Message: "is not a valid address"}
	}

	switch {
	case create && in.Password == "":
		return in, "", model.NewRequiredError("password")
	case in.Password != "" && len([]rune(in.Password)) < MinPasswordLength:
		return in, "", &model.ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}

	roleName := in.Role
	if strings.TrimSpace(roleName) == "" {
		roleName = string(model.RoleUser)
	}
	role, ok := model.ParseRole(roleName)
	if !ok {
		return in, "", &model.ValidationError{Field: "role", Message: "must be one of admin, editor, writer, user"}
	}
	return in, role, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
