// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/store"
	"github.com/olegiv/sangbad-cms/internal/testutil"
)

func newUserService(t *testing.T) (*UserService, *sql.DB, *model.Principal) {
	t.Helper()
	db := testutil.TestDB(t)
	admin := testutil.CreateUser(t, db, "admin@example.com", model.RoleAdmin).Principal()
	return NewUserService(db, NewEventService(db)), db, admin
}

func TestUserCreate(t *testing.T) {
	svc, _, admin := newUserService(t)

	u, err := svc.Create(context.Background(), admin, UserInput{
		Name:     "রহিম",
		Email:    "  Rahim@Example.COM ",
		Password: "correct-horse",
		Role:     "WRITER",
	})
	require.NoError(t, err)

	assert.Equal(t, "rahim@example.com", u.Email)
	assert.Equal(t, model.RoleWriter, u.Role)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))
}

func TestUserCreate_DefaultRole(t *testing.T) {
	svc, _, admin := newUserService(t)

	u, err := svc.Create(context.Background(), admin, UserInput{Name: "r", Email: "r@example.com", Password: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestUserCreate_Validation(t *testing.T) {
	svc, _, admin := newUserService(t)

	tests := []struct {
		name  string
		in    UserInput
		field string
	}{
		{"missing name", UserInput{Email: "a@example.com", Password: "12345678"}, "name"},
		{"missing email", UserInput{Name: "a", Password: "12345678"}, "email"},
		{"bad email", UserInput{Name: "a", Email: "not-an-email", Password: "12345678"}, "email"},
		{"display name in email", UserInput{Name: "a", Email: "A <a@example.com>", Password: "12345678"}, "email"},
		{"missing password", UserInput{Name: "a", Email: "a@example.com"}, "password"},
		{"short password", UserInput{Name: "a", Email: "a@example.com", Password: "short"}, "password"},
		{"unknown role", UserInput{Name: "a", Email: "a@example.com", Password: "12345678", Role: "root"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), admin, tt.in)
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	svc, _, admin := newUserService(t)

	_, err := svc.Create(context.Background(), admin, UserInput{Name: "x", Email: "ADMIN@example.com", Password: "12345678"})
	var dup *model.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestUserCreate_RequiresAdmin(t *testing.T) {
	svc, db, _ := newUserService(t)
	editor := testutil.CreateUser(t, db, "editor@example.com", model.RoleEditor).Principal()

	_, err := svc.Create(context.Background(), editor, UserInput{Name: "x", Email: "x@example.com", Password: "12345678"})
	var roleErr *model.ForbiddenRoleError
	assert.ErrorAs(t, err, &roleErr)

	_, err = svc.List(context.Background(), nil, ListParams{})
	var authErr *model.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestUserUpdate(t *testing.T) {
	svc, _, admin := newUserService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, admin, UserInput{Name: "x", Email: "x@example.com", Password: "12345678", Role: "writer"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, admin, u.ID, UserInput{Name: "X", Email: "x@example.com", Role: "editor"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, updated.Role)
	assert.Equal(t, u.PasswordHash, updated.PasswordHash, "empty password keeps the hash")

	updated, err = svc.Update(ctx, admin, u.ID, UserInput{Name: "X", Email: "x@example.com", Password: "new-password"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, updated.Role, "empty role keeps the role")

	_, err = svc.Authenticate(ctx, "x@example.com", "new-password")
	assert.NoError(t, err)
}

func TestUserUpdate_PasswordFailureRollsBackProfile(t *testing.T) {
	svc, db, admin := newUserService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, admin, UserInput{Name: "x", Email: "x@example.com", Password: "12345678", Role: "writer"})
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `CREATE TRIGGER reject_password BEFORE UPDATE OF password_hash ON users
		BEGIN SELECT RAISE(ABORT, 'password writes disabled'); END`)
	require.NoError(t, err)

	_, err = svc.Update(ctx, admin, u.ID, UserInput{Name: "Renamed", Email: "renamed@example.com", Role: "editor", Password: "new-password"})
	require.Error(t, err)

	got, err := store.New(db).GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, "x@example.com", got.Email)
	assert.Equal(t, model.RoleWriter, got.Role)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
}

func TestUserUpdate_CannotChangeOwnRole(t *testing.T) {
	svc, _, admin := newUserService(t)

	_, err := svc.Update(context.Background(), admin, admin.ID, UserInput{Name: "a", Email: "admin@example.com", Role: "writer"})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "role", ve.Field)
}

func TestUserDelete(t *testing.T) {
	svc, db, admin := newUserService(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author@example.com", model.RoleWriter)
	idle := testutil.CreateUser(t, db, "idle@example.com", model.RoleWriter)

	_, err := NewContentService(db, ContentOptions{}).Create(ctx, author.Principal(), model.KindOpinion,
		ContentInput{Title: "মতামত", Body: "b"})
	require.NoError(t, err)

	err = svc.Delete(ctx, admin, author.ID)
	var inUse *model.InUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, "user", inUse.Entity)

	require.NoError(t, svc.Delete(ctx, admin, idle.ID))

	err = svc.Delete(ctx, admin, admin.ID)
	var ve *model.ValidationError
	assert.ErrorAs(t, err, &ve)

	err = svc.Delete(ctx, admin, 9999)
	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUserGet_Self(t *testing.T) {
	svc, db, admin := newUserService(t)
	ctx := context.Background()
	writer := testutil.CreateUser(t, db, "w@example.com", model.RoleWriter)

	got, err := svc.Get(ctx, writer.Principal(), writer.ID)
	require.NoError(t, err)
	assert.Equal(t, writer.Email, got.Email)

	_, err = svc.Get(ctx, writer.Principal(), admin.ID)
	var roleErr *model.ForbiddenRoleError
	assert.ErrorAs(t, err, &roleErr)
}

func TestUserList(t *testing.T) {
	svc, db, admin := newUserService(t)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		testutil.CreateUser(t, db, email, model.RoleWriter)
	}

	page, err := svc.List(context.Background(), admin, ListParams{PerPage: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 2, page.TotalPages)
}

func TestAuthenticate(t *testing.T) {
	svc, _, admin := newUserService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, admin, UserInput{Name: "e", Email: "e@example.com", Password: "s3cret-pass", Role: "editor"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "E@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, u.Role)
	assert.True(t, u.LastLoginAt.Valid)

	var authErr *model.AuthenticationError
	_, err = svc.Authenticate(ctx, "e@example.com", "wrong")
	assert.ErrorAs(t, err, &authErr)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorAs(t, err, &authErr)
}

func TestAuthenticate_UpgradesBcrypt(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)

	q := store.New(db)
	created, err := q.CreateUser(ctx, store.CreateUserParams{
		Name:         "legacy",
		Email:        "legacy@example.com",
		PasswordHash: string(legacy),
		Role:         model.RoleWriter,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)

	svc := NewUserService(db, nil)
	_, err = svc.Authenticate(ctx, "legacy@example.com", "old-password")
	require.NoError(t, err)

	stored, err := q.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"), "hash = %q", stored.PasswordHash)

	_, err = svc.Authenticate(ctx, "legacy@example.com", "old-password")
	assert.NoError(t, err, "upgraded hash still verifies")
}
