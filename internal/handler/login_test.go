// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/service"
	"github.com/olegiv/sangbad-cms/internal/testutil"
)

func newLoginGate(t *testing.T, maxFailures int) *LoginGate {
	t.Helper()
	db := testutil.TestDB(t)
	users := service.NewUserService(db, nil)
	root := testutil.CreateUser(t, db, "root@example.com", model.RoleAdmin).Principal()
	_, err := users.Create(context.Background(), root, service.UserInput{
		Name: "e", Email: "e@example.com", Password: testPassword, Role: "editor",
	})
	require.NoError(t, err)
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{MaxFailedAttempts: maxFailures})
	return NewLoginGate(users, lp)
}

func TestLoginGate(t *testing.T) {
	gate := newLoginGate(t, 3)
	ctx := context.Background()

	user, err := gate.Login(ctx, "E@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, user.Role)

	_, err = gate.Login(ctx, "e@example.com", "wrong")
	var authErr *model.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestLoginGate_Lockout(t *testing.T) {
	gate := newLoginGate(t, 2)
	ctx := context.Background()

	for range 2 {
		_, _ = gate.Login(ctx, "e@example.com", "wrong")
	}

	_, err := gate.Login(ctx, "e@example.com", testPassword)
	var locked *AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Positive(t, locked.RetryAfter)
	assert.Contains(t, locked.Error(), "locked")
}

func TestLoginGate_SuccessResetsFailures(t *testing.T) {
	gate := newLoginGate(t, 2)
	ctx := context.Background()

	_, _ = gate.Login(ctx, "e@example.com", "wrong")
	_, err := gate.Login(ctx, "e@example.com", testPassword)
	require.NoError(t, err)

	_, _ = gate.Login(ctx, "e@example.com", "wrong")
	_, err = gate.Login(ctx, "e@example.com", testPassword)
	assert.NoError(t, err, "one failure after a reset does not lock")
}
