// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/service"
)

// AccountLockedError is returned while an account is locked after repeated
// failed logins.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account temporarily locked, retry in %s", e.RetryAfter.Round(time.Second))
}

// LoginGate checks credentials with account lockout. It backs both the page
// sign-in form and the JSON login and token endpoints.
type LoginGate struct {
	users      *service.UserService
	protection *middleware.LoginProtection
}

// NewLoginGate creates a login gate.
func NewLoginGate(users *service.UserService, protection *middleware.LoginProtection) *LoginGate {
	return &LoginGate{users: users, protection: protection}
}

// Login returns the user for valid credentials. Failures are
// *model.AuthenticationError or *AccountLockedError.
func (g *LoginGate) Login(ctx context.Context, email, password string) (model.User, error) {
	if locked, remaining := g.protection.IsAccountLocked(email); locked {
		return model.User{}, &AccountLockedError{RetryAfter: remaining}
	}

	user, err := g.users.Authenticate(ctx, email, password)
	if err != nil {
		var authErr *model.AuthenticationError
		if errors.As(err, &authErr) {
			if locked, d := g.protection.RecordFailedAttempt(email); locked {
				slog.Warn("login failed, account locked", "email", email, "lockout", d)
			}
		}
		return model.User{}, err
	}

	g.protection.RecordSuccessfulLogin(email)
	return user, nil
}
