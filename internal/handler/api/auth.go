// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/sangbad-cms/internal/auth"
	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/model"
)

// Credentials is the body of the login and token endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by POST /api/auth/token.
type TokenResponse struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

func (h *Handler) checkCredentials(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	var creds Credentials
	if !decodeJSON(w, r, &creds) {
		return model.User{}, false
	}
	if creds.Email == "" || creds.Password == "" {
		WriteServiceError(w, r, &model.ValidationError{Field: "email", Message: "email and password are required"})
		return model.User{}, false
	}

	user, err := h.Deps.Login.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		WriteServiceError(w, r, err)
		return model.User{}, false
	}
	return user, true
}

// Login handles POST /api/auth/login and starts a cookie session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	user, ok := h.checkCredentials(w, r)
	if !ok {
		return
	}
	if err := auth.StartSession(r.Context(), h.Sessions, user.Principal()); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, user, nil)
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.EndSession(r.Context(), h.Sessions); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]string{"status": "signed_out"}, nil)
}

// Token handles POST /api/auth/token and returns a bearer token.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	user, ok := h.checkCredentials(w, r)
	if !ok {
		return
	}
	token, expiresAt, err := h.Tokens.Issue(user.Principal())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      user,
	}, nil)
}

// Validate handles GET /api/auth/validate and echoes the resolved principal.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	if p == nil {
		WriteServiceError(w, r, &model.AuthenticationError{})
		return
	}
	WriteSuccess(w, p, nil)
}
