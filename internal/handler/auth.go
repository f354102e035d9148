// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/sangbad-cms/internal/auth"
	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/render"
)

// Flash messages shown on the sign-in page.
const (
	msgCredentialsRequired = "ইমেইল ও পাসওয়ার্ড দিন"
	msgInvalidCredentials  = "ইমেইল অথবা পাসওয়ার্ড সঠিক নয়"
	msgAccountLocked       = "অনেকবার ভুল চেষ্টার কারণে অ্যাকাউন্ট সাময়িকভাবে বন্ধ"
	msgSignedOut           = "আপনি প্রস্থান করেছেন"
)

// AuthHandler handles the sign-in and sign-out pages.
type AuthHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	login          *LoginGate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(renderer *render.Renderer, sm *scs.SessionManager, login *LoginGate) *AuthHandler {
	return &AuthHandler{
		renderer:       renderer,
		sessionManager: sm,
		login:          login,
	}
}

// SignInData is the sign-in form model.
type SignInData struct {
	Next  string
	Email string
}

// SignInForm renders the sign-in page. Signed-in users are sent to their
// landing page.
func (h *AuthHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	if p := middleware.GetPrincipal(r); p != nil {
		http.Redirect(w, r, landingPath(p), http.StatusSeeOther)
		return
	}

	next := r.URL.Query().Get("next")
	if !isLocalPath(next) {
		next = ""
	}
	h.renderer.MustRender(w, r, http.StatusOK, render.PageSignIn, render.TemplateData{
		Title: "প্রবেশ",
		Data:  SignInData{Next: next},
	})
}

// SignIn handles the sign-in form submission.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteSignIn, msgCredentialsRequired)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	next := r.PostFormValue("next")

	retry := RouteSignIn
	if isLocalPath(next) {
		retry += "?next=" + url.QueryEscape(next)
	}

	if email == "" || password == "" {
		flashError(w, r, h.renderer, retry, msgCredentialsRequired)
		return
	}

	user, err := h.login.Login(r.Context(), email, password)
	if err != nil {
		var authErr *model.AuthenticationError
		var lockedErr *AccountLockedError
		switch {
		case errors.As(err, &lockedErr):
			flashError(w, r, h.renderer, retry, msgAccountLocked)
		case errors.As(err, &authErr):
			flashError(w, r, h.renderer, retry, msgInvalidCredentials)
		default:
			logAndInternalError(w, "sign-in failed", "error", err)
		}
		return
	}

	p := user.Principal()
	if err := auth.StartSession(r.Context(), h.sessionManager, p); err != nil {
		logAndInternalError(w, "session start failed", "error", err, "user_id", user.ID)
		return
	}

	target := landingPath(p)
	if isLocalPath(next) {
		target = next
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SignOut ends the session and returns to the home page.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := auth.EndSession(r.Context(), h.sessionManager); err != nil {
		logAndInternalError(w, "sign-out failed", "error", err)
		return
	}
	flashSuccess(w, r, h.renderer, RouteRoot, msgSignedOut)
}

// Unauthorized renders the page shown when a signed-in user lacks the role
// a page requires.
func (h *AuthHandler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.renderer.MustRender(w, r, http.StatusForbidden, render.PageUnauthorized, render.TemplateData{
		Title: "অনুমতি নেই",
	})
}

// landingPath is where a principal goes after signing in.
func landingPath(p *model.Principal) string {
	switch {
	case p.IsAdmin():
		return RouteAdmin
	case p.Role.IsStaff():
		return RouteEditor
	default:
		return RouteRoot
	}
}
