// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/sangbad-cms/internal/model"
)

// Session keys written at login and read by SessionDecoder.
const (
	SessionKeyUserID = "user_id"
	SessionKeyRole   = "role"
)

// Decoder turns one credential shape into a principal.
// Decode returns nil when the request carries no valid credential of its shape.
type Decoder interface {
	Decode(r *http.Request) *model.Principal
}

// SessionDecoder reads the principal from the cookie-backed scs session.
// The request must have passed through SessionManager.LoadAndSave.
type SessionDecoder struct {
	sessions *scs.SessionManager
}

// NewSessionDecoder creates a decoder over sm.
func NewSessionDecoder(sm *scs.SessionManager) *SessionDecoder {
	return &SessionDecoder{sessions: sm}
}

func (d *SessionDecoder) Decode(r *http.Request) *model.Principal {
	ctx := r.Context()
	id := d.sessions.GetInt64(ctx, SessionKeyUserID)
	if id <= 0 {
		return nil
	}
	role, ok := model.ParseRole(d.sessions.GetString(ctx, SessionKeyRole))
	if !ok {
		return nil
	}
	return &model.Principal{ID: id, Role: role}
}

// Resolver turns request credentials into a principal. Decoders are tried
// in order and the first principal wins. Nothing is cached between requests.
type Resolver struct {
	decoders []Decoder
}

// NewResolver creates a resolver over the given decoders.
func NewResolver(decoders ...Decoder) *Resolver {
	return &Resolver{decoders: decoders}
}

// Resolve returns the request's principal, or nil for anonymous requests.
// It never fails: an invalid credential is the same as no credential.
func (res *Resolver) Resolve(r *http.Request) *model.Principal {
	for _, d := range res.decoders {
		if p := d.Decode(r); p != nil {
			return p
		}
	}
	return nil
}

// StartSession stores p in a fresh session. The token is renewed first to
// prevent session fixation.
func StartSession(ctx context.Context, sm *scs.SessionManager, p *model.Principal) error {
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	sm.Put(ctx, SessionKeyUserID, p.ID)
	sm.Put(ctx, SessionKeyRole, string(p.Role))
	return nil
}

// EndSession destroys the current session.
func EndSession(ctx context.Context, sm *scs.SessionManager) error {
	if err := sm.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}
