// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/sangbad-cms/internal/model"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

func sessionRequest(t *testing.T, sm *scs.SessionManager, values map[string]any) *http.Request {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	for k, v := range values {
		sm.Put(ctx, k, v)
	}
	return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
}

func TestSessionDecoder(t *testing.T) {
	sm := scs.New()
	d := NewSessionDecoder(sm)

	tests := []struct {
		name   string
		values map[string]any
		want   *model.Principal
	}{
		{"empty session", nil, nil},
		{"canonical role", map[string]any{SessionKeyUserID: int64(7), SessionKeyRole: "editor"}, &model.Principal{ID: 7, Role: model.RoleEditor}},
		{"upper-case role", map[string]any{SessionKeyUserID: int64(3), SessionKeyRole: "ADMIN"}, &model.Principal{ID: 3, Role: model.RoleAdmin}},
		{"unknown role", map[string]any{SessionKeyUserID: int64(3), SessionKeyRole: "root"}, nil},
		{"missing id", map[string]any{SessionKeyRole: "admin"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sessionRequest(t, sm, tt.values)
			assert.Equal(t, tt.want, d.Decode(r))
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	decoder := NewTokenDecoder(testSecret)

	token, expiresAt, err := issuer.Issue(&model.Principal{ID: 42, Role: model.RoleWriter})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	r := httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	assert.Equal(t, &model.Principal{ID: 42, Role: model.RoleWriter}, decoder.Decode(r))
}

func TestTokenDecoder_Rejects(t *testing.T) {
	decoder := NewTokenDecoder(testSecret)
	p := &model.Principal{ID: 1, Role: model.RoleAdmin}

	expired := NewTokenIssuer(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Issue(p)
	require.NoError(t, err)

	otherSecret, _, err := NewTokenIssuer("another-Secret-key-32-bytes-long!", time.Hour).Issue(p)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expiredToken,
		"wrong secret": otherSecret,
		"no expiry":    noExp,
		"unknown role": badRole,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decoder.Parse(token)
			assert.Error(t, err)

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Bearer "+token)
			assert.Nil(t, decoder.Decode(r))
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, ok := BearerToken(r)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestResolver_BothTransportsSamePrincipal(t *testing.T) {
	sm := scs.New()
	resolver := NewResolver(NewSessionDecoder(sm), NewTokenDecoder(testSecret))
	want := &model.Principal{ID: 9, Role: model.RoleEditor}

	sessionReq := sessionRequest(t, sm, map[string]any{SessionKeyUserID: int64(9), SessionKeyRole: "editor"})

	token, _, err := NewTokenIssuer(testSecret, time.Hour).Issue(want)
	require.NoError(t, err)
	tokenReq := sessionRequest(t, sm, nil)
	tokenReq.Header.Set("Authorization", "Bearer "+token)

	assert.Equal(t, want, resolver.Resolve(sessionReq))
	assert.Equal(t, want, resolver.Resolve(tokenReq))
	assert.Nil(t, resolver.Resolve(sessionRequest(t, sm, nil)))
}

func TestStartAndEndSession(t *testing.T) {
	sm := scs.New()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, StartSession(ctx, sm, &model.Principal{ID: 5, Role: model.RoleWriter}))
	r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	assert.Equal(t, &model.Principal{ID: 5, Role: model.RoleWriter}, NewSessionDecoder(sm).Decode(r))

	require.NoError(t, EndSession(ctx, sm))
	assert.Nil(t, NewSessionDecoder(sm).Decode(r))
}
