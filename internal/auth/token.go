// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olegiv/sangbad-cms/internal/model"
)

// TokenIssuerName is the iss claim on every issued token.
const TokenIssuerName = "sangbad"

// Claims are the JWT claims carried by bearer tokens. The subject is the
// user id in decimal.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs bearer tokens with an HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer producing tokens valid for ttl.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for p and its expiry time.
func (i *TokenIssuer) Issue(p *model.Principal) (string, time.Time, error) {
	if p == nil {
		return "", time.Time{}, errors.New("issuing token: nil principal")
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			Issuer:    TokenIssuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// TokenDecoder resolves principals from "Authorization: Bearer" headers.
type TokenDecoder struct {
	secret []byte
	now    func() time.Time
}

// NewTokenDecoder creates a decoder verifying tokens against secret.
func NewTokenDecoder(secret string) *TokenDecoder {
	return &TokenDecoder{secret: []byte(secret), now: time.Now}
}

// Decode returns the principal carried by the request's bearer token, or nil.
func (d *TokenDecoder) Decode(r *http.Request) *model.Principal {
	raw, ok := BearerToken(r)
	if !ok {
		return nil
	}
	p, err := d.Parse(raw)
	if err != nil {
		return nil
	}
	return p
}

// Parse verifies the signature and expiry of raw and returns its principal.
func (d *TokenDecoder) Parse(raw string) (*model.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return d.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(d.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New("invalid token subject")
	}
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return &model.Principal{ID: id, Role: role}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
