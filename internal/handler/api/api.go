// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON handlers for the public site, the editor
// console and the admin console.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/sangbad-cms/internal/auth"
	"github.com/olegiv/sangbad-cms/internal/handler"
	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/scheduler"
	"github.com/olegiv/sangbad-cms/internal/service"
)

// MaxBodySize caps JSON request bodies.
const MaxBodySize = 1 << 20

// JobRunner exposes the scheduled jobs to the admin console.
type JobRunner interface {
	List() []scheduler.JobInfo
	TriggerNow(name string) error
}

// Deps holds the services the API handlers call.
type Deps struct {
	Content    *service.ContentService
	Categories *service.CategoryService
	Users      *service.UserService
	Events     *service.EventService
	Media      *service.MediaService
	Login      *handler.LoginGate
	Protection *middleware.LoginProtection
	Sessions   *scs.SessionManager
	Tokens     *auth.TokenIssuer
	Health     *handler.HealthHandler
	Jobs       JobRunner // nil hides the jobs endpoints

	// EditorLimit throttles the /api/editor tree when set.
	EditorLimit func(http.Handler) http.Handler
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	Deps
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse = middleware.APIError

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WritePage writes one page of a list with its pagination metadata.
func WritePage[T any](w http.ResponseWriter, page service.Page[T]) {
	WriteSuccess(w, page.Items, &Meta{
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
		Pages:   page.TotalPages,
	})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	middleware.WriteAPIError(w, statusCode, code, message, details)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteServiceError maps service and domain errors to API responses.
// Unexpected errors are logged and reported without detail.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *model.ValidationError
		duplicateErr  *model.DuplicateKeyError
		authErr       *model.AuthenticationError
		roleErr       *model.ForbiddenRoleError
		ownershipErr  *model.OwnershipError
		notFoundErr   *model.NotFoundError
		inUseErr      *model.InUseError
		lockedErr     *handler.AccountLockedError
	)

	switch {
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusBadRequest, "validation_error", "Validation failed",
			map[string]string{validationErr.Field: validationErr.Message})
	case errors.As(err, &duplicateErr):
		WriteError(w, http.StatusConflict, "duplicate_key", duplicateErr.Error(),
			map[string]string{duplicateErr.Field: "already exists"})
	case errors.As(err, &authErr):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
	case errors.As(err, &roleErr):
		WriteError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
	case errors.As(err, &ownershipErr):
		WriteError(w, http.StatusForbidden, "ownership", "You can only modify your own content", nil)
	case errors.As(err, &notFoundErr):
		WriteError(w, http.StatusNotFound, "not_found", notFoundErr.Error(), nil)
	case errors.As(err, &inUseErr):
		WriteError(w, http.StatusConflict, "in_use", inUseErr.Error(), nil)
	case errors.As(err, &lockedErr):
		w.Header().Set("Retry-After", strconv.Itoa(int(lockedErr.RetryAfter.Seconds())+1))
		WriteError(w, http.StatusTooManyRequests, "account_locked", lockedErr.Error(), nil)
	default:
		slog.Error("api request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

// decodeJSON reads a JSON body into v, writing a 400 response on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			WriteBadRequest(w, "Request body is empty")
		} else {
			WriteBadRequest(w, "Invalid JSON body")
		}
		return false
	}
	return true
}

// requireID parses the {id} URL parameter, writing a 400 response on failure.
func requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid ID")
		return 0, false
	}
	return id, true
}

// requireKind resolves the {kind} URL parameter, writing a 404 response for
// unknown collections.
func requireKind(w http.ResponseWriter, r *http.Request) (model.Kind, bool) {
	kind, ok := handler.KindParam(r)
	if !ok {
		WriteNotFound(w, "Unknown content collection")
		return "", false
	}
	return kind, true
}
