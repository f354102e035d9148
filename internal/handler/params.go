// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/service"
)

// ParseIDParam parses the "id" URL parameter.
func ParseIDParam(r *http.Request) (int64, error) {
	return ParseURLParamInt64(r, "id")
}

// ParseURLParamInt64 parses a named URL parameter as int64.
func ParseURLParamInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: %w", name, err)
	}
	return v, nil
}

// ParseIntParam reads an integer query parameter, falling back to
// defaultVal when it is missing, malformed or outside [minVal, maxVal].
func ParseIntParam(r *http.Request, name string, defaultVal, minVal, maxVal int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minVal || v > maxVal {
		return defaultVal
	}
	return v
}

// ParseListParams reads ?page= and ?per_page=.
func ParseListParams(r *http.Request) service.ListParams {
	return service.ListParams{
		Page:    ParseIntParam(r, "page", 1, 1, 1<<20),
		PerPage: ParseIntParam(r, "per_page", service.DefaultPerPage, 1, service.MaxPerPage),
	}
}

// KindParam resolves the "kind" URL segment ("news", "opinions", ...).
func KindParam(r *http.Request) (model.Kind, bool) {
	return model.KindFromSegment(chi.URLParam(r, "kind"))
}
