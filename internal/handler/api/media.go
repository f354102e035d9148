// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/olegiv/sangbad-cms/internal/imaging"
	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/model"
)

// multipartOverhead leaves room for multipart headers around the file.
const multipartOverhead = 1 << 20

// Upload handles POST /api/editor/uploads (multipart field "file").
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+multipartOverhead)

	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteServiceError(w, r, &model.ValidationError{Field: "file", Message: "must be at most 5 MB"})
			return
		}
		WriteServiceError(w, r, model.NewRequiredError("file"))
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.Media.Upload(r.Context(), middleware.GetPrincipal(r), file)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, res)
}
