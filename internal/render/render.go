// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render renders the server-side HTML pages from embedded templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/model"
)

//go:embed templates
var embedded embed.FS

// Page template names.
const (
	PageHome         = "home"
	PageArticle      = "article"
	PageSignIn       = "signin"
	PageUnauthorized = "unauthorized"
	PageNotFound     = "notfound"
	PageAdmin        = "admin"
	PageEditor       = "editor"
)

const baseLayout = "layouts/base.html"

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	now            func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	// TemplatesFS overrides the embedded templates. It must contain
	// layouts/base.html and pages/*.html.
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		now:            time.Now,
	}

	templatesFS := cfg.TemplatesFS
	if templatesFS == nil {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		templatesFS = sub
	}

	if err := r.parseTemplates(templatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

// parseTemplates pairs every page with the base layout.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("listing pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, baseLayout, page)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return nil
}

// kindLabels are the Bengali section names shown in navigation.
var kindLabels = map[model.Kind]string{
	model.KindNews:       "সংবাদ",
	model.KindOpinion:    "মতামত",
	model.KindVideo:      "ভিডিও",
	model.KindBookReview: "বই আলোচনা",
}

// KindLabel returns the display name of a content kind.
func KindLabel(k model.Kind) string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return string(k)
}

// ContentPath returns the public page URL of a content row.
func ContentPath(c model.Content) string {
	return "/" + c.Kind.Segment() + "/" + c.Slug
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("2 Jan 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("2 Jan 2006 15:04")
		},
		"truncate": Truncate,
		"safe": func(s string) template.HTML {
			return template.HTML(s)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"deref": func(v *int) int {
			if v == nil {
				return 0
			}
			return *v
		},
		"kindPath": func(k model.Kind) string {
			return "/" + k.Segment()
		},
		"kindLabel":   KindLabel,
		"contentPath": ContentPath,
		"isStaff": func(p *model.Principal) bool {
			return p != nil && p.Role.IsStaff()
		},
		"isAdmin": func(p *model.Principal) bool {
			return p.IsAdmin()
		},
	}
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	Principal   *model.Principal
	Kinds       []model.Kind
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = r.now().Year()
	data.Kinds = model.Kinds
	if data.Principal == nil {
		data.Principal = middleware.GetPrincipal(req)
	}

	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), "flash"); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), "flash_type")
			if data.FlashType == "" {
				data.FlashType = "info"
			}
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// MustRender renders a page and answers 500 when rendering fails.
func (r *Renderer) MustRender(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) {
	if err := r.RenderStatus(w, req, status, name, data); err != nil {
		slog.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), "flash", message)
		r.sessionManager.Put(req.Context(), "flash_type", flashType)
	}
}
