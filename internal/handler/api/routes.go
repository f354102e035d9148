// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"github.com/go-chi/chi/v5"
)

// Routes registers the /api tree. Access control is applied by
// middleware.Guard ahead of the router; the services re-check roles and
// ownership.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
		}

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if h.Protection != nil {
					r.Use(h.Protection.Middleware())
				}
				r.Post("/login", h.Login)
				r.Post("/token", h.Token)
			})
			r.Post("/logout", h.Logout)
			r.Get("/validate", h.Validate)
		})

		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{id}", h.GetCategory)
		r.Get("/categories/slug/{slug}", h.GetCategoryBySlug)

		r.Route("/editor", func(r chi.Router) {
			if h.EditorLimit != nil {
				r.Use(h.EditorLimit)
			}
			r.Post("/uploads", h.Upload)
			r.Get("/{kind}", h.EditorListContent)
			r.Post("/{kind}", h.CreateContent)
			r.Get("/{kind}/{id}", h.EditorGetContent)
			r.Put("/{kind}/{id}", h.UpdateContent)
			r.Delete("/{kind}/{id}", h.DeleteContent)
			r.Post("/{kind}/{id}/publish", h.TogglePublish)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", h.ListUsers)
			r.Post("/users", h.CreateUser)
			r.Get("/users/{id}", h.GetUser)
			r.Put("/users/{id}", h.UpdateUser)
			r.Delete("/users/{id}", h.DeleteUser)

			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{id}", h.UpdateCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)

			r.Get("/events", h.ListEvents)

			if h.Jobs != nil {
				r.Get("/jobs", h.ListJobs)
				r.Post("/jobs/{name}/run", h.TriggerJob)
			}
		})

		r.Get("/{kind}", h.ListContent)
		r.Get("/{kind}/popular", h.PopularContent)
		r.Get("/{kind}/slug/{slug}", h.GetContentBySlug)
		r.Get("/{kind}/{id}", h.GetContent)
	})
}
