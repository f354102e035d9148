// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Page routes.
const (
	RouteRoot         = "/"
	RouteSignIn       = "/signin"
	RouteSignOut      = "/signout"
	RouteUnauthorized = "/unauthorized"
	RouteAdmin        = "/admin"
	RouteEditor       = "/editor"
	RouteSection      = "/{kind}"
	RouteArticle      = "/{kind}/{slug}"
)

// Page sizes.
const (
	homeLatestLimit  = 10
	homePopularLimit = 5
	editorListLimit  = 20
	adminEventsLimit = 20
)
