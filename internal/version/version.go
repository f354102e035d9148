// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version carries the build metadata injected via ldflags.
package version

import "fmt"

// Info contains build-time version information.
type Info struct {
	Version   string // git tag, "dev" for local builds
	GitCommit string
	BuildTime string // RFC3339
}

// String formats the info for -version output and startup logs.
func (i Info) String() string {
	return fmt.Sprintf("sangbad %s (commit: %s, built: %s)", orUnknown(i.Version), orUnknown(i.GitCommit), orUnknown(i.BuildTime))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
