// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			"injected",
			Info{Version: "v1.2.0", GitCommit: "abc1234", BuildTime: "2026-03-01T12:00:00Z"},
			"sangbad v1.2.0 (commit: abc1234, built: 2026-03-01T12:00:00Z)",
		},
		{
			"zero value",
			Info{},
			"sangbad unknown (commit: unknown, built: unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
