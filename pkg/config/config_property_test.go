// Zaparoo Unlocker
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Unlocker.
//
// Zaparoo Unlocker is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Unlocker is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Unlocker.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"path/filepath"
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyPayloadDirRelativeStaysInDataDir verifies relative payload
// dirs always resolve inside the data directory.
func TestPropertyPayloadDirRelativeStaysInDataDir(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		rel := rapid.StringMatching(`[a-z]{1,8}(/[a-z]{1,8}){0,3}`).Draw(t, "rel")
		dataDir := filepath.Join(string(filepath.Separator)+"data", rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "app"))

		cfg := &Instance{vals: BaseDefaults}
		cfg.SetPayloadDir(rel)

		got := cfg.PayloadDir(dataDir)
		r, err := filepath.Rel(dataDir, got)
		if err != nil || r != filepath.Clean(rel) {
			t.Fatalf("payload dir %q escaped data dir %q (rel %q)", got, dataDir, r)
		}
	})
}

// TestPropertyPayloadDirEmptyUsesDefault verifies an unset payload dir
// resolves to the payloads directory.
func TestPropertyPayloadDirEmptyUsesDefault(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		dataDir := rapid.StringMatching(`/[a-z]{1,8}`).Draw(t, "dataDir")
		cfg := &Instance{vals: BaseDefaults}
		if got := cfg.PayloadDir(dataDir); got != filepath.Join(dataDir, "payloads") {
			t.Fatalf("unexpected default payload dir %q", got)
		}
	})
}
