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

package uplay

import (
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gameDir    = "/games/Ubisoft"
	payloadDir = "/payloads"
)

func payloads(t *testing.T, h *helpers.FSHelper) payload.Source {
	t.Helper()
	require.NoError(t, h.CreatePayloads(payloadDir, map[string][]string{
		"uplay_r1": {dlls.UplayR1Lib32, dlls.UplayR1Lib64},
		"uplay_r2": {dlls.UplayR2Lib32, dlls.UplayR2Lib64},
	}))
	return payload.NewDirSource(h.Fs, payloadDir)
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	r1 := NewR1(nil, nil, Options{})
	r2 := NewR2(nil, nil, Options{})
	assert.Equal(t, unlockers.UplayR1, r1.Type())
	assert.Equal(t, unlockers.UplayR2, r2.Type())
	assert.Equal(t, []unlockers.Platform{unlockers.PlatformUbisoft}, r1.SupportedPlatforms())
	assert.NotEqual(t, r1.DisplayName(), r2.DisplayName())
}

func TestGenerateConfig(t *testing.T) {
	t.Parallel()

	file, err := NewR2(nil, nil, Options{Logging: true}).GenerateConfig([]int{9, 3, 9}, 0)
	require.NoError(t, err)
	assert.Equal(t, R2ConfigFileName, file.Name)

	var cfg R2Config
	require.NoError(t, json.Unmarshal(file.Data, &cfg))
	assert.Equal(t, []int{3, 9}, cfg.DLCs)
	assert.True(t, cfg.Logging)
	assert.True(t, cfg.AutoFetch)
	assert.NotNil(t, cfg.Blacklist)

	file, err = NewR1(nil, nil, Options{}).GenerateConfig(nil, 0)
	require.NoError(t, err)
	var r1 R1Config
	require.NoError(t, json.Unmarshal(file.Data, &r1))
	assert.Equal(t, []int{}, r1.DLCs)
	assert.Contains(t, string(file.Data), `"hook_loader"`)
}

func TestR2InstallUninstall(t *testing.T) {
	t.Parallel()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure(gameDir, helpers.UbisoftGame(dlls.UplayR2Lib64)))
	u := NewR2(h.Fs, payloads(t, h), Options{})

	before, err := h.Snapshot(gameDir)
	require.NoError(t, err)

	require.NoError(t, u.Install(gameDir, []int{1}, 0))
	assert.True(t, u.IsInstalled(gameDir))
	assert.True(t, h.FileExists(filepath.Join(gameDir, R2ConfigFileName)))
	assert.True(t, h.FileExists(filepath.Join(gameDir, dlls.BackupName(dlls.UplayR2Lib64, dlls.BackupSuffix))))

	require.NoError(t, u.Uninstall(gameDir))
	after, err := h.Snapshot(gameDir)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestR1IgnoresR2Games(t *testing.T) {
	t.Parallel()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure(gameDir, helpers.UbisoftGame(dlls.UplayR2Lib64)))
	u := NewR1(h.Fs, payloads(t, h), Options{})

	err := u.Install(gameDir, nil, 0)
	require.ErrorIs(t, err, unlockers.ErrInstallPrecondition)
	assert.False(t, u.IsInstalled(gameDir))
}

func TestR1InstallUninstall(t *testing.T) {
	t.Parallel()

	h := helpers.NewMemoryFS()
	structure := helpers.UbisoftGame(dlls.UplayR1Lib32)
	structure["bin"] = map[string]any{dlls.UplayR1Lib64: helpers.FakeLibrary("uplay-r1-64")}
	require.NoError(t, h.CreateDirectoryStructure(gameDir, structure))
	u := NewR1(h.Fs, payloads(t, h), Options{})

	before, err := h.Snapshot(gameDir)
	require.NoError(t, err)

	require.NoError(t, u.Install(gameDir, []int{4, 2}, 0))
	assert.True(t, u.IsInstalled(gameDir))
	patched, err := h.ReadFile(filepath.Join(gameDir, "bin", dlls.UplayR1Lib64))
	require.NoError(t, err)
	assert.Equal(t, helpers.PayloadContent("uplay_r1", "64", dlls.UplayR1Lib64), patched)
	assert.True(t, h.FileExists(filepath.Join(gameDir, "bin", R1ConfigFileName)))

	require.NoError(t, u.Install(gameDir, []int{4, 2}, 0))

	require.NoError(t, u.Uninstall(gameDir))
	assert.False(t, u.IsInstalled(gameDir))
	after, err := h.Snapshot(gameDir)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
