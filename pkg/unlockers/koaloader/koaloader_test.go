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

package koaloader

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/creamapi"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/smokeapi"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gameDir    = "/games/Example"
	payloadDir = "/payloads"
)

func setup(t *testing.T, structure map[string]any, opts Options) (*helpers.FSHelper, *Unlocker) {
	t.Helper()
	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure(gameDir, structure))
	require.NoError(t, h.CreatePayloads(payloadDir, map[string][]string{
		"koaloader": {DefaultProxy, "winmm.dll"},
		"smokeapi":  {dlls.SteamAPI32, dlls.SteamAPI64},
		"creamapi":  {dlls.SteamAPI32, dlls.SteamAPI64},
	}))
	return h, New(h.Fs, payload.NewDirSource(h.Fs, payloadDir), opts)
}

func TestInstallLayout(t *testing.T) {
	t.Parallel()

	h, u := setup(t, helpers.SteamGame(), Options{})
	require.NoError(t, u.Install(gameDir, []int{7}, 730))
	assert.True(t, u.IsInstalled(gameDir))

	proxy, err := h.ReadFile(filepath.Join(gameDir, DefaultProxy))
	require.NoError(t, err)
	assert.Equal(t, helpers.PayloadContent("koaloader", "64", DefaultProxy), proxy)

	sidecar, err := h.ReadFile(filepath.Join(gameDir, "SmokeAPI64.dll"))
	require.NoError(t, err)
	assert.Equal(t, helpers.PayloadContent("smokeapi", "64", dlls.SteamAPI64), sidecar)

	steam, err := h.ReadFile(filepath.Join(gameDir, dlls.SteamAPI64))
	require.NoError(t, err)
	assert.Equal(t, helpers.FakeLibrary("steam64-root"), steam, "steam_api must be left alone")

	data, err := h.ReadFile(filepath.Join(gameDir, ConfigFileName))
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []Module{{Path: "SmokeAPI64.dll", Required: true}}, cfg.Modules)

	assert.True(t, h.FileExists(filepath.Join(gameDir, smokeapi.ConfigFileName)))
}

func TestInstall32BitGame(t *testing.T) {
	t.Parallel()

	h, u := setup(t, map[string]any{dlls.SteamAPI32: helpers.FakeLibrary("steam32")}, Options{})
	require.NoError(t, u.Install(gameDir, nil, 10))

	assert.True(t, h.FileExists(filepath.Join(gameDir, "SmokeAPI32.dll")))
	assert.False(t, h.FileExists(filepath.Join(gameDir, "SmokeAPI64.dll")))
}

func TestRoundTripRestoresExistingProxy(t *testing.T) {
	t.Parallel()

	structure := helpers.SteamGame()
	structure["winmm.dll"] = helpers.FakeLibrary("game-winmm")
	h, u := setup(t, structure, Options{Proxy: "winmm.dll"})

	before, err := h.Snapshot(gameDir)
	require.NoError(t, err)

	require.NoError(t, u.Install(gameDir, []int{1}, 730))
	assert.True(t, h.FileExists(filepath.Join(gameDir, "winmm_o.dll")))

	require.NoError(t, u.Install(gameDir, []int{1, 2}, 730))

	require.NoError(t, u.Uninstall(gameDir))
	assert.False(t, u.IsInstalled(gameDir))

	after, err := h.Snapshot(gameDir)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRoundTripWithoutExistingProxy(t *testing.T) {
	t.Parallel()

	h, u := setup(t, helpers.SteamGame(), Options{})
	before, err := h.Snapshot(gameDir)
	require.NoError(t, err)

	require.NoError(t, u.Install(gameDir, nil, 730))
	require.NoError(t, u.Uninstall(gameDir))

	after, err := h.Snapshot(gameDir)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInstallRefusesPatchedSteamAPI(t *testing.T) {
	t.Parallel()

	structure := helpers.SteamGame()
	structure["steam_api64_o.dll"] = helpers.FakeLibrary("steam64-original")
	h, u := setup(t, structure, Options{})

	before, err := h.Snapshot(gameDir)
	require.NoError(t, err)

	err = u.Install(gameDir, nil, 730)
	require.ErrorIs(t, err, unlockers.ErrInstallPrecondition)

	after, err := h.Snapshot(gameDir)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInstallWithoutSteamAPI(t *testing.T) {
	t.Parallel()

	_, u := setup(t, map[string]any{"Game.exe": helpers.FakeLibrary("exe")}, Options{})
	err := u.Install(gameDir, nil, 730)
	require.ErrorIs(t, err, unlockers.ErrInstallPrecondition)
}

func TestInstallMissingProxyPayload(t *testing.T) {
	t.Parallel()

	_, u := setup(t, helpers.SteamGame(), Options{Proxy: "dinput8.dll"})
	err := u.Install(gameDir, nil, 730)
	require.ErrorIs(t, err, unlockers.ErrInstallPrecondition)
	require.ErrorIs(t, err, payload.ErrNotFound)
}

func TestUninstallWithNothingInstalled(t *testing.T) {
	t.Parallel()

	_, u := setup(t, helpers.SteamGame(), Options{})
	err := u.Uninstall(gameDir)
	require.ErrorIs(t, err, unlockers.ErrMissingBackup)
}

func TestGenerateConfig(t *testing.T) {
	t.Parallel()

	u := New(nil, nil, Options{})
	assert.Equal(t, DefaultProxy, u.Proxy())

	file, err := u.GenerateConfig([]int{2, 1}, 730)
	require.NoError(t, err)
	assert.Equal(t, smokeapi.ConfigFileName, file.Name)

	var cfg smokeapi.Config
	require.NoError(t, json.Unmarshal(file.Data, &cfg))
	assert.Equal(t, map[string]string{"1": "unlocked", "2": "unlocked"}, cfg.OverrideDLCStatus)
	require.Contains(t, cfg.ExtraDLCs, "730")
}

func TestInstallWritesGeneratedConfig(t *testing.T) {
	t.Parallel()

	h, u := setup(t, map[string]any{dlls.SteamAPI32: helpers.FakeLibrary("steam32")}, Options{})
	file, err := u.GenerateConfig([]int{5, 4}, 10)
	require.NoError(t, err)

	require.NoError(t, u.Install(gameDir, []int{4, 5}, 10))
	written, err := h.ReadFile(filepath.Join(gameDir, file.Name))
	require.NoError(t, err)
	assert.Equal(t, file.Data, written)
}

func TestInstallTwiceMatchesInstallOnce(t *testing.T) {
	t.Parallel()

	structure := helpers.SteamGame()
	structure["winmm.dll"] = helpers.FakeLibrary("game-winmm")
	h, u := setup(t, structure, Options{Proxy: "winmm.dll"})

	require.NoError(t, u.Install(gameDir, []int{1}, 730))
	once, err := h.Snapshot(gameDir)
	require.NoError(t, err)

	require.NoError(t, u.Install(gameDir, []int{1}, 730))
	twice, err := h.Snapshot(gameDir)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	for name := range twice {
		assert.False(t, strings.HasSuffix(name, "_o_o.dll"), "backup of a backup: %s", name)
	}
	backup, err := h.ReadFile(filepath.Join(gameDir, "winmm_o.dll"))
	require.NoError(t, err)
	assert.Equal(t, helpers.FakeLibrary("game-winmm"), backup)
}

func TestInPlaceUnlockersRefuseKoaloaderGame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		install func(h *helpers.FSHelper, src payload.Source) error
	}{
		{
			name: "smokeapi",
			install: func(h *helpers.FSHelper, src payload.Source) error {
				return smokeapi.New(h.Fs, src, smokeapi.Options{}).Install(gameDir, []int{1}, 730)
			},
		},
		{
			name: "creamapi",
			install: func(h *helpers.FSHelper, src payload.Source) error {
				return creamapi.New(h.Fs, src, creamapi.Options{}).Install(gameDir, []int{1}, 730)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, u := setup(t, helpers.SteamGame(), Options{})
			require.NoError(t, u.Install(gameDir, []int{1}, 730))
			before, err := h.Snapshot(gameDir)
			require.NoError(t, err)

			err = tt.install(h, payload.NewDirSource(h.Fs, payloadDir))
			require.ErrorIs(t, err, unlockers.ErrInstallPrecondition)

			after, err := h.Snapshot(gameDir)
			require.NoError(t, err)
			assert.Equal(t, before, after)
			assert.True(t, u.IsInstalled(gameDir))
		})
	}
}

func TestSmokeAPIUninstallLeavesKoaloaderAlone(t *testing.T) {
	t.Parallel()

	h, u := setup(t, helpers.SteamGame(), Options{})
	require.NoError(t, u.Install(gameDir, []int{1}, 730))
	before, err := h.Snapshot(gameDir)
	require.NoError(t, err)

	smoke := smokeapi.New(h.Fs, payload.NewDirSource(h.Fs, payloadDir), smokeapi.Options{})
	err = smoke.Uninstall(gameDir)
	require.ErrorIs(t, err, unlockers.ErrMissingBackup)

	after, err := h.Snapshot(gameDir)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInstallRefusesInPlaceUnlockerConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		structure map[string]any
		name      string
	}{
		{
			name: "creamapi_ini_at_root",
			structure: map[string]any{
				dlls.SteamAPI64:     helpers.FakeLibrary("steam64"),
				dlls.CreamAPIConfig: "[config]",
			},
		},
		{
			name: "smokeapi_config_beside_nested_library",
			structure: map[string]any{
				dlls.SteamAPI64: helpers.FakeLibrary("steam64"),
				"bin": map[string]any{
					dlls.SteamAPI32:     helpers.FakeLibrary("steam32"),
					dlls.SmokeAPIConfig: "{}",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, u := setup(t, tt.structure, Options{})
			before, err := h.Snapshot(gameDir)
			require.NoError(t, err)

			err = u.Install(gameDir, nil, 730)
			require.ErrorIs(t, err, unlockers.ErrInstallPrecondition)

			after, err := h.Snapshot(gameDir)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestInstallRefusesSmokeAPIGame(t *testing.T) {
	t.Parallel()

	h, u := setup(t, helpers.SteamGame(), Options{})
	smoke := smokeapi.New(h.Fs, payload.NewDirSource(h.Fs, payloadDir), smokeapi.Options{})
	require.NoError(t, smoke.Install(gameDir, []int{1}, 730))

	err := u.Install(gameDir, nil, 730)
	require.ErrorIs(t, err, unlockers.ErrInstallPrecondition)
	assert.False(t, h.FileExists(filepath.Join(gameDir, DefaultProxy)))
	assert.True(t, smoke.IsInstalled(gameDir))
}
