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

package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/config"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/store"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/active"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/manager"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gameDir    = "/games/Example"
	payloadDir = "/payloads"
)

func newTestApp(t *testing.T) (*helpers.FSHelper, *App) {
	t.Helper()
	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure(gameDir, helpers.SteamGame()))
	require.NoError(t, h.CreatePayloads(payloadDir, map[string][]string{
		"smokeapi": {dlls.SteamAPI32, dlls.SteamAPI64},
		"creamapi": {dlls.SteamAPI32, dlls.SteamAPI64},
	}))

	s := store.NewMemory()
	records := active.New(s)
	src := payload.NewDirSource(h.Fs, payloadDir)
	return h, &App{
		Fs:         h.Fs,
		Store:      s,
		Records:    records,
		Manager:    manager.New(h.Fs, records, manager.DefaultUnlockers(h.Fs, src, manager.Options{})),
		PayloadDir: payloadDir,
	}
}

func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDetectCommand(t *testing.T) {
	t.Parallel()

	_, app := newTestApp(t)
	out, err := run(t, app, "detect", gameDir)
	require.NoError(t, err)
	assert.Contains(t, out, "steam")
	assert.Contains(t, out, "SmokeAPI")
	assert.NotContains(t, out, "uplay_r1")
}

func TestListCommand(t *testing.T) {
	t.Parallel()

	_, app := newTestApp(t)
	out, err := run(t, app, "list", "ubisoft")
	require.NoError(t, err)
	assert.Contains(t, out, "uplay_r1")
	assert.Contains(t, out, "uplay_r2")
	assert.NotContains(t, out, "smokeapi")

	_, err = run(t, app, "list", "epic")
	require.Error(t, err)
}

func TestInstallStatusUninstall(t *testing.T) {
	t.Parallel()

	h, app := newTestApp(t)

	_, err := run(t, app, "install", gameDir)
	require.ErrorIs(t, err, errAppIDRequired)

	out, err := run(t, app, "install", gameDir, "--app", "730", "--dlc", "1,2")
	require.NoError(t, err)
	assert.Contains(t, out, "smokeapi")
	assert.True(t, h.FileExists(filepath.Join(gameDir, "SmokeAPI.config.json")))

	out, err = run(t, app, "status", gameDir, "--app", "730")
	require.NoError(t, err)
	assert.Contains(t, out, "active:   smokeapi")
	assert.Contains(t, out, "installed: smokeapi")
	assert.Contains(t, out, "(64-bit)")

	out, err = run(t, app, "active")
	require.NoError(t, err)
	assert.Contains(t, out, "730")

	_, err = run(t, app, "uninstall", gameDir, "--app", "730")
	require.NoError(t, err)
	assert.False(t, h.FileExists(filepath.Join(gameDir, "SmokeAPI.config.json")))

	out, err = run(t, app, "active")
	require.NoError(t, err)
	assert.Contains(t, out, "no active unlockers recorded")
}

func TestInstallExplicitUnlocker(t *testing.T) {
	t.Parallel()

	h, app := newTestApp(t)
	_, err := run(t, app, "install", gameDir, "--app", "730", "-u", "CreamAPI")
	require.NoError(t, err)
	assert.True(t, h.FileExists(filepath.Join(gameDir, "cream_api.ini")))

	_, err = run(t, app, "install", gameDir, "--app", "730", "-u", "steamless")
	require.ErrorIs(t, err, unlockers.ErrUnknownUnlocker)
}

func TestActiveSetClear(t *testing.T) {
	t.Parallel()

	_, app := newTestApp(t)
	_, err := run(t, app, "active", "set", "440", "koaloader")
	require.NoError(t, err)

	got, ok := app.Manager.ActiveUnlocker(440)
	require.True(t, ok)
	assert.Equal(t, unlockers.Koaloader, got)

	_, err = run(t, app, "active", "clear", "440")
	require.NoError(t, err)
	_, ok = app.Manager.ActiveUnlocker(440)
	assert.False(t, ok)

	_, err = run(t, app, "active", "set", "abc", "koaloader")
	require.Error(t, err)
}

//nolint:paralleltest // modifies ZAPAROO_UNLOCKER_CFG
func TestNewAppFromConfig(t *testing.T) {
	t.Setenv(config.CfgEnv, "")
	dir := t.TempDir()

	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)

	s, err := OpenStore(cfg, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.FileExists(t, filepath.Join(dir, store.BoltFileName))

	app := NewApp(helpers.NewMemoryFS().Fs, cfg, s, dir)
	assert.Equal(t, filepath.Join(dir, "payloads"), app.PayloadDir)
	_, ok := app.Manager.UnlockerByType(unlockers.Koaloader)
	assert.True(t, ok)
}
