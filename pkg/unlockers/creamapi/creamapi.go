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

// Package creamapi installs CreamAPI, an INI-configured replacement for
// the Steamworks API library.
package creamapi

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/libswap"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

const ConfigFileName = dlls.CreamAPIConfig

// Options tune the generated config.
type Options struct {
	UnlockAll    bool
	ForceOffline bool
}

// Unlocker is the CreamAPI strategy.
type Unlocker struct {
	swap *libswap.Swapper
	opts Options
}

// New creates a CreamAPI unlocker reading payloads from src.
func New(fsys afero.Fs, src payload.Source, opts Options) *Unlocker {
	return &Unlocker{
		opts: opts,
		swap: libswap.New(fsys, src, libswap.Options{
			Type:       unlockers.CreamAPI,
			ConfigName: ConfigFileName,
			Libraries:  dlls.SteamLibraries,
			Conflicts:  []string{dlls.KoaloaderConfig},
		}),
	}
}

var _ unlockers.Unlocker = (*Unlocker)(nil)

func (*Unlocker) Type() unlockers.UnlockerType {
	return unlockers.CreamAPI
}

func (*Unlocker) SupportedPlatforms() []unlockers.Platform {
	return []unlockers.Platform{unlockers.PlatformSteam}
}

func (*Unlocker) DisplayName() string {
	return "CreamAPI"
}

func (u *Unlocker) IsInstalled(gameDir string) bool {
	return u.swap.IsInstalled(gameDir)
}

func (u *Unlocker) Install(gameDir string, dlcIDs []int, appID int) error {
	cfg, err := u.GenerateConfig(dlcIDs, appID)
	if err != nil {
		return err
	}
	//nolint:wrapcheck // swapper errors carry full context
	return u.swap.Install(gameDir, cfg)
}

func (u *Unlocker) Uninstall(gameDir string) error {
	//nolint:wrapcheck // swapper errors carry full context
	return u.swap.Uninstall(gameDir)
}

// GenerateConfig renders cream_api.ini. The [dlc] section lists every
// selected DLC so CreamAPI reports it as owned.
func (u *Unlocker) GenerateConfig(dlcIDs []int, appID int) (unlockers.ConfigFile, error) {
	f := ini.Empty()

	cfg, err := f.NewSection("config")
	if err != nil {
		return unlockers.ConfigFile{}, fmt.Errorf("failed to create config section: %w", err)
	}
	values := []struct {
		key, value string
	}{
		{"appid", strconv.Itoa(appID)},
		{"language", "english"},
		{"unlockall", strconv.FormatBool(u.opts.UnlockAll)},
		{"extraprotection", "false"},
		{"forceoffline", strconv.FormatBool(u.opts.ForceOffline)},
	}
	for _, v := range values {
		if _, err := cfg.NewKey(v.key, v.value); err != nil {
			return unlockers.ConfigFile{}, fmt.Errorf("failed to set %s: %w", v.key, err)
		}
	}

	dlc, err := f.NewSection("dlc")
	if err != nil {
		return unlockers.ConfigFile{}, fmt.Errorf("failed to create dlc section: %w", err)
	}
	for _, id := range unlockers.NormalizeDLCs(dlcIDs) {
		if _, err := dlc.NewKey(strconv.Itoa(id), fmt.Sprintf("DLC %d", id)); err != nil {
			return unlockers.ConfigFile{}, fmt.Errorf("failed to add dlc %d: %w", id, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return unlockers.ConfigFile{}, fmt.Errorf("failed to render %s: %w", ConfigFileName, err)
	}
	return unlockers.ConfigFile{Name: ConfigFileName, Data: buf.Bytes()}, nil
}
