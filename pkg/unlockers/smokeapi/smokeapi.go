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

// Package smokeapi installs SmokeAPI by replacing every Steamworks API
// library in a game directory.
package smokeapi

import (
	"fmt"
	"strconv"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/libswap"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
)

const (
	ConfigFileName = dlls.SmokeAPIConfig
	configVersion  = 2
	schemaURL      = "https://raw.githubusercontent.com/acidicoala/SmokeAPI/master/res/SmokeAPI.schema.json"

	statusOriginal = "original"
	statusUnlocked = "unlocked"
)

// Options tune the generated config.
type Options struct {
	// UnlockAll marks every DLC as owned, not just the selected ones.
	UnlockAll bool
	Logging   bool
}

// Config mirrors SmokeAPI.config.json.
type Config struct {
	OverrideAppStatus   map[string]string    `json:"override_app_status"`
	OverrideDLCStatus   map[string]string    `json:"override_dlc_status"`
	ExtraDLCs           map[string]ExtraDLCs `json:"extra_dlcs"`
	Schema              string               `json:"$schema"`
	DefaultAppStatus    string               `json:"default_app_status"`
	ExtraInventoryItems []int                `json:"extra_inventory_items"`
	Version             int                  `json:"$version"`
	Logging             bool                 `json:"logging"`
	UnlockFamilySharing bool                 `json:"unlock_family_sharing"`
	AutoInjectInventory bool                 `json:"auto_inject_inventory"`
}

// ExtraDLCs lists DLCs SmokeAPI should report for an app even when Steam
// doesn't return them.
type ExtraDLCs struct {
	DLCs map[string]string `json:"dlcs"`
}

// BuildConfig returns the SmokeAPI config for appID and dlcIDs. Koaloader
// installs reuse it for the SmokeAPI module it loads.
func BuildConfig(opts Options, dlcIDs []int, appID int) Config {
	ids := unlockers.NormalizeDLCs(dlcIDs)

	cfg := Config{
		Schema:              schemaURL,
		Version:             configVersion,
		Logging:             opts.Logging,
		UnlockFamilySharing: true,
		DefaultAppStatus:    statusOriginal,
		OverrideAppStatus:   map[string]string{},
		OverrideDLCStatus:   make(map[string]string, len(ids)),
		AutoInjectInventory: true,
		ExtraInventoryItems: []int{},
		ExtraDLCs:           map[string]ExtraDLCs{},
	}
	if opts.UnlockAll {
		cfg.DefaultAppStatus = statusUnlocked
	}

	dlcs := make(map[string]string, len(ids))
	for _, id := range ids {
		key := strconv.Itoa(id)
		cfg.OverrideDLCStatus[key] = statusUnlocked
		dlcs[key] = fmt.Sprintf("DLC %d", id)
	}
	if appID > 0 && len(dlcs) > 0 {
		cfg.ExtraDLCs[strconv.Itoa(appID)] = ExtraDLCs{DLCs: dlcs}
	}

	return cfg
}

// MarshalConfig serializes a SmokeAPI config.
func MarshalConfig(cfg Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SmokeAPI config: %w", err)
	}
	return append(data, '\n'), nil
}

// Unlocker is the SmokeAPI strategy.
type Unlocker struct {
	swap *libswap.Swapper
	opts Options
}

// New creates a SmokeAPI unlocker reading payloads from src.
func New(fsys afero.Fs, src payload.Source, opts Options) *Unlocker {
	return &Unlocker{
		opts: opts,
		swap: libswap.New(fsys, src, libswap.Options{
			Type:       unlockers.SmokeAPI,
			ConfigName: ConfigFileName,
			Libraries:  dlls.SteamLibraries,
			Conflicts:  []string{dlls.KoaloaderConfig},
		}),
	}
}

var _ unlockers.Unlocker = (*Unlocker)(nil)

func (*Unlocker) Type() unlockers.UnlockerType {
	return unlockers.SmokeAPI
}

func (*Unlocker) SupportedPlatforms() []unlockers.Platform {
	return []unlockers.Platform{unlockers.PlatformSteam}
}

func (*Unlocker) DisplayName() string {
	return "SmokeAPI"
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

func (u *Unlocker) GenerateConfig(dlcIDs []int, appID int) (unlockers.ConfigFile, error) {
	data, err := MarshalConfig(BuildConfig(u.opts, dlcIDs, appID))
	if err != nil {
		return unlockers.ConfigFile{}, err
	}
	return unlockers.ConfigFile{Name: ConfigFileName, Data: data}, nil
}
