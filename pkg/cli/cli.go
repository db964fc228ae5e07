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

// Package cli is the command line front end for the unlocker manager.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/config"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/store"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/active"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/manager"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/shared/payload"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Version is overridden at build time.
var Version = "dev"

// App holds everything the commands act on.
type App struct {
	Fs         afero.Fs
	Store      store.Store
	Records    *active.Records
	Manager    *manager.Manager
	PayloadDir string
}

// NewApp wires a Manager over fsys using settings from cfg.
func NewApp(fsys afero.Fs, cfg *config.Instance, s store.Store, dataDir string) *App {
	payloadDir := cfg.PayloadDir(dataDir)
	records := active.New(s)
	registry := manager.DefaultUnlockers(fsys, payload.NewDirSource(fsys, payloadDir), manager.Options{
		KoaloaderProxy: cfg.KoaloaderProxy(),
		UnlockAll:      cfg.UnlockAll(),
		Logging:        cfg.UnlockerLogging(),
	})
	return &App{
		Fs:         fsys,
		Store:      s,
		Records:    records,
		Manager:    manager.New(fsys, records, registry),
		PayloadDir: payloadDir,
	}
}

// OpenStore opens the settings store selected in cfg inside dataDir.
func OpenStore(cfg *config.Instance, dataDir string) (store.Store, error) {
	switch cfg.StoreBackend() {
	case config.StoreBackendBolt:
		//nolint:wrapcheck // store errors carry full context
		return store.OpenBolt(filepath.Join(dataDir, store.BoltFileName))
	case config.StoreBackendTOML:
		//nolint:wrapcheck // store errors carry full context
		return store.OpenFile(afero.NewOsFs(), filepath.Join(dataDir, store.TOMLFileName))
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend())
	}
}

// NewRootCmd builds the command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "unlocker",
		Short:         "Install and manage DLC unlockers for Steam and Ubisoft games",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newDetectCmd(app),
		newListCmd(app),
		newInstallCmd(app),
		newUninstallCmd(app),
		newStatusCmd(app),
		newActiveCmd(app),
	)
	return root
}

var errAppIDRequired = errors.New("--app is required")
