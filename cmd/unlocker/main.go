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

package main

import (
	"fmt"
	"os"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/cli"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/config"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.NewConfig(helpers.ConfigDir(), config.BaseDefaults)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	err = helpers.InitLogging(helpers.LogDir(), cfg.DebugLogging())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	dataDir := helpers.DataDir()
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	s, err := cli.OpenStore(cfg, dataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing store")
		}
	}()

	app := cli.NewApp(afero.NewOsFs(), cfg, s, dataDir)
	log.Debug().Msgf("payload directory: %s", app.PayloadDir)

	root := cli.NewRootCmd(app)
	root.SetArgs(args)
	//nolint:wrapcheck // command errors are printed as is
	return root.Execute()
}
