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
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers"
	"github.com/ZaparooProject/zaparoo-unlocker/pkg/unlockers/dlls"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDetectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <game-dir>",
		Short: "Detect the platform a game links against",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			platform := app.Manager.DetectPlatform(args[0])
			_, _ = fmt.Fprintf(out, "platform: %s\n", color.CyanString(platform.String()))
			for _, u := range app.Manager.CompatibleUnlockers(platform) {
				_, _ = fmt.Fprintf(out, "  %-10s %s\n", u.Type(), u.DisplayName())
			}
			return nil
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list [platform]",
		Short: "List available unlockers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platforms := []unlockers.Platform{unlockers.PlatformSteam, unlockers.PlatformUbisoft}
			if len(args) == 1 {
				p, err := unlockers.ParsePlatform(args[0])
				if err != nil {
					return err
				}
				platforms = []unlockers.Platform{p}
			}

			out := cmd.OutOrStdout()
			for _, p := range platforms {
				_, _ = fmt.Fprintln(out, color.CyanString(p.String()))
				for _, u := range app.Manager.CompatibleUnlockers(p) {
					_, _ = fmt.Fprintf(out, "  %-10s %s\n", u.Type(), u.DisplayName())
				}
			}
			return nil
		},
	}
}

func newInstallCmd(app *App) *cobra.Command {
	var (
		kind  string
		appID int
		dlcs  []int
	)

	cmd := &cobra.Command{
		Use:   "install <game-dir>",
		Short: "Install an unlocker into a game directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameDir := args[0]
			if appID <= 0 {
				return errAppIDRequired
			}

			var t unlockers.UnlockerType
			if kind == "" {
				compatible := app.Manager.CompatibleUnlockers(app.Manager.DetectPlatform(gameDir))
				if len(compatible) == 0 {
					return fmt.Errorf("no unlocker available for %s", gameDir)
				}
				t = compatible[0].Type()
			} else {
				parsed, err := unlockers.ParseUnlockerType(kind)
				if err != nil {
					return err
				}
				t = parsed
			}

			if err := app.Manager.Install(gameDir, t, appID, dlcs); err != nil {
				//nolint:wrapcheck // manager errors carry full context
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s for app %d\n",
				color.GreenString("installed"), t, appID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "unlocker", "u", "", "unlocker type (default: first compatible)")
	cmd.Flags().IntVar(&appID, "app", 0, "Steam app id of the game")
	cmd.Flags().IntSliceVar(&dlcs, "dlc", nil, "DLC ids to unlock")
	return cmd
}

func newUninstallCmd(app *App) *cobra.Command {
	var appID int

	cmd := &cobra.Command{
		Use:   "uninstall <game-dir>",
		Short: "Remove the unlocker installed in a game directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if appID <= 0 {
				return errAppIDRequired
			}
			if err := app.Manager.Uninstall(args[0], appID); err != nil {
				//nolint:wrapcheck // manager errors carry full context
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s unlocker for app %d\n",
				color.GreenString("removed"), appID)
			return nil
		},
	}
	cmd.Flags().IntVar(&appID, "app", 0, "Steam app id of the game")
	return cmd
}

func stateString(s dlls.State) string {
	switch s {
	case dlls.StatePatched:
		return color.GreenString(s.String())
	case dlls.StateBackupOnly:
		return color.RedString(s.String())
	default:
		return s.String()
	}
}

func newStatusCmd(app *App) *cobra.Command {
	var appID int

	cmd := &cobra.Command{
		Use:   "status <game-dir>",
		Short: "Show detected libraries and installed unlockers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Manager.Status(args[0], appID)
			out := cmd.OutOrStdout()

			arch := string(st.Arch)
			if arch == "" {
				arch = "unknown"
			}
			_, _ = fmt.Fprintf(out, "platform: %s\narch:     %s\n", st.Platform, arch)

			active := "none"
			if st.HasActive {
				active = st.Active.String()
			}
			_, _ = fmt.Fprintf(out, "active:   %s\n", active)

			installed := make([]string, len(st.Installed))
			for i, t := range st.Installed {
				installed[i] = t.String()
			}
			if len(installed) == 0 {
				installed = []string{"none"}
			}
			_, _ = fmt.Fprintf(out, "installed: %s\n", strings.Join(installed, ", "))

			if st.HasActive && len(st.Installed) == 0 {
				_, _ = fmt.Fprintln(out, color.YellowString("warning: recorded unlocker is not installed"))
			}

			for _, loc := range st.Libraries {
				_, _ = fmt.Fprintf(out, "  %s (%s-bit) %s\n", loc.Path(), loc.Arch, stateString(loc.State))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&appID, "app", 0, "Steam app id of the game")
	return cmd
}

func newActiveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "active",
		Short: "List recorded active unlockers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := app.Records.All()
			if err != nil {
				//nolint:wrapcheck // records errors carry full context
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "no active unlockers recorded")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(out, "%-10d %s\n", e.AppID, e.Type)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <app-id> <unlocker>",
		Short: "Record the active unlocker for a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid app id %q: %w", args[0], err)
			}
			t, err := unlockers.ParseUnlockerType(args[1])
			if err != nil {
				//nolint:wrapcheck // parse errors carry full context
				return err
			}
			//nolint:wrapcheck // manager errors carry full context
			return app.Manager.SetActiveUnlocker(appID, t)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <app-id>",
		Short: "Forget the active unlocker for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			appID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid app id %q: %w", args[0], err)
			}
			//nolint:wrapcheck // manager errors carry full context
			return app.Manager.ClearActiveUnlocker(appID)
		},
	})
	return cmd
}
