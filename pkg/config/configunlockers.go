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
)

type Unlockers struct {
	// PayloadDir overrides the default payload directory. Relative paths
	// resolve against the data directory.
	PayloadDir     string `toml:"payload_dir,omitempty"`
	KoaloaderProxy string `toml:"koaloader_proxy" validate:"required,endswith=.dll"`
	UnlockAll      bool   `toml:"unlock_all"`
	Logging        bool   `toml:"unlocker_logging"`
}

// PayloadDir returns the directory unlocker payloads are read from. With
// nothing configured it is a payloads directory inside dataDir.
func (c *Instance) PayloadDir(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dir := c.vals.Unlockers.PayloadDir
	switch {
	case dir == "":
		return filepath.Join(dataDir, "payloads")
	case filepath.IsAbs(dir):
		return dir
	default:
		return filepath.Join(dataDir, dir)
	}
}

func (c *Instance) SetPayloadDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Unlockers.PayloadDir = dir
}

func (c *Instance) KoaloaderProxy() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Unlockers.KoaloaderProxy
}

func (c *Instance) UnlockAll() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Unlockers.UnlockAll
}

func (c *Instance) SetUnlockAll(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Unlockers.UnlockAll = enabled
}

func (c *Instance) UnlockerLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Unlockers.Logging
}
