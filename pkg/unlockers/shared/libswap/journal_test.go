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

package libswap

import (
	"io/fs"
	"testing"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalRollback(t *testing.T) {
	t.Parallel()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure("/g", map[string]any{
		"a.dll":   "original-a",
		"cfg.ini": "old-config",
		"gone":    "keep-me",
	}))
	before, err := h.Snapshot("/g")
	require.NoError(t, err)

	j := NewJournal(h.Fs)
	require.NoError(t, j.Rename("/g/a.dll", "/g/a_o.dll"))
	require.NoError(t, j.WriteFile("/g/a.dll", []byte("payload")))
	require.NoError(t, j.WriteFile("/g/cfg.ini", []byte("new-config")))
	require.NoError(t, j.WriteFile("/g/new.json", []byte("{}")))
	require.NoError(t, j.Remove("/g/gone"))
	require.NoError(t, j.Remove("/g/never-existed"))
	assert.Equal(t, 5, j.Len())

	require.NoError(t, j.Rollback())
	assert.Equal(t, 0, j.Len())

	after, err := h.Snapshot("/g")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestJournalRenameRefusesOverwrite(t *testing.T) {
	t.Parallel()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure("/g", map[string]any{
		"a.dll":   "patched",
		"a_o.dll": "original",
	}))

	j := NewJournal(h.Fs)
	err := j.Rename("/g/a.dll", "/g/a_o.dll")
	require.ErrorIs(t, err, fs.ErrExist)
	assert.Equal(t, 0, j.Len())

	data, err := h.ReadFile("/g/a_o.dll")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}
