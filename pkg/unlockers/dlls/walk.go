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

package dlls

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-unlocker/pkg/helpers/syncutil"
	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var errStopWalk = errors.New("stop walk")

// walkLexical visits every file under root in lexical order until visit
// returns true. Unreadable directories are skipped.
func walkLexical(fsys afero.Fs, root string, visit func(path string) bool) {
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Debug().Err(err).Msgf("skipping unreadable path: %s", path)
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if visit(path) {
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		log.Debug().Err(err).Msgf("error walking %s", root)
	}
}

// walkAll visits every file under root with no ordering guarantee. On the
// real filesystem the walk is parallel; visit calls are serialized.
func walkAll(fsys afero.Fs, root string, visit func(path string)) {
	if _, ok := fsys.(*afero.OsFs); !ok {
		walkLexical(fsys, root, func(path string) bool {
			visit(path)
			return false
		})
		return
	}

	var mu syncutil.Mutex
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Err(err).Msgf("skipping unreadable path: %s", path)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		visit(path)
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Msgf("error walking %s", root)
	}
}
