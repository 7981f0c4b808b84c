/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package overlay serves the browser-side error-overlay runtime script,
// per spec.md §4.6.
package overlay

import (
	_ "embed"
	"path/filepath"

	"github.com/venkateshsundaram/react-client/fs"
)

//go:embed runtime/overlay-runtime.js
var defaultRuntime []byte

// Source returns the overlay script to serve: a user override at
// <srcDir>/runtime/overlay-runtime.js if present, else the built-in
// script.
func Source(fsys fs.FileSystem, srcDir string) ([]byte, error) {
	overridePath := filepath.Join(srcDir, "runtime", "overlay-runtime.js")
	if fsys.Exists(overridePath) {
		return fsys.ReadFile(overridePath)
	}
	return defaultRuntime, nil
}
