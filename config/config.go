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

// Package config defines the dev server's ProjectConfig and derives one
// from a project root. Loading configuration from a user-authored file
// is out of scope here; callers hand the core a fully realized value.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/venkateshsundaram/react-client/fs"
	"github.com/venkateshsundaram/react-client/plugin"
	"github.com/venkateshsundaram/react-client/rcerrors"
)

// DefaultPort is the dev server's listen port. The original project carried
// two inconsistent defaults (5173 and 2202) across prototypes; 5173 is
// chosen here as the single deterministic default.
const DefaultPort = 5173

// entryCandidates are tried, in order, relative to src_dir.
var entryCandidates = []string{"main.tsx", "main.jsx"}

// ProjectConfig is derived once at startup and immutable for the server's
// lifetime.
type ProjectConfig struct {
	RootDir       string
	SrcDir        string
	EntryFile     string
	IndexHTMLPath string
	ListenPort    int
	OpenOnStart   bool
	BuildOutDir   string
	Plugins       []plugin.Hook
}

// Options configures Load. Zero values fall back to the documented
// defaults.
type Options struct {
	Root    string
	Port    int
	Open    bool
	OutDir  string
	Plugins []plugin.Hook
}

// ErrNoEntryFile is returned when neither main.tsx nor main.jsx exists
// under <root>/src.
var ErrNoEntryFile = fmt.Errorf("no entry file found (tried %v)", entryCandidates)

// Load derives a ProjectConfig from opts, resolving root to an absolute
// path and locating the entry file under src_dir.
func Load(fsys fs.FileSystem, opts Options) (*ProjectConfig, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, rcerrors.Config(root, fmt.Errorf("resolving project root: %w", err))
	}

	srcDir := filepath.Join(absRoot, "src")

	var entry string
	for _, candidate := range entryCandidates {
		path := filepath.Join(srcDir, candidate)
		if fsys.Exists(path) {
			entry = path
			break
		}
	}
	if entry == "" {
		return nil, rcerrors.Config(srcDir, ErrNoEntryFile)
	}

	port := opts.Port
	if port == 0 {
		port = DefaultPort
	}

	return &ProjectConfig{
		RootDir:       absRoot,
		SrcDir:        srcDir,
		EntryFile:     entry,
		IndexHTMLPath: filepath.Join(absRoot, "index.html"),
		ListenPort:    port,
		OpenOnStart:   opts.Open,
		BuildOutDir:   opts.OutDir,
		Plugins:       opts.Plugins,
	}, nil
}

// DepsDir is the directory holding prebundled third-party artifacts.
func (c *ProjectConfig) DepsDir() string {
	return filepath.Join(c.RootDir, ".react-client", "deps")
}
