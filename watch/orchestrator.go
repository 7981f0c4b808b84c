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

package watch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/venkateshsundaram/react-client/hmr"
	"github.com/venkateshsundaram/react-client/logger"
	"github.com/venkateshsundaram/react-client/plugin"
	"github.com/venkateshsundaram/react-client/prebundle"
	"github.com/venkateshsundaram/react-client/transform"
)

// Orchestrator wires watcher events to Transform Cache invalidation,
// plugin hot-update hooks, HMR broadcasts, and Prebundle Cache refreshes,
// per spec.md §4.5.
type Orchestrator struct {
	watcher      FileWatcher
	transforms   *transform.Cache
	plugins      *plugin.Host
	broadcaster  *hmr.Broadcaster
	prebundle    *prebundle.Cache
	manifestPath string
	srcDir       string
	entryFile    string
	log          logger.Logger
}

// New builds an Orchestrator. Call Run in its own goroutine after
// the filesystem tree has been added to watcher (see AddRecursive).
func New(
	watcher FileWatcher,
	transforms *transform.Cache,
	plugins *plugin.Host,
	broadcaster *hmr.Broadcaster,
	pb *prebundle.Cache,
	manifestPath, srcDir, entryFile string,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		watcher:      watcher,
		transforms:   transforms,
		plugins:      plugins,
		broadcaster:  broadcaster,
		prebundle:    pb,
		manifestPath: manifestPath,
		srcDir:       srcDir,
		entryFile:    entryFile,
		log:          log,
	}
}

// Run consumes watcher events until the channel closes (on Close).
// Intended to run in its own goroutine for the server's lifetime.
func (o *Orchestrator) Run() {
	for {
		select {
		case ev, ok := <-o.watcher.Events():
			if !ok {
				return
			}
			o.handleEvent(ev)
		case err, ok := <-o.watcher.Errors():
			if !ok {
				return
			}
			o.log.Warn("watcher error", "error", err)
		}
	}
}

func (o *Orchestrator) handleEvent(ev Event) {
	if ev.Path == o.manifestPath {
		o.refreshPrebundle()
		return
	}
	if !strings.HasPrefix(ev.Path, o.srcDir) {
		return
	}

	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Path); err == nil && info.IsDir() {
			if err := AddRecursive(o.watcher, ev.Path, ".react-client"); err != nil {
				o.log.Warn("watching new directory failed", "path", ev.Path, "error", err)
			}
			return
		}
	}

	o.transforms.Invalidate(ev.Path)

	broadcastFn := func(path string) {
		if err := o.broadcaster.Broadcast(hmr.Update(path)); err != nil {
			o.log.Warn("broadcast failed", "path", path, "error", err)
		}
	}
	if o.plugins != nil {
		o.plugins.HotUpdate(ev.Path, broadcastFn)
	}

	relPath, err := filepath.Rel(o.srcDir, ev.Path)
	if err != nil {
		return
	}
	urlPath := "/src/" + filepath.ToSlash(relPath)
	broadcastFn(urlPath)
}

func (o *Orchestrator) refreshPrebundle() {
	_, failures, err := o.prebundle.Refresh(o.srcDir, o.entryFile)
	if err != nil {
		o.log.Warn("prebundle refresh failed", "error", err)
		return
	}
	for specifier, buildErr := range failures {
		o.log.Warn("prebundle build failed", "specifier", specifier, "error", buildErr)
	}
}
