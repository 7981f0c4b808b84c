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

// Package watch observes the project source tree and manifest file and
// drives Transform Cache invalidation, plugin hot-update hooks, and HMR
// broadcasts in response, per spec.md §4.5.
package watch

import (
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ignoreGlobs are directory globs never added to the watch set, matched
// against the path relative to the walk root with doublestar so a
// pattern like "**/node_modules/**" catches nesting at any depth.
var ignoreGlobs = []string{
	".react-client/**",
	"**/node_modules/**",
	"**/.git/**",
}

// FileWatcher is the abstraction over filesystem watching, letting tests
// substitute an in-memory implementation with instant callbacks instead
// of a real fsnotify watcher.
type FileWatcher interface {
	Add(name string) error
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// Event is a single advisory filesystem notification. Per spec.md §9,
// events are advisory: callers should re-stat before acting on them.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// FSNotifyWatcher implements FileWatcher with fsnotify, recursively
// watching every directory added to it (fsnotify itself is
// non-recursive, so AddRecursive walks the tree once at startup and the
// caller re-adds new directories as CREATE events for them arrive).
type FSNotifyWatcher struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFSNotifyWatcher creates a watcher whose translation loop is already
// running.
func NewFSNotifyWatcher() (*FSNotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FSNotifyWatcher{
		watcher: watcher,
		events:  make(chan Event, 256),
		errors:  make(chan error, 16),
		done:    make(chan struct{}),
	}

	fw.wg.Add(1)
	go func() {
		defer fw.wg.Done()
		fw.translate()
	}()

	return fw, nil
}

func (fw *FSNotifyWatcher) translate() {
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			select {
			case fw.events <- Event{Path: ev.Name, Op: ev.Op}:
			case <-fw.done:
				return
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			select {
			case fw.errors <- err:
			case <-fw.done:
				return
			}
		case <-fw.done:
			return
		}
	}
}

// Add starts watching name (a single directory; fsnotify is
// non-recursive).
func (fw *FSNotifyWatcher) Add(name string) error {
	return fw.watcher.Add(name)
}

// Events returns the channel of translated file events.
func (fw *FSNotifyWatcher) Events() <-chan Event { return fw.events }

// Errors returns the channel of watcher errors.
func (fw *FSNotifyWatcher) Errors() <-chan error { return fw.errors }

// Close stops the translation loop and the underlying watcher.
func (fw *FSNotifyWatcher) Close() error {
	close(fw.done)
	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

// AddRecursive walks root and adds every directory to fw, skipping any
// directory named skip (used to exclude the prebundle deps directory
// from the watch set) and any directory matching ignoreGlobs (vendored
// dependency trees, VCS metadata) wherever it appears under root.
func AddRecursive(fw FileWatcher, root, skip string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skip != "" && d.Name() == skip {
			return filepath.SkipDir
		}
		if rel, relErr := filepath.Rel(root, path); relErr == nil && rel != "." {
			relSlash := filepath.ToSlash(rel)
			for _, pattern := range ignoreGlobs {
				if matched, _ := doublestar.Match(pattern, relSlash); matched {
					return filepath.SkipDir
				}
			}
		}
		return fw.Add(path)
	})
}
