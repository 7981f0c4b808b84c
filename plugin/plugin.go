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

// Package plugin hosts ordered user-supplied hooks over the transform
// pipeline and the watcher's hot-update path.
package plugin

import "github.com/venkateshsundaram/react-client/logger"

// BroadcastFunc pushes an HMR update for a source-tree-relative path. It is
// bound to the running server's broadcaster and handed to on-hot-update
// hooks so plugins can trigger their own updates.
type BroadcastFunc func(path string)

// StartContext is passed to a plugin's on-server-start hook.
type StartContext struct {
	RootDir string
	Port    int
}

// Hook is a named set of optional entry points. A plugin that only cares
// about one phase leaves the other fields nil.
type Hook struct {
	Name string

	// OnTransform receives the previous hook's output and the resolved
	// absolute path (id) of the file being transformed.
	OnTransform func(code, id string) (string, error)

	// OnHotUpdate runs when the watcher observes a change to file. It may
	// call broadcast to push an update itself instead of (or in addition
	// to) the default broadcast the watcher performs.
	OnHotUpdate func(file string, broadcast BroadcastFunc)

	// OnServerStart runs once after the HTTP listener is bound.
	OnServerStart func(ctx StartContext)
}

// Host applies an ordered list of hooks. It enforces that each plugin sees
// the previous plugin's transform output, modeling the chain as a fold
// rather than sharing a mutable buffer across plugins.
type Host struct {
	hooks []Hook
	log   logger.Logger
}

// NewHost builds a Host over hooks in registration order. log may be nil,
// in which case hot-update panics are silently swallowed rather than
// logged (used by tests that don't care about plugin diagnostics).
func NewHost(hooks []Hook, log logger.Logger) *Host {
	return &Host{hooks: hooks, log: log}
}

// Transform folds every hook's OnTransform over code in order. A hook
// without an OnTransform is skipped. A hook that returns an error stops
// the fold and the error propagates to the caller.
func (h *Host) Transform(code, id string) (string, error) {
	out := code
	for _, hook := range h.hooks {
		if hook.OnTransform == nil {
			continue
		}
		transformed, err := hook.OnTransform(out, id)
		if err != nil {
			return "", err
		}
		out = transformed
	}
	return out, nil
}

// HotUpdate invokes every hook's OnHotUpdate in order. A hook's panic
// never aborts the chain: it is recovered and logged (or dropped when the
// Host has no logger) so one misbehaving plugin cannot block the others.
func (h *Host) HotUpdate(file string, broadcast BroadcastFunc) {
	for _, hook := range h.hooks {
		if hook.OnHotUpdate == nil {
			continue
		}
		h.runHotUpdate(hook, file, broadcast)
	}
}

func (h *Host) runHotUpdate(hook Hook, file string, broadcast BroadcastFunc) {
	defer func() {
		if r := recover(); r != nil && h.log != nil {
			h.log.Warn("plugin hot-update hook panicked", "plugin", hook.Name, "file", file, "panic", r)
		}
	}()
	hook.OnHotUpdate(file, broadcast)
}

// ServerStart invokes every hook's OnServerStart in order.
func (h *Host) ServerStart(ctx StartContext) {
	for _, hook := range h.hooks {
		if hook.OnServerStart == nil {
			continue
		}
		hook.OnServerStart(ctx)
	}
}
