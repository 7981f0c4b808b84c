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

// Package server is the HTTP Router: it classifies every inbound request
// against a fixed, ordered set of matchers, per spec.md §4.4.
package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/venkateshsundaram/react-client/config"
	"github.com/venkateshsundaram/react-client/fs"
	"github.com/venkateshsundaram/react-client/hmr"
	"github.com/venkateshsundaram/react-client/overlay"
	"github.com/venkateshsundaram/react-client/prebundle"
	"github.com/venkateshsundaram/react-client/rcerrors"
	"github.com/venkateshsundaram/react-client/sourcemap"
	"github.com/venkateshsundaram/react-client/transform"
)

const modulesPrefix = "/@modules/"
const overlayPath = "/@runtime/overlay"
const sourceMapPrefix = "/@source-map"
const srcPrefix = "/src/"

// Server dispatches every request through the matchers in §4.4's fixed
// order: module artifacts, the overlay runtime, the source-map endpoint,
// the transform pipeline, public assets, and finally the index page.
type Server struct {
	cfg         *config.ProjectConfig
	fsys        fs.FileSystem
	prebundle   *prebundle.Cache
	transforms  *transform.Cache
	broadcaster *hmr.Broadcaster
}

// New builds a Server for cfg.
func New(cfg *config.ProjectConfig, fsys fs.FileSystem, pb *prebundle.Cache, transforms *transform.Cache, broadcaster *hmr.Broadcaster) *Server {
	return &Server{cfg: cfg, fsys: fsys, prebundle: pb, transforms: transforms, broadcaster: broadcaster}
}

// ServeHTTP implements http.Handler, dispatching in the fixed matcher
// order.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocketUpgradeRequested(r) {
		_ = s.broadcaster.Upgrade(w, r)
		return
	}

	path := r.URL.Path

	switch {
	case strings.HasPrefix(path, modulesPrefix):
		s.handleModule(w, path)
	case path == overlayPath:
		s.handleOverlay(w)
	case strings.HasPrefix(path, sourceMapPrefix):
		s.handleSourceMap(w, r)
	case strings.HasPrefix(path, srcPrefix) || strings.HasSuffix(path, ".css"):
		s.handleTransform(w, path)
	default:
		if s.servePublicFile(w, path) {
			return
		}
		if path == "/" || path == "/index.html" {
			s.handleIndex(w)
			return
		}
		http.NotFound(w, r)
	}
}

func websocketUpgradeRequested(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// jsCommentError writes a 500 whose body is a syntactically valid
// JavaScript comment, per spec.md §4.1 and §4.4: routes 1-4 must never
// return an HTML error body that a <script> tag would choke on. err is
// expected to be an *rcerrors.Error (ResolveError, TransformError,
// BundleError, or IOError) so the comment names the specifier or file
// that failed.
func jsCommentError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, rcerrors.JSComment(err))
}
