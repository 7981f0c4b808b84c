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

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/venkateshsundaram/react-client/overlay"
	"github.com/venkateshsundaram/react-client/rcerrors"
	"github.com/venkateshsundaram/react-client/sourcemap"
	"github.com/venkateshsundaram/react-client/transform"
)

// errMissingFile is the ProtocolError cause for a /@source-map request
// with no "file" query parameter.
var errMissingFile = errors.New("missing required query parameter: file")

// handleModule serves §4.4 matcher 1: /@modules/<specifier>. If an
// artifact exists on disk it is streamed directly; otherwise the
// specifier is resolved and bundled into the cache before serving.
func (s *Server) handleModule(w http.ResponseWriter, urlPath string) {
	specifier := strings.TrimPrefix(urlPath, modulesPrefix)

	artifactPath := s.prebundle.ArtifactPath(specifier)
	if !s.fsys.Exists(artifactPath) {
		if err := s.prebundle.EnsureBuilt(specifier); err != nil {
			jsCommentError(w, err)
			return
		}
	}

	data, err := s.fsys.ReadFile(artifactPath)
	if err != nil {
		jsCommentError(w, rcerrors.Resolve(specifier, err))
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write(data)
}

// handleOverlay serves §4.4 matcher 2: /@runtime/overlay.
func (s *Server) handleOverlay(w http.ResponseWriter) {
	data, err := overlay.Source(s.fsys, s.cfg.SrcDir)
	if err != nil {
		jsCommentError(w, rcerrors.IO(s.cfg.SrcDir, err))
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write(data)
}

// handleSourceMap serves §4.4 matcher 3: /@source-map?file=&line=&column=.
func (s *Server) handleSourceMap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	file := r.URL.Query().Get("file")
	if file == "" {
		protocolErrorBody(w, http.StatusBadRequest, rcerrors.Protocol("file", errMissingFile))
		return
	}

	line, _ := strconv.Atoi(r.URL.Query().Get("line"))
	column, _ := strconv.Atoi(r.URL.Query().Get("column"))

	snap, err := sourcemap.Build(s.fsys, s.cfg.RootDir, file, line, column)
	if err != nil {
		protocolErrorBody(w, http.StatusNotFound, rcerrors.Protocol(file, err))
		return
	}

	_ = json.NewEncoder(w).Encode(snap)
}

// protocolErrorBody writes the JSON body for a ProtocolError, per
// spec.md §7 ("Returns 400 with {}"): the body carries err's message
// when present and degrades to the spec's bare "{}" otherwise.
func protocolErrorBody(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rcerrors.JSONBody(err))
}

// handleTransform serves §4.4 matcher 4: project source files and CSS,
// run through the Transform Cache.
func (s *Server) handleTransform(w http.ResponseWriter, urlPath string) {
	absPath := transform.ResolveSourcePath(s.fsys, s.cfg.RootDir, urlPath)
	if absPath == "" {
		// Falls through per spec.md §4.4: no candidate extension matched,
		// so the public-file matcher gets its turn before the 404.
		if s.servePublicFile(w, urlPath) {
			return
		}
		http.NotFound(w, nil)
		return
	}

	output, err := s.transforms.Get(absPath)
	if err != nil {
		jsCommentError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write([]byte(output))
}

// servePublicFile serves §4.4 matcher 5: files under <root_dir>/public/.
// Returns true if it served a response.
func (s *Server) servePublicFile(w http.ResponseWriter, urlPath string) bool {
	candidate := filepath.Join(s.cfg.RootDir, "public", filepath.FromSlash(urlPath))
	if !s.fsys.Exists(candidate) {
		return false
	}
	data, err := s.fsys.ReadFile(candidate)
	if err != nil {
		return false
	}
	w.Header().Set("Content-Type", contentTypeForExt(filepath.Ext(candidate)))
	_, _ = w.Write(data)
	return true
}

// handleIndex serves §4.4 matcher 6: / and /index.html, injecting the
// overlay and HMR client scripts before </body> if not already present.
func (s *Server) handleIndex(w http.ResponseWriter) {
	data, err := s.fsys.ReadFile(s.cfg.IndexHTMLPath)
	if err != nil {
		http.Error(w, "index.html not found", http.StatusInternalServerError)
		return
	}

	injected := injectHMRScripts(string(data), s.cfg.ListenPort)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(injected))
}

const hmrClientTemplate = `
<script type="module" src="/@runtime/overlay"></script>
<script type="module">
  const socket = new WebSocket("ws://localhost:%d");
  socket.addEventListener("message", (event) => {
    const msg = JSON.parse(event.data);
    if (msg.type === "reload") {
      window.location.reload();
    } else if (msg.type === "error") {
      window.showErrorOverlay(msg);
    } else if (msg.type === "update") {
      window.clearErrorOverlay();
      import(msg.path + "?t=" + Date.now());
    }
  });
</script>
`

// injectHMRScripts parses htmlStr as a DOM (golang.org/x/net/html,
// following bennypowers-cem/serve/middleware/inject/html.go's
// parse-append-render approach) and appends the overlay and HMR client
// scripts as the last children of <body>, skipping injection if an
// overlay script tag is already present. Falls back to the teacher's
// string-surgery approach if the document cannot be parsed as HTML or
// has no <body> element.
func injectHMRScripts(htmlStr string, port int) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return fallbackInjectHMRScripts(htmlStr, port)
	}
	if findScriptWithSrc(doc, overlayPath) != nil {
		return htmlStr
	}

	body := findElement(doc, "body")
	if body == nil {
		return fallbackInjectHMRScripts(htmlStr, port)
	}

	scriptNodes, err := html.ParseFragment(strings.NewReader(fmtHMRScript(port)), &html.Node{
		Type: html.ElementNode,
		Data: "body",
	})
	if err != nil || len(scriptNodes) == 0 {
		return fallbackInjectHMRScripts(htmlStr, port)
	}
	for _, scriptNode := range scriptNodes {
		body.AppendChild(scriptNode)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return fallbackInjectHMRScripts(htmlStr, port)
	}
	return buf.String()
}

// findElement recursively searches for the first element with the given
// tag name.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tag); result != nil {
			return result
		}
	}
	return nil
}

// findScriptWithSrc recursively searches for a <script> element whose
// src attribute equals src, used to keep injection idempotent across
// repeated requests for the same index.html.
func findScriptWithSrc(n *html.Node, src string) *html.Node {
	if n.Type == html.ElementNode && n.Data == "script" {
		for _, attr := range n.Attr {
			if attr.Key == "src" && attr.Val == src {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findScriptWithSrc(c, src); result != nil {
			return result
		}
	}
	return nil
}

// fallbackInjectHMRScripts uses string replacement when DOM parsing
// fails or the document has no <body>.
func fallbackInjectHMRScripts(htmlStr string, port int) string {
	if strings.Contains(htmlStr, "/@runtime/overlay") {
		return htmlStr
	}
	script := fmtHMRScript(port)
	if idx := strings.LastIndex(strings.ToLower(htmlStr), "</body>"); idx != -1 {
		return htmlStr[:idx] + script + htmlStr[idx:]
	}
	return htmlStr + script
}

func fmtHMRScript(port int) string {
	var buf bytes.Buffer
	_, _ = buf.WriteString(strings.Replace(hmrClientTemplate, "%d", strconv.Itoa(port), 1))
	return buf.String()
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".js", ".mjs":
		return "application/javascript; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
