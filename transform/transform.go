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

// Package transform holds the Transform Cache and Import Rewriter: the
// on-demand pipeline that turns a project source file into
// browser-executable JS, per spec.md §4.3.
package transform

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/venkateshsundaram/react-client/fs"
	"github.com/venkateshsundaram/react-client/plugin"
	"github.com/venkateshsundaram/react-client/rcerrors"
	"github.com/venkateshsundaram/react-client/transpile"
)

// sourceExtensions are tried, in order, when a requested path has no
// extension or does not exist as given, per spec.md §4.3.
var sourceExtensions = []string{".tsx", ".ts", ".jsx", ".js", ".css"}

// fromRe matches `from "X"` where X does not start with "." or "/".
var fromRe = regexp.MustCompile(`\bfrom\s+(['"])([^./'"][^'"]*)(['"])`)

// dynamicImportRe matches `import("X")` where X does not start with "."
// or "/".
var dynamicImportRe = regexp.MustCompile(`\bimport\(\s*(['"])([^./'"][^'"]*)(['"])\s*\)`)

// RewriteBareSpecifiers rewrites the two production patterns
// (`from "X"` and `import("X")`) to route bare specifiers through the
// module endpoint. This is a textual rewrite, not an AST transform, and
// does not process strings inside template literals — the same
// limitation the spec documents for the reference implementation.
func RewriteBareSpecifiers(code string) string {
	code = fromRe.ReplaceAllString(code, `from $1/@modules/$2$3`)
	code = dynamicImportRe.ReplaceAllString(code, `import($1/@modules/$2$3)`)
	return code
}

// ResolveSourcePath maps a project-relative URL path to an existing file
// under rootDir, trying sourceExtensions in order when the bare path does
// not exist. Returns "" if no candidate exists.
func ResolveSourcePath(fsys fs.FileSystem, rootDir, urlPath string) string {
	base := filepath.Join(rootDir, filepath.FromSlash(urlPath))
	if fsys.Exists(base) {
		if info, err := fsys.Stat(base); err == nil && info.Mode().IsRegular() {
			return base
		}
	}
	for _, ext := range sourceExtensions {
		candidate := base + ext
		if fsys.Exists(candidate) {
			return candidate
		}
	}
	return ""
}

// cssRuntimeTemplate wraps CSS text in a snippet that installs a <style>
// element at import time, yielding CSS hot-reload without a page reload
// (spec.md §4.3 step 4).
const cssRuntimeTemplate = `const css = %s;
const style = document.createElement('style');
style.textContent = css;
document.head.appendChild(style);
export default css;
`

// Cache holds the most recently transformed text for each resolved
// absolute source path. Entries are invalidated by the watcher on any
// change event for that path; a cache hit returns byte-identical output
// for repeated requests against unchanged content.
type Cache struct {
	fsys    fs.FileSystem
	plugins *plugin.Host
	gateway *transpile.Gateway

	mu      sync.RWMutex
	records map[string]string
}

// NewCache creates a Transform Cache backed by fsys, running every
// transform through plugins and gateway.
func NewCache(fsys fs.FileSystem, plugins *plugin.Host, gateway *transpile.Gateway) *Cache {
	return &Cache{
		fsys:    fsys,
		plugins: plugins,
		gateway: gateway,
		records: make(map[string]string),
	}
}

// Get returns the transformed text for absPath, servicing a cache miss by
// reading, rewriting, running the plugin chain, and transpiling.
func (c *Cache) Get(absPath string) (string, error) {
	c.mu.RLock()
	if record, ok := c.records[absPath]; ok {
		c.mu.RUnlock()
		return record, nil
	}
	c.mu.RUnlock()

	output, err := c.build(absPath)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.records[absPath] = output
	c.mu.Unlock()
	return output, nil
}

// Invalidate removes the TransformRecord for absPath, if any.
func (c *Cache) Invalidate(absPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, absPath)
}

func (c *Cache) build(absPath string) (string, error) {
	content, err := c.fsys.ReadFile(absPath)
	if err != nil {
		return "", rcerrors.IO(absPath, fmt.Errorf("reading: %w", err))
	}

	if strings.EqualFold(filepath.Ext(absPath), ".css") {
		quoted := quoteJSString(string(content))
		return fmt.Sprintf(cssRuntimeTemplate, quoted), nil
	}

	rewritten := RewriteBareSpecifiers(string(content))

	code := rewritten
	if c.plugins != nil {
		code, err = c.plugins.Transform(code, absPath)
		if err != nil {
			return "", rcerrors.Transform(absPath, fmt.Errorf("plugin transform: %w", err))
		}
	}

	out, err := c.gateway.Transform(code, absPath)
	if err != nil {
		return "", rcerrors.Transform(absPath, err)
	}
	return out, nil
}

// quoteJSString renders s as a double-quoted JS string literal with the
// minimal escaping needed for embedding raw CSS text.
func quoteJSString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
