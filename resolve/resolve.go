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

// Package resolve maps a bare import specifier to an absolute filesystem
// path inside the project's package store, honoring export maps,
// conditional exports, and the legacy main/module/browser fields.
package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/venkateshsundaram/react-client/fs"
	"github.com/venkateshsundaram/react-client/packagejson"
	"github.com/venkateshsundaram/react-client/rcerrors"
)

// ModuleNotFoundError is returned when every resolution step fails.
type ModuleNotFoundError struct {
	Specifier string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module not found: %s", e.Specifier)
}

// notFound wraps a ModuleNotFoundError in a ResolveError, per spec.md
// §7: "Module Resolver failed. Reported as 500 to the browser with a
// JS-comment body; logged once per occurrence with the specifier."
func notFound(spec string) error {
	return rcerrors.Resolve(spec, &ModuleNotFoundError{Specifier: spec})
}

// legacyFields are tried in order once the export map yields nothing.
var legacyFields = []string{"module", "browser", "main"}

// subpathSuffixes are appended to the subpath to form the filesystem
// candidates tried, in order, for a subpath that has no manifest export
// map entry.
var subpathSuffixes = []string{"", ".js", ".mjs", "/index.js", "/index.mjs"}

// Resolver resolves BareSpecifiers against a project's node_modules tree.
type Resolver struct {
	fsys  fs.FileSystem
	cache packagejson.Cache
}

// New creates a Resolver backed by fsys, caching parsed manifests in cache
// for the process lifetime.
func New(fsys fs.FileSystem, cache packagejson.Cache) *Resolver {
	return &Resolver{fsys: fsys, cache: cache}
}

// Specifier splits a bare import id into its package root and optional
// subpath, per spec.md §3 BareSpecifier.
type Specifier struct {
	PackageRoot string
	Subpath     string // "" when the specifier names only the package root
}

// ParseSpecifier splits spec into PackageRoot and Subpath. Scoped packages
// (beginning with "@") consume two path segments as the root.
func ParseSpecifier(spec string) Specifier {
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		root := parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			return Specifier{PackageRoot: root, Subpath: parts[2]}
		}
		return Specifier{PackageRoot: root}
	}
	if len(parts) == 1 {
		return Specifier{PackageRoot: parts[0]}
	}
	return Specifier{PackageRoot: parts[0], Subpath: strings.Join(parts[1:], "/")}
}

// Resolve finds the absolute file path for spec, searching node_modules
// directories upward from searchRoot (the project root).
func (r *Resolver) Resolve(searchRoot, spec string) (string, error) {
	parsed := ParseSpecifier(spec)

	packageDir, err := r.findPackageDir(searchRoot, parsed.PackageRoot)
	if err != nil {
		return "", notFound(spec)
	}

	// Step 1: direct resolution - the bare specifier names a file that
	// already exists relative to the package store (rare but cheap to try
	// first, e.g. specifiers that already carry an extension).
	if parsed.Subpath != "" {
		direct := filepath.Join(packageDir, parsed.Subpath)
		if r.isRegularFile(direct) {
			return direct, nil
		}
	}

	manifestPath := filepath.Join(packageDir, "package.json")
	manifest, err := r.cache.GetOrLoad(manifestPath, func() (*packagejson.PackageJSON, error) {
		return packagejson.ParseFile(r.fsys, manifestPath)
	})
	if err != nil {
		return "", notFound(spec)
	}

	// Step 3: export map.
	exportSubpath := "."
	if parsed.Subpath != "" {
		exportSubpath = "./" + parsed.Subpath
	}
	if relPath, err := manifest.ResolveExport(exportSubpath); err == nil {
		resolved := filepath.Join(packageDir, relPath)
		if r.isRegularFile(resolved) {
			return resolved, nil
		}
	}

	// Step 4: subpath direct, trying filesystem candidates relative to the
	// manifest's directory.
	if parsed.Subpath != "" {
		for _, suffix := range subpathSuffixes {
			candidate := filepath.Join(packageDir, parsed.Subpath+suffix)
			if r.isRegularFile(candidate) {
				return candidate, nil
			}
		}
		return "", notFound(spec)
	}

	// Step 5: legacy manifest fields, package root only.
	for _, field := range legacyFields {
		value := manifestField(manifest, field)
		if value == "" {
			continue
		}
		candidate := filepath.Join(packageDir, value)
		if r.isRegularFile(candidate) {
			return candidate, nil
		}
	}

	return "", notFound(spec)
}

func manifestField(pkg *packagejson.PackageJSON, field string) string {
	switch field {
	case "module":
		return pkg.Module
	case "browser":
		return pkg.Browser
	case "main":
		return pkg.Main
	}
	return ""
}

// findPackageDir searches node_modules directories from searchRoot
// upward to the filesystem root, mirroring Node's module resolution
// algorithm for locating a package root.
func (r *Resolver) findPackageDir(searchRoot, packageRoot string) (string, error) {
	dir := searchRoot
	for {
		candidate := filepath.Join(dir, "node_modules", packageRoot)
		if _, err := r.fsys.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("package %q not found under %q", packageRoot, searchRoot)
		}
		dir = parent
	}
}

func (r *Resolver) isRegularFile(path string) bool {
	info, err := r.fsys.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
