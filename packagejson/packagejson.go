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
// Package packagejson provides parsing and export-map resolution for the
// package.json manifests under a project's node_modules tree.
package packagejson

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/venkateshsundaram/react-client/fs"
)

// ErrNotExported is returned when a subpath is not exported by the package,
// or when no condition in the manifest's export map resolves to a string.
var ErrNotExported = errors.New("not exported by package.json")

// conditionPriority is the fixed, host-locale-independent condition order
// the Module Resolver uses when a manifest's exports value is a conditional
// object: prefer "import", then "default", then the first remaining string
// value in sorted key order (so the choice never depends on Go's randomized
// map iteration).
var conditionPriority = []string{"import", "default"}

// PackageJSON represents the subset of package.json relevant to module
// resolution.
type PackageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Main    string `json:"main,omitempty"`
	Module  string `json:"module,omitempty"`
	Browser string `json:"browser,omitempty"`
	Exports any    `json:"exports,omitempty"`
}

// Parse parses package.json data.
func Parse(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ParseFile parses a package.json file through the given filesystem.
func ParseFile(fsys fs.FileSystem, path string) (*PackageJSON, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ResolveExport resolves a subpath export to its target file path, following
// the algorithm in spec.md §4.1 step 3.
//
// subpath is "." for the package root or "./x" for a subpath import. The
// candidate key list tried, in order, is:
//
//	["./<subpath>", "./<subpath>.js", "./<subpath>.mjs"]   (subpath != ".")
//	[".", "./index.js", "./index.mjs"]                     (subpath == ".")
//
// The first candidate key present in the exports map wins. If its value is
// a string, that string (minus a leading "./") is returned. If its value is
// an object, conditions are tried in conditionPriority order, then any
// remaining string-valued condition in sorted key order.
func (pkg *PackageJSON) ResolveExport(subpath string) (string, error) {
	if pkg.Exports == nil {
		return "", ErrNotExported
	}

	// A bare string exports field only ever serves the package root.
	if exportStr, ok := pkg.Exports.(string); ok {
		if subpath == "." {
			return trimDotSlash(exportStr), nil
		}
		return "", ErrNotExported
	}

	exportsMap, ok := pkg.Exports.(map[string]any)
	if !ok {
		return "", ErrNotExported
	}

	// A conditions-only map (no "."-prefixed keys) resolves directly for
	// the package root and rejects every subpath.
	if !hasSubpathKeys(exportsMap) {
		if subpath != "." {
			return "", ErrNotExported
		}
		return resolveConditions(exportsMap)
	}

	for _, key := range candidateKeys(subpath) {
		value, ok := exportsMap[key]
		if !ok {
			continue
		}
		return resolveExportValue(value)
	}

	return "", ErrNotExported
}

// candidateKeys returns the ordered list of export-map keys to try for the
// given subpath, per spec.md §4.1 step 3.
func candidateKeys(subpath string) []string {
	if subpath == "." || subpath == "" {
		return []string{".", "./index.js", "./index.mjs"}
	}
	return []string{subpath, subpath + ".js", subpath + ".mjs"}
}

func hasSubpathKeys(exportsMap map[string]any) bool {
	for key := range exportsMap {
		if strings.HasPrefix(key, ".") {
			return true
		}
	}
	return false
}

func resolveExportValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return trimDotSlash(v), nil
	case map[string]any:
		return resolveConditions(v)
	}
	return "", ErrNotExported
}

// resolveConditions walks a conditional-export object in the fixed order
// import, default, then the first remaining string-valued condition in
// sorted key order. Nested condition objects are resolved recursively.
func resolveConditions(conditions map[string]any) (string, error) {
	for _, cond := range conditionPriority {
		value, ok := conditions[cond]
		if !ok {
			continue
		}
		if resolved, err := resolveExportValue(value); err == nil {
			return resolved, nil
		}
	}

	keys := make([]string, 0, len(conditions))
	for key := range conditions {
		if key == "import" || key == "default" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if s, ok := conditions[key].(string); ok {
			return trimDotSlash(s), nil
		}
	}

	return "", ErrNotExported
}

// trimDotSlash removes a leading "./" from a path.
func trimDotSlash(path string) string {
	return strings.TrimPrefix(path, "./")
}
