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

package prebundle

import (
	"path/filepath"
	"strings"

	reactfs "github.com/venkateshsundaram/react-client/fs"
	"github.com/venkateshsundaram/react-client/trace"
)

// sourceExtensions are the project file types scanned for import
// specifiers: the Transform pipeline's script extensions (its set
// without .css).
var sourceExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true,
}

// ScanDirectDependencies walks entryFile and every project source file
// reachable from it by relative import, within srcDir only, and
// collects the union of BareSpecifiers found. Per spec.md §4.2, the
// walk never leaves the project source tree: bare specifiers are
// recorded but never themselves followed.
func ScanDirectDependencies(fsys reactfs.FileSystem, srcDir, entryFile string) ([]string, error) {
	seenFiles := map[string]bool{}
	bareSpecifiers := map[string]bool{}

	var visit func(path string) error
	visit = func(path string) error {
		if seenFiles[path] {
			return nil
		}
		seenFiles[path] = true

		content, err := fsys.ReadFile(path)
		if err != nil {
			return nil // advisory: a dangling relative import is not fatal here
		}

		lang := trace.LanguageForExt(filepath.Ext(path))
		imports, err := trace.ExtractImports(content, lang)
		if err != nil {
			return nil
		}

		for _, imp := range imports {
			spec := imp.Specifier
			if strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
				resolved := resolveRelative(path, spec)
				if isWithin(srcDir, resolved) {
					if candidate := existingSourceFile(fsys, resolved); candidate != "" {
						if err := visit(candidate); err != nil {
							return err
						}
					}
				}
				continue
			}
			bareSpecifiers[spec] = true
		}
		return nil
	}

	if err := visit(entryFile); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(bareSpecifiers))
	for spec := range bareSpecifiers {
		result = append(result, spec)
	}
	return result, nil
}

func resolveRelative(fromFile, spec string) string {
	return filepath.Clean(filepath.Join(filepath.Dir(fromFile), spec))
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// existingSourceFile resolves path to an existing project source file,
// trying the extensions the Transform Cache would try, per spec.md §4.3.
func existingSourceFile(fsys reactfs.FileSystem, path string) string {
	if info, err := fsys.Stat(path); err == nil && info.Mode().IsRegular() {
		if sourceExtensions[strings.ToLower(filepath.Ext(path))] {
			return path
		}
	}
	for _, ext := range []string{".tsx", ".ts", ".jsx", ".js"} {
		candidate := path + ext
		if info, err := fsys.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}
