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

// Package transpile invokes esbuild for the two jobs the dev server
// needs: bundling a third-party dependency into a self-contained
// browser-ESM artifact, and transforming a single project source file
// with an inline source map.
package transpile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Gateway wraps the esbuild API behind the two operations the core needs.
type Gateway struct{}

// New creates a Gateway.
func New() *Gateway {
	return &Gateway{}
}

// BundleOptions configures a whole-package prebundle.
type BundleOptions struct {
	// EntryPath is the resolved absolute path to the dependency's entry
	// module, from the Module Resolver.
	EntryPath string
}

// Bundle compiles EntryPath into a self-contained ESM artifact: target
// es2020, platform browser, format ESM, bundle=true, per spec.md §4.2.
func (g *Gateway) Bundle(opts BundleOptions) ([]byte, error) {
	result := api.Build(api.BuildOptions{
		EntryPoints: []string{opts.EntryPath},
		Bundle:      true,
		Write:       false,
		Format:      api.FormatESModule,
		Platform:    api.PlatformBrowser,
		Target:      api.ES2020,
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("bundling %s: %s", opts.EntryPath, formatMessages(result.Errors))
	}
	return concatOutputs(result.OutputFiles), nil
}

// loaderForExt maps a file extension to the esbuild loader the Transform
// step selects, per spec.md §4.3 step 5.
var loaderForExt = map[string]api.Loader{
	".ts":  api.LoaderTS,
	".tsx": api.LoaderTSX,
	".jsx": api.LoaderJSX,
	".js":  api.LoaderJS,
}

// ErrUnsupportedExtension is returned by Transform for an extension with
// no known loader.
type ErrUnsupportedExtension struct{ Ext string }

func (e *ErrUnsupportedExtension) Error() string {
	return fmt.Sprintf("no transpiler loader for extension %q", e.Ext)
}

// Transform compiles a single file's (possibly plugin-rewritten) source
// text to browser-executable JS with an inline source map, per spec.md
// §4.3 step 5. path is used only to select the loader by extension.
func (g *Gateway) Transform(code, path string) (string, error) {
	loader, ok := loaderForExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", &ErrUnsupportedExtension{Ext: filepath.Ext(path)}
	}

	result := api.Transform(code, api.TransformOptions{
		Loader:     loader,
		Target:     api.ES2020,
		Sourcemap:  api.SourceMapInline,
		Sourcefile: path,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("transforming %s: %s", path, formatMessages(result.Errors))
	}
	return string(result.Code), nil
}

func concatOutputs(files []api.OutputFile) []byte {
	var out []byte
	for _, f := range files {
		out = append(out, f.Contents...)
	}
	return out
}

func formatMessages(msgs []api.Message) string {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(m.Text)
	}
	return sb.String()
}
