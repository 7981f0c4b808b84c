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
package packagejson_test

import (
	"testing"

	"github.com/venkateshsundaram/react-client/packagejson"
)

func TestParse(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name":"react","version":"18.2.0","main":"index.js"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pkg.Name != "react" {
		t.Errorf("Name = %q, want react", pkg.Name)
	}
	if pkg.Main != "index.js" {
		t.Errorf("Main = %q, want index.js", pkg.Main)
	}
}

func TestResolveExportStringExports(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name":"p","exports":"./dist/index.js"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	resolved, err := pkg.ResolveExport(".")
	if err != nil {
		t.Fatalf("ResolveExport(.) failed: %v", err)
	}
	if resolved != "dist/index.js" {
		t.Errorf("ResolveExport(.) = %q, want dist/index.js", resolved)
	}

	if _, err := pkg.ResolveExport("./extra"); err != packagejson.ErrNotExported {
		t.Errorf("ResolveExport(./extra) error = %v, want ErrNotExported", err)
	}
}

func TestResolveExportConditionalRoot(t *testing.T) {
	// exports["./X"].import is a string; returns that path directly
	// (spec.md §8 property).
	pkg, err := packagejson.Parse([]byte(`{
		"name":"p",
		"exports": {"import":"./esm/index.js", "require":"./cjs/index.js"}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	resolved, err := pkg.ResolveExport(".")
	if err != nil {
		t.Fatalf("ResolveExport(.) failed: %v", err)
	}
	if resolved != "esm/index.js" {
		t.Errorf("ResolveExport(.) = %q, want esm/index.js", resolved)
	}
}

func TestResolveExportFallsBackToDefault(t *testing.T) {
	// exports["./X"].import absent; falls back to .default
	// (spec.md §8 property).
	pkg, err := packagejson.Parse([]byte(`{
		"name":"p",
		"exports": {".": {"require":"./cjs/index.js", "default":"./esm/index.js"}}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	resolved, err := pkg.ResolveExport(".")
	if err != nil {
		t.Fatalf("ResolveExport(.) failed: %v", err)
	}
	if resolved != "esm/index.js" {
		t.Errorf("ResolveExport(.) = %q, want esm/index.js", resolved)
	}
}

func TestResolveExportFallsBackToRemainingCondition(t *testing.T) {
	// Neither "import" nor "default" present: the first remaining string
	// condition wins, in sorted-key order for determinism.
	pkg, err := packagejson.Parse([]byte(`{
		"name":"p",
		"exports": {".": {"node":"./node/index.js", "browser":"./browser/index.js"}}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	resolved, err := pkg.ResolveExport(".")
	if err != nil {
		t.Fatalf("ResolveExport(.) failed: %v", err)
	}
	if resolved != "browser/index.js" {
		t.Errorf("ResolveExport(.) = %q, want browser/index.js ('browser' sorts before 'node')", resolved)
	}
}

func TestResolveExportSubpath(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{
		"name":"react-dom",
		"exports": {
			".": "./index.js",
			"./client": {"import":"./client.js", "default":"./client.js"}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	resolved, err := pkg.ResolveExport("./client")
	if err != nil {
		t.Fatalf("ResolveExport(./client) failed: %v", err)
	}
	if resolved != "client.js" {
		t.Errorf("ResolveExport(./client) = %q, want client.js", resolved)
	}
}

func TestResolveExportSubpathExtensionFallback(t *testing.T) {
	// "./client" is requested but only "./client.js" is declared as a key.
	pkg, err := packagejson.Parse([]byte(`{
		"name":"p",
		"exports": {"./client.js": "./dist/client.js"}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	resolved, err := pkg.ResolveExport("./client")
	if err != nil {
		t.Fatalf("ResolveExport(./client) failed: %v", err)
	}
	if resolved != "dist/client.js" {
		t.Errorf("ResolveExport(./client) = %q, want dist/client.js", resolved)
	}
}

func TestResolveExportNoExportsField(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name":"p","main":"index.js"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if _, err := pkg.ResolveExport("."); err != packagejson.ErrNotExported {
		t.Errorf("ResolveExport(.) error = %v, want ErrNotExported (caller should fall back to main)", err)
	}
}

func TestResolveExportUnknownSubpath(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name":"p","exports":{".":"./index.js"}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if _, err := pkg.ResolveExport("./missing"); err != packagejson.ErrNotExported {
		t.Errorf("ResolveExport(./missing) error = %v, want ErrNotExported", err)
	}
}
