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
package trace_test

import (
	"testing"

	"github.com/venkateshsundaram/react-client/trace"
)

func TestExtractImportsStaticAndRelative(t *testing.T) {
	src := `
import React from "react";
import { Counter } from "./Counter";
export {};
`
	imports, err := trace.ExtractImports([]byte(src), trace.LanguageTypeScript)
	if err != nil {
		t.Fatalf("ExtractImports failed: %v", err)
	}

	specifiers := map[string]bool{}
	for _, imp := range imports {
		specifiers[imp.Specifier] = true
		if imp.IsDynamic {
			t.Errorf("static import %q reported as dynamic", imp.Specifier)
		}
	}
	if !specifiers["react"] {
		t.Errorf("expected react among static imports, got %v", imports)
	}
	if !specifiers["./Counter"] {
		t.Errorf("expected ./Counter among static imports, got %v", imports)
	}
}

func TestExtractImportsDynamic(t *testing.T) {
	src := `
async function load() {
  const mod = await import("react-dom/client");
  return mod;
}
`
	imports, err := trace.ExtractImports([]byte(src), trace.LanguageTypeScript)
	if err != nil {
		t.Fatalf("ExtractImports failed: %v", err)
	}

	found := false
	for _, imp := range imports {
		if imp.Specifier == "react-dom/client" {
			found = true
			if !imp.IsDynamic {
				t.Error("expected dynamic import() to be flagged IsDynamic")
			}
		}
	}
	if !found {
		t.Errorf("expected react-dom/client among dynamic imports, got %v", imports)
	}
}

func TestExtractImportsReexport(t *testing.T) {
	src := `export * from "lodash-es";`

	imports, err := trace.ExtractImports([]byte(src), trace.LanguageTypeScript)
	if err != nil {
		t.Fatalf("ExtractImports failed: %v", err)
	}

	found := false
	for _, imp := range imports {
		if imp.Specifier == "lodash-es" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected lodash-es among re-export specifiers, got %v", imports)
	}
}

func TestExtractImportsNoImports(t *testing.T) {
	imports, err := trace.ExtractImports([]byte("const x = 1;\nexport default x;\n"), trace.LanguageTypeScript)
	if err != nil {
		t.Fatalf("ExtractImports failed: %v", err)
	}
	if len(imports) != 0 {
		t.Errorf("expected no imports, got %v", imports)
	}
}

func TestExtractImportsJSX(t *testing.T) {
	src := `
import React from "react";
import { createRoot } from "react-dom/client";

export function App() {
  return <div className="app">{React.version}</div>;
}
`
	imports, err := trace.ExtractImports([]byte(src), trace.LanguageForExt(".tsx"))
	if err != nil {
		t.Fatalf("ExtractImports failed on JSX source: %v", err)
	}

	specifiers := map[string]bool{}
	for _, imp := range imports {
		specifiers[imp.Specifier] = true
	}
	if !specifiers["react"] {
		t.Errorf("expected react among imports, got %v", imports)
	}
	if !specifiers["react-dom/client"] {
		t.Errorf("expected react-dom/client among imports, got %v", imports)
	}
}

func TestLanguageForExt(t *testing.T) {
	cases := map[string]trace.Language{
		".ts":  trace.LanguageTypeScript,
		".js":  trace.LanguageTypeScript,
		".tsx": trace.LanguageTSX,
		".jsx": trace.LanguageTSX,
	}
	for ext, want := range cases {
		if got := trace.LanguageForExt(ext); got != want {
			t.Errorf("LanguageForExt(%q) = %q, want %q", ext, got, want)
		}
	}
}
