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
package transform_test

import (
	"strings"
	"testing"

	"github.com/venkateshsundaram/react-client/internal/mapfs"
	"github.com/venkateshsundaram/react-client/transform"
)

func TestRewriteBareSpecifiersStaticImport(t *testing.T) {
	in := `import React from "react";
import { Button } from "./Button";
`
	out := transform.RewriteBareSpecifiers(in)

	if !strings.Contains(out, `from "/@modules/react"`) {
		t.Errorf("expected bare specifier rewritten, got: %s", out)
	}
	if !strings.Contains(out, `from "./Button"`) {
		t.Errorf("relative import should not be rewritten, got: %s", out)
	}
}

func TestRewriteBareSpecifiersDynamicImport(t *testing.T) {
	in := `const mod = await import("lodash");`
	out := transform.RewriteBareSpecifiers(in)

	if !strings.Contains(out, `import("/@modules/lodash")`) {
		t.Errorf("expected dynamic import rewritten, got: %s", out)
	}
}

func TestRewriteBareSpecifiersLeavesRelativeDynamicImport(t *testing.T) {
	in := `const mod = await import("../utils/helper");`
	out := transform.RewriteBareSpecifiers(in)
	if out != in {
		t.Errorf("relative dynamic import should be untouched, got: %s", out)
	}
}

func TestResolveSourcePathTriesExtensions(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/proj/src/App.tsx", "export default function App(){}", 0o644)

	got := transform.ResolveSourcePath(mfs, "/proj", "/src/App")
	if got != "/proj/src/App.tsx" {
		t.Errorf("ResolveSourcePath = %q, want /proj/src/App.tsx", got)
	}
}

func TestResolveSourcePathMissing(t *testing.T) {
	mfs := mapfs.New()
	got := transform.ResolveSourcePath(mfs, "/proj", "/src/Missing")
	if got != "" {
		t.Errorf("ResolveSourcePath = %q, want empty string for missing file", got)
	}
}
