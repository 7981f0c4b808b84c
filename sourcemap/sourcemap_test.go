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
package sourcemap_test

import (
	"strings"
	"testing"

	"github.com/venkateshsundaram/react-client/internal/mapfs"
	"github.com/venkateshsundaram/react-client/sourcemap"
)

func TestBuildOneLineFile(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/proj/src/main.tsx", "const x = 1;", 0o644)

	snap, err := sourcemap.Build(mfs, "/proj", "/src/main.tsx", 1, 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(snap.Snippet, "1: const x = 1;") {
		t.Errorf("Snippet = %q, want line 1 prefixed", snap.Snippet)
	}
}

func TestBuildWindowClampedToFileBounds(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/proj/src/x.ts", "line1\nline2\nline3\nline4\nline5\n", 0o644)

	snap, err := sourcemap.Build(mfs, "/proj", "/src/x.ts", 3, 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for n := 1; n <= 5; n++ {
		want := string(rune('0' + n))
		if !strings.Contains(snap.Snippet, want+": line"+want) {
			t.Errorf("expected line %d in snippet, got: %q", n, snap.Snippet)
		}
	}
}

func TestBuildEscapesAngleBrackets(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/proj/src/x.tsx", "const el = <div/>;", 0o644)

	snap, err := sourcemap.Build(mfs, "/proj", "/src/x.tsx", 1, 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if strings.Contains(snap.Snippet, "<div") || !strings.Contains(snap.Snippet, "&lt;div") {
		t.Errorf("expected angle brackets escaped, got: %q", snap.Snippet)
	}
}

func TestBuildUnknownFile(t *testing.T) {
	mfs := mapfs.New()
	if _, err := sourcemap.Build(mfs, "/proj", "/src/missing.ts", 1, 0); err == nil {
		t.Error("expected error for missing file")
	}
}
