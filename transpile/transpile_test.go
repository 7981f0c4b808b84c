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
package transpile_test

import (
	"os"
	"strings"
	"testing"

	"github.com/venkateshsundaram/react-client/transpile"
)

func TestTransformCompilesTSX(t *testing.T) {
	gateway := transpile.New()

	code := `export function App() { return <div>hi</div>; }`
	out, err := gateway.Transform(code, "/project/src/App.tsx")
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if strings.Contains(out, "<div>") {
		t.Errorf("expected JSX compiled away, got %s", out)
	}
	if !strings.Contains(out, "sourceMappingURL") {
		t.Errorf("expected inline source map, got %s", out)
	}
}

func TestTransformUnsupportedExtension(t *testing.T) {
	gateway := transpile.New()

	_, err := gateway.Transform("export {}", "/project/src/styles.scss")
	if err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
	var extErr *transpile.ErrUnsupportedExtension
	if !errorsAs(err, &extErr) {
		t.Fatalf("expected ErrUnsupportedExtension, got %v", err)
	}
}

func errorsAs(err error, target **transpile.ErrUnsupportedExtension) bool {
	if e, ok := err.(*transpile.ErrUnsupportedExtension); ok {
		*target = e
		return true
	}
	return false
}

func TestBundleProducesSelfContainedESM(t *testing.T) {
	gateway := transpile.New()

	dir := t.TempDir()
	entry := dir + "/entry.js"
	if err := os.WriteFile(entry, []byte("export const value = 42;\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	out, err := gateway.Bundle(transpile.BundleOptions{EntryPath: entry})
	if err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}
	if !strings.Contains(string(out), "42") {
		t.Errorf("expected bundled output to contain the literal, got %s", out)
	}
}
