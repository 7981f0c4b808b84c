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
package watch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/venkateshsundaram/react-client/watch"
)

type fakeWatcher struct {
	added []string
}

func (f *fakeWatcher) Add(name string) error {
	f.added = append(f.added, name)
	return nil
}
func (f *fakeWatcher) Events() <-chan watch.Event { return nil }
func (f *fakeWatcher) Errors() <-chan error        { return nil }
func (f *fakeWatcher) Close() error                { return nil }

func TestAddRecursiveSkipsNamedDir(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "components"))
	mustMkdir(t, filepath.Join(root, ".react-client"))
	mustMkdir(t, filepath.Join(root, ".react-client", "deps"))

	fw := &fakeWatcher{}
	if err := watch.AddRecursive(fw, root, ".react-client"); err != nil {
		t.Fatalf("AddRecursive failed: %v", err)
	}

	for _, dir := range fw.added {
		if filepath.Base(dir) == ".react-client" {
			t.Errorf("expected .react-client to be skipped, got it in %v", fw.added)
		}
	}
	foundComponents := false
	for _, dir := range fw.added {
		if dir == filepath.Join(root, "components") {
			foundComponents = true
		}
	}
	if !foundComponents {
		t.Errorf("expected components dir to be added, got %v", fw.added)
	}
}

func TestAddRecursiveSkipsIgnoreGlobs(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "components"))
	mustMkdir(t, filepath.Join(root, "node_modules", "react", "cjs"))
	mustMkdir(t, filepath.Join(root, "vendor", "node_modules", "nested"))
	mustMkdir(t, filepath.Join(root, ".git", "objects"))

	fw := &fakeWatcher{}
	if err := watch.AddRecursive(fw, root, ""); err != nil {
		t.Fatalf("AddRecursive failed: %v", err)
	}

	for _, dir := range fw.added {
		rel, _ := filepath.Rel(root, dir)
		relSlash := filepath.ToSlash(rel)
		if relSlash == "node_modules/react/cjs" || relSlash == "vendor/node_modules/nested" || relSlash == ".git/objects" {
			t.Errorf("expected %s to be skipped by an ignore glob, got it in %v", relSlash, fw.added)
		}
	}

	foundComponents := false
	for _, dir := range fw.added {
		if dir == filepath.Join(root, "components") {
			foundComponents = true
		}
	}
	if !foundComponents {
		t.Errorf("expected components dir to be added, got %v", fw.added)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) failed: %v", path, err)
	}
}
