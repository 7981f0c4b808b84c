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
package plugin_test

import (
	"errors"
	"testing"

	"github.com/venkateshsundaram/react-client/plugin"
)

func TestTransformFoldsInOrder(t *testing.T) {
	hooks := []plugin.Hook{
		{Name: "upper", OnTransform: func(code, id string) (string, error) {
			return code + ":upper", nil
		}},
		{Name: "lower", OnTransform: func(code, id string) (string, error) {
			return code + ":lower", nil
		}},
	}
	host := plugin.NewHost(hooks, nil)

	out, err := host.Transform("src", "/file.tsx")
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if out != "src:upper:lower" {
		t.Errorf("expected fold in registration order, got %q", out)
	}
}

func TestTransformSkipsHooksWithoutOnTransform(t *testing.T) {
	hooks := []plugin.Hook{
		{Name: "noop"},
		{Name: "tag", OnTransform: func(code, id string) (string, error) {
			return code + ":tag", nil
		}},
	}
	host := plugin.NewHost(hooks, nil)

	out, err := host.Transform("src", "/file.tsx")
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if out != "src:tag" {
		t.Errorf("expected noop hook skipped, got %q", out)
	}
}

func TestTransformStopsOnError(t *testing.T) {
	wantErr := errors.New("boom")
	hooks := []plugin.Hook{
		{Name: "fails", OnTransform: func(code, id string) (string, error) {
			return "", wantErr
		}},
		{Name: "never", OnTransform: func(code, id string) (string, error) {
			t.Fatal("should not run after a failing hook")
			return code, nil
		}},
	}
	host := plugin.NewHost(hooks, nil)

	_, err := host.Transform("src", "/file.tsx")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped boom error, got %v", err)
	}
}

func TestHotUpdateRecoversPanic(t *testing.T) {
	ran := false
	hooks := []plugin.Hook{
		{Name: "panics", OnHotUpdate: func(file string, broadcast plugin.BroadcastFunc) {
			panic("plugin exploded")
		}},
		{Name: "after", OnHotUpdate: func(file string, broadcast plugin.BroadcastFunc) {
			ran = true
		}},
	}
	host := plugin.NewHost(hooks, nil)

	host.HotUpdate("/src/App.tsx", func(path string) {})

	if !ran {
		t.Error("expected hook after the panicking one to still run")
	}
}

func TestHotUpdatePassesBroadcastFunc(t *testing.T) {
	var broadcasted string
	hooks := []plugin.Hook{
		{Name: "broadcaster", OnHotUpdate: func(file string, broadcast plugin.BroadcastFunc) {
			broadcast("/src/App.tsx")
		}},
	}
	host := plugin.NewHost(hooks, nil)

	host.HotUpdate("/src/App.tsx", func(path string) {
		broadcasted = path
	})

	if broadcasted != "/src/App.tsx" {
		t.Errorf("expected broadcast called with path, got %q", broadcasted)
	}
}

func TestServerStartInvokesAllHooks(t *testing.T) {
	var seen []plugin.StartContext
	hooks := []plugin.Hook{
		{Name: "a", OnServerStart: func(ctx plugin.StartContext) { seen = append(seen, ctx) }},
		{Name: "b", OnServerStart: func(ctx plugin.StartContext) { seen = append(seen, ctx) }},
	}
	host := plugin.NewHost(hooks, nil)

	host.ServerStart(plugin.StartContext{RootDir: "/project", Port: 5173})

	if len(seen) != 2 {
		t.Fatalf("expected both hooks invoked, got %d", len(seen))
	}
	for _, ctx := range seen {
		if ctx.RootDir != "/project" || ctx.Port != 5173 {
			t.Errorf("unexpected StartContext: %+v", ctx)
		}
	}
}
