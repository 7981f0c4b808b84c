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
package hmr_test

import (
	"encoding/json"
	"testing"

	"github.com/venkateshsundaram/react-client/hmr"
)

func TestMessageConstructors(t *testing.T) {
	if got := hmr.Update("/src/App.tsx"); got.Type != "update" || got.Path != "/src/App.tsx" {
		t.Errorf("Update() = %+v", got)
	}
	if got := hmr.Reload(); got.Type != "reload" {
		t.Errorf("Reload() = %+v", got)
	}
	if got := hmr.Error("boom", "stack trace"); got.Type != "error" || got.Message != "boom" {
		t.Errorf("Error() = %+v", got)
	}
}

func TestMessageJSONEncoding(t *testing.T) {
	data, err := json.Marshal(hmr.Update("/src/App.tsx"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["type"] != "update" || decoded["path"] != "/src/App.tsx" {
		t.Errorf("decoded = %v", decoded)
	}
	if _, hasMessage := decoded["message"]; hasMessage {
		t.Error("expected omitempty to drop unset message field")
	}
}

func TestBroadcasterStartsEmpty(t *testing.T) {
	b := hmr.NewBroadcaster()
	if b.Count() != 0 {
		t.Errorf("Count() = %d, want 0", b.Count())
	}

	// Broadcasting with no clients must not error.
	if err := b.Broadcast(hmr.Reload()); err != nil {
		t.Errorf("Broadcast with no clients failed: %v", err)
	}

	b.CloseAll()
	if b.Count() != 0 {
		t.Errorf("Count() after CloseAll = %d, want 0", b.Count())
	}
}
