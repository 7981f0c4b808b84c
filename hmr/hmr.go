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

// Package hmr implements the WebSocket fan-out broadcaster that delivers
// hot-module-replacement messages to every connected browser client.
package hmr

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is the tagged record broadcast to clients, per spec.md §3.
type Message struct {
	Type    string `json:"type"` // "update", "error", or "reload"
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Update builds an {type:"update", path} message.
func Update(path string) Message { return Message{Type: "update", Path: path} }

// Error builds an {type:"error", message, stack} message.
func Error(message, stack string) Message {
	return Message{Type: "error", Message: message, Stack: stack}
}

// Reload builds a {type:"reload"} message.
func Reload() Message { return Message{Type: "reload"} }

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     isLocalOrigin,
}

// isLocalOrigin allows only same-host or localhost WebSocket connections,
// since the dev server is never meant to be exposed beyond the developer's
// own machine.
func isLocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := originURL.Hostname()
	if host == "localhost" || host == "127.0.0.1" || host == "::1" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	requestHost := r.Host
	if i := strings.IndexByte(requestHost, ':'); i != -1 {
		requestHost = requestHost[:i]
	}
	return host == requestHost
}

// client wraps a connection with its own write mutex so concurrent
// broadcasts never interleave frames on the same socket.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Broadcaster manages the set of live ClientConnections and fans messages
// out to all of them. The set is mutated only by Upgrade and the read
// loop's close path; Broadcast iterates a snapshot, per spec.md §9.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*client]struct{})}
}

// Upgrade promotes an HTTP request to a WebSocket connection and
// registers it with the broadcaster. It blocks, running the (discarded)
// read loop, until the connection closes; callers run it in its own
// goroutine per request.
func (b *Broadcaster) Upgrade(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.clients, c)
		b.mu.Unlock()
		_ = conn.Close()
	}()

	// Inbound messages from the browser are ignored (spec.md §6); the
	// read loop only exists to detect the connection closing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Broadcast encodes msg once and writes it to every client currently in
// the OPEN state. A failed per-client write is silently discarded; the
// connection's own close event cleans up the client set.
func (b *Broadcaster) Broadcast(msg Message) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	b.mu.RLock()
	snapshot := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		snapshot = append(snapshot, c)
	}
	b.mu.RUnlock()

	for _, c := range snapshot {
		c.mu.Lock()
		_ = c.conn.WriteMessage(websocket.TextMessage, encoded)
		c.mu.Unlock()
	}
	return nil
}

// CloseAll closes every connected client, used during shutdown so no new
// broadcasts can reach a client after the WebSocket server stops
// accepting, per spec.md §9 resource-release ordering.
func (b *Broadcaster) CloseAll() {
	b.mu.Lock()
	snapshot := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		snapshot = append(snapshot, c)
	}
	b.clients = make(map[*client]struct{})
	b.mu.Unlock()

	for _, c := range snapshot {
		c.mu.Lock()
		_ = c.conn.Close()
		c.mu.Unlock()
	}
}

// Count returns the number of currently connected clients.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
