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

// Package rcerrors defines the dev server's error taxonomy, per spec.md
// §7: six categories (Config, Resolve, Transform, Bundle, IO, Protocol),
// each carrying the context its call site already has (a specifier, a
// file path, an underlying error) so that handlers can format a
// JS-comment or JSON response body without re-deriving that context.
package rcerrors

import "fmt"

// Kind names one of spec.md §7's six error categories.
type Kind string

const (
	// KindConfig: missing/malformed configuration, missing entry file.
	// Fatal at startup.
	KindConfig Kind = "config"
	// KindResolve: the Module Resolver failed to locate a specifier.
	// Reported as a 500 with a JS-comment body; logged once per
	// occurrence with the specifier.
	KindResolve Kind = "resolve"
	// KindTransform: the Transpiler Gateway failed on a project file.
	// Same surface as KindResolve, plus an optional error overlay
	// broadcast.
	KindTransform Kind = "transform"
	// KindBundle: the Prebundle Cache failed to build a dependency.
	// Warning only at startup; a 500 if that module is later fetched.
	KindBundle Kind = "bundle"
	// KindIO: a filesystem or watcher failure. Logged; the server
	// continues unless the watcher cannot be restarted.
	KindIO Kind = "io"
	// KindProtocol: an invalid request to /@source-map. Returns 400
	// with {}.
	KindProtocol Kind = "protocol"
)

// Error wraps an underlying failure with the Kind and the identifier
// (specifier, file path, or query field) it occurred against, so both
// the log line and the HTTP response body can name what failed without
// the caller re-threading that context.
type Error struct {
	Kind   Kind
	Target string // specifier, file path, or field name; "" if not applicable
	Err    error
}

func (e *Error) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config reports a ConfigError: a missing/malformed configuration or
// entry file. Callers surface this as a fatal startup error.
func Config(target string, err error) *Error {
	return &Error{Kind: KindConfig, Target: target, Err: err}
}

// Resolve reports a ResolveError for specifier.
func Resolve(specifier string, err error) *Error {
	return &Error{Kind: KindResolve, Target: specifier, Err: err}
}

// Transform reports a TransformError for the project file at path.
func Transform(path string, err error) *Error {
	return &Error{Kind: KindTransform, Target: path, Err: err}
}

// Bundle reports a BundleError for the dependency named by specifier.
func Bundle(specifier string, err error) *Error {
	return &Error{Kind: KindBundle, Target: specifier, Err: err}
}

// IO reports an IOError against path (a file or watch root).
func IO(path string, err error) *Error {
	return &Error{Kind: KindIO, Target: path, Err: err}
}

// Protocol reports a ProtocolError against the offending request field.
func Protocol(field string, err error) *Error {
	return &Error{Kind: KindProtocol, Target: field, Err: err}
}

// Is reports whether target is an *Error of the same Kind, so callers
// can write errors.Is(err, rcerrors.Resolve("", nil)) to test category
// membership without caring about Target or the wrapped cause.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// JSComment renders err as a syntactically valid single-line JavaScript
// comment, per spec.md §4.1/§4.4: routes 1-4 must never return an HTML
// error body that a <script> tag would choke on.
func JSComment(err error) string {
	return fmt.Sprintf("// %s\n", err.Error())
}

// ProtocolBody is the JSON body returned for a ProtocolError, per
// spec.md §7 ("Returns 400 with {}"). Fields are omitted when empty so
// the zero value still marshals to the spec's bare "{}".
type ProtocolBody struct {
	Error string `json:"error,omitempty"`
}

// JSONBody renders err as the JSON body for a ProtocolError response.
func JSONBody(err error) ProtocolBody {
	if err == nil {
		return ProtocolBody{}
	}
	return ProtocolBody{Error: err.Error()}
}
