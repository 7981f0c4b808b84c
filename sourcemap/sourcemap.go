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

// Package sourcemap serves short original-source context windows for the
// error overlay. It does not decode real source maps: inline maps
// produced by the Transpiler Gateway are consulted by the browser
// itself, per spec.md §4.7.
package sourcemap

import (
	"fmt"
	"strings"

	"github.com/venkateshsundaram/react-client/fs"
)

// escapeAngleBrackets escapes only "<" and ">", per spec.md §4.7 — not a
// full HTML escape, since the snippet is embedded as text inside a <pre>
// in the overlay, and other characters are expected to pass through.
var escapeAngleBrackets = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// Snippet is the JSON response body for GET /@source-map.
type Snippet struct {
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Snippet string `json:"snippet"`
}

// windowBefore and windowAfter are the number of lines of context shown
// before and after the reported line, inclusive, per spec.md §4.7.
const (
	windowBefore = 3
	windowAfter  = 2
)

// Build reads <rootDir><file> and returns the context window around line
// (1-indexed), HTML-escaping "<" and ">" and prefixing each line with its
// line number. Returns an error if the file cannot be read.
func Build(fsys fs.FileSystem, rootDir, file string, line, column int) (Snippet, error) {
	content, err := fsys.ReadFile(rootDir + file)
	if err != nil {
		return Snippet{}, err
	}

	lines := strings.Split(string(content), "\n")

	start := line - windowBefore
	if start < 1 {
		start = 1
	}
	end := line + windowAfter
	if end > len(lines) {
		end = len(lines)
	}

	var sb strings.Builder
	for n := start; n <= end; n++ {
		if n-1 >= len(lines) {
			break
		}
		escaped := escapeAngleBrackets.Replace(lines[n-1])
		fmt.Fprintf(&sb, "%d: %s\n", n, escaped)
	}

	return Snippet{
		Source:  file,
		Line:    line,
		Column:  column,
		Snippet: strings.TrimRight(sb.String(), "\n"),
	}, nil
}
