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
package trace

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

//go:embed queries/*/*.scm
var queryFiles embed.FS

// Language selects which tree-sitter grammar a source file is parsed
// with. The plain TypeScript grammar does not define `jsx_element` /
// `jsx_fragment` node shapes, so `.tsx`/`.jsx` project files (reachable
// from the `main.tsx`/`main.jsx` entry per spec.md §3) must be parsed
// with the TSX dialect instead.
type Language string

const (
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
)

// LanguageForExt selects the grammar for a project source file
// extension, mirroring the Transform pipeline's loader selection
// (spec.md §4.3): `.tsx`/`.jsx` get the TSX grammar, `.ts`/`.js` get
// the plain TypeScript grammar.
func LanguageForExt(ext string) Language {
	switch strings.ToLower(ext) {
	case ".tsx", ".jsx":
		return LanguageTSX
	default:
		return LanguageTypeScript
	}
}

// languages holds the pre-initialized tree-sitter grammars used for
// scanning project source files: plain TypeScript for `.ts`/`.js`, and
// the TSX dialect for `.tsx`/`.jsx`.
var languages = struct {
	typescript *ts.Language
	tsx        *ts.Language
}{
	ts.NewLanguage(tsTypescript.LanguageTypescript()),
	ts.NewLanguage(tsTypescript.LanguageTSX()), // TSX uses TypeScript's TSX dialect
}

func languageGrammar(lang Language) *ts.Language {
	if lang == LanguageTSX {
		return languages.tsx
	}
	return languages.typescript
}

// tsParserPool and tsxParserPool reuse parsers across calls; a
// tree-sitter parser is not safe for concurrent use but is cheap to
// reset and hand back.
var tsParserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(languages.typescript); err != nil {
			panic("failed to set TypeScript language: " + err.Error())
		}
		return parser
	},
}

var tsxParserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(languages.tsx); err != nil {
			panic("failed to set TSX language: " + err.Error())
		}
		return parser
	},
}

// getTSParser retrieves a parser for lang from the matching pool.
func getTSParser(lang Language) *ts.Parser {
	if lang == LanguageTSX {
		return tsxParserPool.Get().(*ts.Parser)
	}
	return tsParserPool.Get().(*ts.Parser)
}

// putTSParser returns a parser to the pool matching lang.
func putTSParser(lang Language, p *ts.Parser) {
	p.Reset()
	if lang == LanguageTSX {
		tsxParserPool.Put(p)
		return
	}
	tsParserPool.Put(p)
}

// QueryManager manages tree-sitter queries for both the TypeScript and
// TSX grammars.
type QueryManager struct {
	mu         sync.Mutex
	closed     bool
	typescript map[string]*ts.Query
	tsx        map[string]*ts.Query
}

// NewQueryManager creates a new QueryManager with the specified
// queries loaded for both grammars.
func NewQueryManager(queries []string) (*QueryManager, error) {
	qm := &QueryManager{
		typescript: make(map[string]*ts.Query),
		tsx:        make(map[string]*ts.Query),
	}

	for _, name := range queries {
		if err := qm.loadQuery(LanguageTypeScript, name); err != nil {
			qm.Close()
			return nil, err
		}
		if err := qm.loadQuery(LanguageTSX, name); err != nil {
			qm.Close()
			return nil, err
		}
	}

	return qm, nil
}

func (qm *QueryManager) loadQuery(lang Language, name string) error {
	queryPath := path.Join("queries", string(lang), name+".scm")
	data, err := queryFiles.ReadFile(queryPath)
	if err != nil {
		return fmt.Errorf("failed to read query %s: %w", queryPath, err)
	}

	query, qerr := ts.NewQuery(languageGrammar(lang), string(data))
	if qerr != nil {
		return fmt.Errorf("failed to parse query %s: %w", queryPath, qerr)
	}

	if lang == LanguageTSX {
		qm.tsx[name] = query
	} else {
		qm.typescript[name] = query
	}
	return nil
}

// Close releases all query resources. Safe to call multiple times.
func (qm *QueryManager) Close() {
	qm.mu.Lock()
	if qm.closed {
		qm.mu.Unlock()
		return
	}
	qm.closed = true
	tsQueries := qm.typescript
	tsxQueries := qm.tsx
	qm.typescript = nil
	qm.tsx = nil
	qm.mu.Unlock()

	for _, q := range tsQueries {
		q.Close()
	}
	for _, q := range tsxQueries {
		q.Close()
	}
}

// Query returns a named query for the given grammar.
func (qm *QueryManager) Query(lang Language, name string) (*ts.Query, error) {
	table := qm.typescript
	if lang == LanguageTSX {
		table = qm.tsx
	}
	q, ok := table[name]
	if !ok {
		return nil, fmt.Errorf("query not found: %s/%s", lang, name)
	}
	return q, nil
}

// Global query manager singleton.
var (
	globalQM     *QueryManager
	globalQMOnce sync.Once
	globalQMErr  error
)

// GetQueryManager returns the global query manager instance.
func GetQueryManager() (*QueryManager, error) {
	globalQMOnce.Do(func() {
		globalQM, globalQMErr = NewQueryManager([]string{"imports"})
	})
	return globalQM, globalQMErr
}

// ModuleImport represents an import statement in a module.
type ModuleImport struct {
	Specifier string // The import specifier (e.g., "react", "./foo.js")
	IsDynamic bool   // True if this is a dynamic import()
	Line      int    // 1-indexed source line of the specifier
}
