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

// Package prebundle discovers third-party dependencies reachable from the
// project entry, builds them into self-contained browser-ESM artifacts,
// and invalidates the whole set when the project manifest changes.
package prebundle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/venkateshsundaram/react-client/fs"
	"github.com/venkateshsundaram/react-client/rcerrors"
	"github.com/venkateshsundaram/react-client/resolve"
	"github.com/venkateshsundaram/react-client/transpile"
)

// CacheKey flattens a BareSpecifier into a filename-safe string by
// replacing path separators with "_", per spec.md §3.
func CacheKey(specifier string) string {
	return strings.ReplaceAll(specifier, "/", "_")
}

// Meta is the on-disk record used for wholesale invalidation.
type Meta struct {
	Hash string `json:"hash"`
}

// digest returns a stable hex digest of the sorted, concatenated
// specifier set.
func digest(specifiers []string) string {
	sorted := append([]string(nil), specifiers...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return hex.EncodeToString(sum[:])
}

// buildState coordinates the at-most-one-concurrent-build-per-CacheKey
// contract with a keyed single-flight, mirroring
// packagejson.MemoryCache.GetOrLoad.
type buildState struct {
	once sync.Once
	err  error
}

// Cache manages the prebundle directory: single-flight builds, one
// artifact per CacheKey, and the project-manifest invalidation digest.
type Cache struct {
	fsys     fs.FileSystem
	resolver *resolve.Resolver
	gateway  *transpile.Gateway
	depsDir  string
	rootDir  string

	building sync.Map // map[string]*buildState keyed by CacheKey
}

// New creates a Cache rooted at rootDir, writing artifacts under
// <rootDir>/.react-client/deps.
func New(fsys fs.FileSystem, resolver *resolve.Resolver, gateway *transpile.Gateway, rootDir string) *Cache {
	return &Cache{
		fsys:     fsys,
		resolver: resolver,
		gateway:  gateway,
		rootDir:  rootDir,
		depsDir:  filepath.Join(rootDir, ".react-client", "deps"),
	}
}

// ArtifactPath returns the on-disk path for a specifier's artifact.
func (c *Cache) ArtifactPath(specifier string) string {
	return filepath.Join(c.depsDir, CacheKey(specifier)+".js")
}

func (c *Cache) metaPath() string {
	return filepath.Join(c.depsDir, "_meta.json")
}

// Refresh scans the direct dependency set from entryFile, compares its
// digest to the stored meta, and (on a miss) builds any missing artifact
// with bounded concurrency before rewriting the meta file. It returns the
// direct dependency set and any per-dependency build failures, which are
// logged by the caller as warnings (spec.md §4.2 Failure contract).
func (c *Cache) Refresh(srcDir, entryFile string) (deps []string, failures map[string]error, err error) {
	deps, err = ScanDirectDependencies(c.fsys, srcDir, entryFile)
	if err != nil {
		return nil, nil, rcerrors.IO(srcDir, fmt.Errorf("scanning direct dependencies: %w", err))
	}

	newHash := digest(deps)
	if c.currentHash() == newHash && c.allArtifactsExist(deps) {
		return deps, nil, nil
	}

	if err := c.fsys.MkdirAll(c.depsDir, 0o755); err != nil {
		return deps, nil, rcerrors.IO(c.depsDir, fmt.Errorf("creating deps dir: %w", err))
	}

	failures = c.buildMissing(deps)

	if writeErr := c.writeMeta(newHash); writeErr != nil {
		return deps, failures, rcerrors.IO(c.metaPath(), fmt.Errorf("writing prebundle meta: %w", writeErr))
	}
	return deps, failures, nil
}

// EnsureBuilt builds specifier's artifact if it does not already exist,
// collapsing concurrent callers via single-flight. Used by the on-demand
// /@modules/ endpoint for a specifier outside the startup-time set.
func (c *Cache) EnsureBuilt(specifier string) error {
	if c.fsys.Exists(c.ArtifactPath(specifier)) {
		return nil
	}
	return c.build(specifier)
}

// maxConcurrency bounds the parallel fan-out over the direct dependency
// set, per spec.md §5 ("reasonable default: the number of available
// workers").
const maxConcurrency = 8

// buildMissing bundles every dependency in deps that has no artifact yet,
// with bounded parallelism via errgroup.Group.SetLimit. A per-dependency
// build failure is collected rather than propagated: one broken
// dependency must never abort the others' builds (spec.md §4.2 Failure
// contract).
func (c *Cache) buildMissing(deps []string) map[string]error {
	var (
		g        errgroup.Group
		mu       sync.Mutex
		failures = map[string]error{}
	)
	g.SetLimit(maxConcurrency)

	for _, dep := range deps {
		if c.fsys.Exists(c.ArtifactPath(dep)) {
			continue
		}
		specifier := dep
		g.Go(func() error {
			if err := c.build(specifier); err != nil {
				mu.Lock()
				failures[specifier] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == 0 {
		return nil
	}
	return failures
}

// build bundles specifier into its artifact, collapsing concurrent
// requests for the same CacheKey into a single in-flight build.
func (c *Cache) build(specifier string) error {
	key := CacheKey(specifier)
	actual, _ := c.building.LoadOrStore(key, &buildState{})
	state := actual.(*buildState)

	state.once.Do(func() {
		state.err = c.doBuild(specifier)
	})
	return state.err
}

func (c *Cache) doBuild(specifier string) error {
	entry, err := c.resolver.Resolve(c.rootDir, specifier)
	if err != nil {
		return rcerrors.Bundle(specifier, fmt.Errorf("resolving: %w", err))
	}

	out, err := c.gateway.Bundle(transpile.BundleOptions{EntryPath: entry})
	if err != nil {
		return rcerrors.Bundle(specifier, fmt.Errorf("bundling: %w", err))
	}

	if err := c.fsys.WriteFile(c.ArtifactPath(specifier), out, 0o644); err != nil {
		return rcerrors.Bundle(specifier, fmt.Errorf("writing artifact: %w", err))
	}
	return nil
}

func (c *Cache) allArtifactsExist(deps []string) bool {
	for _, dep := range deps {
		if !c.fsys.Exists(c.ArtifactPath(dep)) {
			return false
		}
	}
	return true
}

func (c *Cache) currentHash() string {
	data, err := c.fsys.ReadFile(c.metaPath())
	if err != nil {
		return ""
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return ""
	}
	return meta.Hash
}

func (c *Cache) writeMeta(hash string) error {
	data, err := json.Marshal(Meta{Hash: hash})
	if err != nil {
		return err
	}
	return c.fsys.WriteFile(c.metaPath(), data, 0o644)
}
