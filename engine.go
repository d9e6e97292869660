// Copyright 2020 The gg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package git is a read-only reader for a Git repository's on-disk object
database: loose objects, packfiles, delta chains, references, and commit
history, without shelling out to git or touching the working tree.
*/
package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scm-reader.dev/git/githash"
	"scm-reader.dev/git/history"
	"scm-reader.dev/git/object"
	"scm-reader.dev/git/refs"
	"scm-reader.dev/git/store"
)

// Engine is a read-only view onto a single repository's object database.
// It is single-threaded cooperative: callers needing concurrent access
// should use one Engine per goroutine, per the shared per-pack file handle
// and read cache it owns.
type Engine struct {
	store *store.Store
	refs  *refs.Refs
}

// Open resolves gitDir to a repository metadata directory — following a
// `.git` file's `gitdir: <path>` indirection if gitDir names a working
// copy root instead of the metadata directory itself — and loads its
// object id table and references.
func Open(gitDir string) (*Engine, error) {
	const errPrefix = "open git repository"
	resolved, err := resolveGitDir(gitDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errPrefix, err)
	}
	st, err := store.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errPrefix, err)
	}
	r, err := refs.Load(resolved)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("%s: %w", errPrefix, err)
	}
	return &Engine{store: st, refs: r}, nil
}

// resolveGitDir follows a `.git` file's `gitdir: <path>` indirection
// (worktree/submodule style), returning dir unchanged if it has no `.git`
// file or if that entry is already a directory.
func resolveGitDir(dir string) (string, error) {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if os.IsNotExist(err) {
		return dir, nil
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return filepath.Join(dir, ".git"), nil
	}
	data, err := os.ReadFile(filepath.Join(dir, ".git"))
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(data))
	const prefix = "gitdir: "
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("malformed .git file")
	}
	target := strings.TrimPrefix(line, prefix)
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return target, nil
}

// Close releases the Engine's open pack file handles.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Read resolves id to its decoded object.
func (e *Engine) Read(id githash.SHA1) (*store.Object, error) {
	return e.store.Read(id)
}

// Branches returns the name-to-commit mapping loaded at Open.
func (e *Engine) Branches() map[string]githash.SHA1 {
	return e.refs.Branches
}

// Tags returns the name-to-object mapping loaded at Open.
func (e *Engine) Tags() map[string]githash.SHA1 {
	return e.refs.Tags
}

// Head returns the branch name the repository's HEAD points at, or "" if
// detached or unresolved.
func (e *Engine) Head() string {
	return e.refs.Head
}

// resolveRef looks up name as a branch then a tag, peeling one level
// through an annotated tag object to its target. This peel has no
// original-source precedent: original_source/gittool.py's list_commits
// calls .parent directly on whatever readobj returns and crashes when
// that names an annotated tag object, which has no .parent attribute.
// This is this module's own fix for that latent defect (SPEC_FULL §12),
// not a port of original behavior.
func (e *Engine) resolveRef(name string) (githash.SHA1, error) {
	const errPrefix = "resolve ref"
	id, ok := e.refs.Resolve(name)
	if !ok {
		return githash.SHA1{}, fmt.Errorf("%s %q: %w", errPrefix, name, &store.Error{Op: errPrefix, Kind: store.NotFound})
	}
	obj, err := e.store.Read(id)
	if err != nil {
		return githash.SHA1{}, err
	}
	if obj.Type == object.TypeTag {
		return obj.Tag.ObjectID, nil
	}
	return id, nil
}

// ListCommits resolves branch (consulting branches then tags) and follows
// its first-parent chain. If base is non-empty, it is resolved the same
// way and walked first to build a stop set. See history.ListCommits for
// walk semantics.
func (e *Engine) ListCommits(branch, base string) ([]history.CommitEntry, error) {
	tipID, err := e.resolveRef(branch)
	if err != nil {
		return nil, nil
	}
	var baseID githash.SHA1
	if base != "" {
		baseID, err = e.resolveRef(base)
		if err != nil {
			baseID = githash.SHA1{}
		}
	}
	return history.ListCommits(e.store, tipID, baseID)
}

// ListFileHistory walks ancestry from tip (a branch or tag name) resolving
// path within each commit's tree. See history.ListFileHistory.
func (e *Engine) ListFileHistory(tip, path string) ([]history.Change, error) {
	tipID, err := e.resolveRef(tip)
	if err != nil {
		return nil, nil
	}
	return history.ListFileHistory(e.store, tipID, path)
}

// CompareTrees diffs two tree objects. Either id may be the zero SHA1.
func (e *Engine) CompareTrees(oldTreeID, newTreeID githash.SHA1) ([]history.Change, error) {
	return history.CompareTrees(e.store, oldTreeID, newTreeID)
}

// CompareCommits diffs oldID's tree against newID's tree.
func (e *Engine) CompareCommits(oldID, newID githash.SHA1) ([]history.Change, error) {
	return history.CompareCommits(e.store, oldID, newID)
}

// CompareCommitWithPrev diffs id's first parent's tree against id's tree.
func (e *Engine) CompareCommitWithPrev(id githash.SHA1) ([]history.Change, error) {
	return history.CompareCommitWithPrev(e.store, id)
}

// IterCommitObjects returns every commit object id in the repository,
// packed objects first (each pack visited in enumeration order, entries
// sorted by ascending offset to favor sequential I/O), then loose objects.
func (e *Engine) IterCommitObjects() ([]githash.SHA1, error) {
	return e.store.CommitIDs()
}
