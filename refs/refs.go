// Copyright 2020 The gg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package refs loads branch and tag references from a Git metadata
// directory, combining the packed-refs file with the loose ref trees under
// refs/heads, refs/remotes, and refs/tags.
package refs

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scm-reader.dev/git/githash"
)

// Refs holds the two name-to-id mappings a metadata directory's reference
// state resolves to, plus the current branch name if HEAD points at one.
type Refs struct {
	// Branches maps a local or remote branch name (slash-separated, remote
	// names keeping their "<remote>/" prefix) to a commit id.
	Branches map[string]githash.SHA1
	// Tags maps a tag name to an object id, which may be a commit or an
	// annotated tag object.
	Tags map[string]githash.SHA1
	// Head is the branch name HEAD points at, or "" if HEAD is detached,
	// absent, or unparseable.
	Head string
}

// Load reads packed-refs and the loose ref trees under gitDir and returns
// the combined branch/tag mappings.
//
// Known inherited quirk (preserved faithfully, not corrected): when
// packed-refs exists, its entries under refs/remotes/ are routed into
// Tags and its entries under refs/tags/ are routed into Branches — the
// reverse of what their paths suggest. This mirrors a bug in the source
// this reader is modeled on. Loose refs are routed to the correct mapping
// regardless and are applied after packed entries. A loose branch
// therefore overwrites a packed branch of the same name, but a packed tag
// or remote ref stays in the swapped mapping even when a loose ref of the
// same name exists, because the loose one lands in the other mapping.
func Load(gitDir string) (*Refs, error) {
	const op = "load refs"
	r := &Refs{
		Branches: make(map[string]githash.SHA1),
		Tags:     make(map[string]githash.SHA1),
	}
	if err := loadPackedRefs(filepath.Join(gitDir, "packed-refs"), r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := loadLooseDir(filepath.Join(gitDir, "refs", "heads"), "", r.Branches); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := loadLooseDir(filepath.Join(gitDir, "refs", "remotes"), "", r.Branches); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := loadLooseDir(filepath.Join(gitDir, "refs", "tags"), "", r.Tags); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.Head = loadHead(gitDir)
	return r, nil
}

// loadPackedRefs parses a packed-refs file, if present. Each non-comment,
// non-blank line is "<hex-id> <ref-path>"; lines beginning with '^' carry
// the peeled id of the previous tag line and are ignored here, since this
// reader always re-derives tag targets from the object itself.
func loadPackedRefs(path string, r *Refs) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == '#' || line[0] == '^' {
			continue
		}
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			continue
		}
		id, err := githash.ParseSHA1(line[:sp])
		if err != nil {
			continue
		}
		name := line[sp+1:]
		switch {
		case strings.HasPrefix(name, "refs/heads/"):
			r.Branches[strings.TrimPrefix(name, "refs/heads/")] = id
		case strings.HasPrefix(name, "refs/remotes/"):
			// Inherited quirk: remote heads land in Tags, not Branches.
			r.Tags[strings.TrimPrefix(name, "refs/remotes/")] = id
		case strings.HasPrefix(name, "refs/tags/"):
			// Inherited quirk: tags land in Branches, not Tags.
			r.Branches[strings.TrimPrefix(name, "refs/tags/")] = id
		}
	}
	return sc.Err()
}

// loadLooseDir walks dir recursively and installs one entry per regular
// file found, keyed by the path relative to dir with separators
// normalized to '/'. A file literally named HEAD at any level is skipped
// (this matters for refs/remotes/<remote>/HEAD, the remote's default
// branch pointer, which is not itself a branch).
func loadLooseDir(dir, prefix string, dst map[string]githash.SHA1) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, ent := range entries {
		name := ent.Name()
		relName := name
		if prefix != "" {
			relName = prefix + "/" + name
		}
		if ent.IsDir() {
			if err := loadLooseDir(filepath.Join(dir, name), relName, dst); err != nil {
				return err
			}
			continue
		}
		if name == "HEAD" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		id, err := githash.ParseSHA1(string(bytes.TrimSpace(data)))
		if err != nil {
			// Not a direct id: could be a symbolic ref ("ref: ..."); this
			// reader does not follow indirection for loose branch/tag
			// files, matching gittool.py's plain-hex assumption.
			continue
		}
		dst[relName] = id
	}
	return nil
}

// loadHead reads the top-level HEAD file and extracts the branch name it
// points at, returning "" if HEAD is absent, detached, or malformed. This
// is an additive convenience with no original_source precedent (SPEC_FULL
// §12): gittool.py has no head() method or equivalent.
func loadHead(gitDir string) string {
	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return ""
	}
	line := strings.TrimSpace(string(data))
	const symPrefix = "ref: refs/heads/"
	if !strings.HasPrefix(line, symPrefix) {
		return ""
	}
	return strings.TrimPrefix(line, symPrefix)
}

// Resolve looks up name first in branches, then tags, per the lookup order
// spec's history operations use to turn a ref name into a starting commit.
func (r *Refs) Resolve(name string) (githash.SHA1, bool) {
	if id, ok := r.Branches[name]; ok {
		return id, true
	}
	if id, ok := r.Tags[name]; ok {
		return id, true
	}
	return githash.SHA1{}, false
}
