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

package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"scm-reader.dev/git/githash"
	"scm-reader.dev/git/packfile"
)

// location describes where an object's bytes live.
type location struct {
	loose bool
	// pack is the index into Store.packs, valid when !loose.
	pack int
	// offset is the byte offset of the object's header within the pack's
	// data file, valid when !loose.
	offset int64
}

// pack holds one packfile's index plus an open, seekable handle onto its
// data file.
type pack struct {
	idx  *packfile.Index
	file *os.File
	r    *packfile.BufferedReadSeeker
}

// buildIDTable scans the repository's objects directory for loose objects
// and pack indexes and returns the merged location table plus the opened
// packs. Per the known inherited behavior this module preserves (spec
// §4.3), loose entries are installed after packed entries so that an
// object present in both wins as loose — this keeps repositories readable
// mid-repack, where a loose copy of an object may coexist with a stale
// packed copy.
func buildIDTable(objectsDir string) (map[githash.SHA1]location, []*pack, error) {
	const op = "load object database"
	locations := make(map[githash.SHA1]location)
	packs, err := loadPacks(filepath.Join(objectsDir, "pack"))
	if err != nil {
		return nil, nil, err
	}
	for pi, p := range packs {
		for i, id := range p.idx.ObjectIDs {
			locations[id] = location{pack: pi, offset: p.idx.Offsets[i]}
		}
	}
	if err := scanLooseObjects(objectsDir, locations); err != nil {
		closePacks(packs)
		return nil, nil, wrapErrorf(op, IO, err)
	}
	return locations, packs, nil
}

func loadPacks(packDir string) ([]*pack, error) {
	const op = "load pack indexes"
	entries, err := os.ReadDir(packDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErrorf(op, IO, err)
	}
	var packs []*pack
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, ".idx") {
			continue
		}
		base := strings.TrimSuffix(name, ".idx")
		idxFile, err := os.Open(filepath.Join(packDir, name))
		if err != nil {
			closePacks(packs)
			return nil, wrapErrorf(op, IO, err)
		}
		idx, err := packfile.ReadIndex(idxFile)
		idxFile.Close()
		if err != nil {
			closePacks(packs)
			return nil, &Error{Op: op, Kind: BadIndex, Err: err}
		}
		dataFile, err := os.Open(filepath.Join(packDir, base+".pack"))
		if err != nil {
			closePacks(packs)
			return nil, wrapErrorf(op, IO, err)
		}
		packs = append(packs, &pack{
			idx:  idx,
			file: dataFile,
			r:    packfile.NewBufferedReadSeeker(dataFile),
		})
	}
	// Sort for deterministic enumeration order (spec §4.9 visits packs "in
	// order"); directory read order is not guaranteed to be stable across
	// filesystems.
	sort.Slice(packs, func(i, j int) bool {
		return packs[i].file.Name() < packs[j].file.Name()
	})
	return packs, nil
}

func closePacks(packs []*pack) {
	for _, p := range packs {
		p.file.Close()
	}
}

// scanLooseObjects walks objectsDir's two-hex-digit shard directories and
// installs a loose location entry for every file found, overwriting any
// packed entry for the same id.
func scanLooseObjects(objectsDir string, locations map[githash.SHA1]location) error {
	shards, err := os.ReadDir(objectsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, shard := range shards {
		name := shard.Name()
		if !shard.IsDir() || len(name) != 2 || name == "pack" || name == "info" {
			continue
		}
		if !isHex(name) {
			continue
		}
		files, err := os.ReadDir(filepath.Join(objectsDir, name))
		if err != nil {
			return err
		}
		for _, f := range files {
			rest := f.Name()
			if f.IsDir() || len(rest) != githash.SHA1Size*2-2 || !isHex(rest) {
				continue
			}
			id, err := githash.ParseSHA1(name + rest)
			if err != nil {
				continue
			}
			locations[id] = location{loose: true}
		}
	}
	return nil
}

func isHex(s string) bool {
	for _, c := range s {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
