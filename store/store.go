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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"scm-reader.dev/git/githash"
	"scm-reader.dev/git/object"
	"scm-reader.dev/git/packfile"
)

// Store resolves object ids to decoded objects, across the loose-object
// tree and any number of packfiles, including chained delta reconstruction.
// A Store owns file handles for every pack it opened and must be closed
// when the caller is done with it.
//
// Store is not safe for concurrent use: it holds per-pack seek position
// indirectly through shared *os.File handles and mutates its own read
// cache. Callers that need concurrency should use one Store per goroutine.
type Store struct {
	objectsDir string
	locations  map[githash.SHA1]location
	packs      []*pack
	cache      *objectCache
}

// Open scans the object database rooted at gitDir/objects (gitDir is the
// repository metadata directory, i.e. what is usually named ".git") and
// returns a Store ready to serve reads.
func Open(gitDir string) (*Store, error) {
	objectsDir := filepath.Join(gitDir, "objects")
	locations, packs, err := buildIDTable(objectsDir)
	if err != nil {
		return nil, err
	}
	return &Store{
		objectsDir: objectsDir,
		locations:  locations,
		packs:      packs,
		cache:      newObjectCache(defaultCacheSize),
	}, nil
}

// Close releases every pack file handle the Store opened. The Store must
// not be used afterward.
func (s *Store) Close() error {
	var firstErr error
	for _, p := range s.packs {
		if err := p.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Has reports whether id is present in the id table.
func (s *Store) Has(id githash.SHA1) bool {
	_, ok := s.locations[id]
	return ok
}

// Read resolves id to its decoded object, using loose or packed storage and
// reconstructing any delta chain along the way. Results are cached; repeated
// calls with the same id return the same *Object.
func (s *Store) Read(id githash.SHA1) (*Object, error) {
	if obj, ok := s.cache.get(id); ok {
		return obj, nil
	}
	typ, raw, err := s.readRaw(id)
	if err != nil {
		return nil, err
	}
	obj, err := decodeObject(id, typ, raw)
	if err != nil {
		return nil, err
	}
	s.cache.add(id, obj)
	return obj, nil
}

// readRaw locates and fully materializes the object named by id, resolving
// any delta chain, without consulting or populating the decoded-object
// cache.
func (s *Store) readRaw(id githash.SHA1) (object.Type, []byte, error) {
	const op = "read object"
	loc, ok := s.locations[id]
	if !ok {
		return "", nil, kindErrorf(op, NotFound, "object %v not found", id)
	}
	if loc.loose {
		return s.readLoose(id)
	}
	return s.readPacked(s.packs[loc.pack], loc.offset)
}

// readPacked fully materializes the object at offset in p, following
// OffsetDelta backrefs within p and RefDelta backrefs via the full Store
// lookup (which may land in a different pack or in the loose tree). This
// mirrors gittool.py's readpackerobj/readobj recursion (original_source).
func (s *Store) readPacked(p *pack, offset int64) (object.Type, []byte, error) {
	const op = "read packed object"
	hdr, payload, err := packfile.ReadObjectAt(p.r, offset)
	if err != nil {
		return "", nil, wrapErrorf(op, Malformed, err)
	}
	switch hdr.Type {
	case packfile.Commit, packfile.Tree, packfile.Blob, packfile.Tag:
		return hdr.Type.NonDelta(), payload, nil
	case packfile.OffsetDelta:
		baseType, baseRaw, err := s.readPacked(p, hdr.BaseOffset)
		if err != nil {
			return "", nil, err
		}
		result, err := applyDelta(baseRaw, payload)
		if err != nil {
			return "", nil, wrapErrorf(op, Malformed, err)
		}
		return baseType, result, nil
	case packfile.RefDelta:
		baseType, baseRaw, err := s.readRaw(hdr.BaseObject)
		if err != nil {
			return "", nil, err
		}
		result, err := applyDelta(baseRaw, payload)
		if err != nil {
			return "", nil, wrapErrorf(op, Malformed, err)
		}
		return baseType, result, nil
	default:
		return "", nil, kindErrorf(op, Malformed, "unrecognized object type %v", hdr.Type)
	}
}

// applyDelta reconstructs a payload from a base object and a delta
// instruction stream, per spec §4.5's delta-application rules.
func applyDelta(base, delta []byte) ([]byte, error) {
	dr := packfile.NewDeltaReader(bytes.NewReader(base), bytes.NewReader(delta))
	size, err := dr.Size()
	if err != nil {
		return nil, fmt.Errorf("apply delta: %w", err)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(dr, buf); err != nil {
		return nil, fmt.Errorf("apply delta: %w", err)
	}
	return buf, nil
}

// readLoose decompresses a loose object file and splits its
// "<type> <len>\x00" prefix from the payload, per spec §4.2 and §4.5.
func (s *Store) readLoose(id githash.SHA1) (object.Type, []byte, error) {
	const op = "read loose object"
	hexID := id.String()
	f, err := os.Open(filepath.Join(s.objectsDir, hexID[:2], hexID[2:]))
	if err != nil {
		return "", nil, wrapErrorf(op, IO, err)
	}
	defer f.Close()
	zr, err := newZlibReader(f)
	if err != nil {
		return "", nil, wrapErrorf(op, Malformed, err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, wrapErrorf(op, Malformed, err)
	}
	var prefix object.Prefix
	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return "", nil, kindErrorf(op, Malformed, "missing NUL after header")
	}
	if err := prefix.UnmarshalBinary(raw[:nul+1]); err != nil {
		return "", nil, wrapErrorf(op, Malformed, err)
	}
	payload := raw[nul+1:]
	if int64(len(payload)) != prefix.Size {
		return "", nil, kindErrorf(op, Malformed, "declared size %d does not match payload length %d", prefix.Size, len(payload))
	}
	return prefix.Type, payload, nil
}

// ProbeType answers "what type is this object" without materializing its
// payload or touching the decoded-object cache. For loose objects it
// decompresses only as many bytes as needed to read the leading type word.
// For packed objects it walks typed headers only (no inflation), recursing
// into a full ProbeType for RefDelta bases, which may be loose or in
// another pack.
func (s *Store) ProbeType(id githash.SHA1) (object.Type, error) {
	const op = "probe object type"
	loc, ok := s.locations[id]
	if !ok {
		return "", kindErrorf(op, NotFound, "object %v not found", id)
	}
	if loc.loose {
		return s.probeLooseType(id)
	}
	return s.probePackedType(s.packs[loc.pack], loc.offset)
}

func (s *Store) probePackedType(p *pack, offset int64) (object.Type, error) {
	const op = "probe packed object type"
	for {
		hdr, err := packfile.PeekHeaderAt(p.r, offset)
		if err != nil {
			return "", wrapErrorf(op, Malformed, err)
		}
		switch hdr.Type {
		case packfile.Commit, packfile.Tree, packfile.Blob, packfile.Tag:
			return hdr.Type.NonDelta(), nil
		case packfile.OffsetDelta:
			offset = hdr.BaseOffset
		case packfile.RefDelta:
			return s.ProbeType(hdr.BaseObject)
		default:
			return "", kindErrorf(op, Malformed, "unrecognized object type %v", hdr.Type)
		}
	}
}

func (s *Store) probeLooseType(id githash.SHA1) (object.Type, error) {
	const op = "probe loose object type"
	hexID := id.String()
	f, err := os.Open(filepath.Join(s.objectsDir, hexID[:2], hexID[2:]))
	if err != nil {
		return "", wrapErrorf(op, IO, err)
	}
	defer f.Close()
	zr, err := newZlibReader(f)
	if err != nil {
		return "", wrapErrorf(op, Malformed, err)
	}
	defer zr.Close()
	br := bufio.NewReader(zr)
	word, err := br.ReadString(' ')
	if err != nil {
		return "", kindErrorf(op, Malformed, "read type word: %v", err)
	}
	typ := object.Type(word[:len(word)-1])
	if !typ.IsValid() {
		return "", kindErrorf(op, Malformed, "unknown object type %q", typ)
	}
	return typ, nil
}
