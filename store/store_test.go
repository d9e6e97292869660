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
	"bytes"
	"crypto/sha1"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"

	"scm-reader.dev/git/githash"
	"scm-reader.dev/git/object"
)

// writeLooseObject compresses and writes a single loose object file under
// objectsDir, returning its id, matching the on-disk layout readLoose
// expects: objects/<2-hex>/<38-hex> containing zlib("<type> <len>\x00" +
// payload).
func writeLooseObject(t *testing.T, objectsDir string, typ object.Type, payload []byte) githash.SHA1 {
	t.Helper()
	raw := object.AppendPrefix(nil, typ, int64(len(payload)))
	raw = append(raw, payload...)
	sum := sha1.Sum(raw)
	var id githash.SHA1
	copy(id[:], sum[:])
	hex := id.String()
	dir := filepath.Join(objectsDir, hex[:2])
	if err := os.MkdirAll(dir, 0o777); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, hex[2:]), buf.Bytes(), 0o666); err != nil {
		t.Fatal(err)
	}
	return id
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	gitDir := t.TempDir()
	objectsDir := filepath.Join(gitDir, "objects")
	if err := os.MkdirAll(objectsDir, 0o777); err != nil {
		t.Fatal(err)
	}
	s, err := Open(gitDir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, objectsDir
}

func TestReadLooseBlobRoundTrip(t *testing.T) {
	gitDir := t.TempDir()
	objectsDir := filepath.Join(gitDir, "objects")
	id := writeLooseObject(t, objectsDir, object.TypeBlob, []byte("hello world"))

	s, err := Open(gitDir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	obj, err := s.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if obj.Type != object.TypeBlob {
		t.Errorf("Type = %q, want blob", obj.Type)
	}
	if string(obj.Blob) != "hello world" {
		t.Errorf("Blob = %q, want %q", obj.Blob, "hello world")
	}
}

func TestReadLooseBlobIsCached(t *testing.T) {
	gitDir := t.TempDir()
	objectsDir := filepath.Join(gitDir, "objects")
	id := writeLooseObject(t, objectsDir, object.TypeBlob, []byte("cached"))

	s, err := Open(gitDir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	obj1, err := s.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	obj2, err := s.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if obj1 != obj2 {
		t.Error("Read did not return the cached *Object on the second call")
	}
}

func TestReadNotFound(t *testing.T) {
	s, _ := openTestStore(t)
	var missing githash.SHA1
	missing[0] = 0xAB
	_, err := s.Read(missing)
	if err == nil {
		t.Fatal("Read of missing object returned nil error")
	}
	var storeErr *Error
	if !asError(err, &storeErr) {
		t.Fatalf("error is not *Error: %v", err)
	}
	if storeErr.Kind != NotFound {
		t.Errorf("Kind = %v, want NotFound", storeErr.Kind)
	}
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func TestProbeTypeLoose(t *testing.T) {
	gitDir := t.TempDir()
	objectsDir := filepath.Join(gitDir, "objects")
	id := writeLooseObject(t, objectsDir, object.TypeTree, nil)

	s, err := Open(gitDir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	typ, err := s.ProbeType(id)
	if err != nil {
		t.Fatal(err)
	}
	if typ != object.TypeTree {
		t.Errorf("ProbeType = %q, want tree", typ)
	}
}
