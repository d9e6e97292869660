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
	"testing"

	"scm-reader.dev/git/githash"
	"scm-reader.dev/git/object"
)

func idN(n byte) githash.SHA1 {
	var id githash.SHA1
	id[len(id)-1] = n
	return id
}

func TestObjectCacheGetMiss(t *testing.T) {
	c := newObjectCache(2)
	if _, ok := c.get(idN(1)); ok {
		t.Error("get on empty cache returned ok = true")
	}
}

func TestObjectCacheRoundTrip(t *testing.T) {
	c := newObjectCache(2)
	obj := &Object{ID: idN(1), Type: object.TypeBlob, Blob: []byte("hello")}
	c.add(idN(1), obj)
	got, ok := c.get(idN(1))
	if !ok || got != obj {
		t.Errorf("get(1) = %v, %v, want %v, true", got, ok, obj)
	}
}

func TestObjectCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newObjectCache(2)
	obj1 := &Object{ID: idN(1)}
	obj2 := &Object{ID: idN(2)}
	obj3 := &Object{ID: idN(3)}
	c.add(idN(1), obj1)
	c.add(idN(2), obj2)
	// Touch 1 so 2 becomes the least recently used entry.
	c.get(idN(1))
	c.add(idN(3), obj3)

	if _, ok := c.get(idN(2)); ok {
		t.Error("entry 2 survived eviction, want evicted")
	}
	if got, ok := c.get(idN(1)); !ok || got != obj1 {
		t.Errorf("get(1) = %v, %v, want %v, true", got, ok, obj1)
	}
	if got, ok := c.get(idN(3)); !ok || got != obj3 {
		t.Errorf("get(3) = %v, %v, want %v, true", got, ok, obj3)
	}
}

func TestObjectCacheNoCollisionOnTruncatedKeys(t *testing.T) {
	c := newObjectCache(10)
	a := githash.SHA1{}
	a[0] = 0xAA
	b := githash.SHA1{}
	b[19] = 0xBB
	objA := &Object{ID: a}
	objB := &Object{ID: b}
	c.add(a, objA)
	c.add(b, objB)
	if got, ok := c.get(a); !ok || got != objA {
		t.Errorf("get(a) = %v, %v, want %v, true", got, ok, objA)
	}
	if got, ok := c.get(b); !ok || got != objB {
		t.Errorf("get(b) = %v, %v, want %v, true", got, ok, objB)
	}
}
