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
	"scm-reader.dev/git/githash"
	"scm-reader.dev/git/object"
)

// Object is a decoded Git object: exactly one of Commit, Tree, Tag, or Blob
// is populated, selected by Type. Objects are immutable after construction
// and may be freely shared; the read cache relies on this.
type Object struct {
	ID   githash.SHA1
	Type object.Type

	Commit *object.Commit
	Tree   object.Tree
	Tag    *object.Tag
	Blob   []byte
}

func decodeObject(id githash.SHA1, typ object.Type, raw []byte) (*Object, error) {
	const op = "decode object"
	obj := &Object{ID: id, Type: typ}
	switch typ {
	case object.TypeCommit:
		c, err := object.ParseCommit(raw)
		if err != nil {
			return nil, &Error{Op: op, Kind: Malformed, Err: err}
		}
		obj.Commit = c
	case object.TypeTree:
		t, err := object.ParseTree(raw)
		if err != nil {
			return nil, &Error{Op: op, Kind: Malformed, Err: err}
		}
		obj.Tree = t
	case object.TypeTag:
		t, err := object.ParseTag(raw)
		if err != nil {
			return nil, &Error{Op: op, Kind: Malformed, Err: err}
		}
		obj.Tag = t
	case object.TypeBlob:
		obj.Blob = raw
	default:
		return nil, kindErrorf(op, Malformed, "unknown object type %q", typ)
	}
	return obj, nil
}
