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

// Package history computes tree diffs, commit diffs, and ancestry walks
// over objects read from a store.Store.
package history

import (
	"sort"

	"scm-reader.dev/git/githash"
	"scm-reader.dev/git/object"
	"scm-reader.dev/git/store"
)

// ChangeKind classifies a single diff record.
type ChangeKind byte

// Change kinds.
const (
	Modified ChangeKind = '*'
	Added    ChangeKind = '+'
	Removed  ChangeKind = '-'
)

// Change is one entry in a tree or commit diff.
type Change struct {
	Path   string
	Kind   ChangeKind
	OldID  githash.SHA1
	NewID  githash.SHA1
	Commit githash.SHA1
}

// treeReader is the subset of *store.Store that tree comparison needs,
// isolated so tests can supply a fake without building real pack fixtures
// for every case.
type treeReader interface {
	Read(id githash.SHA1) (*store.Object, error)
}

// CompareTrees produces a flat, path-sorted diff between two tree objects.
// Either id may be the zero SHA1, meaning "absent"; comparing two absent
// trees yields no records.
func CompareTrees(r treeReader, oldTreeID, newTreeID githash.SHA1) ([]Change, error) {
	var changes []Change
	if err := compareTrees(r, oldTreeID, newTreeID, "", &changes); err != nil {
		return nil, err
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

func compareTrees(r treeReader, oldID, newID githash.SHA1, prefix string, out *[]Change) error {
	oldTree, err := loadTree(r, oldID)
	if err != nil {
		return err
	}
	newTree, err := loadTree(r, newID)
	if err != nil {
		return err
	}
	oldFiles, oldDirs := partitionTree(oldTree)
	newFiles, newDirs := partitionTree(newTree)

	for name, oldEntry := range oldFiles {
		path := prefix + name
		if newEntry, ok := newFiles[name]; ok {
			if oldEntry.ObjectID != newEntry.ObjectID {
				*out = append(*out, Change{Path: path, Kind: Modified, OldID: oldEntry.ObjectID, NewID: newEntry.ObjectID})
			}
		} else {
			*out = append(*out, Change{Path: path, Kind: Removed, OldID: oldEntry.ObjectID})
		}
	}
	for name, newEntry := range newFiles {
		if _, ok := oldFiles[name]; !ok {
			*out = append(*out, Change{Path: prefix + name, Kind: Added, NewID: newEntry.ObjectID})
		}
	}

	for name, oldEntry := range oldDirs {
		subPrefix := prefix + name + "/"
		if newEntry, ok := newDirs[name]; ok {
			if oldEntry.ObjectID != newEntry.ObjectID {
				if err := compareTrees(r, oldEntry.ObjectID, newEntry.ObjectID, subPrefix, out); err != nil {
					return err
				}
			}
		} else {
			if err := compareTrees(r, oldEntry.ObjectID, githash.SHA1{}, subPrefix, out); err != nil {
				return err
			}
		}
	}
	for name, newEntry := range newDirs {
		if _, ok := oldDirs[name]; !ok {
			subPrefix := prefix + name + "/"
			if err := compareTrees(r, githash.SHA1{}, newEntry.ObjectID, subPrefix, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func partitionTree(t object.Tree) (files, dirs map[string]*object.TreeEntry) {
	files = make(map[string]*object.TreeEntry)
	dirs = make(map[string]*object.TreeEntry)
	for _, ent := range t {
		if ent.Mode.IsDir() {
			dirs[ent.Name] = ent
		} else {
			files[ent.Name] = ent
		}
	}
	return files, dirs
}

func loadTree(r treeReader, id githash.SHA1) (object.Tree, error) {
	if id == (githash.SHA1{}) {
		return nil, nil
	}
	obj, err := r.Read(id)
	if err != nil {
		return nil, err
	}
	if obj.Type != object.TypeTree {
		return nil, nil
	}
	return obj.Tree, nil
}

// CompareCommits compares oldID's tree to newID's tree, stamping every
// resulting record with newID as its Commit.
func CompareCommits(r treeReader, oldID, newID githash.SHA1) ([]Change, error) {
	oldTreeID, err := commitTreeID(r, oldID)
	if err != nil {
		return nil, err
	}
	newTreeID, err := commitTreeID(r, newID)
	if err != nil {
		return nil, err
	}
	changes, err := CompareTrees(r, oldTreeID, newTreeID)
	if err != nil {
		return nil, err
	}
	for i := range changes {
		changes[i].Commit = newID
	}
	return changes, nil
}

// CompareCommitWithPrev is CompareCommits(parent, id), using a null old
// tree when id has no first parent (a root commit).
func CompareCommitWithPrev(r treeReader, id githash.SHA1) ([]Change, error) {
	obj, err := r.Read(id)
	if err != nil {
		return nil, err
	}
	var oldID githash.SHA1
	if len(obj.Commit.Parents) > 0 {
		oldID = obj.Commit.Parents[0]
	}
	return CompareCommits(r, oldID, id)
}

func commitTreeID(r treeReader, id githash.SHA1) (githash.SHA1, error) {
	if id == (githash.SHA1{}) {
		return githash.SHA1{}, nil
	}
	obj, err := r.Read(id)
	if err != nil {
		return githash.SHA1{}, err
	}
	if obj.Type != object.TypeCommit {
		return githash.SHA1{}, nil
	}
	return obj.Commit.Tree, nil
}
