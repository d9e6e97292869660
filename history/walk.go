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

package history

import (
	"strings"

	"scm-reader.dev/git/githash"
	"scm-reader.dev/git/object"
)

// CommitEntry is one commit surfaced by ListCommits, carrying its position
// in the walk.
type CommitEntry struct {
	ID     githash.SHA1
	Commit *object.Commit
	Index  int
}

// ListCommits follows tip's first-parent chain, stopping when a parent is
// absent or appears in the stop set built from base (if base is non-zero).
// Merge parents are never traversed. The returned slice is ordered
// newest-first with ascending 0-based sequence indices, matching a single
// finite pass over the chain; callers wanting to re-walk call this again.
func ListCommits(r treeReader, tip, base githash.SHA1) ([]CommitEntry, error) {
	stop := make(map[githash.SHA1]bool)
	if base != (githash.SHA1{}) {
		baseChain, err := firstParentChain(r, base)
		if err != nil {
			return nil, err
		}
		for _, id := range baseChain {
			stop[id] = true
		}
	}
	chain, err := firstParentChainStoppingAt(r, tip, stop)
	if err != nil {
		return nil, err
	}
	entries := make([]CommitEntry, len(chain))
	for i, c := range chain {
		entries[i] = CommitEntry{ID: c.id, Commit: c.commit, Index: i}
	}
	return entries, nil
}

type idCommit struct {
	id     githash.SHA1
	commit *object.Commit
}

// firstParentChain returns every commit reachable via first-parent from
// id, including id itself, with no stop set.
func firstParentChain(r treeReader, id githash.SHA1) ([]githash.SHA1, error) {
	commits, err := firstParentChainStoppingAt(r, id, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]githash.SHA1, len(commits))
	for i, c := range commits {
		ids[i] = c.id
	}
	return ids, nil
}

func firstParentChainStoppingAt(r treeReader, tip githash.SHA1, stop map[githash.SHA1]bool) ([]idCommit, error) {
	var chain []idCommit
	cur := tip
	for cur != (githash.SHA1{}) {
		if stop[cur] {
			break
		}
		obj, err := r.Read(cur)
		if err != nil {
			return nil, err
		}
		if obj.Type != object.TypeCommit {
			break
		}
		chain = append(chain, idCommit{id: cur, commit: obj.Commit})
		if len(obj.Commit.Parents) == 0 {
			break
		}
		next := obj.Commit.Parents[0]
		if stop[next] {
			break
		}
		cur = next
	}
	return chain, nil
}

// FileRevision is one entry in ListFileHistory's result: the commit that
// introduced or changed the file, and the file's blob id at that commit.
type FileRevision struct {
	Commit githash.SHA1
	FileID githash.SHA1
}

// ListFileHistory walks ancestry from tip along first parents, resolving
// path inside each commit's tree, and collapses consecutive commits whose
// file id is identical into a single revision keyed by the older (later
// in the walk) commit. It returns change records: the oldest surviving
// revision is an add (null -> file id); every later one is a modify
// (previous file id -> this one). The walk stops as soon as path is
// absent from a commit's tree.
func ListFileHistory(r treeReader, tip githash.SHA1, path string) ([]Change, error) {
	parts := strings.Split(path, "/")
	var revisions []FileRevision
	cur := tip
	var lastID githash.SHA1
	haveLast := false
	for cur != (githash.SHA1{}) {
		obj, err := r.Read(cur)
		if err != nil {
			return nil, err
		}
		if obj.Type != object.TypeCommit {
			break
		}
		fileID, ok, err := resolvePath(r, obj.Commit.Tree, parts)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if !haveLast || fileID != lastID {
			revisions = append(revisions, FileRevision{Commit: cur, FileID: fileID})
			lastID = fileID
			haveLast = true
		} else {
			// Same file id as the previous (newer) revision: this commit
			// is superseded as the "introducing" commit; replace.
			revisions[len(revisions)-1].Commit = cur
		}
		if len(obj.Commit.Parents) == 0 {
			break
		}
		cur = obj.Commit.Parents[0]
	}
	if len(revisions) == 0 {
		return nil, nil
	}
	changes := make([]Change, len(revisions))
	n := len(revisions)
	changes[n-1] = Change{Path: path, Kind: Added, NewID: revisions[n-1].FileID, Commit: revisions[n-1].Commit}
	for i := n - 2; i >= 0; i-- {
		changes[i] = Change{
			Path:   path,
			Kind:   Modified,
			OldID:  revisions[i+1].FileID,
			NewID:  revisions[i].FileID,
			Commit: revisions[i].Commit,
		}
	}
	return changes, nil
}

// resolvePath descends tree rootID through parts, returning the final
// entry's object id. ok is false if any component is absent.
func resolvePath(r treeReader, rootID githash.SHA1, parts []string) (githash.SHA1, bool, error) {
	id := rootID
	for i, name := range parts {
		tree, err := loadTree(r, id)
		if err != nil {
			return githash.SHA1{}, false, err
		}
		var found *object.TreeEntry
		for _, ent := range tree {
			if ent.Name == name {
				found = ent
				break
			}
		}
		if found == nil {
			return githash.SHA1{}, false, nil
		}
		if i == len(parts)-1 {
			return found.ObjectID, true, nil
		}
		if !found.Mode.IsDir() {
			return githash.SHA1{}, false, nil
		}
		id = found.ObjectID
	}
	return githash.SHA1{}, false, nil
}
