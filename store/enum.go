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
	"sort"

	"scm-reader.dev/git/githash"
	"scm-reader.dev/git/object"
)

// CommitIDs returns the id of every commit object in the repository. It
// visits packs in the order they were opened (buildIDTable sorts pack
// files by name for determinism), sorting each pack's entries by
// ascending offset to favor sequential I/O during any delta resolution
// ProbeType triggers, then visits loose objects. The result is a finite
// snapshot of the id table built at Open time, not a live view.
func (s *Store) CommitIDs() ([]githash.SHA1, error) {
	const op = "enumerate commit objects"
	var commits []githash.SHA1
	for _, p := range s.packs {
		type entry struct {
			id     githash.SHA1
			offset int64
		}
		entries := make([]entry, len(p.idx.ObjectIDs))
		for i, id := range p.idx.ObjectIDs {
			entries[i] = entry{id: id, offset: p.idx.Offsets[i]}
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].offset < entries[j].offset })
		for _, e := range entries {
			typ, err := s.ProbeType(e.id)
			if err != nil {
				return nil, wrapErrorf(op, Malformed, err)
			}
			if typ == object.TypeCommit {
				commits = append(commits, e.id)
			}
		}
	}
	var looseIDs []githash.SHA1
	for id, loc := range s.locations {
		if loc.loose {
			looseIDs = append(looseIDs, id)
		}
	}
	sort.Slice(looseIDs, func(i, j int) bool { return looseIDs[i].String() < looseIDs[j].String() })
	for _, id := range looseIDs {
		typ, err := s.probeLooseType(id)
		if err != nil {
			return nil, wrapErrorf(op, Malformed, err)
		}
		if typ == object.TypeCommit {
			commits = append(commits, id)
		}
	}
	return commits, nil
}
