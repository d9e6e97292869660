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

package refs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"scm-reader.dev/git/githash"
)

func hashLiteral(t *testing.T, s string) githash.SHA1 {
	t.Helper()
	id, err := githash.ParseSHA1(s)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o666); err != nil {
		t.Fatal(err)
	}
}

func TestLoadLooseOnly(t *testing.T) {
	dir := t.TempDir()
	id1 := "1111111111111111111111111111111111111111"
	id2 := "2222222222222222222222222222222222222222"
	writeFile(t, filepath.Join(dir, "refs", "heads", "master"), id1+"\n")
	writeFile(t, filepath.Join(dir, "refs", "tags", "v1.0.0"), id2+"\n")
	writeFile(t, filepath.Join(dir, "refs", "remotes", "origin", "HEAD"), "ref: refs/remotes/origin/master\n")

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]githash.SHA1{"master": hashLiteral(t, id1)}
	if diff := cmp.Diff(want, got.Branches); diff != "" {
		t.Errorf("Branches (-want +got):\n%s", diff)
	}
	wantTags := map[string]githash.SHA1{"v1.0.0": hashLiteral(t, id2)}
	if diff := cmp.Diff(wantTags, got.Tags); diff != "" {
		t.Errorf("Tags (-want +got):\n%s", diff)
	}
}

func TestLoadPackedRefsSwapQuirk(t *testing.T) {
	dir := t.TempDir()
	idBranch := "1111111111111111111111111111111111111111"
	idTag := "2222222222222222222222222222222222222222"
	idRemote := "3333333333333333333333333333333333333333"
	packed := "# pack-refs with: peeled fully-peeled sorted\n" +
		idTag + " refs/tags/v1.0.0\n" +
		idRemote + " refs/remotes/origin/master\n"
	writeFile(t, filepath.Join(dir, "packed-refs"), packed)
	writeFile(t, filepath.Join(dir, "refs", "heads", "master"), idBranch+"\n")

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	// The packed-refs tag entry is routed into Branches and the packed
	// remote entry into Tags, reproducing the inherited swap; the loose
	// heads/master entry still wins its own name.
	wantBranches := map[string]githash.SHA1{
		"master":  hashLiteral(t, idBranch),
		"v1.0.0":  hashLiteral(t, idTag),
	}
	if diff := cmp.Diff(wantBranches, got.Branches); diff != "" {
		t.Errorf("Branches (-want +got):\n%s", diff)
	}
	wantTags := map[string]githash.SHA1{"origin/master": hashLiteral(t, idRemote)}
	if diff := cmp.Diff(wantTags, got.Tags); diff != "" {
		t.Errorf("Tags (-want +got):\n%s", diff)
	}
}

func TestLooseWinsOverPacked(t *testing.T) {
	dir := t.TempDir()
	idPacked := "1111111111111111111111111111111111111111"
	idLoose := "2222222222222222222222222222222222222222"
	writeFile(t, filepath.Join(dir, "packed-refs"), idPacked+" refs/heads/master\n")
	writeFile(t, filepath.Join(dir, "refs", "heads", "master"), idLoose+"\n")

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := hashLiteral(t, idLoose)
	if got.Branches["master"] != want {
		t.Errorf("Branches[master] = %v, want %v", got.Branches["master"], want)
	}
}

func TestLoadHead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "HEAD"), "ref: refs/heads/develop\n")

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Head != "develop" {
		t.Errorf("Head = %q, want %q", got.Head, "develop")
	}
}

func TestResolve(t *testing.T) {
	r := &Refs{
		Branches: map[string]githash.SHA1{"master": hashLiteral(t, "1111111111111111111111111111111111111111")},
		Tags:     map[string]githash.SHA1{"v1.0.0": hashLiteral(t, "2222222222222222222222222222222222222222")},
	}
	if id, ok := r.Resolve("master"); !ok || id != r.Branches["master"] {
		t.Errorf("Resolve(master) = %v, %v", id, ok)
	}
	if id, ok := r.Resolve("v1.0.0"); !ok || id != r.Tags["v1.0.0"] {
		t.Errorf("Resolve(v1.0.0) = %v, %v", id, ok)
	}
	if _, ok := r.Resolve("nope"); ok {
		t.Error("Resolve(nope) = ok, want !ok")
	}
}
