// Copyright 2020 The gg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command gitread inspects a Git repository's object database read-only,
// without shelling out to git.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	git "scm-reader.dev/git"
	"scm-reader.dev/git/githash"
)

var gitDir = flag.String("gitdir", ".", "path to the repository or its metadata directory")

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	eng, err := git.Open(*gitDir)
	if err != nil {
		log.Fatalf("gitread: %v", err)
	}
	defer eng.Close()

	switch args[0] {
	case "log":
		branch := "master"
		if len(args) > 1 {
			branch = args[1]
		}
		if err := runLog(eng, branch); err != nil {
			log.Fatalf("gitread: %v", err)
		}
	case "cat-object":
		if len(args) != 2 {
			log.Fatal("gitread: cat-object requires an object id")
		}
		if err := runCatObject(eng, args[1]); err != nil {
			log.Fatalf("gitread: %v", err)
		}
	case "branches":
		for name, id := range eng.Branches() {
			fmt.Printf("%v %s\n", id, name)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func runLog(eng *git.Engine, branch string) error {
	entries, err := eng.ListCommits(branch, "")
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%v %s\n", e.ID, e.Commit.Summary())
	}
	return nil
}

func runCatObject(eng *git.Engine, idStr string) error {
	id, err := githash.ParseSHA1(idStr)
	if err != nil {
		return fmt.Errorf("parse object id: %w", err)
	}
	obj, err := eng.Read(id)
	if err != nil {
		return err
	}
	switch obj.Type {
	case "blob":
		_, err := os.Stdout.Write(obj.Blob)
		return err
	default:
		fmt.Printf("%s %v\n", obj.Type, obj.ID)
		return nil
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: gitread [-gitdir path] <command> [args]

Commands:
  log [branch]       print the first-parent commit chain from branch
  cat-object <id>     print a blob's content, or "<type> <id>" for other objects
  branches             list known branches

`)
	flag.PrintDefaults()
}
