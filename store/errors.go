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

// Package store locates and decodes objects from a Git object database,
// combining the loose-object tree and any number of packfiles into a single
// id-keyed view, resolving delta chains as needed.
package store

import "fmt"

// Kind classifies the way a store operation failed.
type Kind int

// Error kinds.
const (
	// NotFound indicates that an object id or reference name could not be
	// resolved.
	NotFound Kind = iota + 1
	// BadIndex indicates that a pack index file's magic or version did not
	// match what this package supports.
	BadIndex
	// Malformed indicates that an object, delta stream, or index structure
	// violated a format invariant.
	Malformed
	// IO indicates a failure from the underlying filesystem.
	IO
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case BadIndex:
		return "bad index"
	case Malformed:
		return "malformed"
	case IO:
		return "I/O error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the concrete error type returned by this package's operations.
// Callers that need to distinguish error kinds should use errors.As to
// obtain an *Error and inspect its Kind field, rather than matching on the
// error string.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindErrorf(op string, kind Kind, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

func wrapErrorf(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
