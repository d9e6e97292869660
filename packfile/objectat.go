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

package packfile

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// PeekHeaderAt reads a single packed-object header at the given offset
// without touching its zlib-compressed body. This is enough to classify an
// object's type (following OffsetDelta backrefs, which stay within the same
// pack) without the cost of inflating anything.
func PeekHeaderAt(f ByteReadSeeker, offset int64) (*Header, error) {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("packfile: read object header at %d: %w", offset, err)
	}
	brc := &byteReaderCounter{r: f}
	return readObjectHeader(offset, brc)
}

// ReadObjectAt reads and fully inflates the object at the given offset. For
// non-delta types, the returned bytes are the object's payload. For
// OffsetDelta and RefDelta types, the returned bytes are the delta
// instruction stream (base_size, result_size, then copy/insert
// instructions): the caller is responsible for locating the base object
// (by offset for OffsetDelta, by id via hdr.BaseObject for RefDelta, which
// may live in a different pack or loose) and applying the delta with
// NewDeltaReader.
func ReadObjectAt(f ByteReadSeeker, offset int64) (*Header, []byte, error) {
	hdr, err := PeekHeaderAt(f, offset)
	if err != nil {
		return nil, nil, err
	}
	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("packfile: read object at %d: %w", offset, err)
	}
	defer zr.Close()
	buf := make([]byte, hdr.Size)
	if _, err := io.ReadFull(zr, buf); err != nil {
		return nil, nil, fmt.Errorf("packfile: read object at %d: %w", offset, err)
	}
	return hdr, buf, nil
}
