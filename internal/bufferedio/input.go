// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bufferedio

import (
	"context"
	"fmt"

	"github.com/widecolumnfs/blockdir/internal/descriptor"
	"github.com/widecolumnfs/blockdir/internal/file"
)

// Input is a read-ahead buffer over the file layer. Reads a range
// by resolving which blocks satisfy it, fetching all of their columns in one
// multi-get, and copying the requested bytes out of the fetched payloads.
//
// A reader caches the descriptor it was opened with; later writer flushes to
// the same file are not observed without reopening.
type Input struct {
	file *file.File
	desc *descriptor.File

	position uint64
}

// NewInput returns an Input stream positioned at the start of desc.
func NewInput(f *file.File, desc *descriptor.File) *Input {
	return &Input{file: f, desc: desc}
}

// Position returns the stream's current logical cursor.
func (in *Input) Position() uint64 {
	return in.position
}

// Length returns the file's byte length as of when this stream was opened.
func (in *Input) Length() uint64 {
	return in.desc.Length
}

// Seek relocates the logical cursor to pos.
func (in *Input) Seek(pos uint64) {
	in.position = pos
}

// Read copies up to len(out) bytes starting at the current cursor into out,
// and returns the number of bytes copied. A read that reaches the end of the
// file returns n < len(out) with a nil error; there is no io.EOF sentinel
// here since this is not an io.Reader (bufferedio has no notion of a
// half-open stream failure mode beyond "the file is this long").
func (in *Input) Read(ctx context.Context, out []byte) (int, error) {
	if in.position >= in.desc.Length {
		return 0, nil
	}

	length := uint64(len(out))
	if in.position+length > in.desc.Length {
		length = in.desc.Length - in.position
	}
	if length == 0 {
		return 0, nil
	}

	startIdx, blockStart, found := locate(in.desc.Blocks, in.position)
	if !found {
		return 0, fmt.Errorf("bufferedio: read: %s: cursor %d has no containing block", in.desc.Name, in.position)
	}

	var names []string
	var cum uint64 = blockStart
	endIdx := startIdx
	for i := startIdx; i < len(in.desc.Blocks); i++ {
		names = append(names, in.desc.Blocks[i].BlockName)
		cum += uint64(in.desc.Blocks[i].DataLength)
		endIdx = i
		if cum >= in.position+length {
			break
		}
	}

	payloads, err := in.file.ReadBlocks(ctx, in.desc, names)
	if err != nil {
		return 0, fmt.Errorf("bufferedio: read: %w", err)
	}

	var written uint64
	cum = blockStart
	for i := startIdx; i <= endIdx; i++ {
		b := in.desc.Blocks[i]
		blockEnd := cum + uint64(b.DataLength)

		readStart := in.position + written
		take := blockEnd - readStart
		if remaining := length - written; take > remaining {
			take = remaining
		}

		payload, ok := payloads[b.BlockName]
		if !ok {
			return int(written), fmt.Errorf("bufferedio: read: %s: missing column %s", in.desc.Name, b.BlockName)
		}

		// Slice at data_offset, not 0: pre/post fragments point into the
		// same on-disk column at a nonzero data_offset, so reading
		// from offset 0 would return the wrong bytes the moment a
		// random-offset overwrite has fragmented a block.
		withinBlock := readStart - cum
		from := b.DataOffset + withinBlock
		copy(out[written:written+take], payload[from:from+take])

		written += take
		cum = blockEnd
	}

	in.position += written
	return int(written), nil
}
