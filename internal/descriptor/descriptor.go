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

// Package descriptor holds the inode-equivalent FileDescriptor data model and
// its text codec.
package descriptor

import "fmt"

// DescriptorColumn is the well-known column name under which a file's
// descriptor is stored.
const DescriptorColumn = "DESCRIPTOR"

// BlockColumnPrefix names every block column: "BLOCK-" + block number.
const BlockColumnPrefix = "BLOCK-"

// Block is one contiguous byte run stored as one column.
//
// INVARIANT: DataOffset + DataLength <= BlockSize
type Block struct {
	// Persisted fields.
	BlockNumber int32
	BlockName   string
	BlockSize   uint64
	DataOffset  uint64
	DataLength  int32

	// Transient fields, recomputed per operation and never persisted.
	BlockOffset  uint64
	DataPosition int32
}

// Clone returns an independent copy of b. Block holds no references, so a
// plain value copy is already independent; the write path's pre/post
// fragments are made that way (bufferedio's splice assigns b to a new
// variable) rather than through this method.
func (b Block) Clone() Block {
	return b
}

// LastDataOffset is the offset one past the last valid byte within the
// block's capacity window.
func (b Block) LastDataOffset() uint64 {
	return b.DataOffset + uint64(b.DataLength)
}

func (b Block) checkInvariants() error {
	if b.DataOffset+uint64(b.DataLength) > b.BlockSize {
		return fmt.Errorf("descriptor: block %s: data_offset(%d)+data_length(%d) > block_size(%d)",
			b.BlockName, b.DataOffset, b.DataLength, b.BlockSize)
	}

	return nil
}

// File is the inode-equivalent metadata stitching a file's blocks into an
// ordered byte stream. It is stored, self-describing, under DescriptorColumn
// in the file's row.
//
// NextBlockNumber is derived allocator state; it is never persisted, only
// recomputed from the highest BlockNumber seen across Blocks on decode.
type File struct {
	Name         string
	Length       uint64
	Deleted      bool
	LastModified int64
	LastAccessed int64
	BlockSize    uint64
	Blocks       []Block

	NextBlockNumber int32
}

// New returns a freshly initialized, empty descriptor for name at the given
// block size. Length is zero and Blocks is empty until the first write.
func New(name string, blockSize uint64) *File {
	return &File{
		Name:      name,
		BlockSize: blockSize,
	}
}

// AllocateBlockNumber returns the next monotonically increasing block
// number for this file and advances the allocator.
func (d *File) AllocateBlockNumber() int32 {
	n := d.NextBlockNumber
	d.NextBlockNumber++
	return n
}

// NewBlockName formats the column name for the given block number.
func NewBlockName(blockNumber int32) string {
	return fmt.Sprintf("%s%d", BlockColumnPrefix, blockNumber)
}

// CheckInvariants panics if any of the descriptor's invariants are
// violated. It runs before every descriptor write (file.WriteBlocks and
// directory.StoreDescriptor) as well as in tests.
//
// A random-offset overwrite landing entirely inside one existing block can
// leave both a pre-fragment and a post-fragment cloned from that same
// block: both legitimately carry its BlockName and BlockNumber, and are
// distinguished from each other only by DataOffset. So block name/
// number uniqueness is not checked here; the invariant actually relied on
// elsewhere is per-entry offset/size validity plus the length sum below.
func (d *File) CheckInvariants() {
	var total uint64

	for _, b := range d.Blocks {
		if err := b.checkInvariants(); err != nil {
			panic(err)
		}

		total += uint64(b.DataLength)
	}

	if total != d.Length {
		panic(fmt.Sprintf("descriptor: length mismatch: length=%d sum(data_length)=%d", d.Length, total))
	}
}
