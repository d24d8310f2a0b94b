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
	"errors"
	"fmt"

	"github.com/widecolumnfs/blockdir/clock"
	"github.com/widecolumnfs/blockdir/internal/blockmap"
	"github.com/widecolumnfs/blockdir/internal/descriptor"
	"github.com/widecolumnfs/blockdir/internal/file"
	"github.com/widecolumnfs/blockdir/internal/logger"
	"github.com/widecolumnfs/blockdir/internal/metrics"
)

// ErrClosed is returned by Write/Seek calls made after Close or Unlink.
var ErrClosed = errors.New("bufferedio: stream closed")

var outputLog = logger.ForComponent("bufferedio")

// Output is a write-behind buffer over the file layer. The
// consumer writes bytes sequentially; Seek may relocate the logical cursor
// before further writes. Buffered bytes are drained into one store batch per
// Flush, each batch rewriting only the blocks the buffered range touches.
//
// Not safe for concurrent use from multiple goroutines without external
// synchronization: at most one active writer per file is supported.
type Output struct {
	/////////////////////////
	// Dependencies
	/////////////////////////

	file  *file.File
	clock clock.Clock

	/////////////////////////
	// Constant data
	/////////////////////////

	bufferSize int

	/////////////////////////
	// Mutable state
	/////////////////////////

	// desc is this stream's private, in-memory snapshot of the descriptor.
	// It is only ever made visible to other readers at Flush time, via the
	// file layer's single combined batch.
	desc *descriptor.File

	// buf holds bytes written since the last flush; bufStart is the logical
	// file offset at which buf begins.
	buf      []byte
	bufStart uint64

	// position is the logical cursor, advanced by Write and relocated by
	// Seek.
	position uint64

	closed    bool
	destroyed bool

	metrics metrics.MetricHandle
}

// NewOutput returns an Output stream over desc, positioned at the end of the
// file (the conventional append-by-default starting point for a freshly
// opened output stream).
func NewOutput(f *file.File, clk clock.Clock, desc *descriptor.File, bufferSize int) *Output {
	return &Output{
		file:       f,
		clock:      clk,
		desc:       desc,
		bufferSize: bufferSize,
		bufStart:   desc.Length,
		position:   desc.Length,
		metrics:    metrics.NewNoopMetrics(),
	}
}

// SetMetrics installs h as the handle Flush reports fragment counts through.
// Callers that don't invoke it keep the default no-op handle.
func (o *Output) SetMetrics(h metrics.MetricHandle) {
	o.metrics = h
}

// Position returns the stream's current logical cursor.
func (o *Output) Position() uint64 {
	return o.position
}

// Length returns the file's current byte length, including any bytes still
// buffered and not yet flushed.
func (o *Output) Length() uint64 {
	if o.position > o.desc.Length {
		return o.position
	}
	return o.desc.Length
}

// Seek relocates the logical cursor to pos, first flushing any buffered
// bytes (a buffered range is contiguous and tied to the offset it started
// at, so it cannot itself be relocated).
func (o *Output) Seek(ctx context.Context, pos uint64) error {
	if o.closed {
		return ErrClosed
	}

	if err := o.Flush(ctx); err != nil {
		return err
	}

	o.position = pos
	o.bufStart = pos
	return nil
}

// Write appends p to the stream's buffer, auto-flushing whenever the buffer
// reaches its configured size.
func (o *Output) Write(ctx context.Context, p []byte) (int, error) {
	if o.closed {
		return 0, ErrClosed
	}

	o.buf = append(o.buf, p...)
	o.position += uint64(len(p))

	for len(o.buf) >= o.bufferSize {
		if err := o.Flush(ctx); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

// Flush drains any buffered bytes into the descriptor's block list and
// persists the result as one batch. A no-op if nothing is buffered.
func (o *Output) Flush(ctx context.Context) error {
	if len(o.buf) == 0 {
		return nil
	}

	data := o.buf
	start := o.bufStart
	o.buf = nil

	blocks, bytesAdded, fragments := o.splice(start, data)
	o.metrics.FragmentCount(ctx, int64(fragments), nil)

	now := clock.NowMillis(o.clock)
	o.desc.LastModified = now
	o.desc.LastAccessed = now
	o.desc.Length += bytesAdded

	if err := o.file.WriteBlocks(ctx, o.desc, blocks); err != nil {
		return fmt.Errorf("bufferedio: flush: %w", err)
	}

	outputLog.Debugf("flushed %s: %d bytes at offset %d, %d fragments", o.desc.Name, len(data), start, fragments)

	o.bufStart = o.position
	return nil
}

// Close flushes any remaining buffered bytes. The stream must not be used
// afterward.
func (o *Output) Close(ctx context.Context) error {
	if o.closed {
		return nil
	}

	err := o.Flush(ctx)
	o.closed = true
	return err
}

// Unlink abandons any buffered state without flushing it — used when the
// consumer deletes a file it still has open, so the abandoned bytes
// never reach the store.
func (o *Output) Unlink() {
	o.buf = nil
	o.closed = true
}

// Destroy releases the stream's buffer memory deterministically rather than
// waiting on GC.
func (o *Output) Destroy() {
	o.buf = nil
	o.destroyed = true
}

// splice rewrites the portion of desc.Blocks overlapping the logical range
// [start, start+len(data)) so that it reads back as data, and returns the
// block-column mutations the caller must persist alongside the descriptor.
//
// Blocks entirely before the write are left untouched. A block straddling
// the start of the write is split into a pre-fragment that keeps the
// original column and a narrower data_length — its on-disk payload is
// unchanged, only the descriptor's view of it shrinks. Blocks entirely
// covered by the write are dropped from the list; their columns become
// unreferenced garbage rather than being tombstoned in this batch. A block
// straddling the end of the write is split into a post-fragment the same
// way, pointing into the same on-disk column at a later data_offset. The
// write itself is chunked into freshly numbered blocks of at most the
// descriptor's configured block size.
//
// Expressed as an offset-interval splice rather than an imperative pass
// over a cursor: pre/post fragments point at unmodified on-disk columns and
// fully-overwritten blocks are left as dropped garbage, which is what the
// descriptor invariants and the write-then-read round trip depend on.
func (o *Output) splice(start uint64, data []byte) (*blockmap.Map, uint64, int) {
	end := start + uint64(len(data))
	blocks := blockmap.New()

	var before, after []descriptor.Block
	var pre, post *descriptor.Block

	var cum uint64
	for _, b := range o.desc.Blocks {
		blockStart := cum
		blockEnd := cum + uint64(b.DataLength)
		cum = blockEnd

		switch {
		case blockEnd <= start:
			before = append(before, b)

		case blockStart >= end:
			after = append(after, b)

		default:
			// This block overlaps the write. Keep the slivers outside
			// [start, end) as fragments pointing at the same column.
			if blockStart < start {
				fragLen := start - blockStart
				frag := b
				frag.DataLength = int32(fragLen)
				pre = &frag
			}
			if blockEnd > end {
				skip := end - blockStart
				frag := b
				frag.DataOffset = b.DataOffset + skip
				frag.DataLength = int32(blockEnd - end)
				post = &frag
			}
		}
	}

	var middle []descriptor.Block
	remaining := data
	for len(remaining) > 0 {
		chunkLen := uint64(len(remaining))
		if o.desc.BlockSize > 0 && chunkLen > o.desc.BlockSize {
			chunkLen = o.desc.BlockSize
		}

		nb := descriptor.Block{
			BlockNumber: o.desc.AllocateBlockNumber(),
			BlockSize:   o.desc.BlockSize,
			DataOffset:  0,
			DataLength:  int32(chunkLen),
		}
		nb.BlockName = descriptor.NewBlockName(nb.BlockNumber)

		blocks.Put(nb.BlockName, append([]byte(nil), remaining[:chunkLen]...))
		middle = append(middle, nb)

		remaining = remaining[chunkLen:]
	}

	var result []descriptor.Block
	result = append(result, before...)
	if pre != nil {
		result = append(result, *pre)
	}
	result = append(result, middle...)
	if post != nil {
		result = append(result, *post)
	}
	result = append(result, after...)

	o.desc.Blocks = result

	var newLength uint64
	if end > o.desc.Length {
		newLength = end
	} else {
		newLength = o.desc.Length
	}
	bytesAdded := newLength - o.desc.Length

	o.position = end

	var fragments int
	if pre != nil {
		fragments++
	}
	if post != nil {
		fragments++
	}

	return blocks, bytesAdded, fragments
}
