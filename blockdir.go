// Copyright 2024 Google Inc. All Rights Reserved.
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

// Package blockdir is the consumer-facing directory surface: the single
// entry point a full-text indexing engine uses to create, open, list, stat,
// and delete files in the virtual directory backed by a wide-column store.
// It composes internal/directory, internal/file, and internal/bufferedio
// into the create/open/read/write/seek/length/delete/list surface without
// exposing those layers directly to callers.
package blockdir

import (
	"context"

	"github.com/widecolumnfs/blockdir/clock"
	"github.com/widecolumnfs/blockdir/internal/bufferedio"
	"github.com/widecolumnfs/blockdir/internal/directory"
	"github.com/widecolumnfs/blockdir/internal/file"
	"github.com/widecolumnfs/blockdir/internal/logger"
	"github.com/widecolumnfs/blockdir/internal/metrics"
	"github.com/widecolumnfs/blockdir/internal/store"
)

var log = logger.ForComponent("blockdir")

// Options configures a Directory beyond the store client it talks to.
type Options struct {
	// Clock stamps descriptor timestamps; defaults to clock.RealClock{} if
	// nil.
	Clock clock.Clock

	// DefaultBlockSize seeds newly created files' block size.
	DefaultBlockSize uint64

	// BufferSize sizes each Output stream's write-behind buffer.
	BufferSize int

	// Metrics records store round-trips and fragment counts; defaults
	// to a no-op handle.
	Metrics metrics.MetricHandle
}

// Directory is the mounted view of one column family, the object a consumer
// holds for the lifetime of its session.
type Directory struct {
	dir        *directory.Directory
	file       *file.File
	clock      clock.Clock
	bufferSize int
	metrics    metrics.MetricHandle
}

// Open returns a Directory backed by client, ready for create_output /
// open_input / list / ... calls.
func Open(client store.Client, opts Options) *Directory {
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = 64 * 1024
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.NewNoopMetrics()
	}

	return &Directory{
		dir:        directory.New(client, clk, opts.DefaultBlockSize),
		file:       file.New(client),
		clock:      clk,
		bufferSize: bufferSize,
		metrics:    m,
	}
}

// List returns every live file name, sorted.
func (d *Directory) List(ctx context.Context) ([]string, error) {
	return d.dir.List(ctx)
}

// Exists reports whether name currently has a live descriptor.
func (d *Directory) Exists(ctx context.Context, name string) (bool, error) {
	return d.dir.Exists(ctx, name)
}

// Length returns name's current byte length.
func (d *Directory) Length(ctx context.Context, name string) (uint64, error) {
	return d.dir.Length(ctx, name)
}

// Modified returns name's last-modified timestamp in epoch milliseconds.
func (d *Directory) Modified(ctx context.Context, name string) (int64, error) {
	return d.dir.Modified(ctx, name)
}

// Stat bundles length, last-modified and existence into one round trip.
func (d *Directory) Stat(ctx context.Context, name string) (directory.Info, error) {
	return d.dir.Stat(ctx, name)
}

// Touch stamps name's last-modified/last-accessed timestamps with the
// current time.
func (d *Directory) Touch(ctx context.Context, name string) error {
	return d.dir.Touch(ctx, name)
}

// Delete logically removes name; it no longer appears in List or Exists,
// but its row and block columns are left in place.
func (d *Directory) Delete(ctx context.Context, name string) error {
	return d.dir.Delete(ctx, name)
}

// CreateOutput opens name for appending writes, creating it if it does not
// already exist. The returned Output must be closed to guarantee
// buffered bytes are flushed.
func (d *Directory) CreateOutput(ctx context.Context, name string) (*Output, error) {
	desc, created, err := d.dir.Ensure(ctx, name)
	if err != nil {
		return nil, err
	}
	if created {
		log.Debugf("created %s", name)
	}

	out := bufferedio.NewOutput(d.file, d.clock, desc, d.bufferSize)
	out.SetMetrics(d.metrics)

	return &Output{out: out}, nil
}

// OpenInput opens name for reading from the start. name must already
// exist and not be logically deleted; otherwise directory.ErrNotFound is
// returned.
func (d *Directory) OpenInput(ctx context.Context, name string) (*Input, error) {
	desc, err := d.dir.LoadDescriptor(ctx, name, false)
	if err != nil {
		return nil, err
	}

	return &Input{in: bufferedio.NewInput(d.file, desc)}, nil
}

// Output is a write stream over one file, the consumer-facing handle
// wrapping internal/bufferedio.Output.
type Output struct {
	out *bufferedio.Output
}

// Position returns the stream's current logical cursor.
func (o *Output) Position() uint64 { return o.out.Position() }

// Length returns the file's current byte length, including any bytes still
// buffered and not yet flushed.
func (o *Output) Length() uint64 { return o.out.Length() }

// Seek relocates the logical write cursor, flushing any buffered bytes
// first.
func (o *Output) Seek(ctx context.Context, pos uint64) error { return o.out.Seek(ctx, pos) }

// WriteBytes appends p to the stream.
func (o *Output) WriteBytes(ctx context.Context, p []byte) (int, error) { return o.out.Write(ctx, p) }

// Close flushes any remaining buffered bytes. The stream must not be used
// afterward.
func (o *Output) Close(ctx context.Context) error { return o.out.Close(ctx) }

// Unlink abandons any buffered bytes without flushing them, for use when the
// consumer deletes a file it still has open for writing.
func (o *Output) Unlink() { o.out.Unlink() }

// Input is a read stream over one file, the consumer-facing handle
// wrapping internal/bufferedio.Input.
type Input struct {
	in *bufferedio.Input
}

// Position returns the stream's current logical cursor.
func (in *Input) Position() uint64 { return in.in.Position() }

// Length returns the file's byte length as of when this stream was opened.
func (in *Input) Length() uint64 { return in.in.Length() }

// Seek relocates the logical read cursor.
func (in *Input) Seek(pos uint64) { in.in.Seek(pos) }

// ReadBytes copies up to len(out) bytes starting at the current cursor into
// out and returns how many bytes were copied.
func (in *Input) ReadBytes(ctx context.Context, out []byte) (int, error) {
	return in.in.Read(ctx, out)
}

// Close releases the stream. Reads have no buffered state to flush, so this
// is a no-op kept for symmetry with Output's Close.
func (in *Input) Close(ctx context.Context) error {
	return nil
}
