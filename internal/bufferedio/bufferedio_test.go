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

package bufferedio_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widecolumnfs/blockdir/clock"
	"github.com/widecolumnfs/blockdir/internal/bufferedio"
	"github.com/widecolumnfs/blockdir/internal/descriptor"
	"github.com/widecolumnfs/blockdir/internal/file"
	"github.com/widecolumnfs/blockdir/internal/store/storetest"
)

const smallBlockSize = 8

func newFixture() (*file.File, *clock.SimulatedClock) {
	return file.New(storetest.New()), clock.NewSimulatedClock(time.Unix(1000, 0))
}

func readAll(t *testing.T, f *file.File, desc *descriptor.File) []byte {
	t.Helper()
	in := bufferedio.NewInput(f, desc)
	out := make([]byte, desc.Length)
	n, err := in.Read(context.Background(), out)
	require.NoError(t, err)
	require.EqualValues(t, desc.Length, n)
	return out
}

func TestSequentialMultiBlockWriteThenRead(t *testing.T) {
	ctx := context.Background()
	f, clk := newFixture()

	desc := descriptor.New("a.txt", smallBlockSize)
	o := bufferedio.NewOutput(f, clk, desc, smallBlockSize)

	payload := []byte("0123456789ABCDEFGHIJ") // 20 bytes, > 2 blocks of 8
	n, err := o.Write(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	require.NoError(t, o.Close(ctx))

	desc.CheckInvariants()
	assert.EqualValues(t, len(payload), desc.Length)
	assert.Equal(t, payload, readAll(t, f, desc))
}

func TestRandomOffsetOverwriteFragmentsBlock(t *testing.T) {
	ctx := context.Background()
	f, clk := newFixture()

	desc := descriptor.New("a.txt", smallBlockSize)
	o := bufferedio.NewOutput(f, clk, desc, smallBlockSize)

	require.NoError(t, o.Seek(ctx, 0))
	_, err := o.Write(ctx, []byte("AAAAAAAA")) // exactly one full block
	require.NoError(t, err)
	require.NoError(t, o.Close(ctx))

	// Overwrite the middle four bytes, leaving two surviving fragments that
	// point back at the original column: a pre-fragment at data_offset 0 and
	// a post-fragment at data_offset 6.
	o2 := bufferedio.NewOutput(f, clk, desc, smallBlockSize)
	require.NoError(t, o2.Seek(ctx, 2))
	_, err = o2.Write(ctx, []byte("BBBB"))
	require.NoError(t, err)
	require.NoError(t, o2.Close(ctx))

	desc.CheckInvariants()
	assert.EqualValues(t, 8, desc.Length)
	assert.Equal(t, []byte("AABBBBAA"), readAll(t, f, desc))
}

func TestOverwriteExtendingPastEndOfFile(t *testing.T) {
	ctx := context.Background()
	f, clk := newFixture()

	desc := descriptor.New("a.txt", smallBlockSize)
	o := bufferedio.NewOutput(f, clk, desc, smallBlockSize)
	_, err := o.Write(ctx, []byte("AAAA"))
	require.NoError(t, err)
	require.NoError(t, o.Close(ctx))

	o2 := bufferedio.NewOutput(f, clk, desc, smallBlockSize)
	require.NoError(t, o2.Seek(ctx, 2))
	_, err = o2.Write(ctx, []byte("BBBBBB"))
	require.NoError(t, err)
	require.NoError(t, o2.Close(ctx))

	desc.CheckInvariants()
	assert.EqualValues(t, 8, desc.Length)
	assert.Equal(t, []byte("AABBBBBB"), readAll(t, f, desc))
}

func TestPartialReadAtArbitraryOffset(t *testing.T) {
	ctx := context.Background()
	f, clk := newFixture()

	desc := descriptor.New("a.txt", smallBlockSize)
	o := bufferedio.NewOutput(f, clk, desc, smallBlockSize)
	_, err := o.Write(ctx, []byte("0123456789ABCDEF"))
	require.NoError(t, err)
	require.NoError(t, o.Close(ctx))

	in := bufferedio.NewInput(f, desc)
	in.Seek(5)
	out := make([]byte, 4)
	n, err := in.Read(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("5678"), out)
}

func TestReadPastEndOfFileReturnsShortRead(t *testing.T) {
	ctx := context.Background()
	f, clk := newFixture()

	desc := descriptor.New("a.txt", smallBlockSize)
	o := bufferedio.NewOutput(f, clk, desc, smallBlockSize)
	_, err := o.Write(ctx, []byte("hello"))
	require.NoError(t, err)
	require.NoError(t, o.Close(ctx))

	in := bufferedio.NewInput(f, desc)
	in.Seek(3)
	out := make([]byte, 10)
	n, err := in.Read(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte("lo"), out[:n])
}

func TestUnlinkAbandonsBufferedBytes(t *testing.T) {
	ctx := context.Background()
	f, clk := newFixture()

	desc := descriptor.New("a.txt", smallBlockSize)
	o := bufferedio.NewOutput(f, clk, desc, 4096)
	_, err := o.Write(ctx, []byte("never persisted"))
	require.NoError(t, err)

	o.Unlink()

	_, err = o.Write(ctx, []byte("x"))
	assert.ErrorIs(t, err, bufferedio.ErrClosed)

	payloads, err := f.ReadBlocks(ctx, desc, []string{descriptor.DescriptorColumn})
	require.NoError(t, err)
	assert.Empty(t, payloads[descriptor.DescriptorColumn])
}

func TestWriteAutoFlushesAtBufferSize(t *testing.T) {
	ctx := context.Background()
	f, clk := newFixture()

	desc := descriptor.New("a.txt", smallBlockSize)
	o := bufferedio.NewOutput(f, clk, desc, 4)

	_, err := o.Write(ctx, []byte("AAAA"))
	require.NoError(t, err)

	payloads, err := f.ReadBlocks(ctx, desc, []string{descriptor.NewBlockName(0)})
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payloads[descriptor.NewBlockName(0)], []byte("AAAA")))

	require.NoError(t, o.Close(ctx))
}
