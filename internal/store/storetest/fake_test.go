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

package storetest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widecolumnfs/blockdir/internal/blockmap"
	"github.com/widecolumnfs/blockdir/internal/store/storetest"
)

func TestSetThenGetColumn(t *testing.T) {
	ctx := context.Background()
	f := storetest.New()

	m := blockmap.New()
	m.Put("DESCRIPTOR", []byte("payload"))
	require.NoError(t, f.SetColumns(ctx, "a.txt", m))

	v, ok, err := f.GetColumn(ctx, "a.txt", "DESCRIPTOR")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), v)
}

func TestGetColumnMissingRow(t *testing.T) {
	ctx := context.Background()
	f := storetest.New()

	_, ok, err := f.GetColumn(ctx, "missing", "DESCRIPTOR")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTombstoneRemovesColumnButRowSurvives(t *testing.T) {
	ctx := context.Background()
	f := storetest.New()

	m := blockmap.New()
	m.Put("DESCRIPTOR", []byte("payload"))
	require.NoError(t, f.SetColumns(ctx, "a.txt", m))

	tombstone := blockmap.New()
	tombstone.Delete("DESCRIPTOR")
	require.NoError(t, f.SetColumns(ctx, "a.txt", tombstone))

	_, ok, err := f.GetColumn(ctx, "a.txt", "DESCRIPTOR")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, f.RowExists("a.txt"), "row-level deletion is unsupported; the row must still exist")
}

func TestListRowsWithColumn(t *testing.T) {
	ctx := context.Background()
	f := storetest.New()

	for _, name := range []string{"a.txt", "b.txt"} {
		m := blockmap.New()
		m.Put("DESCRIPTOR", []byte(name))
		require.NoError(t, f.SetColumns(ctx, name, m))
	}

	other := blockmap.New()
	other.Put("BLOCK-0", []byte("x"))
	require.NoError(t, f.SetColumns(ctx, "c.txt", other))

	rows, err := f.ListRowsWithColumn(ctx, "DESCRIPTOR")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, rows)
}

func TestEmptyBatchIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := storetest.New()

	require.NoError(t, f.SetColumns(ctx, "a.txt", blockmap.New()))
	assert.False(t, f.RowExists("a.txt"))
}

func TestFailNextSurfacesOnce(t *testing.T) {
	ctx := context.Background()
	f := storetest.New()
	boom := errors.New("boom")
	f.FailNext = boom

	_, _, err := f.GetColumn(ctx, "a.txt", "DESCRIPTOR")
	assert.ErrorIs(t, err, boom)

	_, _, err = f.GetColumn(ctx, "a.txt", "DESCRIPTOR")
	assert.NoError(t, err)
}
