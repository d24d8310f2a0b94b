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

package directory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widecolumnfs/blockdir/clock"
	"github.com/widecolumnfs/blockdir/internal/directory"
	"github.com/widecolumnfs/blockdir/internal/store/storetest"
)

const testBlockSize = 1 << 20

func newDirectory() (*directory.Directory, *clock.SimulatedClock) {
	clk := clock.NewSimulatedClock(time.Unix(1000, 0))
	return directory.New(storetest.New(), clk, testBlockSize), clk
}

func TestLoadDescriptorCreatesWhenMissing(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory()

	desc, err := dir.LoadDescriptor(ctx, "a.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", desc.Name)
	assert.EqualValues(t, testBlockSize, desc.BlockSize)
	assert.Zero(t, desc.Length)

	exists, err := dir.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoadDescriptorWithoutCreateIsNotFound(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory()

	_, err := dir.LoadDescriptor(ctx, "missing.txt", false)
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestDeleteIsLogicalAndHidesFromListAndExists(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory()

	_, err := dir.LoadDescriptor(ctx, "a.txt", true)
	require.NoError(t, err)

	require.NoError(t, dir.Delete(ctx, "a.txt"))

	exists, err := dir.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = dir.LoadDescriptor(ctx, "a.txt", false)
	assert.ErrorIs(t, err, directory.ErrNotFound)

	names, err := dir.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, "a.txt")
}

func TestListSkipsDeletedAndSortsNames(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory()

	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		_, err := dir.LoadDescriptor(ctx, name, true)
		require.NoError(t, err)
	}
	require.NoError(t, dir.Delete(ctx, "b.txt"))

	names, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "c.txt"}, names)
}

func TestTouchAdvancesTimestamps(t *testing.T) {
	ctx := context.Background()
	dir, clk := newDirectory()

	desc, err := dir.LoadDescriptor(ctx, "a.txt", true)
	require.NoError(t, err)
	original := desc.LastModified

	clk.AdvanceTime(5 * time.Second)
	require.NoError(t, dir.Touch(ctx, "a.txt"))

	modified, err := dir.Modified(ctx, "a.txt")
	require.NoError(t, err)
	assert.Greater(t, modified, original)
}

func TestStatReportsNotExistsForUnknownName(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory()

	info, err := dir.Stat(ctx, "missing.txt")
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestStatBundlesLengthAndModified(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory()

	_, err := dir.LoadDescriptor(ctx, "a.txt", true)
	require.NoError(t, err)

	info, err := dir.Stat(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Zero(t, info.Length)
	assert.NotZero(t, info.ModifiedAt)
}

func TestEnsureReturnsCreatedOnlyOnFirstCall(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory()

	_, created, err := dir.Ensure(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = dir.Ensure(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestLengthOnMissingNamePropagatesNotFound(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory()

	_, err := dir.Length(ctx, "missing.txt")
	assert.True(t, errors.Is(err, directory.ErrNotFound))
}
