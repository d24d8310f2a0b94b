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

package blockmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widecolumnfs/blockdir/internal/blockmap"
)

func TestOrdersByteLexicographically(t *testing.T) {
	m := blockmap.New()
	m.Put("BLOCK-10", []byte("ten"))
	m.Put("BLOCK-2", []byte("two"))
	m.Put("BLOCK-9", []byte("nine"))
	m.Put("DESCRIPTOR", []byte("d"))

	entries := m.Entries()
	require.Len(t, entries, 4)

	// Pure byte-lexicographic order: "BLOCK-10" < "BLOCK-2" < "BLOCK-9" <
	// "DESCRIPTOR", because '1' < '2' < '9' < 'D' as bytes. This is the
	// length-agnostic ordering called for in place of the source's
	// length-first comparator.
	assert.Equal(t, "BLOCK-10", entries[0].ColumnName)
	assert.Equal(t, "BLOCK-2", entries[1].ColumnName)
	assert.Equal(t, "BLOCK-9", entries[2].ColumnName)
	assert.Equal(t, "DESCRIPTOR", entries[3].ColumnName)
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	m := blockmap.New()
	m.Put("BLOCK-1", []byte("first"))
	m.Put("BLOCK-1", []byte("second"))

	require.Equal(t, 1, m.Len())
	v, ok := m.Get("BLOCK-1")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), v)
}

func TestDeleteStagesTombstone(t *testing.T) {
	m := blockmap.New()
	m.Delete("BLOCK-1")

	v, ok := m.Get("BLOCK-1")
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestGetMissing(t *testing.T) {
	m := blockmap.New()
	_, ok := m.Get("BLOCK-1")
	assert.False(t, ok)
}
