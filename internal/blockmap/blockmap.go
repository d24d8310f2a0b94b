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

// Package blockmap defines the ordered column-name-to-bytes payload shared
// between the file layer and the store client for a single batch write.
package blockmap

import "bytes"

// Entry is one column mutation: Value == nil means a column tombstone.
type Entry struct {
	ColumnName string
	Value      []byte
}

// Map is an ordered set of column mutations for a single row, kept sorted by
// pure byte-lexicographic order of ColumnName.
//
// INVARIANT: entries are sorted by ColumnName, ascending, byte-lexicographic.
// INVARIANT: no two entries share a ColumnName.
type Map struct {
	entries []Entry
}

// New returns an empty Map.
func New() *Map {
	return &Map{}
}

// Put inserts or overwrites the mutation for the given column name,
// maintaining sort order.
func (m *Map) Put(columnName string, value []byte) {
	i := m.search(columnName)
	if i < len(m.entries) && m.entries[i].ColumnName == columnName {
		m.entries[i].Value = value
		return
	}

	m.entries = append(m.entries, Entry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = Entry{ColumnName: columnName, Value: value}
}

// Delete stages a tombstone for the given column name (Value == nil).
func (m *Map) Delete(columnName string) {
	m.Put(columnName, nil)
}

// Get returns the value staged for columnName and whether it is present.
func (m *Map) Get(columnName string) ([]byte, bool) {
	i := m.search(columnName)
	if i < len(m.entries) && m.entries[i].ColumnName == columnName {
		return m.entries[i].Value, true
	}

	return nil, false
}

// Len returns the number of entries in the map.
func (m *Map) Len() int {
	return len(m.entries)
}

// Entries returns the ordered entries. The caller must not mutate the
// returned slice.
func (m *Map) Entries() []Entry {
	return m.entries
}

// search returns the index of columnName in m.entries, or the index at which
// it would need to be inserted to preserve sort order.
func (m *Map) search(columnName string) int {
	lo, hi := 0, len(m.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if bytes.Compare([]byte(m.entries[mid].ColumnName), []byte(columnName)) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo
}
