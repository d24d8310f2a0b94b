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

// Package storetest provides an in-memory stand-in for internal/store.Client
// so directory/file/buffered-io tests don't need a running Cassandra
// cluster.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/widecolumnfs/blockdir/internal/blockmap"
)

// Fake is an in-memory store.Client. Not safe for concurrent use from
// multiple goroutines without external synchronization beyond the internal
// mutex (which only protects the map itself, not call sequencing), matching
// the single-writer discipline the rest of this module assumes.
type Fake struct {
	mu       sync.Mutex
	rows     map[string]map[string][]byte // row key -> column name -> value
	FailNext error                        // if set, the next call returns this error and clears it
}

// New returns an empty Fake store.
func New() *Fake {
	return &Fake{rows: make(map[string]map[string][]byte)}
}

func (f *Fake) takeFailure() error {
	err := f.FailNext
	f.FailNext = nil
	return err
}

func (f *Fake) GetColumn(ctx context.Context, rowKey, columnName string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeFailure(); err != nil {
		return nil, false, err
	}

	row, ok := f.rows[rowKey]
	if !ok {
		return nil, false, nil
	}

	v, ok := row[columnName]
	return v, ok, nil
}

func (f *Fake) GetColumns(ctx context.Context, rowKey string, columnNames []string) (map[string][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeFailure(); err != nil {
		return nil, err
	}

	result := make(map[string][]byte)
	row := f.rows[rowKey]
	for _, name := range columnNames {
		if v, ok := row[name]; ok {
			result[name] = v
		}
	}

	return result, nil
}

func (f *Fake) ListRowsWithColumn(ctx context.Context, columnName string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeFailure(); err != nil {
		return nil, err
	}

	var keys []string
	for rowKey, row := range f.rows {
		if _, ok := row[columnName]; ok {
			keys = append(keys, rowKey)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (f *Fake) SetColumns(ctx context.Context, rowKey string, m *blockmap.Map) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeFailure(); err != nil {
		return err
	}

	if m.Len() == 0 {
		// Row-level deletion unsupported; no-op.
		return nil
	}

	row, ok := f.rows[rowKey]
	if !ok {
		row = make(map[string][]byte)
		f.rows[rowKey] = row
	}

	for _, entry := range m.Entries() {
		if entry.Value == nil {
			delete(row, entry.ColumnName)
			continue
		}
		row[entry.ColumnName] = entry.Value
	}

	return nil
}

// RowExists reports whether rowKey has ever been written, even if every
// column has since been tombstoned — used by tests asserting that deletion
// is logical, not physical.
func (f *Fake) RowExists(rowKey string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.rows[rowKey]
	return ok
}
