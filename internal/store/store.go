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

// Package store is a thin facade over the wide-column store backing one
// directory's column family. It knows nothing about descriptors,
// blocks, or files — only rows and columns.
package store

import (
	"context"
	"fmt"

	"github.com/widecolumnfs/blockdir/internal/blockmap"
)

// Client is the facade every directory/file-layer component talks to. A row
// key identifies a file; a column name identifies either the DESCRIPTOR
// column or one BLOCK-<n> column.
type Client interface {
	// GetColumn fetches one column's value. ok is false if the row or the
	// column within it does not exist.
	GetColumn(ctx context.Context, rowKey, columnName string) (value []byte, ok bool, err error)

	// GetColumns fetches several columns from one row in a single round
	// trip. Missing columns are simply absent from the result map.
	GetColumns(ctx context.Context, rowKey string, columnNames []string) (map[string][]byte, error)

	// ListRowsWithColumn returns the keys of every row that currently has a
	// (non-tombstoned) value for columnName.
	ListRowsWithColumn(ctx context.Context, columnName string) ([]string, error)

	// SetColumns atomically applies every mutation in m to rowKey in one
	// batch. A nil Value mutation is a column tombstone. An empty
	// map is a no-op, preserved for compatibility with stores whose
	// row-level deletion this layer does not otherwise support.
	SetColumns(ctx context.Context, rowKey string, m *blockmap.Map) error
}

// Error wraps a failure from the underlying store driver with the operation
// and row key that failed.
type Error struct {
	Op     string
	RowKey string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.RowKey, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op, rowKey string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, RowKey: rowKey, Err: err}
}
