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

// Package file maps one descriptor's worth of blocks onto a row. It
// sits between the buffered-io layer and the store client: it knows about
// descriptors and block columns, but nothing about cursors, buffering, or
// fragment splitting.
package file

import (
	"context"
	"fmt"

	"github.com/widecolumnfs/blockdir/internal/blockmap"
	"github.com/widecolumnfs/blockdir/internal/descriptor"
	"github.com/widecolumnfs/blockdir/internal/store"
)

// File is a thin combinator over a store.Client for one row.
type File struct {
	store store.Client
}

// New returns a File layer backed by the given store client.
func New(s store.Client) *File {
	return &File{store: s}
}

// ReadBlocks fetches the named block columns from desc's row in a single
// multi-get.
func (f *File) ReadBlocks(ctx context.Context, desc *descriptor.File, names []string) (map[string][]byte, error) {
	payloads, err := f.store.GetColumns(ctx, desc.Name, names)
	if err != nil {
		return nil, fmt.Errorf("file: read_blocks: %s: %w", desc.Name, err)
	}

	return payloads, nil
}

// WriteBlocks persists the staged block mutations in blocks together with
// desc's re-encoded descriptor, in a single batch. Either the
// consumer observes the new descriptor and the new block payloads, or
// neither: a partial store-side failure leaves the prior descriptor
// pointing at prior, still-present blocks.
func (f *File) WriteBlocks(ctx context.Context, desc *descriptor.File, blocks *blockmap.Map) error {
	desc.CheckInvariants()

	blocks.Put(descriptor.DescriptorColumn, descriptor.Encode(desc))

	if err := f.store.SetColumns(ctx, desc.Name, blocks); err != nil {
		return fmt.Errorf("file: write_blocks: %s: %w", desc.Name, err)
	}

	return nil
}
