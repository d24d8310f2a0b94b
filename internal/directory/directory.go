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

// Package directory implements the virtual directory layer: the view
// of "which names exist" and the load/store path for each name's descriptor,
// built on top of internal/store's generic row/column facade.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/widecolumnfs/blockdir/clock"
	"github.com/widecolumnfs/blockdir/internal/blockmap"
	"github.com/widecolumnfs/blockdir/internal/descriptor"
	"github.com/widecolumnfs/blockdir/internal/logger"
	"github.com/widecolumnfs/blockdir/internal/store"
)

var dirLog = logger.ForComponent("directory")

// ErrNotFound is returned by operations addressing a name that has no live
// descriptor (never written, or logically deleted).
var ErrNotFound = errors.New("directory: not found")

// Info bundles the three pieces of metadata most callers of stat() want in
// a single round trip, rather than three separate descriptor
// fetches.
type Info struct {
	Length     uint64
	ModifiedAt int64
	Exists     bool
}

// Directory is a view onto one column family's worth of files. Not safe for
// concurrent use from multiple goroutines without external synchronization,
// matching the single-writer discipline the rest of this module assumes.
type Directory struct {
	/////////////////////////
	// Dependencies
	/////////////////////////

	store store.Client
	clock clock.Clock

	/////////////////////////
	// Constant data
	/////////////////////////

	// defaultBlockSize seeds newly created descriptors and is substituted for
	// any descriptor payload encoded before blockSize was introduced.
	defaultBlockSize uint64
}

// New returns a Directory backed by the given store client, stamping
// descriptor timestamps with clk and seeding new descriptors with
// defaultBlockSize.
func New(s store.Client, clk clock.Clock, defaultBlockSize uint64) *Directory {
	return &Directory{
		store:            s,
		clock:            clk,
		defaultBlockSize: defaultBlockSize,
	}
}

// List returns the names of every file with a live (non-deleted) descriptor.
// Every call goes straight to the store; this layer keeps no local replica
// of directory contents to keep warm.
func (d *Directory) List(ctx context.Context) ([]string, error) {
	rowKeys, err := d.store.ListRowsWithColumn(ctx, descriptor.DescriptorColumn)
	if err != nil {
		return nil, fmt.Errorf("directory: list: %w", err)
	}

	names := make([]string, 0, len(rowKeys))
	for _, rowKey := range rowKeys {
		desc, err := d.LoadDescriptor(ctx, rowKey, false)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("directory: list: %s: %w", rowKey, err)
		}
		if desc == nil || desc.Deleted {
			continue
		}
		names = append(names, desc.Name)
	}

	sort.Strings(names)
	return names, nil
}

// Exists reports whether name currently has a live descriptor. Any other
// error (a store failure, a malformed descriptor) is logged at DEBUG and
// reported as false; the returned error is always nil.
func (d *Directory) Exists(ctx context.Context, name string) (bool, error) {
	_, err := d.LoadDescriptor(ctx, name, false)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			dirLog.Debugf("exists %s: %v", name, err)
		}
		return false, nil
	}

	return true, nil
}

// Length returns name's current byte length.
func (d *Directory) Length(ctx context.Context, name string) (uint64, error) {
	desc, err := d.LoadDescriptor(ctx, name, false)
	if err != nil {
		return 0, err
	}

	return desc.Length, nil
}

// Modified returns name's last-modified timestamp, in milliseconds since the
// Unix epoch.
func (d *Directory) Modified(ctx context.Context, name string) (int64, error) {
	desc, err := d.LoadDescriptor(ctx, name, false)
	if err != nil {
		return 0, err
	}

	return desc.LastModified, nil
}

// Stat bundles length, last-modified and existence into one round trip,
// for callers (e.g. a FUSE getattr-style lookup) that would otherwise
// issue three.
func (d *Directory) Stat(ctx context.Context, name string) (Info, error) {
	desc, err := d.LoadDescriptor(ctx, name, false)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Info{}, nil
		}
		return Info{}, err
	}

	return Info{
		Length:     desc.Length,
		ModifiedAt: desc.LastModified,
		Exists:     true,
	}, nil
}

// Touch stamps name's last-modified and last-accessed timestamps with the
// current time and persists the descriptor.
func (d *Directory) Touch(ctx context.Context, name string) error {
	desc, err := d.LoadDescriptor(ctx, name, false)
	if err != nil {
		return err
	}

	now := clock.NowMillis(d.clock)
	desc.LastModified = now
	desc.LastAccessed = now

	return d.StoreDescriptor(ctx, desc)
}

// Delete logically removes name: the descriptor's Deleted flag is set and
// persisted, but the row and its block columns are left in place. A
// subsequent List or Exists will no longer surface name.
func (d *Directory) Delete(ctx context.Context, name string) error {
	desc, err := d.LoadDescriptor(ctx, name, false)
	if err != nil {
		return err
	}

	desc.Deleted = true
	desc.LastModified = clock.NowMillis(d.clock)

	return d.StoreDescriptor(ctx, desc)
}

// Ensure loads name's descriptor, creating and persisting a fresh empty one
// if none exists or the existing one is logically deleted. Used by the
// output-stream open path, which wants "give me a descriptor to work
// with, creating it if this is the first write."
func (d *Directory) Ensure(ctx context.Context, name string) (desc *descriptor.File, created bool, err error) {
	desc, err = d.LoadDescriptor(ctx, name, false)
	if err == nil {
		return desc, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	desc, err = d.LoadDescriptor(ctx, name, true)
	if err != nil {
		return nil, false, err
	}

	return desc, true, nil
}

// LoadDescriptor fetches and decodes name's DESCRIPTOR column. If it is
// absent or logically deleted and createIfMissing is true, a new empty
// descriptor is initialized at the directory's default block size and
// immediately persisted before being returned. Otherwise a missing or
// logically-deleted descriptor yields ErrNotFound.
func (d *Directory) LoadDescriptor(ctx context.Context, name string, createIfMissing bool) (*descriptor.File, error) {
	payload, ok, err := d.store.GetColumn(ctx, name, descriptor.DescriptorColumn)
	if err != nil {
		return nil, fmt.Errorf("directory: load_descriptor: %s: %w", name, err)
	}

	if ok {
		desc, err := descriptor.Decode(payload, d.defaultBlockSize)
		if err != nil {
			return nil, fmt.Errorf("directory: load_descriptor: %s: %w", name, err)
		}
		if !desc.Deleted {
			return desc, nil
		}
	}

	if !createIfMissing {
		return nil, ErrNotFound
	}

	desc := descriptor.New(name, d.defaultBlockSize)
	now := clock.NowMillis(d.clock)
	desc.LastModified = now
	desc.LastAccessed = now

	if err := d.StoreDescriptor(ctx, desc); err != nil {
		return nil, err
	}

	return desc, nil
}

// StoreDescriptor encodes desc and persists it under its own row key, the
// sole column touched being DESCRIPTOR. Callers that also need to write
// block columns in the same batch should use the file layer instead, which
// combines both into a single SetColumns call.
func (d *Directory) StoreDescriptor(ctx context.Context, desc *descriptor.File) error {
	desc.CheckInvariants()

	m := blockmap.New()
	m.Put(descriptor.DescriptorColumn, descriptor.Encode(desc))

	if err := d.store.SetColumns(ctx, desc.Name, m); err != nil {
		return fmt.Errorf("directory: store_descriptor: %s: %w", desc.Name, err)
	}

	return nil
}
