// Copyright 2024 Google LLC
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

// Package metrics exposes a minimal MetricHandle interface for instrumenting
// store round-trips, batch sizes, and block-fragment counts, behind
// swappable OpenCensus and no-op implementations rather than a concrete
// stats client called directly.
package metrics

import "context"

// Attr is a single metric dimension, e.g. {"op", "set_columns"}.
type Attr struct {
	Key   string
	Value string
}

// StoreOp annotates which store.Client method a round-trip measured.
const StoreOp = "store_op"

// MetricHandle is the recording surface every instrumented package depends
// on; production wiring installs an OpenCensus-backed handle, tests and
// unconfigured binaries get the no-op one.
type MetricHandle interface {
	// StoreRequestCount increments the number of store round-trips.
	StoreRequestCount(ctx context.Context, inc int64, attrs []Attr)

	// StoreRequestLatency records how long a store round-trip took, in
	// milliseconds.
	StoreRequestLatency(ctx context.Context, millis float64, attrs []Attr)

	// BatchColumnCount records how many columns a single SetColumns batch
	// wrote (descriptor plus however many block columns the write touched).
	BatchColumnCount(ctx context.Context, count int64, attrs []Attr)

	// FragmentCount records how many pre/post fragments a buffered write's
	// splice produced, 0, 1, or 2 per flush.
	FragmentCount(ctx context.Context, count int64, attrs []Attr)
}
