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

package metrics

import (
	"context"
	"fmt"
	"sync"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/widecolumnfs/blockdir/internal/logger"
)

var ocLog = logger.ForComponent("metrics")

var (
	ocMetric    *ocMetrics
	ocInitError error
	ocOnce      sync.Once
)

type ocMetrics struct {
	storeRequestCount   *stats.Int64Measure
	storeRequestLatency *stats.Float64Measure
	batchColumnCount    *stats.Int64Measure
	fragmentCount       *stats.Int64Measure
}

func attrsToTags(attrs []Attr) []tag.Mutator {
	mutators := make([]tag.Mutator, 0, len(attrs))
	for _, a := range attrs {
		mutators = append(mutators, tag.Upsert(tag.MustNewKey(a.Key), a.Value))
	}
	return mutators
}

func (o *ocMetrics) StoreRequestCount(ctx context.Context, inc int64, attrs []Attr) {
	recordInt(ctx, o.storeRequestCount, inc, attrs, "store request count")
}

func (o *ocMetrics) StoreRequestLatency(ctx context.Context, millis float64, attrs []Attr) {
	recordFloat(ctx, o.storeRequestLatency, millis, attrs, "store request latency")
}

func (o *ocMetrics) BatchColumnCount(ctx context.Context, count int64, attrs []Attr) {
	recordInt(ctx, o.batchColumnCount, count, attrs, "batch column count")
}

func (o *ocMetrics) FragmentCount(ctx context.Context, count int64, attrs []Attr) {
	recordInt(ctx, o.fragmentCount, count, attrs, "fragment count")
}

func recordInt(ctx context.Context, m *stats.Int64Measure, inc int64, attrs []Attr, name string) {
	if err := stats.RecordWithTags(ctx, attrsToTags(attrs), m.M(inc)); err != nil {
		ocLog.Errorf("cannot record %s: %v: %v", name, attrs, err)
	}
}

func recordFloat(ctx context.Context, m *stats.Float64Measure, v float64, attrs []Attr, name string) {
	if err := stats.RecordWithTags(ctx, attrsToTags(attrs), m.M(v)); err != nil {
		ocLog.Errorf("cannot record %s: %v: %v", name, attrs, err)
	}
}

// NewOCMetrics returns an OpenCensus-backed MetricHandle, registering its
// views exactly once per process.
func NewOCMetrics() (MetricHandle, error) {
	ocOnce.Do(func() {
		ocMetric, ocInitError = initOCMetrics()
	})
	return ocMetric, ocInitError
}

func initOCMetrics() (*ocMetrics, error) {
	storeRequestCount := stats.Int64("store/request_count", "The number of store round-trips issued.", stats.UnitDimensionless)
	storeRequestLatency := stats.Float64("store/request_latency", "The latency of a store round-trip.", stats.UnitMilliseconds)
	batchColumnCount := stats.Int64("store/batch_column_count", "The number of columns written per descriptor+blocks batch.", stats.UnitDimensionless)
	fragmentCount := stats.Int64("file/fragment_count", "The number of pre/post fragments a buffered write's splice produced.", stats.UnitDimensionless)

	if err := view.Register(
		&view.View{
			Name:        "store/request_count",
			Measure:     storeRequestCount,
			Description: "The cumulative number of store round-trips issued.",
			Aggregation: view.Sum(),
			TagKeys:     []tag.Key{tag.MustNewKey(StoreOp)},
		},
		&view.View{
			Name:        "store/request_latency",
			Measure:     storeRequestLatency,
			Description: "The distribution of store round-trip latencies.",
			Aggregation: view.Distribution(0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
			TagKeys:     []tag.Key{tag.MustNewKey(StoreOp)},
		},
		&view.View{
			Name:        "store/batch_column_count",
			Measure:     batchColumnCount,
			Description: "The distribution of column counts per write batch.",
			Aggregation: view.Distribution(1, 2, 3, 5, 10, 25, 50),
		},
		&view.View{
			Name:        "file/fragment_count",
			Measure:     fragmentCount,
			Description: "The cumulative number of block fragments produced by writes.",
			Aggregation: view.Sum(),
		},
	); err != nil {
		return nil, fmt.Errorf("failed to register OpenCensus metrics: %w", err)
	}

	return &ocMetrics{
		storeRequestCount:   storeRequestCount,
		storeRequestLatency: storeRequestLatency,
		batchColumnCount:    batchColumnCount,
		fragmentCount:       fragmentCount,
	}, nil
}
