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

import "context"

// NewNoopMetrics returns a MetricHandle that discards everything. It is the
// default handle so the directory/file/store layers never need a nil check.
func NewNoopMetrics() MetricHandle {
	var n noopMetrics
	return &n
}

type noopMetrics struct{}

func (*noopMetrics) StoreRequestCount(_ context.Context, _ int64, _ []Attr)     {}
func (*noopMetrics) StoreRequestLatency(_ context.Context, _ float64, _ []Attr) {}
func (*noopMetrics) BatchColumnCount(_ context.Context, _ int64, _ []Attr)      {}
func (*noopMetrics) FragmentCount(_ context.Context, _ int64, _ []Attr)         {}
