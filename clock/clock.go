// Copyright 2025 Google LLC
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

// Package clock provides an injectable notion of time so that the
// millisecond timestamps stamped onto descriptors (last_modified,
// last_accessed) by the directory, file, and buffered-io layers are
// deterministically testable.
package clock

import "time"

// Clock is a source of the current time, abstracted so tests can control it.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After notifies on the returned channel after the specified duration.
	After(d time.Duration) <-chan time.Time
}

// NowMillis returns c.Now() as milliseconds since the Unix epoch, the unit
// every descriptor timestamp field is persisted in.
func NowMillis(c Clock) int64 {
	return c.Now().UnixMilli()
}
