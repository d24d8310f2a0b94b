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

// Package bufferedio implements the write-behind output buffer, the
// read-ahead input buffer, and the seek helper they share.
package bufferedio

import "github.com/widecolumnfs/blockdir/internal/descriptor"

// locate walks blocks, which are assumed to be in file byte order, and
// returns the index of the block containing logical position pos together
// with that block's cumulative starting offset.
//
// If pos equals the sum of every block's data length (the end of the file),
// locate returns the last block with found=true and blockStart set so that
// pos - blockStart == that block's data length: positioned at the end of
// the last block. If blocks is empty, found is false.
func locate(blocks []descriptor.Block, pos uint64) (index int, blockStart uint64, found bool) {
	var cum uint64
	for i, b := range blocks {
		end := cum + uint64(b.DataLength)
		if end >= pos {
			return i, cum, true
		}
		cum = end
	}

	return 0, 0, false
}
