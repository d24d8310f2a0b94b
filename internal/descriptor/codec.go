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

package descriptor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped into every decode failure of a descriptor payload.
var ErrMalformed = errors.New("descriptor: malformed payload")

// Encode serializes d into the stable, human-readable key=value text format:
// one "field=value" line per top-level field, plus one
// "block.N.field=value" line per field of each block entry, ordered by
// ascending block index.
func Encode(d *File) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "name=%s\n", d.Name)
	fmt.Fprintf(&b, "length=%d\n", d.Length)
	fmt.Fprintf(&b, "deleted=%t\n", d.Deleted)
	fmt.Fprintf(&b, "lastModified=%d\n", d.LastModified)
	fmt.Fprintf(&b, "lastAccessed=%d\n", d.LastAccessed)
	fmt.Fprintf(&b, "blockSize=%d\n", d.BlockSize)
	fmt.Fprintf(&b, "blocks=%d\n", len(d.Blocks))

	for i, blk := range d.Blocks {
		fmt.Fprintf(&b, "block.%d.columnName=%s\n", i, blk.BlockName)
		fmt.Fprintf(&b, "block.%d.blockNumber=%d\n", i, blk.BlockNumber)
		fmt.Fprintf(&b, "block.%d.blockSize=%d\n", i, blk.BlockSize)
		fmt.Fprintf(&b, "block.%d.dataOffset=%d\n", i, blk.DataOffset)
		fmt.Fprintf(&b, "block.%d.dataLength=%d\n", i, blk.DataLength)
	}

	return []byte(b.String())
}

// Decode parses a payload previously produced by Encode into a File. The derived
// NextBlockNumber field is recomputed from the highest BlockNumber seen.
func Decode(payload []byte, defaultBlockSize uint64) (*File, error) {
	d := &File{BlockSize: defaultBlockSize}
	blockFields := make(map[int]map[string]string)
	numBlocks := -1

	for lineNo, line := range strings.Split(string(payload), "\n") {
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: line %d has no '=': %q", ErrMalformed, lineNo, line)
		}

		if strings.HasPrefix(key, "block.") {
			idx, field, err := splitBlockKey(key)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}

			if blockFields[idx] == nil {
				blockFields[idx] = make(map[string]string)
			}
			blockFields[idx][field] = value
			continue
		}

		switch key {
		case "name":
			d.Name = value
		case "length":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: length: %v", ErrMalformed, err)
			}
			d.Length = n
		case "deleted":
			d.Deleted = value == "true"
		case "lastModified":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: lastModified: %v", ErrMalformed, err)
			}
			d.LastModified = n
		case "lastAccessed":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: lastAccessed: %v", ErrMalformed, err)
			}
			d.LastAccessed = n
		case "blockSize":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: blockSize: %v", ErrMalformed, err)
			}
			d.BlockSize = n
		case "blocks":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: blocks: %v", ErrMalformed, err)
			}
			numBlocks = n
		}
	}

	if d.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrMalformed)
	}

	if numBlocks < 0 {
		return nil, fmt.Errorf("%w: missing blocks count", ErrMalformed)
	}

	d.Blocks = make([]Block, numBlocks)
	var offset uint64
	var maxBlockNumber int32 = -1

	for i := range d.Blocks {
		fields, ok := blockFields[i]
		if !ok {
			return nil, fmt.Errorf("%w: missing fields for block %d", ErrMalformed, i)
		}

		blk, err := parseBlock(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrMalformed, i, err)
		}

		blk.BlockOffset = offset
		offset += uint64(blk.DataLength)
		if blk.BlockNumber > maxBlockNumber {
			maxBlockNumber = blk.BlockNumber
		}

		d.Blocks[i] = blk
	}

	d.NextBlockNumber = maxBlockNumber + 1

	return d, nil
}

func splitBlockKey(key string) (idx int, field string, err error) {
	// key looks like "block.<N>.<field>".
	rest := strings.TrimPrefix(key, "block.")
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return 0, "", fmt.Errorf("malformed block key: %q", key)
	}

	idx, err = strconv.Atoi(rest[:dot])
	if err != nil {
		return 0, "", fmt.Errorf("malformed block index in key %q: %w", key, err)
	}

	return idx, rest[dot+1:], nil
}

func parseBlock(fields map[string]string) (Block, error) {
	var blk Block

	blk.BlockName = fields["columnName"]
	if blk.BlockName == "" {
		return Block{}, errors.New("missing columnName")
	}

	n, err := strconv.ParseInt(fields["blockNumber"], 10, 32)
	if err != nil {
		return Block{}, fmt.Errorf("blockNumber: %w", err)
	}
	blk.BlockNumber = int32(n)

	bs, err := strconv.ParseUint(fields["blockSize"], 10, 64)
	if err != nil {
		return Block{}, fmt.Errorf("blockSize: %w", err)
	}
	blk.BlockSize = bs

	do, err := strconv.ParseUint(fields["dataOffset"], 10, 64)
	if err != nil {
		return Block{}, fmt.Errorf("dataOffset: %w", err)
	}
	blk.DataOffset = do

	dl, err := strconv.ParseInt(fields["dataLength"], 10, 32)
	if err != nil {
		return Block{}, fmt.Errorf("dataLength: %w", err)
	}
	blk.DataLength = int32(dl)

	return blk, nil
}
