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

package store

import (
	"fmt"
	"strings"

	"github.com/gocql/gocql"
)

var consistencyByName = map[string]gocql.Consistency{
	"any":          gocql.Any,
	"one":          gocql.One,
	"two":          gocql.Two,
	"three":        gocql.Three,
	"quorum":       gocql.Quorum,
	"all":          gocql.All,
	"local_quorum": gocql.LocalQuorum,
	"each_quorum":  gocql.EachQuorum,
	"local_one":    gocql.LocalOne,
}

// ParseConsistency maps the config layer's lowercase consistency name onto the driver's gocql.Consistency enum.
func ParseConsistency(level string) (gocql.Consistency, error) {
	c, ok := consistencyByName[strings.ToLower(level)]
	if !ok {
		return 0, fmt.Errorf("store: unknown consistency level %q", level)
	}
	return c, nil
}
