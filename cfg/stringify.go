// Copyright 2024 Google Inc. All Rights Reserved.
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

package cfg

import (
	"fmt"
	"slices"
	"strings"
)

// Consistency is the datatype for the store.consistency config key; it
// accepts the gocql consistency level names, lower- or upper-cased.
type Consistency string

var validConsistencyLevels = []string{
	"any", "one", "two", "three", "quorum", "all",
	"local_quorum", "each_quorum", "local_one",
}

func (c *Consistency) UnmarshalText(text []byte) error {
	level := strings.ToLower(string(text))
	if !slices.Contains(validConsistencyLevels, level) {
		return fmt.Errorf("invalid consistency value: %s. It can only accept values in the list: %v", text, validConsistencyLevels)
	}
	*c = Consistency(level)
	return nil
}

func (c Consistency) String() string {
	return string(c)
}

// LogSeverity represents the logging severity and can accept the following
// values: "TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF".
type LogSeverity string

var validLogSeverities = []string{"TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF"}

func (l *LogSeverity) UnmarshalText(text []byte) error {
	level := strings.ToUpper(string(text))
	if !slices.Contains(validLogSeverities, level) {
		return fmt.Errorf("invalid logseverity value: %s. It can only assume values in the list: %v", text, validLogSeverities)
	}
	*l = LogSeverity(level)
	return nil
}

func (l LogSeverity) String() string {
	return string(l)
}
