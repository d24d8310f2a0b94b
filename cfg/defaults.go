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

// GetDefaultLoggingConfig returns the default logging configuration used
// before any flags or config file have been parsed.
func GetDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Severity: "INFO",
		Format:   "text",
	}
}

// GetDefaultStoreConfig returns the default store connection settings.
func GetDefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Hosts:                []string{"localhost"},
		Keyspace:             "lucene",
		ColumnFamily:         "files",
		Consistency:          Consistency("one"),
		OperationTimeoutSecs: 30,
		ReplicationFactor:    1,
	}
}

// GetDefaultFileConfig returns the default block-mapped file layer sizing.
// BufferSizeBytes defaults to BlockSizeBytes: a buffer narrower than one
// block can never gain anything from batching, and anything wider should
// be an explicit multiple of it to keep round-trips minimal.
func GetDefaultFileConfig() FileConfig {
	return FileConfig{
		BlockSizeBytes:  1 << 20,
		BufferSizeBytes: 1 << 20,
	}
}
