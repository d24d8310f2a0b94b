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

import "fmt"

func isValidStoreConfig(c *StoreConfig) error {
	if len(c.Hosts) == 0 {
		return fmt.Errorf("store.hosts must name at least one contact point")
	}
	if c.Keyspace == "" {
		return fmt.Errorf("store.keyspace must not be empty")
	}
	if c.ColumnFamily == "" {
		return fmt.Errorf("store.column-family must not be empty")
	}
	if c.ReplicationFactor < 1 {
		return fmt.Errorf("store.replication-factor must be at least 1")
	}
	if c.OperationTimeoutSecs < 1 {
		return fmt.Errorf("store.operation-timeout-secs must be at least 1")
	}
	return nil
}

func isValidFileConfig(c *FileConfig) error {
	if c.BlockSizeBytes < 1 {
		return fmt.Errorf("file.block-size-bytes must be at least 1")
	}
	if c.BufferSizeBytes < 1 {
		return fmt.Errorf("file.buffer-size-bytes must be at least 1")
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	if err := isValidStoreConfig(&config.Store); err != nil {
		return fmt.Errorf("error parsing store config: %w", err)
	}

	if err := isValidFileConfig(&config.File); err != nil {
		return fmt.Errorf("error parsing file config: %w", err)
	}

	return nil
}
