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
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the root configuration object, bound from flags, a config file,
// and defaults via viper.
type Config struct {
	AppName string `yaml:"app-name"`

	Store StoreConfig `yaml:"store"`

	File FileConfig `yaml:"file"`

	Logging LoggingConfig `yaml:"logging"`

	Debug DebugConfig `yaml:"debug"`
}

// StoreConfig configures the connection to the wide-column store backing
// the mounted directory.
type StoreConfig struct {
	Hosts []string `yaml:"hosts"`

	Keyspace string `yaml:"keyspace"`

	ColumnFamily string `yaml:"column-family"`

	Consistency Consistency `yaml:"consistency"`

	OperationTimeoutSecs int `yaml:"operation-timeout-secs"`

	ReplicationFactor int `yaml:"replication-factor"`
}

// FileConfig configures the block-mapped file layer's sizing knobs.
type FileConfig struct {
	BlockSizeBytes int64 `yaml:"block-size-bytes"`

	BufferSizeBytes int64 `yaml:"buffer-size-bytes"`
}

// LoggingConfig configures the slog-based structured logger.
type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`

	Format string `yaml:"format"`
}

// DebugConfig holds debug-only knobs that affect invariant-checking
// behavior rather than normal operation.
type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`
}

// BindFlags registers every flag this binary accepts and wires each to its
// viper key.
func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.StringP("app-name", "", "", "The application name of this mount.")
	if err = viper.BindPFlag("app-name", flagSet.Lookup("app-name")); err != nil {
		return err
	}

	flagSet.StringSliceP("hosts", "", []string{"localhost"}, "Wide-column store contact points.")
	if err = viper.BindPFlag("store.hosts", flagSet.Lookup("hosts")); err != nil {
		return err
	}

	flagSet.StringP("keyspace", "", "lucene", "Keyspace holding the directory's column family.")
	if err = viper.BindPFlag("store.keyspace", flagSet.Lookup("keyspace")); err != nil {
		return err
	}

	flagSet.StringP("column-family", "", "files", "Column family (table) name within the keyspace.")
	if err = viper.BindPFlag("store.column-family", flagSet.Lookup("column-family")); err != nil {
		return err
	}

	flagSet.StringP("consistency", "", "one", "Store consistency level for reads and writes.")
	if err = viper.BindPFlag("store.consistency", flagSet.Lookup("consistency")); err != nil {
		return err
	}

	flagSet.IntP("operation-timeout-secs", "", 30, "Per-operation timeout against the store, in seconds.")
	if err = viper.BindPFlag("store.operation-timeout-secs", flagSet.Lookup("operation-timeout-secs")); err != nil {
		return err
	}

	flagSet.IntP("replication-factor", "", 1, "Replication factor used when creating the keyspace.")
	if err = viper.BindPFlag("store.replication-factor", flagSet.Lookup("replication-factor")); err != nil {
		return err
	}

	flagSet.Int64P("block-size-bytes", "", 1<<20, "Maximum bytes stored per block column.")
	if err = viper.BindPFlag("file.block-size-bytes", flagSet.Lookup("block-size-bytes")); err != nil {
		return err
	}

	flagSet.Int64P("buffer-size-bytes", "", 1<<20, "Write-behind / read-ahead buffer size. Should be a multiple of block-size-bytes.")
	if err = viper.BindPFlag("file.buffer-size-bytes", flagSet.Lookup("buffer-size-bytes")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", "INFO", "Logging severity: TRACE, DEBUG, INFO, WARNING, ERROR, or OFF.")
	if err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "Logging output format: text or json.")
	if err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.BoolP("debug-invariants", "", false, "Exit when internal invariants are violated.")
	if err = viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug-invariants")); err != nil {
		return err
	}

	return nil
}
