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

// Package cmd wires the cobra/viper CLI surface: persistent flags bound via
// cfg.BindFlags, a config file optionally overlaid, everything unmarshaled
// into one Config.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/widecolumnfs/blockdir/cfg"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error

	// MountConfig is the fully resolved configuration, populated by
	// initConfig before RunE executes.
	MountConfig cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "blockdirfs [flags] keyspace mount_point",
	Short: "Mount a block-addressed virtual directory backed by a wide-column store",
	Long: `blockdirfs presents a directory of files, each mapped onto fixed-size
blocks and stored as columns in a wide-column keyspace, as a mountable
local file system.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		if err := cfg.ValidateConfig(&MountConfig); err != nil {
			return err
		}

		keyspace, mountPoint, err := populateArgs(args)
		if err != nil {
			return err
		}

		return runMount(cmd.Context(), keyspace, mountPoint)
	},
}

var createSchemaCmd = &cobra.Command{
	Use:   "create-schema",
	Short: "Create the keyspace and column family if they do not already exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateConfig(&MountConfig); err != nil {
			return err
		}
		return runCreateSchema(cmd.Context())
	},
}

func populateArgs(args []string) (keyspace, mountPoint string, err error) {
	switch len(args) {
	case 1:
		keyspace = MountConfig.Store.Keyspace
		mountPoint = args[0]
	case 2:
		keyspace = args[0]
		mountPoint = args[1]
	default:
		err = fmt.Errorf(
			"%s takes one or two arguments; run `%s --help` for more info",
			filepath.Base(os.Args[0]), filepath.Base(os.Args[0]))
		return
	}

	mountPoint, err = filepath.Abs(mountPoint)
	if err != nil {
		err = fmt.Errorf("canonicalizing mount point: %w", err)
		return
	}

	return
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(createSchemaCmd)
}

func initConfig() {
	MountConfig = cfg.Config{
		Logging: cfg.GetDefaultLoggingConfig(),
		Store:   cfg.GetDefaultStoreConfig(),
		File:    cfg.GetDefaultFileConfig(),
	}

	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&MountConfig)
		return
	}

	resolved, err := filepath.Abs(cfgFile)
	if err != nil {
		configFileErr = fmt.Errorf("error while resolving config file path: %w", err)
		return
	}

	viper.SetConfigFile(resolved)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("error while reading config file: %w", err)
		return
	}

	unmarshalErr = viper.Unmarshal(&MountConfig)
}
