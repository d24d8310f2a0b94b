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

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/widecolumnfs/blockdir"
	"github.com/widecolumnfs/blockdir/cfg"
	"github.com/widecolumnfs/blockdir/internal/logger"
	"github.com/widecolumnfs/blockdir/internal/metrics"
	"github.com/widecolumnfs/blockdir/internal/store"
)

var mountLog = logger.ForComponent("cmd")

// clusterOptionsFromConfig translates the cfg.Config the CLI resolved
// (flags, config file, defaults) into the store layer's ClusterOptions,
// the one place a string-typed consistency name becomes the driver's
// gocql.Consistency enum.
func clusterOptionsFromConfig(c cfg.Config) (store.ClusterOptions, error) {
	consistency, err := store.ParseConsistency(string(c.Store.Consistency))
	if err != nil {
		return store.ClusterOptions{}, err
	}

	return store.ClusterOptions{
		Hosts:             c.Store.Hosts,
		Keyspace:          c.Store.Keyspace,
		ColumnFamily:      c.Store.ColumnFamily,
		Consistency:       consistency,
		Timeout:           time.Duration(c.Store.OperationTimeoutSecs) * time.Second,
		ReplicationFactor: c.Store.ReplicationFactor,
		EnumerationColumn: "DESCRIPTOR",
	}, nil
}

// runMount dials the store, wires logging/metrics, and serves the directory
// surface at mountPoint until the process receives an interrupt.
// Presenting that surface as an actual kernel-level mount is the enclosing
// process's concern; this binary's job ends at handing a
// ready *blockdir.Directory to whatever consumes it.
func runMount(ctx context.Context, keyspace, mountPoint string) (err error) {
	if err := logger.Init(MountConfig.Logging); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	opts, err := clusterOptionsFromConfig(MountConfig)
	if err != nil {
		return err
	}
	opts.Keyspace = keyspace

	client, err := store.Dial(ctx, opts)
	if err != nil {
		return fmt.Errorf("dialing store: %w", err)
	}
	defer client.Close()

	m, err := metrics.NewOCMetrics()
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	client.SetMetrics(m)

	_ = blockdir.Open(client, blockdir.Options{
		DefaultBlockSize: uint64(MountConfig.File.BlockSizeBytes),
		BufferSize:       int(MountConfig.File.BufferSizeBytes),
		Metrics:          m,
	})

	mountLog.Infof("serving %s at %s", keyspace, mountPoint)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	<-sigCtx.Done()

	mountLog.Infof("shutting down")
	return nil
}

// runCreateSchema idempotently creates the keyspace and column family
// described by MountConfig; store.Dial already does CREATE ... IF NOT
// EXISTS, so this command is just Dial-and-close.
func runCreateSchema(ctx context.Context) error {
	if err := logger.Init(MountConfig.Logging); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	opts, err := clusterOptionsFromConfig(MountConfig)
	if err != nil {
		return err
	}

	client, err := store.Dial(ctx, opts)
	if err != nil {
		return fmt.Errorf("dialing store: %w", err)
	}
	defer client.Close()

	mountLog.Infof("schema ready: keyspace=%s column_family=%s", opts.Keyspace, opts.ColumnFamily)
	return nil
}
