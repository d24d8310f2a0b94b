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
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/widecolumnfs/blockdir/internal/blockmap"
	"github.com/widecolumnfs/blockdir/internal/logger"
	"github.com/widecolumnfs/blockdir/internal/metrics"
)

var cqlLog = logger.ForComponent("store")

// ClusterOptions configures the connection to the wide-column store.
type ClusterOptions struct {
	Hosts             []string
	Keyspace          string
	ColumnFamily      string
	Consistency       gocql.Consistency
	Timeout           time.Duration
	ReplicationFactor int

	// EnumerationColumn is the column name ListRowsWithColumn is expected to
	// be called with (DESCRIPTOR, in practice); only mutations of this
	// column maintain the presence index. The store client otherwise has no
	// notion of "the" descriptor column — that belongs to the directory
	// layer — it just needs to know which column enumeration is keyed on.
	EnumerationColumn string
}

// DefaultClusterOptions returns a reasonable set of defaults for a local
// single-node cluster.
func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{
		Hosts:             []string{"localhost"},
		Keyspace:          "lucene",
		ColumnFamily:      "files",
		Consistency:       gocql.One,
		Timeout:           30 * time.Second,
		ReplicationFactor: 1,
		EnumerationColumn: "DESCRIPTOR",
	}
}

// CQLClient is the concrete Client backed by a *gocql.Session. The
// column family is modeled as a wide CQL table keyed by (row_key,
// column_name), which is the direct CQL analogue of a legacy column family:
// one partition per row, one clustering row per column.
//
// A second table, indexed by column_name first, tracks which rows currently
// carry a given column so that ListRowsWithColumn does not depend on
// partitioner token order.
type CQLClient struct {
	session           *gocql.Session
	keyspace          string
	table             string
	presenceTable     string
	consistency       gocql.Consistency
	enumerationColumn string
	metrics           metrics.MetricHandle
}

// Dial opens a session to the cluster described by opts and returns a Client.
// Dial is idempotent with respect to schema: it creates the keyspace and
// tables if absent (CREATE ... IF NOT EXISTS), which under CQL needs no
// special-casing of "already exists" errors the way the Thrift-era store did.
func Dial(ctx context.Context, opts ClusterOptions) (*CQLClient, error) {
	cluster := gocql.NewCluster(opts.Hosts...)
	cluster.Consistency = opts.Consistency
	cluster.Timeout = opts.Timeout
	cluster.ProtoVersion = 4

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("store: connecting to cluster: %w", err)
	}

	c := &CQLClient{
		session:           session,
		keyspace:          opts.Keyspace,
		table:             opts.ColumnFamily,
		presenceTable:     opts.ColumnFamily + "_by_presence",
		consistency:       opts.Consistency,
		enumerationColumn: opts.EnumerationColumn,
		metrics:           metrics.NewNoopMetrics(),
	}

	if err := c.ensureSchema(ctx, opts.ReplicationFactor); err != nil {
		session.Close()
		return nil, err
	}

	cqlLog.Infof("dialed cluster %v, keyspace %s", opts.Hosts, opts.Keyspace)

	return c, nil
}

// SetMetrics installs h as the handle this client records store round-trips
// through. Callers that don't invoke it keep the default no-op handle.
func (c *CQLClient) SetMetrics(h metrics.MetricHandle) {
	c.metrics = h
}

func (c *CQLClient) record(ctx context.Context, op string, start time.Time) {
	attrs := []metrics.Attr{{Key: metrics.StoreOp, Value: op}}
	c.metrics.StoreRequestCount(ctx, 1, attrs)
	c.metrics.StoreRequestLatency(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
}

func (c *CQLClient) ensureSchema(ctx context.Context, replicationFactor int) error {
	stmts := []string{
		fmt.Sprintf(
			`CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}`,
			c.keyspace, replicationFactor),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s.%s (row_key text, column_name text, value blob, PRIMARY KEY (row_key, column_name))`,
			c.keyspace, c.table),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s.%s (column_name text, row_key text, PRIMARY KEY (column_name, row_key))`,
			c.keyspace, c.presenceTable),
	}

	for _, stmt := range stmts {
		if err := c.session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("store: ensuring schema: %w", err)
		}
	}

	return nil
}

// Close releases the underlying session.
func (c *CQLClient) Close() {
	c.session.Close()
}

func (c *CQLClient) GetColumn(ctx context.Context, rowKey, columnName string) ([]byte, bool, error) {
	defer c.record(ctx, "GetColumn", time.Now())

	var value []byte
	stmt := fmt.Sprintf(`SELECT value FROM %s.%s WHERE row_key = ? AND column_name = ?`, c.keyspace, c.table)

	err := c.session.Query(stmt, rowKey, columnName).WithContext(ctx).Consistency(c.consistency).Scan(&value)
	if err == gocql.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("GetColumn", rowKey, err)
	}

	return value, true, nil
}

func (c *CQLClient) GetColumns(ctx context.Context, rowKey string, columnNames []string) (map[string][]byte, error) {
	defer c.record(ctx, "GetColumns", time.Now())

	stmt := fmt.Sprintf(`SELECT column_name, value FROM %s.%s WHERE row_key = ? AND column_name IN ?`, c.keyspace, c.table)

	iter := c.session.Query(stmt, rowKey, columnNames).WithContext(ctx).Consistency(c.consistency).Iter()

	result := make(map[string][]byte, len(columnNames))
	var name string
	var value []byte
	for iter.Scan(&name, &value) {
		result[name] = value
	}

	if err := iter.Close(); err != nil {
		return nil, wrap("GetColumns", rowKey, err)
	}

	return result, nil
}

func (c *CQLClient) ListRowsWithColumn(ctx context.Context, columnName string) ([]string, error) {
	defer c.record(ctx, "ListRowsWithColumn", time.Now())

	stmt := fmt.Sprintf(`SELECT row_key FROM %s.%s WHERE column_name = ?`, c.keyspace, c.presenceTable)

	iter := c.session.Query(stmt, columnName).WithContext(ctx).Consistency(c.consistency).Iter()

	var rowKeys []string
	var rowKey string
	for iter.Scan(&rowKey) {
		rowKeys = append(rowKeys, rowKey)
	}

	if err := iter.Close(); err != nil {
		return nil, wrap("ListRowsWithColumn", columnName, err)
	}

	return rowKeys, nil
}

func (c *CQLClient) SetColumns(ctx context.Context, rowKey string, m *blockmap.Map) error {
	if m.Len() == 0 {
		// Row-level deletion is unsupported; treated as a no-op.
		return nil
	}

	defer c.record(ctx, "SetColumns", time.Now())
	c.metrics.BatchColumnCount(ctx, int64(m.Len()), nil)

	batch := c.session.NewBatch(gocql.LoggedBatch)
	batch.Cons = c.consistency

	for _, entry := range m.Entries() {
		if entry.Value == nil {
			batch.Query(
				fmt.Sprintf(`DELETE FROM %s.%s WHERE row_key = ? AND column_name = ?`, c.keyspace, c.table),
				rowKey, entry.ColumnName)
		} else {
			batch.Query(
				fmt.Sprintf(`INSERT INTO %s.%s (row_key, column_name, value) VALUES (?, ?, ?)`, c.keyspace, c.table),
				rowKey, entry.ColumnName, entry.Value)
		}

		if entry.ColumnName == c.enumerationColumn {
			if entry.Value == nil {
				batch.Query(
					fmt.Sprintf(`DELETE FROM %s.%s WHERE column_name = ? AND row_key = ?`, c.keyspace, c.presenceTable),
					entry.ColumnName, rowKey)
			} else {
				batch.Query(
					fmt.Sprintf(`INSERT INTO %s.%s (column_name, row_key) VALUES (?, ?)`, c.keyspace, c.presenceTable),
					entry.ColumnName, rowKey)
			}
		}
	}

	if err := c.session.ExecuteBatch(batch.WithContext(ctx)); err != nil {
		return wrap("SetColumns", rowKey, err)
	}

	return nil
}
