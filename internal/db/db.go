// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/monitoring"
	"github.com/canonical/directory-sync/internal/tracing"
)

type Config struct {
	DSN             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	TracingEnabled  bool
}

type DBClientInterface interface {
	Statement(ctx context.Context) sq.StatementBuilderType
	Ping(ctx context.Context) error
	DB() *sql.DB
	Close()
}

var _ DBClientInterface = (*DBClient)(nil)

type DBClient struct {
	db *sql.DB

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Statement returns a postgres statement builder bound to the connection pool.
func (c *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(c.db)
}

func (c *DBClient) Ping(ctx context.Context) error {
	err := c.db.PingContext(ctx)

	available := 1.0
	if err != nil {
		available = 0.0
	}
	if mErr := c.monitor.SetDependencyAvailability(map[string]string{"component": "postgres"}, available); mErr != nil {
		c.logger.Errorf("failed to set dependency availability metric: %v", mErr)
	}

	return err
}

func (c *DBClient) DB() *sql.DB {
	return c.db
}

func (c *DBClient) Close() {
	if err := c.db.Close(); err != nil {
		c.logger.Errorf("failed to close database connection: %v", err)
	}
}

func NewDBClient(config Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	pgxConfig, err := pgx.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %v", err)
	}

	if config.TracingEnabled {
		pgxConfig.Tracer = otelpgx.NewTracer()
	}

	db := stdlib.OpenDB(*pgxConfig)

	if config.MaxConns > 0 {
		db.SetMaxOpenConns(config.MaxConns)
	}
	if config.MinConns > 0 {
		db.SetMaxIdleConns(config.MinConns)
	}
	if config.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(config.MaxConnLifetime)
	}
	if config.MaxConnIdleTime > 0 {
		db.SetConnMaxIdleTime(config.MaxConnIdleTime)
	}

	c := new(DBClient)

	c.db = db
	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	return c, nil
}
