// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/kelseyhightower/envconfig"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/directory-sync/internal/config"
	"github.com/canonical/directory-sync/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema migrations",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrate(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	migrateCmd.Flags().String("dsn", "", "PostgreSQL DSN connection string")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command) error {
	specs := new(config.EnvSpec)
	// best-effort env loading, flags take precedence
	_ = envconfig.Process("", specs)

	dsn := flagOrEnv(cmd, "dsn", specs.DSN)
	if dsn == "" {
		return fmt.Errorf("a PostgreSQL DSN is required (--dsn flag or DSN env var)")
	}

	pgxConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN: %v", err)
	}

	sqlDB := stdlib.OpenDB(*pgxConfig)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.EmbedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %v", err)
	}

	return nil
}
