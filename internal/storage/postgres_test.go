// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	trace "go.opentelemetry.io/otel/trace"

	"github.com/canonical/directory-sync/internal/db"
	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/types"
	"github.com/canonical/directory-sync/migrations"
)

type mockTracer struct{}

func (m *mockTracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

type mockMonitor struct{}

func (m *mockMonitor) GetService() string { return "test-service" }
func (m *mockMonitor) SetResponseTimeMetric(labels map[string]string, value float64) error {
	return nil
}
func (m *mockMonitor) SetDependencyAvailability(labels map[string]string, value float64) error {
	return nil
}

// sanitizeName converts test names to valid container names.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ToLower(name)
	return name
}

func setupTestPostgres(t *testing.T) (string, *postgres.PostgresContainer) {
	t.Helper()
	ctx := context.Background()

	containerName := fmt.Sprintf("directory-sync-%s", sanitizeName(t.Name()))

	var pgContainer *postgres.PostgresContainer
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping: Docker not available (%v)", r)
			}
		}()
		var err error
		pgContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			testcontainers.CustomizeRequest(testcontainers.GenericContainerRequest{
				ContainerRequest: testcontainers.ContainerRequest{
					Name: containerName,
				},
			}),
		)
		if err != nil {
			t.Fatalf("Failed to start PostgreSQL container: %v", err)
		}
	}()

	if pgContainer == nil {
		return "", nil
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	// Wait for PostgreSQL to be ready
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		config, err := pgx.ParseConfig(connStr)
		if err != nil {
			t.Fatalf("Failed to parse config: %v", err)
		}
		sqlDB := stdlib.OpenDB(*config)
		if err := sqlDB.Ping(); err == nil {
			sqlDB.Close()
			break
		}
		sqlDB.Close()
		if i < maxRetries-1 {
			time.Sleep(time.Second)
		}
	}

	return connStr, pgContainer
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()
	config, err := pgx.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("Failed to parse DSN: %v", err)
	}

	sqlDB := stdlib.OpenDB(*config)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.EmbedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("Failed to set dialect: %v", err)
	}

	if err := goose.Up(sqlDB, "."); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
}

func TestStorageIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Parallel()

	connStr, container := setupTestPostgres(t)
	if container == nil {
		return // skipped due to Docker unavailability
	}
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	runMigrations(t, connStr)

	logger := logging.NewNoopLogger()
	dbClient, err := db.NewDBClient(
		db.Config{DSN: connStr, MinConns: 10, MaxConns: 20},
		&mockTracer{},
		&mockMonitor{},
		logger,
	)
	if err != nil {
		t.Fatalf("Failed to create DB client: %v", err)
	}
	defer dbClient.Close()

	ctx := context.Background()
	s := NewStorage(dbClient, &mockTracer{}, &mockMonitor{}, logger)

	if err := s.CreateGroup(ctx, "analysts"); err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	if err := s.CreateGroup(ctx, "analysts"); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	exists, err := s.GroupExists(ctx, "analysts")
	if err != nil || !exists {
		t.Fatalf("expected group to exist, got exists=%v err=%v", exists, err)
	}

	groups, err := s.ListGroups(ctx)
	if err != nil {
		t.Fatalf("failed to list groups: %v", err)
	}
	if len(groups) != 1 || groups[0] != "analysts" {
		t.Fatalf("unexpected groups %v", groups)
	}

	if err := s.AddMember(ctx, "analysts", "alice", types.ProfileDataAnalyst); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	// Re-adding with a different profile must keep the original one.
	if err := s.AddMember(ctx, "analysts", "alice", types.ProfileDataScientist); err != nil {
		t.Fatalf("idempotent add failed: %v", err)
	}

	if err := s.AddMember(ctx, "analysts", "bob", types.ProfileReader); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	memberships, err := s.ListMemberships(ctx, "analysts")
	if err != nil {
		t.Fatalf("failed to list memberships: %v", err)
	}
	if len(memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(memberships))
	}
	for _, m := range memberships {
		if m.MemberID == "alice" && m.Profile != types.ProfileDataAnalyst {
			t.Fatalf("expected alice to keep profile %s, got %s", types.ProfileDataAnalyst, m.Profile)
		}
	}

	if err := s.AddMember(ctx, "missing", "alice", types.ProfileReader); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.RemoveMember(ctx, "analysts", "bob"); err != nil {
		t.Fatalf("failed to remove member: %v", err)
	}
	// Removing again is a no-op.
	if err := s.RemoveMember(ctx, "analysts", "bob"); err != nil {
		t.Fatalf("idempotent remove failed: %v", err)
	}

	memberships, err = s.ListMemberships(ctx, "analysts")
	if err != nil {
		t.Fatalf("failed to list memberships: %v", err)
	}
	if len(memberships) != 1 || memberships[0].MemberID != "alice" {
		t.Fatalf("unexpected memberships %v", memberships)
	}
}
