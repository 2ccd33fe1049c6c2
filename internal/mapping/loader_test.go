// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package mapping

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/types"
)

type mockTracer struct{}

func (m *mockTracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

type staticReader struct {
	rows []types.GroupMapping
	err  error
}

func (r *staticReader) ReadRows(ctx context.Context) ([]types.GroupMapping, error) {
	return r.rows, r.err
}

func newTestLoader(reader TableReaderInterface) *Loader {
	return NewLoader(reader, &mockTracer{}, logging.NewNoopLogger())
}

func TestLoaderLoad(t *testing.T) {
	tests := []struct {
		name      string
		rows      []types.GroupMapping
		wantErr   string
		wantField string
		wantRow   int
	}{
		{
			name: "valid table",
			rows: []types.GroupMapping{
				{LocalGroup: "dss-users", ExternalGroup: "aad-users", Profile: types.ProfileReader},
				{LocalGroup: "dss-admins", ExternalGroup: "aad-admins", Profile: types.ProfileDataScientist},
			},
		},
		{
			name: "empty table is valid",
			rows: []types.GroupMapping{},
		},
		{
			name: "missing local group name",
			rows: []types.GroupMapping{
				{LocalGroup: "dss-users", ExternalGroup: "aad-users", Profile: types.ProfileReader},
				{LocalGroup: "", ExternalGroup: "aad-admins", Profile: types.ProfileReader},
			},
			wantErr:   "missing required value",
			wantField: "dss_group_name",
			wantRow:   1,
		},
		{
			name: "missing external group name",
			rows: []types.GroupMapping{
				{LocalGroup: "dss-users", ExternalGroup: "", Profile: types.ProfileReader},
			},
			wantErr:   "missing required value",
			wantField: "aad_group_name",
			wantRow:   0,
		},
		{
			name: "unknown profile",
			rows: []types.GroupMapping{
				{LocalGroup: "dss-users", ExternalGroup: "aad-users", Profile: "SUPERUSER"},
			},
			wantErr:   "unknown profile",
			wantField: "dss_profile",
			wantRow:   0,
		},
		{
			name: "duplicate local group name",
			rows: []types.GroupMapping{
				{LocalGroup: "dss-users", ExternalGroup: "aad-users", Profile: types.ProfileReader},
				{LocalGroup: "dss-admins", ExternalGroup: "aad-admins", Profile: types.ProfileReader},
				{LocalGroup: "dss-users", ExternalGroup: "aad-other", Profile: types.ProfileReader},
			},
			wantErr:   "duplicate local group",
			wantField: "dss_group_name",
			wantRow:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newTestLoader(&staticReader{rows: tt.rows})

			got, err := loader.Load(context.Background())

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(got) != len(tt.rows) {
					t.Fatalf("expected %d rows, got %d", len(tt.rows), len(got))
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(vErr.Reason, tt.wantErr) {
				t.Fatalf("expected reason containing %q, got %q", tt.wantErr, vErr.Reason)
			}
			if vErr.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, vErr.Field)
			}
			if vErr.Row != tt.wantRow {
				t.Fatalf("expected row %d, got %d", tt.wantRow, vErr.Row)
			}
		})
	}
}

func TestLoaderReaderError(t *testing.T) {
	loader := newTestLoader(&staticReader{err: errors.New("dataset unavailable")})

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error from reader to propagate")
	}
}

func TestCSVReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.csv")
	content := "dss_group_name,aad_group_name,dss_profile\n" +
		"dss-users,aad-users,READER\n" +
		"dss-admins,aad-admins,DATA_SCIENTIST\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	rows, err := NewCSVReader(path).ReadRows(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := types.GroupMapping{LocalGroup: "dss-users", ExternalGroup: "aad-users", Profile: types.ProfileReader}
	if rows[0] != want {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
}

func TestCSVReaderMissingFile(t *testing.T) {
	if _, err := NewCSVReader("/nonexistent/mappings.csv").ReadRows(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
