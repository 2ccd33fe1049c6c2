// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/canonical/directory-sync/internal/logging"
)

type fakeSalesforce struct {
	records []teamMemberRecord
	err     error
	lastQ   string
}

func (f *fakeSalesforce) Query(q string, result any) error {
	f.lastQ = q
	if f.err != nil {
		return f.err
	}
	*result.(*[]teamMemberRecord) = f.records
	return nil
}

func newTestSalesforce(client *fakeSalesforce) *Salesforce {
	return NewSalesforceClient(client, &mockTracer{}, &mockMonitor{}, logging.NewNoopLogger())
}

func TestSalesforceResolveMembers(t *testing.T) {
	client := &fakeSalesforce{records: []teamMemberRecord{
		{Id: "003A", FullName: "Alice"},
		{Id: "003B", FullName: "Bob"},
		{Id: "", FullName: "no id, skipped"},
	}}

	members, err := newTestSalesforce(client).ResolveMembers(context.Background(), "Platform")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if !strings.Contains(client.lastQ, "fHCM2__Team__c = 'Platform'") {
		t.Fatalf("unexpected query: %s", client.lastQ)
	}
}

func TestSalesforceResolveMembersEscapesQuotes(t *testing.T) {
	client := &fakeSalesforce{records: []teamMemberRecord{{Id: "003A"}}}

	if _, err := newTestSalesforce(client).ResolveMembers(context.Background(), "O'Brien's Team"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(client.lastQ, "= 'O'Brien") {
		t.Fatalf("quotes not escaped in query: %s", client.lastQ)
	}
}

func TestSalesforceResolveMembersEmptyTeam(t *testing.T) {
	client := &fakeSalesforce{}

	_, err := newTestSalesforce(client).ResolveMembers(context.Background(), "Ghost Team")
	if !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestSalesforceResolveMembersQueryError(t *testing.T) {
	client := &fakeSalesforce{err: errors.New("salesforce unavailable")}

	_, err := newTestSalesforce(client).ResolveMembers(context.Background(), "Platform")
	if err == nil || errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
