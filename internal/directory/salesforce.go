// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/monitoring"
	"github.com/canonical/directory-sync/internal/salesforce"
	"github.com/canonical/directory-sync/internal/tracing"
	"github.com/canonical/directory-sync/internal/types"
)

const teamMembersQuery = "SELECT Id, fHCM2__Full_Name__c FROM fHCM2__Team_Member__c WHERE fHCM2__Team__c = '%s'"

// teamMemberRecord is a single Salesforce team member row.
type teamMemberRecord struct {
	Id       string `mapstructure:"Id"`
	FullName string `mapstructure:"fHCM2__Full_Name__c"`
}

var _ DirectoryInterface = (*Salesforce)(nil)

// Salesforce resolves group members by treating Salesforce teams as external
// groups.
type Salesforce struct {
	client salesforce.SalesforceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Salesforce) Name() string {
	return "salesforce"
}

func (s *Salesforce) ResolveMembers(ctx context.Context, externalGroup string) ([]types.Member, error) {
	_, span := s.tracer.Start(ctx, "directory.Salesforce.ResolveMembers")
	defer span.End()

	// Single quotes would break out of the SOQL string literal
	name := strings.ReplaceAll(externalGroup, "'", "\\'")

	records := []teamMemberRecord{}
	if err := s.client.Query(fmt.Sprintf(teamMembersQuery, name), &records); err != nil {
		return nil, fmt.Errorf("failed to query salesforce team members: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, externalGroup)
	}

	members := make([]types.Member, 0, len(records))
	for _, r := range records {
		if r.Id == "" {
			continue
		}
		members = append(members, types.Member{
			ID:          r.Id,
			DisplayName: r.FullName,
		})
	}

	return members, nil
}

func NewSalesforceClient(client salesforce.SalesforceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Salesforce {
	s := new(Salesforce)

	s.client = client

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
