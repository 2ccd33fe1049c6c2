// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"context"

	"github.com/canonical/directory-sync/internal/types"
)

type ServiceInterface interface {
	Run(context.Context, string, []types.GroupMapping, bool) (*Summary, error)
	LastSummary() *Summary
}

type DirectoryInterface interface {
	Name() string
	ResolveMembers(context.Context, string) ([]types.Member, error)
}

type StorageInterface interface {
	GroupExists(context.Context, string) (bool, error)
	ListMemberships(context.Context, string) ([]types.Membership, error)
	AddMember(context.Context, string, string, types.Profile) error
	RemoveMember(context.Context, string, string) error
}

type MappingLoaderInterface interface {
	Load(context.Context) ([]types.GroupMapping, error)
}

type AuthorizerInterface interface {
	CheckAdmin(context.Context, string) (bool, error)
}

// TableWriterInterface persists audit records. Implementations replace
// the destination's previous contents on every write.
type TableWriterInterface interface {
	Destination() string
	WriteRows(context.Context, []Record) error
}
