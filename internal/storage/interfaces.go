// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/directory-sync/internal/types"
)

type StorageInterface interface {
	// Group operations
	ListGroups(ctx context.Context) ([]string, error)
	GroupExists(ctx context.Context, name string) (bool, error)
	CreateGroup(ctx context.Context, name string) error

	// Membership operations
	ListMemberships(ctx context.Context, group string) ([]types.Membership, error)
	AddMember(ctx context.Context, group, memberID string, profile types.Profile) error
	RemoveMember(ctx context.Context, group, memberID string) error
}
