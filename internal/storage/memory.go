// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/canonical/directory-sync/internal/types"
)

var _ StorageInterface = (*MemoryStorage)(nil)

// MemoryStorage is an in-memory target store, used in tests and as a dry-run
// backend when no database is configured.
type MemoryStorage struct {
	mu      sync.RWMutex
	members map[string]map[string]types.Profile
}

func (m *MemoryStorage) ListGroups(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.members))
	for name := range m.members {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

func (m *MemoryStorage) GroupExists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.members[name]
	return ok, nil
}

func (m *MemoryStorage) CreateGroup(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[name]; ok {
		return ErrDuplicateKey
	}

	m.members[name] = make(map[string]types.Profile)
	return nil
}

func (m *MemoryStorage) ListMemberships(ctx context.Context, group string) ([]types.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.members[group]
	if !ok {
		return nil, ErrNotFound
	}

	memberships := make([]types.Membership, 0, len(members))
	for id, profile := range members {
		memberships = append(memberships, types.Membership{
			LocalGroup: group,
			MemberID:   id,
			Profile:    profile,
		})
	}
	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].MemberID < memberships[j].MemberID
	})

	return memberships, nil
}

func (m *MemoryStorage) AddMember(ctx context.Context, group, memberID string, profile types.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.members[group]
	if !ok {
		return ErrNotFound
	}

	// Idempotent: existing members keep their profile.
	if _, ok := members[memberID]; ok {
		return nil
	}

	members[memberID] = profile
	return nil
}

func (m *MemoryStorage) RemoveMember(ctx context.Context, group, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.members[group]
	if !ok {
		return nil
	}

	delete(members, memberID)
	return nil
}

func NewMemoryStorage() *MemoryStorage {
	m := new(MemoryStorage)

	m.members = make(map[string]map[string]types.Profile)

	return m
}
