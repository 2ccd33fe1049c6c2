// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/directory-sync/internal/types"
)

// ListGroups retrieves the names of all groups in the target store.
func (s *Storage) ListGroups(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.ListGroups")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("name").
		From("groups").
		OrderBy("name ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %v", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan group name: %v", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %v", err)
	}

	return names, nil
}

// GroupExists reports whether a group with the given name exists.
func (s *Storage) GroupExists(ctx context.Context, name string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.GroupExists")
	defer span.End()

	_, err := s.groupID(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// CreateGroup inserts a new group.
func (s *Storage) CreateGroup(ctx context.Context, name string) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.CreateGroup")
	defer span.End()

	now := time.Now().UTC()

	_, err := s.db.Statement(ctx).
		Insert("groups").
		Columns("name", "created_at", "updated_at").
		Values(name, now, now).
		ExecContext(ctx)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return WrapDuplicateKeyError(err, "group name already exists")
		}
		return fmt.Errorf("failed to insert group: %v", err)
	}

	return nil
}

// ListMemberships retrieves the current memberships of a group.
func (s *Storage) ListMemberships(ctx context.Context, group string) ([]types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.ListMemberships")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("g.name", "gm.member_id", "gm.profile").
		From("group_members gm").
		Join("groups g ON g.id = gm.group_id").
		Where(sq.Eq{"g.name": group}).
		OrderBy("gm.member_id ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %v", err)
	}
	defer rows.Close()

	memberships := make([]types.Membership, 0)
	for rows.Next() {
		var m types.Membership
		var profile string
		if err := rows.Scan(&m.LocalGroup, &m.MemberID, &profile); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %v", err)
		}
		m.Profile, err = types.ParseProfile(profile)
		if err != nil {
			return nil, fmt.Errorf("invalid profile %q: %v", profile, err)
		}
		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %v", err)
	}

	return memberships, nil
}

// AddMember adds a member to a group with the given profile. Re-adding an
// existing member is a no-op; the profile of an existing member is not
// altered.
func (s *Storage) AddMember(ctx context.Context, group, memberID string, profile types.Profile) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.AddMember")
	defer span.End()

	groupID, err := s.groupID(ctx, group)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = s.db.Statement(ctx).
		Insert("group_members").
		Columns("group_id", "member_id", "profile", "created_at", "updated_at").
		Values(groupID, memberID, profile, now, now).
		Suffix("ON CONFLICT (group_id, member_id) DO NOTHING").
		ExecContext(ctx)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return WrapForeignKeyError(err, "group does not exist")
		}
		return fmt.Errorf("failed to insert group member: %v", err)
	}

	return nil
}

// RemoveMember revokes a member's membership in a group. Removing an absent
// member is a no-op.
func (s *Storage) RemoveMember(ctx context.Context, group, memberID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.RemoveMember")
	defer span.End()

	groupID, err := s.groupID(ctx, group)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.db.Statement(ctx).
		Delete("group_members").
		Where(sq.Eq{"group_id": groupID, "member_id": memberID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %v", err)
	}

	return nil
}

// groupID resolves a group name to its primary key.
func (s *Storage) groupID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.Statement(ctx).
		Select("id").
		From("groups").
		Where(sq.Eq{"name": name}).
		QueryRowContext(ctx).
		Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query group: %v", err)
	}

	return id, nil
}
