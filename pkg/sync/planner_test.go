// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"reflect"
	"testing"

	"github.com/canonical/directory-sync/internal/types"
)

func TestPlan(t *testing.T) {
	mapping := types.GroupMapping{
		LocalGroup:    "data-scientists",
		ExternalGroup: "DS-Team",
		Profile:       types.ProfileDataScientist,
	}

	members := func(ids ...string) []types.Member {
		out := make([]types.Member, 0, len(ids))
		for _, id := range ids {
			out = append(out, types.Member{ID: id})
		}
		return out
	}
	memberships := func(ids ...string) []types.Membership {
		out := make([]types.Membership, 0, len(ids))
		for _, id := range ids {
			out = append(out, types.Membership{LocalGroup: mapping.LocalGroup, MemberID: id, Profile: types.ProfileReader})
		}
		return out
	}

	testCases := []struct {
		name     string
		external []types.Member
		current  []types.Membership
		expected []Action
	}{
		{
			name:     "add and remove",
			external: members("A", "B", "C"),
			current:  memberships("B", "C", "D"),
			expected: []Action{
				{Kind: ActionAdd, MemberID: "A", LocalGroup: "data-scientists", Profile: types.ProfileDataScientist},
				{Kind: ActionRemove, MemberID: "D", LocalGroup: "data-scientists"},
			},
		},
		{
			name:     "already in sync",
			external: members("A", "B"),
			current:  memberships("A", "B"),
			expected: []Action{},
		},
		{
			name:     "empty local group",
			external: members("B", "A"),
			current:  nil,
			expected: []Action{
				{Kind: ActionAdd, MemberID: "A", LocalGroup: "data-scientists", Profile: types.ProfileDataScientist},
				{Kind: ActionAdd, MemberID: "B", LocalGroup: "data-scientists", Profile: types.ProfileDataScientist},
			},
		},
		{
			name:     "empty external group removes everyone",
			external: nil,
			current:  memberships("B", "A"),
			expected: []Action{
				{Kind: ActionRemove, MemberID: "A", LocalGroup: "data-scientists"},
				{Kind: ActionRemove, MemberID: "B", LocalGroup: "data-scientists"},
			},
		},
		{
			name:     "duplicate directory entries collapse",
			external: append(members("A"), members("A")...),
			current:  nil,
			expected: []Action{
				{Kind: ActionAdd, MemberID: "A", LocalGroup: "data-scientists", Profile: types.ProfileDataScientist},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actions := Plan(mapping, tc.external, tc.current)

			if len(actions) != len(tc.expected) {
				t.Fatalf("expected %d actions, got %d: %v", len(tc.expected), len(actions), actions)
			}
			for i := range tc.expected {
				if !reflect.DeepEqual(actions[i], tc.expected[i]) {
					t.Errorf("action %d: expected %+v, got %+v", i, tc.expected[i], actions[i])
				}
			}
		})
	}
}

func TestPlanOrdersAddsBeforeRemoves(t *testing.T) {
	mapping := types.GroupMapping{LocalGroup: "readers", ExternalGroup: "Readers", Profile: types.ProfileReader}

	actions := Plan(mapping,
		[]types.Member{{ID: "new-2"}, {ID: "new-1"}},
		[]types.Membership{{LocalGroup: "readers", MemberID: "old-1"}, {LocalGroup: "readers", MemberID: "old-2"}},
	)

	seenRemove := false
	for _, a := range actions {
		if a.Kind == ActionRemove {
			seenRemove = true
		}
		if a.Kind == ActionAdd && seenRemove {
			t.Fatalf("ADD action after REMOVE in %v", actions)
		}
	}

	if !seenRemove {
		t.Fatal("expected REMOVE actions in the plan")
	}
}

func TestPlanNeverEmitsBothKindsForSameMember(t *testing.T) {
	mapping := types.GroupMapping{LocalGroup: "readers", ExternalGroup: "Readers", Profile: types.ProfileReader}

	actions := Plan(mapping,
		[]types.Member{{ID: "A"}, {ID: "B"}},
		[]types.Membership{{LocalGroup: "readers", MemberID: "B"}, {LocalGroup: "readers", MemberID: "C"}},
	)

	kinds := make(map[string]ActionKind)
	for _, a := range actions {
		if prev, ok := kinds[a.MemberID]; ok {
			t.Fatalf("member %s planned as both %s and %s", a.MemberID, prev, a.Kind)
		}
		kinds[a.MemberID] = a.Kind
	}
}
