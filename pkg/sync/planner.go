// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"sort"

	"github.com/canonical/directory-sync/internal/types"
)

// Plan computes the actions needed to make the local group's membership
// match the external group's. Members present on both sides are left
// untouched, the member's existing profile is never rewritten. ADD
// actions are ordered before REMOVE actions so an interrupted run can
// only leave surplus members behind, never missing ones.
func Plan(mapping types.GroupMapping, external []types.Member, current []types.Membership) []Action {
	externalIDs := make(map[string]bool, len(external))
	for _, m := range external {
		externalIDs[m.ID] = true
	}

	currentIDs := make(map[string]bool, len(current))
	for _, m := range current {
		currentIDs[m.MemberID] = true
	}

	var toAdd, toRemove []string
	for id := range externalIDs {
		if !currentIDs[id] {
			toAdd = append(toAdd, id)
		}
	}
	for id := range currentIDs {
		if !externalIDs[id] {
			toRemove = append(toRemove, id)
		}
	}

	// Deterministic ordering makes runs reproducible and the audit log
	// diffable across runs.
	sort.Strings(toAdd)
	sort.Strings(toRemove)

	actions := make([]Action, 0, len(toAdd)+len(toRemove))
	for _, id := range toAdd {
		actions = append(actions, Action{
			Kind:       ActionAdd,
			MemberID:   id,
			LocalGroup: mapping.LocalGroup,
			Profile:    mapping.Profile,
		})
	}
	for _, id := range toRemove {
		actions = append(actions, Action{
			Kind:       ActionRemove,
			MemberID:   id,
			LocalGroup: mapping.LocalGroup,
		})
	}

	return actions
}
