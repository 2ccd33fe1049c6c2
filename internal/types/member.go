// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

// Member is a user as reported by the external directory. ID is the
// provider-assigned stable identifier, not the display name.
type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Membership is one member's presence in a local group, as recorded in the
// target store.
type Membership struct {
	LocalGroup string  `json:"local_group"`
	MemberID   string  `json:"member_id"`
	Profile    Profile `json:"profile"`
}
