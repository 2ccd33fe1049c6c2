// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import "errors"

// Profile is the local entitlement tier assigned to members provisioned
// through a mapping. Ordered from most to least potent.
type Profile string

const (
	ProfileDataScientist Profile = "DATA_SCIENTIST"
	ProfileDataAnalyst   Profile = "DATA_ANALYST"
	ProfileReader        Profile = "READER"
	ProfileExplorer      Profile = "EXPLORER"
	ProfileNone          Profile = "NONE"
)

// Profiles lists the valid profile values, most potent first.
var Profiles = []Profile{
	ProfileDataScientist,
	ProfileDataAnalyst,
	ProfileReader,
	ProfileExplorer,
	ProfileNone,
}

var ErrInvalidProfile = errors.New("invalid profile")

// ParseProfile converts a string to a Profile.
func ParseProfile(s string) (Profile, error) {
	for _, p := range Profiles {
		if string(p) == s {
			return p, nil
		}
	}
	return "", ErrInvalidProfile
}

// GroupMapping relates a local group to an external directory group and the
// profile granted to members provisioned through it. Immutable once loaded;
// LocalGroup is the unique key within a mapping table.
type GroupMapping struct {
	LocalGroup    string  `csv:"dss_group_name" validate:"required"`
	ExternalGroup string  `csv:"aad_group_name" validate:"required"`
	Profile       Profile `csv:"dss_profile" validate:"required"`
}
