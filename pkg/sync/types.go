// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import "github.com/canonical/directory-sync/internal/types"

type ActionKind string

const (
	ActionAdd    ActionKind = "ADD"
	ActionRemove ActionKind = "REMOVE"
	ActionNoop   ActionKind = "NOOP"
)

// Action is one reconciliation decision for a mapping row.
type Action struct {
	Kind       ActionKind
	MemberID   string
	LocalGroup string
	Profile    types.Profile
}

type OutcomeStatus string

const (
	OutcomeApplied          OutcomeStatus = "APPLIED"
	OutcomeSkippedSimulated OutcomeStatus = "SKIPPED_SIMULATED"
	OutcomeFailed           OutcomeStatus = "FAILED"
	OutcomeNoop             OutcomeStatus = "NOOP"
)

// Outcome is the result of applying (or simulating) a single action.
type Outcome struct {
	Status OutcomeStatus
	Reason string
}

// Record is one audit row. Every action of a run produces exactly one
// record, including NOOPs and simulated actions.
type Record struct {
	LocalGroup    string        `csv:"local_group_name"`
	ExternalGroup string        `csv:"external_group_name"`
	MemberID      string        `csv:"member_id"`
	ActionKind    ActionKind    `csv:"action_kind"`
	Outcome       OutcomeStatus `csv:"outcome"`
	Reason        string        `csv:"reason,omitempty"`
}

// Summary is the final run result.
type Summary struct {
	RunID string `json:"run_id,omitempty"`

	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Simulated int `json:"simulated"`
}

func (s *Summary) count(kind ActionKind, outcome OutcomeStatus) {
	switch outcome {
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkippedSimulated:
		s.Simulated++
	case OutcomeNoop:
		s.Skipped++
	case OutcomeApplied:
		switch kind {
		case ActionAdd:
			s.Added++
		case ActionRemove:
			s.Removed++
		default:
			s.Skipped++
		}
	}
}

// SummaryFromRecords reconstructs a run summary from its audit records.
func SummaryFromRecords(records []Record) Summary {
	var s Summary
	for _, r := range records {
		s.count(r.ActionKind, r.Outcome)
	}
	return s
}
