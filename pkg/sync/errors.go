// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"fmt"
	"strconv"
	"strings"
)

// Error codes for sync run errors
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeAuth       = "AUTH_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeTimeout    = "TIMEOUT_ERROR"
	ErrCodeProvider   = "PROVIDER_ERROR"
	ErrCodePartialRun = "PARTIAL_RUN"
)

// SyncError represents a domain-specific error for sync runs
type SyncError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable error message
	Op         string            // Operation that failed (e.g., "Run", "Apply")
	Metadata   map[string]string // Additional context about the error
	Underlying error             // The underlying error if any
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Is implements error unwrapping for errors.Is
func (e *SyncError) Is(target error) bool {
	t, ok := target.(*SyncError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *SyncError) Unwrap() error {
	return e.Underlying
}

// Constructor functions for common errors
func NewAuthError(principal, reason string, op string) *SyncError {
	return &SyncError{
		Code:    ErrCodeAuth,
		Message: "authorization failed",
		Op:      op,
		Metadata: map[string]string{
			"principal": principal,
			"reason":    reason,
		},
	}
}

func NewMissingGroupsError(groups []string, op string) *SyncError {
	return &SyncError{
		Code:    ErrCodeValidation,
		Message: "local groups missing from target store",
		Op:      op,
		Metadata: map[string]string{
			"groups": strings.Join(groups, ","),
		},
	}
}

func NewTimeoutError(group string, op string, err error) *SyncError {
	return &SyncError{
		Code:    ErrCodeTimeout,
		Message: "operation timed out",
		Op:      op,
		Metadata: map[string]string{
			"group": group,
		},
		Underlying: err,
	}
}

func NewProviderError(group string, op string, err error) *SyncError {
	return &SyncError{
		Code:    ErrCodeProvider,
		Message: "directory provider request failed",
		Op:      op,
		Metadata: map[string]string{
			"group": group,
		},
		Underlying: err,
	}
}

// NewPartialRunError reports a run that completed with row or action
// level failures. The run is not rolled back, earlier actions stay
// committed.
func NewPartialRunError(failures []string, op string) *SyncError {
	return &SyncError{
		Code:    ErrCodePartialRun,
		Message: fmt.Sprintf("run completed with %d failure(s)", len(failures)),
		Op:      op,
		Metadata: map[string]string{
			"failure_count": strconv.Itoa(len(failures)),
			"failures":      strings.Join(failures, "; "),
		},
	}
}
