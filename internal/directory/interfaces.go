// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"
	"errors"

	"github.com/canonical/directory-sync/internal/types"
)

var (
	// ErrGroupNotFound means the external group does not exist in the
	// directory. Row-scoped: callers skip the row and continue.
	ErrGroupNotFound = errors.New("external group not found")
	// ErrAuthentication means the directory rejected our credentials.
	// Run-fatal: no partial sync without authentication.
	ErrAuthentication = errors.New("directory authentication failed")
)

// DirectoryInterface resolves the full member list of an external group.
// Implementations must page through provider results to completion; a
// partial member set is never returned.
type DirectoryInterface interface {
	Name() string
	ResolveMembers(ctx context.Context, externalGroup string) ([]types.Member, error)
}
