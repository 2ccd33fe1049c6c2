// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import "context"

type AuthorizerInterface interface {
	// CheckAdmin reports whether the principal holds administrative rights
	// over the target store.
	CheckAdmin(ctx context.Context, principal string) (bool, error)
}

type AuthzClientInterface interface {
	Check(ctx context.Context, user, relation, object string) (bool, error)
}
