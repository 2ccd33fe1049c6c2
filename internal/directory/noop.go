// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"

	"github.com/canonical/directory-sync/internal/types"
)

type NoopClient struct{}

func (c *NoopClient) Name() string {
	return "noop"
}

func (c *NoopClient) ResolveMembers(ctx context.Context, externalGroup string) ([]types.Member, error) {
	return []types.Member{}, nil
}

func NewNoopClient() *NoopClient {
	return new(NoopClient)
}
