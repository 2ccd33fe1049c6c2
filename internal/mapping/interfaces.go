// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package mapping

import (
	"context"

	"github.com/canonical/directory-sync/internal/types"
)

// TableReaderInterface is the host-provided source of mapping rows. The
// loader never constructs one itself.
type TableReaderInterface interface {
	ReadRows(ctx context.Context) ([]types.GroupMapping, error)
}
