// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package mapping

import "fmt"

// ValidationError names the first offending row and field of a mapping
// table. Any validation failure is fatal for the whole run; no directory
// calls are made on a partially valid table.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid mapping table, row %d, field %q: %s", e.Row, e.Field, e.Reason)
}
