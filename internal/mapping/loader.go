// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package mapping

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/tracing"
	"github.com/canonical/directory-sync/internal/types"
)

// fieldNames maps GroupMapping struct fields to their table column names.
var fieldNames = map[string]string{
	"LocalGroup":    "dss_group_name",
	"ExternalGroup": "aad_group_name",
	"Profile":       "dss_profile",
}

// Loader reads and validates the mapping table for a run. The returned rows
// are immutable for the run and ordered as read.
type Loader struct {
	reader   TableReaderInterface
	validate *validator.Validate

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// Load reads all mapping rows and validates them. Every row must supply all
// three fields, local group names must be unique, and profiles must be known
// values.
func (l *Loader) Load(ctx context.Context) ([]types.GroupMapping, error) {
	ctx, span := l.tracer.Start(ctx, "mapping.Loader.Load")
	defer span.End()

	rows, err := l.reader.ReadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping table: %w", err)
	}

	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		if err := l.validate.StructCtx(ctx, row); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				return nil, &ValidationError{
					Row:    i,
					Field:  fieldNames[fieldErrs[0].StructField()],
					Reason: "missing required value",
				}
			}
			return nil, fmt.Errorf("failed to validate mapping row %d: %v", i, err)
		}

		if _, err := types.ParseProfile(string(row.Profile)); err != nil {
			return nil, &ValidationError{
				Row:    i,
				Field:  fieldNames["Profile"],
				Reason: fmt.Sprintf("unknown profile %q, valid values are %v", row.Profile, types.Profiles),
			}
		}

		if prev, ok := seen[row.LocalGroup]; ok {
			return nil, &ValidationError{
				Row:    i,
				Field:  fieldNames["LocalGroup"],
				Reason: fmt.Sprintf("duplicate local group %q, first seen at row %d", row.LocalGroup, prev),
			}
		}
		seen[row.LocalGroup] = i
	}

	l.logger.Infof("Loaded %d mapping rows", len(rows))

	return rows, nil
}

func NewLoader(reader TableReaderInterface, tracer tracing.TracingInterface, logger logging.LoggerInterface) *Loader {
	l := new(Loader)

	l.reader = reader
	l.validate = validator.New()

	l.tracer = tracer
	l.logger = logger

	return l
}
