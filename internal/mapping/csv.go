// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package mapping

import (
	"context"
	"fmt"
	"os"

	"github.com/jszwec/csvutil"

	"github.com/canonical/directory-sync/internal/types"
)

var _ TableReaderInterface = (*CSVReader)(nil)

// CSVReader reads mapping rows from a CSV file with columns dss_group_name,
// aad_group_name, dss_profile.
type CSVReader struct {
	path string
}

func (r *CSVReader) ReadRows(ctx context.Context) ([]types.GroupMapping, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %q: %v", r.path, err)
	}

	rows := []types.GroupMapping{}
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %q: %v", r.path, err)
	}

	return rows, nil
}

func NewCSVReader(path string) *CSVReader {
	r := new(CSVReader)

	r.path = path

	return r
}
