// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"context"
	"fmt"
	"os"

	"github.com/jszwec/csvutil"
)

// CSVWriter persists audit records as a CSV table. Every write
// truncates and rewrites the file.
type CSVWriter struct {
	path string
}

func (w *CSVWriter) Destination() string {
	return w.path
}

func (w *CSVWriter) WriteRows(ctx context.Context, records []Record) error {
	data, err := csvutil.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal audit records: %v", err)
	}

	if err := os.WriteFile(w.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write audit log %s: %v", w.path, err)
	}

	return nil
}

// ReadCSVRecords loads a previously flushed audit log.
func ReadCSVRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log %s: %v", path, err)
	}

	var records []Record
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse audit log %s: %v", path, err)
	}

	return records, nil
}

var _ TableWriterInterface = (*CSVWriter)(nil)

func NewCSVWriter(path string) *CSVWriter {
	w := new(CSVWriter)

	w.path = path

	return w
}
