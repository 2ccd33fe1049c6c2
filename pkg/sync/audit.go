// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/tracing"
)

// AuditSink buffers the audit records of a run in memory. Records are
// only persisted on Flush, a run that dies before flushing leaves the
// previous log intact.
type AuditSink struct {
	mu      gosync.Mutex
	records []Record

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (s *AuditSink) Record(localGroup, externalGroup string, action Action, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, Record{
		LocalGroup:    localGroup,
		ExternalGroup: externalGroup,
		MemberID:      action.MemberID,
		ActionKind:    action.Kind,
		Outcome:       outcome.Status,
		Reason:        outcome.Reason,
	})
}

// Records returns a copy of the buffered records.
func (s *AuditSink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]Record, len(s.records))
	copy(records, s.records)
	return records
}

// Flush writes the buffered records to the writer, replacing whatever
// the destination held before, and clears the buffer.
func (s *AuditSink) Flush(ctx context.Context, writer TableWriterInterface) error {
	ctx, span := s.tracer.Start(ctx, "sync.AuditSink.Flush")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Warnf("overwriting previous audit log at %s", writer.Destination())

	if err := writer.WriteRows(ctx, s.records); err != nil {
		return fmt.Errorf("failed to flush audit records: %v", err)
	}

	s.records = nil
	return nil
}

func NewAuditSink(tracer tracing.TracingInterface, logger logging.LoggerInterface) *AuditSink {
	s := new(AuditSink)

	s.tracer = tracer
	s.logger = logger

	return s
}
