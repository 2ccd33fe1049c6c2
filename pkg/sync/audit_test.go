// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/directory-sync/internal/types"
)

func sampleRecords(sink *AuditSink) {
	sink.Record("analysts", "Analysts",
		Action{Kind: ActionAdd, MemberID: "u1", LocalGroup: "analysts", Profile: types.ProfileDataAnalyst},
		Outcome{Status: OutcomeApplied})
	sink.Record("analysts", "Analysts",
		Action{Kind: ActionRemove, MemberID: "u2", LocalGroup: "analysts"},
		Outcome{Status: OutcomeFailed, Reason: "connection reset"})
	sink.Record("readers", "Readers",
		Action{Kind: ActionNoop, LocalGroup: "readers"},
		Outcome{Status: OutcomeNoop, Reason: "external group not found"})
}

func TestAuditSinkFlushClearsBuffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := NewAuditSink(newMockTracer(ctrl), newMockLogger(ctrl))
	sampleRecords(sink)

	if len(sink.Records()) != 3 {
		t.Fatalf("expected 3 buffered records, got %d", len(sink.Records()))
	}

	writer := NewMockTableWriterInterface(ctrl)
	writer.EXPECT().Destination().Return("/tmp/audit.csv").AnyTimes()
	writer.EXPECT().WriteRows(gomock.Any(), gomock.Len(3)).Return(nil)

	if err := sink.Flush(context.Background(), writer); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if len(sink.Records()) != 0 {
		t.Fatal("expected buffer to be cleared after flush")
	}
}

func TestAuditSinkFlushKeepsBufferOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := NewAuditSink(newMockTracer(ctrl), newMockLogger(ctrl))
	sampleRecords(sink)

	writer := NewMockTableWriterInterface(ctrl)
	writer.EXPECT().Destination().Return("/tmp/audit.csv").AnyTimes()
	writer.EXPECT().WriteRows(gomock.Any(), gomock.Any()).Return(os.ErrPermission)

	if err := sink.Flush(context.Background(), writer); err == nil {
		t.Fatal("expected flush error")
	}
	if len(sink.Records()) != 3 {
		t.Fatal("expected buffer to survive a failed flush")
	}
}

func TestCSVWriterRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	path := filepath.Join(t.TempDir(), "audit.csv")

	sink := NewAuditSink(newMockTracer(ctrl), newMockLogger(ctrl))
	sampleRecords(sink)
	original := sink.Records()

	if err := sink.Flush(context.Background(), NewCSVWriter(path)); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	parsed, err := ReadCSVRecords(path)
	if err != nil {
		t.Fatalf("failed to read audit log back: %v", err)
	}
	if !reflect.DeepEqual(parsed, original) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", parsed, original)
	}

	// The parsed log reconstructs the same run counts.
	summary := SummaryFromRecords(parsed)
	expected := Summary{Added: 1, Failed: 1, Skipped: 1}
	if summary != expected {
		t.Fatalf("expected summary %+v, got %+v", expected, summary)
	}
}

func TestCSVWriterReplacesPreviousContents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	path := filepath.Join(t.TempDir(), "audit.csv")
	writer := NewCSVWriter(path)

	sink := NewAuditSink(newMockTracer(ctrl), newMockLogger(ctrl))
	sampleRecords(sink)
	if err := sink.Flush(context.Background(), writer); err != nil {
		t.Fatalf("first flush failed: %v", err)
	}

	sink.Record("readers", "Readers",
		Action{Kind: ActionAdd, MemberID: "u9", LocalGroup: "readers", Profile: types.ProfileReader},
		Outcome{Status: OutcomeApplied})
	if err := sink.Flush(context.Background(), writer); err != nil {
		t.Fatalf("second flush failed: %v", err)
	}

	parsed, err := ReadCSVRecords(path)
	if err != nil {
		t.Fatalf("failed to read audit log back: %v", err)
	}
	if len(parsed) != 1 || parsed[0].MemberID != "u9" {
		t.Fatalf("expected only the second run's record, got %+v", parsed)
	}
}
