// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"context"
	"errors"
	"testing"

	trace "go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/directory-sync/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package sync -destination ./mock_sync.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package sync -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package sync -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package sync -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func newMockTracer(ctrl *gomock.Controller) *MockTracingInterface {
	tracer := NewMockTracingInterface(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	).AnyTimes()
	return tracer
}

func newMockLogger(ctrl *gomock.Controller) *MockLoggerInterface {
	logger := NewMockLoggerInterface(ctrl)
	logger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warnf(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return logger
}

func TestExecutorApply(t *testing.T) {
	storageErr := errors.New("connection reset")

	testCases := []struct {
		name       string
		action     Action
		simulate   bool
		setupMocks func(mockStorage *MockStorageInterface)
		expected   OutcomeStatus
	}{
		{
			name:     "add applied",
			action:   Action{Kind: ActionAdd, MemberID: "u1", LocalGroup: "g1", Profile: types.ProfileReader},
			simulate: false,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().AddMember(gomock.Any(), "g1", "u1", types.ProfileReader).Return(nil).Times(1)
			},
			expected: OutcomeApplied,
		},
		{
			name:     "remove applied",
			action:   Action{Kind: ActionRemove, MemberID: "u1", LocalGroup: "g1"},
			simulate: false,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().RemoveMember(gomock.Any(), "g1", "u1").Return(nil).Times(1)
			},
			expected: OutcomeApplied,
		},
		{
			name:       "simulate skips writes",
			action:     Action{Kind: ActionAdd, MemberID: "u1", LocalGroup: "g1", Profile: types.ProfileReader},
			simulate:   true,
			setupMocks: func(mockStorage *MockStorageInterface) {},
			expected:   OutcomeSkippedSimulated,
		},
		{
			name:     "storage failure",
			action:   Action{Kind: ActionAdd, MemberID: "u1", LocalGroup: "g1", Profile: types.ProfileReader},
			simulate: false,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().AddMember(gomock.Any(), "g1", "u1", types.ProfileReader).Return(storageErr).Times(1)
			},
			expected: OutcomeFailed,
		},
		{
			name:       "noop never touches storage",
			action:     Action{Kind: ActionNoop, LocalGroup: "g1"},
			simulate:   false,
			setupMocks: func(mockStorage *MockStorageInterface) {},
			expected:   OutcomeNoop,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			tc.setupMocks(mockStorage)

			e := NewExecutor(mockStorage, newMockTracer(ctrl), NewMockMonitorInterface(ctrl), newMockLogger(ctrl))

			outcome := e.Apply(context.Background(), tc.action, tc.simulate)
			if outcome.Status != tc.expected {
				t.Fatalf("expected outcome %s, got %s (%s)", tc.expected, outcome.Status, outcome.Reason)
			}
		})
	}
}

func TestExecutorApplyMarksTimeouts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockStorage.EXPECT().AddMember(gomock.Any(), "g1", "u1", types.ProfileReader).Return(context.DeadlineExceeded)

	e := NewExecutor(mockStorage, newMockTracer(ctrl), NewMockMonitorInterface(ctrl), newMockLogger(ctrl))

	outcome := e.Apply(context.Background(), Action{Kind: ActionAdd, MemberID: "u1", LocalGroup: "g1", Profile: types.ProfileReader}, false)
	if outcome.Status != OutcomeFailed {
		t.Fatalf("expected FAILED, got %s", outcome.Status)
	}
	if outcome.Reason != ErrCodeTimeout {
		t.Fatalf("expected reason %s, got %s", ErrCodeTimeout, outcome.Reason)
	}
}
