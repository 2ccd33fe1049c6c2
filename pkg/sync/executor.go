// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/monitoring"
	"github.com/canonical/directory-sync/internal/tracing"
)

// Executor applies planned actions against the target store. In
// simulate mode it performs no writes and reports every mutating action
// as SKIPPED_SIMULATED.
type Executor struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (e *Executor) Apply(ctx context.Context, action Action, simulate bool) Outcome {
	ctx, span := e.tracer.Start(ctx, "sync.Executor.Apply")
	defer span.End()

	if action.Kind == ActionNoop {
		return Outcome{Status: OutcomeNoop}
	}

	if simulate {
		e.logger.Debugf("simulate: would %s member %s in group %s", action.Kind, action.MemberID, action.LocalGroup)
		return Outcome{Status: OutcomeSkippedSimulated}
	}

	var err error
	switch action.Kind {
	case ActionAdd:
		err = e.storage.AddMember(ctx, action.LocalGroup, action.MemberID, action.Profile)
	case ActionRemove:
		err = e.storage.RemoveMember(ctx, action.LocalGroup, action.MemberID)
	default:
		err = fmt.Errorf("unknown action kind %q", action.Kind)
	}

	if err != nil {
		e.logger.Errorf("failed to apply %s for member %s in group %s: %v", action.Kind, action.MemberID, action.LocalGroup, err)
		return Outcome{Status: OutcomeFailed, Reason: reasonFor(err)}
	}

	return Outcome{Status: OutcomeApplied}
}

func reasonFor(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	return err.Error()
}

func NewExecutor(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Executor {
	e := new(Executor)

	e.storage = storage

	e.tracer = tracer
	e.monitor = monitor
	e.logger = logger

	return e
}
