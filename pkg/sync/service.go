// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/canonical/directory-sync/internal/directory"
	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/monitoring"
	"github.com/canonical/directory-sync/internal/tracing"
	"github.com/canonical/directory-sync/internal/types"
)

var _ ServiceInterface = (*Service)(nil)

// Service drives a full reconciliation run. Rows are processed one at a
// time, in mapping order, so a failure in one row never interleaves
// with writes for another.
type Service struct {
	directory DirectoryInterface
	storage   StorageInterface
	authz     AuthorizerInterface
	writer    TableWriterInterface
	timeout   time.Duration

	// forceSimulate pins every run to simulate mode regardless of what the
	// caller asked for.
	forceSimulate bool

	mu          gosync.Mutex
	lastSummary *Summary

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Run reconciles every mapping row against the directory and returns
// the run summary. Mutations are committed per action, a failed run is
// not rolled back.
func (s *Service) Run(ctx context.Context, principal string, mappings []types.GroupMapping, simulate bool) (*Summary, error) {
	ctx, span := s.tracer.Start(ctx, "sync.Service.Run")
	defer span.End()

	op := "Run"
	simulate = simulate || s.forceSimulate

	ok, err := s.authz.CheckAdmin(ctx, principal)
	if err != nil {
		return nil, NewAuthError(principal, fmt.Sprintf("authorization check failed: %v", err), op)
	}
	if !ok {
		return nil, NewAuthError(principal, "principal is not an admin", op)
	}

	if err := s.checkLocalGroups(ctx, mappings, op); err != nil {
		return nil, err
	}

	sink := NewAuditSink(s.tracer, s.logger)
	executor := NewExecutor(s.storage, s.tracer, s.monitor, s.logger)
	summary := &Summary{RunID: uuid.NewString()}

	s.logger.Infof("starting %s run %s over %d mapping rows against %s", runMode(simulate), summary.RunID, len(mappings), s.directory.Name())

	for _, mapping := range mappings {
		if ctx.Err() != nil {
			s.logger.Warnf("run cancelled after %d applied and %d removed, remaining rows skipped", summary.Added, summary.Removed)
			s.finish(ctx, sink, summary)
			return summary, ctx.Err()
		}

		if fatal := s.syncRow(ctx, mapping, simulate, executor, sink, summary); fatal != nil {
			s.finish(ctx, sink, summary)
			return summary, fatal
		}
	}

	failures := failureList(sink)
	s.finish(ctx, sink, summary)

	if len(failures) > 0 {
		return summary, NewPartialRunError(failures, op)
	}

	s.logger.Infof("run finished: %d added, %d removed, %d skipped, %d simulated", summary.Added, summary.Removed, summary.Skipped, summary.Simulated)
	return summary, nil
}

// syncRow reconciles a single mapping row. Row-scoped failures are
// recorded in the sink and absorbed, only errors that must abort the
// whole run are returned.
func (s *Service) syncRow(ctx context.Context, mapping types.GroupMapping, simulate bool, executor *Executor, sink *AuditSink, summary *Summary) error {
	ctx, span := s.tracer.Start(ctx, "sync.Service.syncRow")
	defer span.End()

	rowCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		rowCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	members, err := s.directory.ResolveMembers(rowCtx, mapping.ExternalGroup)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrAuthentication):
			return NewAuthError("", fmt.Sprintf("directory rejected credentials: %v", err), "syncRow")
		case errors.Is(err, directory.ErrGroupNotFound):
			s.logger.Warnf("external group %q not found, leaving local group %q untouched", mapping.ExternalGroup, mapping.LocalGroup)
			s.record(sink, summary, mapping, Action{Kind: ActionNoop, LocalGroup: mapping.LocalGroup}, Outcome{Status: OutcomeNoop, Reason: "external group not found"})
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			s.logger.Errorf("resolving members of %q timed out: %v", mapping.ExternalGroup, err)
			s.record(sink, summary, mapping, Action{Kind: ActionNoop, LocalGroup: mapping.LocalGroup}, Outcome{Status: OutcomeFailed, Reason: ErrCodeTimeout})
			return nil
		default:
			s.logger.Errorf("failed to resolve members of %q: %v", mapping.ExternalGroup, err)
			s.record(sink, summary, mapping, Action{Kind: ActionNoop, LocalGroup: mapping.LocalGroup}, Outcome{Status: OutcomeFailed, Reason: ErrCodeProvider})
			return nil
		}
	}

	current, err := s.storage.ListMemberships(rowCtx, mapping.LocalGroup)
	if err != nil {
		s.logger.Errorf("failed to list memberships of %q: %v", mapping.LocalGroup, err)
		s.record(sink, summary, mapping, Action{Kind: ActionNoop, LocalGroup: mapping.LocalGroup}, Outcome{Status: OutcomeFailed, Reason: reasonFor(err)})
		return nil
	}

	actions := Plan(mapping, members, current)
	if len(actions) == 0 {
		s.record(sink, summary, mapping, Action{Kind: ActionNoop, LocalGroup: mapping.LocalGroup}, Outcome{Status: OutcomeNoop, Reason: "already in sync"})
		return nil
	}

	for _, action := range actions {
		outcome := executor.Apply(rowCtx, action, simulate)
		s.record(sink, summary, mapping, action, outcome)
	}

	return nil
}

func (s *Service) checkLocalGroups(ctx context.Context, mappings []types.GroupMapping, op string) error {
	ctx, span := s.tracer.Start(ctx, "sync.Service.checkLocalGroups")
	defer span.End()

	var missing []string
	for _, mapping := range mappings {
		exists, err := s.storage.GroupExists(ctx, mapping.LocalGroup)
		if err != nil {
			return fmt.Errorf("failed to check local group %q: %v", mapping.LocalGroup, err)
		}
		if !exists {
			missing = append(missing, mapping.LocalGroup)
		}
	}

	if len(missing) > 0 {
		return NewMissingGroupsError(missing, op)
	}
	return nil
}

func (s *Service) record(sink *AuditSink, summary *Summary, mapping types.GroupMapping, action Action, outcome Outcome) {
	sink.Record(mapping.LocalGroup, mapping.ExternalGroup, action, outcome)
	summary.count(action.Kind, outcome.Status)
}

// finish flushes the audit log and publishes the summary. Flush errors
// are logged, the run result is not discarded over them.
func (s *Service) finish(ctx context.Context, sink *AuditSink, summary *Summary) {
	if s.writer != nil {
		if err := sink.Flush(ctx, s.writer); err != nil {
			s.logger.Errorf("failed to write audit log: %v", err)
		}
	}

	s.mu.Lock()
	s.lastSummary = summary
	s.mu.Unlock()
}

// LastSummary returns the summary of the most recent run, or nil if no
// run has completed yet.
func (s *Service) LastSummary() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSummary
}

func failureList(sink *AuditSink) []string {
	var failures []string
	for _, r := range sink.Records() {
		if r.Outcome == OutcomeFailed {
			failures = append(failures, fmt.Sprintf("%s/%s: %s", r.LocalGroup, r.MemberID, r.Reason))
		}
	}
	return failures
}

func runMode(simulate bool) string {
	if simulate {
		return "simulated"
	}
	return "live"
}

func NewService(directory DirectoryInterface, storage StorageInterface, authz AuthorizerInterface, writer TableWriterInterface, timeout time.Duration, forceSimulate bool, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.directory = directory
	s.storage = storage
	s.authz = authz
	s.writer = writer
	s.timeout = timeout
	s.forceSimulate = forceSimulate

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
