// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/monitoring"
	"github.com/canonical/directory-sync/internal/tracing"
)

const (
	ADMIN_RELATION = "admin"
	TARGET_STORE   = "store:default"
)

var _ AuthorizerInterface = (*Authorizer)(nil)

type Authorizer struct {
	client AuthzClientInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) CheckAdmin(ctx context.Context, principal string) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.CheckAdmin")
	defer span.End()

	return a.client.Check(ctx, UserTuple(principal), ADMIN_RELATION, TARGET_STORE)
}

func UserTuple(userId string) string {
	return "user:" + userId
}

func NewAuthorizer(client AuthzClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	authorizer := new(Authorizer)

	authorizer.client = client

	authorizer.tracer = tracer
	authorizer.monitor = monitor
	authorizer.logger = logger

	return authorizer
}
