// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/monitoring"
	"github.com/canonical/directory-sync/internal/tracing"
	"github.com/canonical/directory-sync/pkg/authentication"
	"github.com/canonical/directory-sync/pkg/metrics"
	"github.com/canonical/directory-sync/pkg/status"
	"github.com/canonical/directory-sync/pkg/sync"
)

func NewRouter(
	authenticationEnabled bool,
	jwtVerifier authentication.TokenVerifierInterface,
	syncService sync.ServiceInterface,
	loader sync.MappingLoaderInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
		middleware.RequestLogger(logging.NewLogFormatter(logger)), // LogFormatter will only work if logger is set to DEBUG level
	)

	router.Use(middlewares...)

	// Sync runs can mutate the store, keep them behind JWT auth when enabled
	syncRouter := chi.NewMux()
	if authenticationEnabled {
		jwtAuthMiddleware := authentication.NewMiddleware(jwtVerifier, tracer, monitor, logger)
		syncRouter.Use(jwtAuthMiddleware.Authenticate())
	}
	sync.NewAPI(syncService, loader, tracer, monitor, logger).RegisterEndpoints(syncRouter)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(tracer, monitor, logger).RegisterEndpoints(router)

	router.Mount("/api/v0/sync", syncRouter)

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
