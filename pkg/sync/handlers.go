// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sync

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/directory-sync/internal/http/types"
	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/monitoring"
	"github.com/canonical/directory-sync/internal/tracing"
	"github.com/canonical/directory-sync/pkg/authentication"
)

type API struct {
	service ServiceInterface
	loader  MappingLoaderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/runs", a.handleCreateRun)
	mux.Get("/runs/last", a.handleGetLastRun)
}

type createRunRequest struct {
	Simulate bool `json:"simulate"`
}

func (a *API) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req := new(createRunRequest)
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(types.Response{
				Status:  http.StatusBadRequest,
				Message: "invalid request body",
			})
			return
		}
	}

	mappings, err := a.loader.Load(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(types.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}

	principal := authentication.PrincipalFromContext(r.Context())

	summary, err := a.service.Run(r.Context(), principal, mappings, req.Simulate)
	if err != nil {
		status, message := runErrorResponse(err)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(types.Response{
			Data:    summary,
			Status:  status,
			Message: message,
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(types.Response{
		Data:    summary,
		Message: "Sync run completed",
		Status:  http.StatusOK,
	})
}

func (a *API) handleGetLastRun(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary := a.service.LastSummary()
	if summary == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(types.Response{
			Status:  http.StatusNotFound,
			Message: "no sync run has completed yet",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(types.Response{
		Data:    summary,
		Message: "Last sync run summary",
		Status:  http.StatusOK,
	})
}

func runErrorResponse(err error) (int, string) {
	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		return http.StatusInternalServerError, err.Error()
	}

	switch syncErr.Code {
	case ErrCodeAuth:
		return http.StatusForbidden, syncErr.Error()
	case ErrCodeValidation:
		return http.StatusBadRequest, syncErr.Error()
	case ErrCodePartialRun:
		// The run ran to completion, some rows or actions failed.
		return http.StatusOK, syncErr.Error()
	default:
		return http.StatusInternalServerError, syncErr.Error()
	}
}

func NewAPI(service ServiceInterface, loader MappingLoaderInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service
	a.loader = loader

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
