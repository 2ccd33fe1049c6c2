// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

var _ middleware.LogFormatter = (*LogFormatter)(nil)

// LogFormatter plugs the app logger into chi's request logging middleware.
// Request lines are emitted at debug level only.
type LogFormatter struct {
	logger LoggerInterface
}

type logEntry struct {
	logger  LoggerInterface
	request *http.Request
}

func (f *LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &logEntry{logger: f.logger, request: r}
}

func (e *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	e.logger.Debugf(
		"%s %s - %d (%d bytes) in %s",
		e.request.Method,
		e.request.URL.Path,
		status,
		bytes,
		elapsed,
	)
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	e.logger.Errorf("panic serving %s %s: %v\n%s", e.request.Method, e.request.URL.Path, v, stack)
}

func NewLogFormatter(logger LoggerInterface) *LogFormatter {
	f := new(LogFormatter)

	f.logger = logger

	return f
}
