// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package statusapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"go.ossim.dev/sim/observer"
)

// NewHTTPRouter returns the status API of a running ossim process.
func NewHTTPRouter(board *observer.Board, tracker *Tracker, shutdownFunc context.CancelFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(statusAccessLogDecorator)

	r.Get("/test/ping", func(w http.ResponseWriter, r *http.Request) { PingHandler(w, r) })
	r.Get("/test/state", func(w http.ResponseWriter, r *http.Request) { StateHandler(w, r, board) })
	r.Get("/test/events", func(w http.ResponseWriter, r *http.Request) { EventLogHandler(w, r, board) })
	r.Get("/test/metrics", func(w http.ResponseWriter, r *http.Request) { MetricsHandler(w, r, tracker) })
	r.Post("/test/shutdown", func(w http.ResponseWriter, r *http.Request) { ShutdownHandler(w, r, shutdownFunc) })
	return r
}
