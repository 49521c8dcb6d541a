// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package statusapi

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"go.ossim.dev/sim/observer"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("pong"))
}

func StateHandler(w http.ResponseWriter, r *http.Request, board *observer.Board) {
	state := board.Describe()
	w.Header().Set("Content-Type", "application/json")
	w.Write(state.AsJSON())
}

func EventLogHandler(w http.ResponseWriter, r *http.Request, board *observer.Board) {
	render.JSON(w, r, board.Events())
}

func MetricsHandler(w http.ResponseWriter, r *http.Request, tracker *Tracker) {
	current, ok := tracker.Current()
	if !ok {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, &ErrorResponse{
			ErrorType:    "Run.NotStarted",
			ErrorMessage: "no simulation has started yet",
		})
		return
	}
	render.JSON(w, r, current)
}

type shutdownResponse struct {
	Status string `json:"status"`
}

func ShutdownHandler(w http.ResponseWriter, r *http.Request, shutdownFunc context.CancelFunc) {
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, &shutdownResponse{Status: "shutting down"})

	shutdownFunc()
}
