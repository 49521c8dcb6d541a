// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package statusapi

import (
	"sync"

	"go.ossim.dev/sim/metering"
)

// RunMetrics is the live view of the current run.
type RunMetrics struct {
	RunID      string            `json:"runId"`
	Simulation string            `json:"simulation"`
	Metrics    metering.Snapshot `json:"metrics"`
}

// Tracker remembers which run is current. Track has the shape of
// simulation.StartHook, so it can be passed to simulation.Run directly.
type Tracker struct {
	mu         sync.RWMutex
	runID      string
	simulation string
	metrics    *metering.Recorder
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Track(runID, simulation string, metrics *metering.Recorder) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runID = runID
	t.simulation = simulation
	t.metrics = metrics
}

// Current returns a snapshot of the tracked run, false before the first run starts.
func (t *Tracker) Current() (RunMetrics, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.metrics == nil {
		return RunMetrics{}, false
	}
	return RunMetrics{RunID: t.runID, Simulation: t.simulation, Metrics: t.metrics.Snapshot()}, true
}
