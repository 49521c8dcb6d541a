// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metering

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Recorder accumulates operation counts and cumulative wait time for one
// simulation run. Counters are updated by many actors at once and never
// block; Start and Stop are called once each by the driver.
type Recorder struct {
	// 64-bit atomics first for alignment on 32-bit platforms.
	operations  uint64
	totalWaitNs uint64

	clock func() time.Time

	mu      sync.Mutex
	startAt time.Time
	endAt   time.Time
	started bool
	stopped bool
}

// NewRecorder returns a Recorder using the wall clock.
func NewRecorder() *Recorder {
	return NewRecorderWithClock(time.Now)
}

// NewRecorderWithClock returns a Recorder that reads timestamps from clock.
func NewRecorderWithClock(clock func() time.Time) *Recorder {
	return &Recorder{clock: clock}
}

// Start records the baseline timestamp.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startAt = r.clock()
	r.started = true
}

// Stop records the end timestamp. Operations recorded later still count
// toward the snapshot.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endAt = r.clock()
	r.stopped = true
}

func (r *Recorder) RecordOperation() {
	atomic.AddUint64(&r.operations, 1)
}

func (r *Recorder) RecordWait(d time.Duration) {
	if d <= 0 {
		return
	}
	atomic.AddUint64(&r.totalWaitNs, uint64(d))
}

func (r *Recorder) Operations() uint64 {
	return atomic.LoadUint64(&r.operations)
}

func (r *Recorder) TotalWait() time.Duration {
	return time.Duration(atomic.LoadUint64(&r.totalWaitNs))
}

// Duration is the time between Start and Stop. Before Stop it is measured up
// to now, which lets a status endpoint watch a run in flight.
func (r *Recorder) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return 0
	}
	end := r.endAt
	if !r.stopped {
		end = r.clock()
	}
	if d := end.Sub(r.startAt); d > 0 {
		return d
	}
	return 0
}

// Snapshot is a point-in-time copy of the recorder's counters with the
// derived rates.
type Snapshot struct {
	Operations          uint64        `json:"operations"`
	TotalWait           time.Duration `json:"totalWaitNs"`
	DurationSeconds     float64       `json:"durationSeconds"`
	ThroughputOpsPerSec float64       `json:"throughputOpsPerSec"`
	AverageWaitMillis   float64       `json:"averageWaitMillis"`
}

func (r *Recorder) Snapshot() Snapshot {
	ops := r.Operations()
	wait := r.TotalWait()

	s := Snapshot{
		Operations:      ops,
		TotalWait:       wait,
		DurationSeconds: r.Duration().Seconds(),
	}
	if s.DurationSeconds > 0 {
		s.ThroughputOpsPerSec = float64(ops) / s.DurationSeconds
	}
	if ops > 0 {
		s.AverageWaitMillis = (float64(wait) / float64(time.Millisecond)) / float64(ops)
	}
	return s
}

// Print writes the human readable summary block for a finished run.
func (s Snapshot) Print(w io.Writer, simulation string) {
	fmt.Fprintf(w, "\n--- %s Performance Metrics ---\n", simulation)
	fmt.Fprintf(w, "Total Operations: %d\n", s.Operations)
	fmt.Fprintf(w, "Duration: %.2f seconds\n", s.DurationSeconds)
	fmt.Fprintf(w, "Throughput: %.2f ops/sec\n", s.ThroughputOpsPerSec)
	fmt.Fprintf(w, "Average Wait Time: %.2f ms\n", s.AverageWaitMillis)
	fmt.Fprintln(w, "-------------------------------------------")
}
