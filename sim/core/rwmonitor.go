// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"go.ossim.dev/sim/invariant"
	"go.ossim.dev/sim/metering"
	"go.ossim.dev/sim/observer"
)

const rwComponent = "rwmonitor"

// RWMonitor is the readers/writers engine: readers share the value, a writer
// has it alone. By default it prefers readers, so a new reader is admitted
// while a writer is only waiting and a steady stream of readers can starve
// writers. WithWriterPriority builds the variant where waiting writers hold
// new readers back.
type RWMonitor struct {
	mu               sync.Mutex
	noWriter         *sync.Cond
	noReaderOrWriter *sync.Cond

	activeReaders  int
	writerActive   bool
	waitingWriters int
	value          int
	running        bool
	writerPriority bool

	metrics  *metering.Recorder
	observer observer.Observer
}

type RWOption func(*RWMonitor)

// WithWriterPriority makes new readers wait while any writer is waiting.
func WithWriterPriority() RWOption {
	return func(m *RWMonitor) {
		m.writerPriority = true
	}
}

// NewRWMonitor returns a running monitor. A nil metrics recorder or
// observer is replaced with a private recorder or a no-op observer.
func NewRWMonitor(metrics *metering.Recorder, obs observer.Observer, opts ...RWOption) *RWMonitor {
	if metrics == nil {
		metrics = metering.NewRecorder()
	}
	m := &RWMonitor{
		running:  true,
		metrics:  metrics,
		observer: observer.OrNop(obs),
	}
	m.noWriter = sync.NewCond(&m.mu)
	m.noReaderOrWriter = sync.NewCond(&m.mu)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *RWMonitor) readBlocked() bool {
	return m.writerActive || (m.writerPriority && m.waitingWriters > 0)
}

// StartRead blocks while a writer is active and returns ErrCancelled if the
// monitor is stopped first.
func (m *RWMonitor) StartRead(actor string) error {
	startWait := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.observer.OnActorState(actor, observer.Waiting)
	for m.readBlocked() && m.running {
		m.noWriter.Wait()
	}
	if !m.running {
		m.observer.OnActorState(actor, observer.Idle)
		return ErrCancelled
	}

	invariant.Check(rwComponent, !m.writerActive, "reader admitted while a writer is active")
	m.activeReaders++
	m.metrics.RecordWait(time.Since(startWait))
	m.metrics.RecordOperation()

	m.observer.OnActorState(actor, observer.Active)
	if m.activeReaders == 1 {
		m.observer.OnSharedResourceState(observer.Reading)
	}
	return nil
}

// EndRead releases read access. The last reader out wakes waiting writers.
func (m *RWMonitor) EndRead(actor string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	invariant.Checkf(rwComponent, m.activeReaders > 0, "%s ended a read it never started", actor)
	m.activeReaders--
	m.observer.OnActorState(actor, observer.Idle)

	if m.activeReaders == 0 {
		m.observer.OnSharedResourceState(observer.ResourceIdle)
		m.noReaderOrWriter.Broadcast()
		m.noWriter.Broadcast()
	}
}

// StartWrite blocks while a writer or any reader is active and returns
// ErrCancelled if the monitor is stopped first.
func (m *RWMonitor) StartWrite(actor string) error {
	startWait := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.observer.OnActorState(actor, observer.Waiting)
	m.waitingWriters++
	for (m.writerActive || m.activeReaders > 0) && m.running {
		m.noReaderOrWriter.Wait()
	}
	m.waitingWriters--

	if !m.running {
		m.observer.OnActorState(actor, observer.Idle)
		// Readers held back by this writer must re-check.
		m.noWriter.Broadcast()
		return ErrCancelled
	}

	invariant.Checkf(rwComponent, !m.writerActive && m.activeReaders == 0,
		"writer admitted with writerActive=%v readers=%d", m.writerActive, m.activeReaders)
	m.writerActive = true
	m.metrics.RecordWait(time.Since(startWait))
	m.metrics.RecordOperation()

	m.observer.OnActorState(actor, observer.Active)
	m.observer.OnSharedResourceState(observer.Writing)
	return nil
}

// EndWrite releases write access and wakes every waiter.
func (m *RWMonitor) EndWrite(actor string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	invariant.Checkf(rwComponent, m.writerActive, "%s ended a write it never started", actor)
	m.writerActive = false
	m.observer.OnActorState(actor, observer.Idle)
	m.observer.OnSharedResourceState(observer.ResourceIdle)

	m.noWriter.Broadcast()
	m.noReaderOrWriter.Broadcast()
}

// Read returns the shared value. The caller must hold read or write access.
func (m *RWMonitor) Read() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	invariant.Check(rwComponent, m.activeReaders > 0 || m.writerActive, "read without access")
	return m.value
}

// Write replaces the shared value. The caller must hold write access.
func (m *RWMonitor) Write(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invariant.Check(rwComponent, m.writerActive, "write without write access")
	m.value = v
}

// Stop wakes every blocked reader and writer; their calls, and any later
// ones, return ErrCancelled.
func (m *RWMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		log.Debugf("Stopping rw monitor: readers=%d writerActive=%v waitingWriters=%d",
			m.activeReaders, m.writerActive, m.waitingWriters)
	}
	m.running = false
	m.noWriter.Broadcast()
	m.noReaderOrWriter.Broadcast()
}

func (m *RWMonitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *RWMonitor) ActiveReaders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeReaders
}

func (m *RWMonitor) WriterActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writerActive
}

func (m *RWMonitor) WaitingWriters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waitingWriters
}

func (m *RWMonitor) WriterPriority() bool {
	return m.writerPriority
}
