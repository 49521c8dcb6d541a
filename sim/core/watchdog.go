// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Stopper is an engine that can wake all of its blocked actors.
type Stopper interface {
	Stop()
}

// StopFunc adapts a function to Stopper.
type StopFunc func()

func (f StopFunc) Stop() { f() }

// Watchdog turns the end of a run context into one Stop fan-out over the
// engines, so actors parked on a condition variable observe shutdown.
type Watchdog struct {
	stopOnce sync.Once
	stoppers []Stopper
	stopped  chan struct{}
	mu       sync.Mutex
	cause    error
}

// NewWatchdog returns a Watchdog for the given engines.
func NewWatchdog(stoppers ...Stopper) *Watchdog {
	return &Watchdog{
		stoppers: stoppers,
		stopped:  make(chan struct{}),
	}
}

// GoWatch stops the engines in a separate goroutine once ctx is done.
func (w *Watchdog) GoWatch(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			w.StopAll(ctx.Err())
		case <-w.stopped:
		}
	}()
}

// StopAll stops every engine. Only the first call has an effect; its cause
// is kept.
func (w *Watchdog) StopAll(cause error) {
	w.stopOnce.Do(func() {
		log.Debugf("Stopping engines: %v", cause)
		for _, s := range w.stoppers {
			s.Stop()
		}
		w.mu.Lock()
		w.cause = cause
		w.mu.Unlock()
		close(w.stopped)
	})
}

// Cause returns the error StopAll was first called with, once every engine
// has been stopped.
func (w *Watchdog) Cause() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cause
}
