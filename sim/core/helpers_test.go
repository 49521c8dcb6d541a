// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.ossim.dev/sim/invariant"
	"go.ossim.dev/sim/observer"
)

// sizeWatcher records every buffer size the engine reports.
type sizeWatcher struct {
	observer.Nop
	mu      sync.Mutex
	minSize int
	maxSize int
	calls   int
}

func newSizeWatcher() *sizeWatcher {
	return &sizeWatcher{minSize: int(^uint(0) >> 1), maxSize: -1}
}

func (w *sizeWatcher) OnBufferSizeChanged(size, capacity int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if size < w.minSize {
		w.minSize = size
	}
	if size > w.maxSize {
		w.maxSize = size
	}
}

// stateLog keeps the ordered actor state transitions per actor.
type stateLog struct {
	observer.Nop
	mu     sync.Mutex
	states map[string][]observer.ActorState
	shared []observer.ResourceState
	forks  map[int][]bool
	// forkOrder lists resource ids in the order their state changed.
	forkOrder []int
}

func newStateLog() *stateLog {
	return &stateLog{states: map[string][]observer.ActorState{}, forks: map[int][]bool{}}
}

func (l *stateLog) OnActorState(actor string, state observer.ActorState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[actor] = append(l.states[actor], state)
}

func (l *stateLog) OnSharedResourceState(state observer.ResourceState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shared = append(l.shared, state)
}

func (l *stateLog) OnResourceState(id int, taken bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forks[id] = append(l.forks[id], taken)
	l.forkOrder = append(l.forkOrder, id)
}

func (l *stateLog) actor(name string) []observer.ActorState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]observer.ActorState(nil), l.states[name]...)
}

// countInvariantViolations swaps in a logging executor for the duration of
// the test and fails it if any engine invariant broke.
func countInvariantViolations(t *testing.T) {
	executor := invariant.NewLogViolationExecutor()
	prev := invariant.SetViolationExecutor(executor)
	t.Cleanup(func() {
		invariant.SetViolationExecutor(prev)
		require.Zero(t, executor.Violations(), "engine invariant violated")
	})
}

// awaitResult fails the test if nothing arrives on ch within d.
func awaitResult(t *testing.T, ch <-chan error, d time.Duration, what string) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(d):
		t.Fatalf("%s did not return within %s", what, d)
		return nil
	}
}
