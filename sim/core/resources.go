// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"go.ossim.dev/sim/metering"
	"go.ossim.dev/sim/observer"
)

// Seat is a philosopher's place at the table: the two adjacent resources it
// needs, already sorted so First < Second.
type Seat struct {
	ID     int
	First  int
	Second int
}

func (s Seat) Name() string {
	return fmt.Sprintf("Philosopher-%d", s.ID+1)
}

// ResourceSet is the dining philosophers engine: N binary resources in a
// ring. Pairs are always acquired lowest index first, which rules out a
// circular wait.
type ResourceSet struct {
	resources []*semaphore.Weighted
	metrics   *metering.Recorder
	observer  observer.Observer
}

// NewResourceSet returns n free resources. A ring needs at least two.
func NewResourceSet(n int, metrics *metering.Recorder, obs observer.Observer) (*ResourceSet, error) {
	if n < 2 {
		return nil, &ConfigurationError{Field: "resources", Value: n, Reason: "a ring needs at least 2"}
	}
	if metrics == nil {
		metrics = metering.NewRecorder()
	}

	rs := &ResourceSet{
		resources: make([]*semaphore.Weighted, n),
		metrics:   metrics,
		observer:  observer.OrNop(obs),
	}
	for i := range rs.resources {
		rs.resources[i] = semaphore.NewWeighted(1)
	}
	return rs, nil
}

func (rs *ResourceSet) Len() int {
	return len(rs.resources)
}

// Seat returns the seat of actor i, which shares resource i with its left
// neighbour and resource (i+1) mod n with its right one.
func (rs *ResourceSet) Seat(i int) Seat {
	left, right := i, (i+1)%len(rs.resources)
	if left > right {
		left, right = right, left
	}
	return Seat{ID: i, First: left, Second: right}
}

func (rs *ResourceSet) acquire(ctx context.Context, id int) error {
	if err := rs.resources[id].Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: resource %d: %v", ErrCancelled, id, err)
	}
	rs.observer.OnResourceState(id, true)
	return nil
}

func (rs *ResourceSet) release(id int) {
	rs.observer.OnResourceState(id, false)
	rs.resources[id].Release(1)
}

// WithPair runs fn while holding both resources of seat, First acquired
// before Second. Each resource is released on every exit path: if ctx ends
// while waiting for Second, First is released before WithPair returns
// ErrCancelled, and a panic in fn releases both.
func (rs *ResourceSet) WithPair(ctx context.Context, seat Seat, fn func() error) error {
	startWait := time.Now()

	if err := rs.acquire(ctx, seat.First); err != nil {
		return err
	}
	defer rs.release(seat.First)

	if err := rs.acquire(ctx, seat.Second); err != nil {
		return err
	}
	defer rs.release(seat.Second)

	rs.metrics.RecordWait(time.Since(startWait))
	return fn()
}

// Free reports whether resource id is currently free, without blocking.
func (rs *ResourceSet) Free(id int) bool {
	if !rs.resources[id].TryAcquire(1) {
		return false
	}
	rs.resources[id].Release(1)
	return true
}
