// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"go.ossim.dev/sim/metering"
)

// holdPair keeps the resources of seat until the returned func is called.
func holdPair(t *testing.T, rs *ResourceSet, seat Seat) func() {
	t.Helper()
	held := make(chan struct{})
	leave := make(chan struct{})
	finished := make(chan error, 1)
	go func() {
		finished <- rs.WithPair(context.Background(), seat, func() error {
			close(held)
			<-leave
			return nil
		})
	}()

	select {
	case <-held:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not get its resources", seat.Name())
	}
	return func() {
		close(leave)
		assert.NoError(t, awaitResult(t, finished, 2*time.Second, "WithPair"))
	}
}

func TestNewResourceSetRejectsTooFewResources(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		_, err := NewResourceSet(n, nil, nil)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "resources", cfgErr.Field)
	}
}

func TestSeatsAreOrderedLowFirst(t *testing.T) {
	rs, err := NewResourceSet(5, nil, nil)
	require.NoError(t, err)

	for i := 0; i < rs.Len(); i++ {
		seat := rs.Seat(i)
		assert.Less(t, seat.First, seat.Second)
	}
	assert.Equal(t, Seat{ID: 0, First: 0, Second: 1}, rs.Seat(0))
	assert.Equal(t, Seat{ID: 4, First: 0, Second: 4}, rs.Seat(4))
	assert.Equal(t, "Philosopher-5", rs.Seat(4).Name())
}

func TestNeighboursExcludeEachOther(t *testing.T) {
	rs, err := NewResourceSet(5, nil, nil)
	require.NoError(t, err)

	release := holdPair(t, rs, rs.Seat(0))
	assert.False(t, rs.Free(0))
	assert.False(t, rs.Free(1))

	acquired := make(chan error, 1)
	go func() {
		acquired <- rs.WithPair(context.Background(), rs.Seat(1), func() error { return nil })
	}()

	select {
	case <-acquired:
		t.Fatal("neighbour acquired a shared resource")
	case <-time.After(100 * time.Millisecond):
	}

	// A non-neighbour is not affected.
	assert.NoError(t, rs.WithPair(context.Background(), rs.Seat(3), func() error { return nil }))

	release()
	assert.NoError(t, awaitResult(t, acquired, 2*time.Second, "neighbour WithPair"))
	for i := 0; i < rs.Len(); i++ {
		assert.True(t, rs.Free(i), "resource %d leaked", i)
	}
}

func TestCancelWhileWaitingForSecondReleasesFirst(t *testing.T) {
	log := newStateLog()
	rs, err := NewResourceSet(5, nil, log)
	require.NoError(t, err)

	// Seat 1 holds resources 1 and 2, so seat 0 gets 0 and blocks on 1.
	release1 := holdPair(t, rs, rs.Seat(1))
	defer release1()

	ctx, cancel := context.WithCancel(context.Background())
	called := false
	acquired := make(chan error, 1)
	go func() {
		acquired <- rs.WithPair(ctx, rs.Seat(0), func() error { called = true; return nil })
	}()

	require.Eventually(t, func() bool { return !rs.Free(0) }, 2*time.Second, time.Millisecond)
	cancel()

	err = awaitResult(t, acquired, 2*time.Second, "cancelled WithPair")
	assert.True(t, errors.Is(err, ErrCancelled))
	assert.True(t, IsCancellation(err))
	assert.False(t, called)
	assert.True(t, rs.Free(0))

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Equal(t, []bool{true, false}, log.forks[0])
}

func TestWithPairReleasesOnErrorAndPanic(t *testing.T) {
	metrics := metering.NewRecorder()
	rs, err := NewResourceSet(3, metrics, nil)
	require.NoError(t, err)
	ctx := context.Background()

	errMeal := errors.New("spilled soup")
	assert.Equal(t, errMeal, rs.WithPair(ctx, rs.Seat(2), func() error { return errMeal }))
	assert.True(t, rs.Free(0))
	assert.True(t, rs.Free(2))

	assert.Panics(t, func() {
		_ = rs.WithPair(ctx, rs.Seat(2), func() error { panic("dropped fork") })
	})
	assert.True(t, rs.Free(0))
	assert.True(t, rs.Free(2))
}

func TestWithPairReleasesSecondThenFirst(t *testing.T) {
	log := newStateLog()
	rs, err := NewResourceSet(5, nil, log)
	require.NoError(t, err)

	var during []bool
	require.NoError(t, rs.WithPair(context.Background(), rs.Seat(4), func() error {
		during = []bool{rs.Free(0), rs.Free(4)}
		return nil
	}))
	assert.Equal(t, []bool{false, false}, during)

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Equal(t, []bool{true, false}, log.forks[0])
	assert.Equal(t, []bool{true, false}, log.forks[4])
	assert.Equal(t, []int{0, 4, 4, 0}, log.forkOrder)
}

func TestWithPairCancelledContext(t *testing.T) {
	rs, err := NewResourceSet(2, nil, nil)
	require.NoError(t, err)

	release := holdPair(t, rs, rs.Seat(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	called := false
	err = rs.WithPair(ctx, rs.Seat(1), func() error { called = true; return nil })
	assert.True(t, errors.Is(err, ErrCancelled))
	assert.False(t, called)

	release()
	assert.True(t, rs.Free(0))
	assert.True(t, rs.Free(1))
}

func TestRingOfPhilosophersNeverDeadlocks(t *testing.T) {
	const philosophers, threshold = 5, 20000

	metrics := metering.NewRecorder()
	rs, err := NewResourceSet(philosophers, metrics, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < philosophers; i++ {
		seat := rs.Seat(i)
		g.Go(func() error {
			for metrics.Operations() < threshold {
				err := rs.WithPair(gctx, seat, func() error {
					metrics.RecordOperation()
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	require.NoError(t, g.Wait(), "philosophers did not reach %d meals before the timeout", threshold)
	assert.GreaterOrEqual(t, metrics.Operations(), uint64(threshold))
	for i := 0; i < philosophers; i++ {
		assert.True(t, rs.Free(i))
	}
}
