// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"go.ossim.dev/sim/metering"
	"go.ossim.dev/sim/observer"
)

func TestNewBufferRejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := NewBuffer[int](capacity, nil, nil)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "capacity", cfgErr.Field)
		assert.Equal(t, capacity, cfgErr.Value)
	}
}

func TestBufferIsFIFO(t *testing.T) {
	metrics := metering.NewRecorder()
	b, err := NewBuffer[string](3, metrics, nil)
	require.NoError(t, err)

	for _, item := range []string{"a", "b", "c"} {
		require.NoError(t, b.Put("Producer-1", item))
	}
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 3, b.Cap())

	for _, want := range []string{"a", "b", "c"} {
		got, err := b.Take("Consumer-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, uint64(6), metrics.Operations())
}

func TestBufferReportsActorStatesAndSize(t *testing.T) {
	log := newStateLog()
	sizes := newSizeWatcher()
	b, err := NewBuffer[int](2, nil, observer.Multi{log, sizes})
	require.NoError(t, err)

	require.NoError(t, b.Put("Producer-1", 7))
	_, err = b.Take("Consumer-1")
	require.NoError(t, err)

	expected := []observer.ActorState{observer.Waiting, observer.Active, observer.Idle}
	assert.Equal(t, expected, log.actor("Producer-1"))
	assert.Equal(t, expected, log.actor("Consumer-1"))
	assert.Equal(t, 2, sizes.calls)
	assert.Equal(t, 0, sizes.minSize)
	assert.Equal(t, 1, sizes.maxSize)
}

func TestPutBlocksWhileFull(t *testing.T) {
	b, err := NewBuffer[int](1, nil, nil)
	require.NoError(t, err)
	require.NoError(t, b.Put("Producer-1", 1))

	put := make(chan error, 1)
	go func() { put <- b.Put("Producer-2", 2) }()

	select {
	case <-put:
		t.Fatal("Put returned while the buffer was full")
	case <-time.After(100 * time.Millisecond):
	}

	item, err := b.Take("Consumer-1")
	require.NoError(t, err)
	assert.Equal(t, 1, item)
	assert.NoError(t, awaitResult(t, put, 2*time.Second, "Put"))

	item, err = b.Take("Consumer-1")
	require.NoError(t, err)
	assert.Equal(t, 2, item)
}

func TestTakeBlocksWhileEmpty(t *testing.T) {
	b, err := NewBuffer[int](1, nil, nil)
	require.NoError(t, err)

	taken := make(chan int, 1)
	go func() {
		item, err := b.Take("Consumer-1")
		if err == nil {
			taken <- item
		}
	}()

	select {
	case <-taken:
		t.Fatal("Take returned from an empty buffer")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, b.Put("Producer-1", 42))
	select {
	case item := <-taken:
		assert.Equal(t, 42, item)
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not return after Put")
	}
}

func TestStopWakesBlockedProducersAndConsumers(t *testing.T) {
	full, err := NewBuffer[int](1, nil, nil)
	require.NoError(t, err)
	require.NoError(t, full.Put("Producer-0", 0))
	empty, err := NewBuffer[int](1, nil, nil)
	require.NoError(t, err)

	results := make(chan error, 6)
	for i := 1; i <= 3; i++ {
		producer := fmt.Sprintf("Producer-%d", i)
		consumer := fmt.Sprintf("Consumer-%d", i)
		go func() { results <- full.Put(producer, 1) }()
		go func() {
			_, err := empty.Take(consumer)
			results <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	full.Stop()
	empty.Stop()

	for i := 0; i < 6; i++ {
		assert.Equal(t, ErrCancelled, awaitResult(t, results, 2*time.Second, "blocked call"))
	}

	// The abandoned insertions never reached the queue.
	assert.Equal(t, 1, full.Len())
	assert.False(t, full.Running())
}

func TestCallsAfterStopAreCancelled(t *testing.T) {
	b, err := NewBuffer[int](2, nil, nil)
	require.NoError(t, err)
	require.NoError(t, b.Put("Producer-1", 1))

	b.Stop()
	b.Stop()

	assert.Equal(t, ErrCancelled, b.Put("Producer-1", 2))
	_, err = b.Take("Consumer-1")
	assert.Equal(t, ErrCancelled, err)
	assert.Equal(t, 1, b.Len())
}

func TestBufferBoundsUnderLoad(t *testing.T) {
	countInvariantViolations(t)

	const producers, consumers, perProducer = 4, 4, 500

	for capacity := 1; capacity <= 4; capacity++ {
		capacity := capacity
		t.Run(fmt.Sprintf("capacity=%d", capacity), func(t *testing.T) {
			metrics := metering.NewRecorder()
			sizes := newSizeWatcher()
			b, err := NewBuffer[int](capacity, metrics, sizes)
			require.NoError(t, err)

			var produced errgroup.Group
			for p := 0; p < producers; p++ {
				name := fmt.Sprintf("Producer-%d", p+1)
				produced.Go(func() error {
					for i := 0; i < perProducer; i++ {
						if err := b.Put(name, i); err != nil {
							return err
						}
					}
					return nil
				})
			}

			var taken int64
			var consumed errgroup.Group
			for c := 0; c < consumers; c++ {
				name := fmt.Sprintf("Consumer-%d", c+1)
				consumed.Go(func() error {
					for {
						if _, err := b.Take(name); err != nil {
							if errors.Is(err, ErrCancelled) {
								return nil
							}
							return err
						}
						atomic.AddInt64(&taken, 1)
					}
				})
			}

			require.NoError(t, produced.Wait())
			require.Eventually(t, func() bool { return b.Len() == 0 }, 5*time.Second, time.Millisecond)
			b.Stop()
			require.NoError(t, consumed.Wait())

			total := producers * perProducer
			assert.Equal(t, int64(total), atomic.LoadInt64(&taken))
			assert.Equal(t, uint64(2*total), metrics.Operations())
			assert.LessOrEqual(t, sizes.maxSize, capacity)
			assert.GreaterOrEqual(t, sizes.minSize, 0)
		})
	}
}
