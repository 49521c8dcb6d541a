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

const bufferComponent = "buffer"

// Buffer is the producer/consumer engine: a fixed-capacity FIFO queue with
// blocking Put and Take. One mutex guards the queue and the running flag;
// producers wait on notFull and consumers on notEmpty.
type Buffer[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	queue    []T
	capacity int
	running  bool

	metrics  *metering.Recorder
	observer observer.Observer
}

// NewBuffer returns a running buffer. A nil metrics recorder or observer is
// replaced with a private recorder or a no-op observer.
func NewBuffer[T any](capacity int, metrics *metering.Recorder, obs observer.Observer) (*Buffer[T], error) {
	if err := requirePositive("capacity", capacity); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = metering.NewRecorder()
	}

	b := &Buffer[T]{
		queue:    make([]T, 0, capacity),
		capacity: capacity,
		running:  true,
		metrics:  metrics,
		observer: observer.OrNop(obs),
	}
	b.notFull = sync.NewCond(&b.mu)
	b.notEmpty = sync.NewCond(&b.mu)
	return b, nil
}

// Put appends item, blocking while the buffer is full. It returns
// ErrCancelled, without enqueuing, if the buffer is stopped first.
func (b *Buffer[T]) Put(actor string, item T) error {
	b.observer.OnActorState(actor, observer.Waiting)
	defer b.observer.OnActorState(actor, observer.Idle)

	startWait := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.queue) == b.capacity && b.running {
		b.notFull.Wait()
	}
	if !b.running {
		return ErrCancelled
	}
	b.metrics.RecordWait(time.Since(startWait))

	b.observer.OnActorState(actor, observer.Active)
	b.queue = append(b.queue, item)
	b.checkBounds()
	b.observer.OnBufferSizeChanged(len(b.queue), b.capacity)

	b.metrics.RecordOperation()
	b.notEmpty.Signal()
	return nil
}

// Take removes the oldest item, blocking while the buffer is empty. It
// returns ErrCancelled if the buffer is stopped first.
func (b *Buffer[T]) Take(actor string) (T, error) {
	b.observer.OnActorState(actor, observer.Waiting)
	defer b.observer.OnActorState(actor, observer.Idle)

	startWait := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	var item T
	for len(b.queue) == 0 && b.running {
		b.notEmpty.Wait()
	}
	if !b.running {
		return item, ErrCancelled
	}
	b.metrics.RecordWait(time.Since(startWait))

	b.observer.OnActorState(actor, observer.Active)
	invariant.Check(bufferComponent, len(b.queue) > 0, "take from an empty buffer")
	item = b.queue[0]
	var zero T
	b.queue[0] = zero
	b.queue = b.queue[1:]
	b.checkBounds()
	b.observer.OnBufferSizeChanged(len(b.queue), b.capacity)

	b.metrics.RecordOperation()
	b.notFull.Signal()
	return item, nil
}

// checkBounds must be called with b.mu held.
func (b *Buffer[T]) checkBounds() {
	invariant.Checkf(bufferComponent, len(b.queue) >= 0 && len(b.queue) <= b.capacity,
		"size %d outside [0, %d]", len(b.queue), b.capacity)
}

// Stop wakes every blocked producer and consumer; their calls return
// ErrCancelled. Stopping is irreversible and idempotent.
func (b *Buffer[T]) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		log.Debugf("Stopping buffer with %d/%d items", len(b.queue), b.capacity)
	}
	b.running = false
	b.notFull.Broadcast()
	b.notEmpty.Broadcast()
}

func (b *Buffer[T]) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *Buffer[T]) Cap() int {
	return b.capacity
}
