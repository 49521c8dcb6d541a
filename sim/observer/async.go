// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observer

import (
	"sync"
	"sync/atomic"
)

const DefaultQueueSize = 1024

// Async decouples the engines from a slow observer. Calls are queued on a
// bounded channel and replayed on a single goroutine in arrival order; when
// the queue is full the event is dropped and counted, the engine never waits.
type Async struct {
	dropped uint64

	downstream Observer
	events     chan Event
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ Observer = (*Async)(nil)

// NewAsync starts the drain goroutine. queueSize <= 0 selects
// DefaultQueueSize.
func NewAsync(downstream Observer, queueSize int) *Async {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	a := &Async{
		downstream: OrNop(downstream),
		events:     make(chan Event, queueSize),
		done:       make(chan struct{}),
	}
	go a.drain()
	return a
}

func (a *Async) drain() {
	defer close(a.done)
	for e := range a.events {
		deliver(a.downstream, e)
	}
}

func (a *Async) enqueue(e Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		atomic.AddUint64(&a.dropped, 1)
		return
	}

	select {
	case a.events <- e:
	default:
		atomic.AddUint64(&a.dropped, 1)
	}
}

// Close stops accepting events and blocks until everything queued so far
// has been delivered. Safe to call more than once.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()
	<-a.done
}

// Dropped reports how many events were discarded because the queue was full
// or the observer was closed.
func (a *Async) Dropped() uint64 {
	return atomic.LoadUint64(&a.dropped)
}

func (a *Async) OnBufferSizeChanged(size, capacity int) {
	a.enqueue(bufferSizeEvent(size, capacity))
}

func (a *Async) OnActorState(actor string, state ActorState) {
	a.enqueue(actorStateEvent(actor, state))
}

func (a *Async) OnResourceState(id int, taken bool) {
	a.enqueue(resourceStateEvent(id, taken))
}

func (a *Async) OnSharedResourceState(state ResourceState) {
	a.enqueue(sharedResourceEvent(state))
}
