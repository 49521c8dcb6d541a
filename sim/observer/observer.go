// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observer defines the narrow push interface the engines use to
// report what their actors are doing, plus a few implementations: a no-op,
// a fan-out, a logger, a non-blocking async wrapper and a live state board.
package observer

// ActorState is the state an actor reports through OnActorState.
type ActorState string

// Producer/consumer and reader/writer actors.
const (
	Waiting = ActorState("WAITING")
	Active  = ActorState("ACTIVE")
	Idle    = ActorState("IDLE")
)

// Philosophers.
const (
	Thinking = ActorState("THINKING")
	Hungry   = ActorState("HUNGRY")
	Eating   = ActorState("EATING")
)

// ResourceState is the state of the readers/writers shared value.
type ResourceState string

const (
	Reading      = ResourceState("READING")
	Writing      = ResourceState("WRITING")
	ResourceIdle = ResourceState("IDLE")
)

// Observer is called synchronously by the engines, sometimes while an engine
// lock is held. Implementations must return quickly and must not call back
// into the engine; wrap slow observers with NewAsync.
type Observer interface {
	OnBufferSizeChanged(size, capacity int)
	OnActorState(actor string, state ActorState)
	OnResourceState(id int, taken bool)
	OnSharedResourceState(state ResourceState)
}

// Nop ignores every call. Engines use it when no observer is configured.
type Nop struct{}

var _ Observer = Nop{}

func (Nop) OnBufferSizeChanged(int, int)        {}
func (Nop) OnActorState(string, ActorState)     {}
func (Nop) OnResourceState(int, bool)           {}
func (Nop) OnSharedResourceState(ResourceState) {}

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop{}
	}
	return o
}

// Multi forwards every call to each observer in order.
type Multi []Observer

var _ Observer = Multi(nil)

// Record delivers e to each observer, whole to those that keep events.
func (m Multi) Record(e Event) {
	for _, o := range m {
		deliver(o, e)
	}
}

func (m Multi) OnBufferSizeChanged(size, capacity int) {
	for _, o := range m {
		o.OnBufferSizeChanged(size, capacity)
	}
}

func (m Multi) OnActorState(actor string, state ActorState) {
	for _, o := range m {
		o.OnActorState(actor, state)
	}
}

func (m Multi) OnResourceState(id int, taken bool) {
	for _, o := range m {
		o.OnResourceState(id, taken)
	}
}

func (m Multi) OnSharedResourceState(state ResourceState) {
	for _, o := range m {
		o.OnSharedResourceState(state)
	}
}
