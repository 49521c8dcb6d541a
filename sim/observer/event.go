// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observer

import (
	"time"

	"github.com/google/uuid"
)

type EventType = string

const (
	BufferSizeChanged    = EventType("buffer.size")
	ActorStateChanged    = EventType("actor.state")
	ResourceStateChanged = EventType("resource.state")
	SharedResourceState  = EventType("shared.state")
)

// Event is one observer call captured as data, so it can cross a channel
// or be kept in a log.
type Event struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Type     EventType `json:"type"`
	Actor    string    `json:"actor,omitempty"`
	State    string    `json:"state,omitempty"`
	Resource int       `json:"resource"`
	Taken    bool      `json:"taken,omitempty"`
	Size     int       `json:"size,omitempty"`
	Capacity int       `json:"capacity,omitempty"`
}

func newEvent(eventType EventType) Event {
	return Event{ID: uuid.New().String(), Time: time.Now().UTC(), Type: eventType}
}

func bufferSizeEvent(size, capacity int) Event {
	e := newEvent(BufferSizeChanged)
	e.Size, e.Capacity = size, capacity
	return e
}

func actorStateEvent(actor string, state ActorState) Event {
	e := newEvent(ActorStateChanged)
	e.Actor, e.State = actor, string(state)
	return e
}

func resourceStateEvent(id int, taken bool) Event {
	e := newEvent(ResourceStateChanged)
	e.Resource, e.Taken = id, taken
	return e
}

func sharedResourceEvent(state ResourceState) Event {
	e := newEvent(SharedResourceState)
	e.State = string(state)
	return e
}

// EventRecorder is implemented by observers that keep events whole.
// Replayed events reach them with their original ID and time.
type EventRecorder interface {
	Record(e Event)
}

// deliver hands e to o, as the event itself when o keeps events.
func deliver(o Observer, e Event) {
	if r, ok := o.(EventRecorder); ok {
		r.Record(e)
		return
	}
	e.Dispatch(o)
}

// Dispatch replays the event onto o.
func (e Event) Dispatch(o Observer) {
	switch e.Type {
	case BufferSizeChanged:
		o.OnBufferSizeChanged(e.Size, e.Capacity)
	case ActorStateChanged:
		o.OnActorState(e.Actor, ActorState(e.State))
	case ResourceStateChanged:
		o.OnResourceState(e.Resource, e.Taken)
	case SharedResourceState:
		o.OnSharedResourceState(ResourceState(e.State))
	}
}
