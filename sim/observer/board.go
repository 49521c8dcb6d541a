// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observer

import (
	"sort"
	"strconv"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map"

	"go.ossim.dev/sim/statejson"
)

const DefaultEventLimit = 256

// Board keeps the latest state of every actor and resource of a run plus a
// bounded log of recent events. It is what the status API serves.
type Board struct {
	actors    cmap.ConcurrentMap
	resources cmap.ConcurrentMap

	mu         sync.Mutex
	buffer     *statejson.BufferDescription
	shared     ResourceState
	events     []Event
	next       int
	eventLimit int
}

var _ Observer = (*Board)(nil)

// NewBoard keeps at most eventLimit recent events; eventLimit <= 0 selects
// DefaultEventLimit.
func NewBoard(eventLimit int) *Board {
	if eventLimit <= 0 {
		eventLimit = DefaultEventLimit
	}
	return &Board{
		actors:     cmap.New(),
		resources:  cmap.New(),
		eventLimit: eventLimit,
	}
}

func (b *Board) record(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) < b.eventLimit {
		b.events = append(b.events, e)
		return
	}
	b.events[b.next] = e
	b.next = (b.next + 1) % b.eventLimit
}

// Record applies e to the board and keeps it as is, with its original ID and
// time. Async delivers through Record, so the event log shows when an engine
// reported a change rather than when the queue was drained.
func (b *Board) Record(e Event) {
	switch e.Type {
	case BufferSizeChanged:
		b.mu.Lock()
		b.buffer = &statejson.BufferDescription{Size: e.Size, Capacity: e.Capacity}
		b.mu.Unlock()
	case ActorStateChanged:
		b.actors.Set(e.Actor, statejson.ActorDescription{
			Name:         e.Actor,
			State:        e.State,
			LastModified: e.Time.UnixNano(),
		})
	case ResourceStateChanged:
		b.resources.Set(strconv.Itoa(e.Resource), statejson.ResourceDescription{
			ID:           e.Resource,
			Taken:        e.Taken,
			LastModified: e.Time.UnixNano(),
		})
	case SharedResourceState:
		b.mu.Lock()
		b.shared = ResourceState(e.State)
		b.mu.Unlock()
	}
	b.record(e)
}

// Reset forgets every actor, resource and event, ready for the next run.
func (b *Board) Reset() {
	for _, key := range b.actors.Keys() {
		b.actors.Remove(key)
	}
	for _, key := range b.resources.Keys() {
		b.resources.Remove(key)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer = nil
	b.shared = ""
	b.events = nil
	b.next = 0
}

func (b *Board) OnBufferSizeChanged(size, capacity int) {
	b.Record(bufferSizeEvent(size, capacity))
}

func (b *Board) OnActorState(actor string, state ActorState) {
	b.Record(actorStateEvent(actor, state))
}

func (b *Board) OnResourceState(id int, taken bool) {
	b.Record(resourceStateEvent(id, taken))
}

func (b *Board) OnSharedResourceState(state ResourceState) {
	b.Record(sharedResourceEvent(state))
}

// ActorState returns the last state reported for actor.
func (b *Board) ActorState(actor string) (ActorState, bool) {
	v, ok := b.actors.Get(actor)
	if !ok {
		return "", false
	}
	return ActorState(v.(statejson.ActorDescription).State), true
}

// Events returns the retained events, oldest first.
func (b *Board) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Event, 0, len(b.events))
	out = append(out, b.events[b.next:]...)
	out = append(out, b.events[:b.next]...)
	return out
}

// Describe returns the board as a JSON-ready description with actors sorted
// by name and resources by id.
func (b *Board) Describe() statejson.BoardDescription {
	desc := statejson.BoardDescription{
		Actors: make([]statejson.ActorDescription, 0, b.actors.Count()),
	}

	b.actors.IterCb(func(_ string, v interface{}) {
		desc.Actors = append(desc.Actors, v.(statejson.ActorDescription))
	})
	sort.Slice(desc.Actors, func(i, j int) bool { return desc.Actors[i].Name < desc.Actors[j].Name })

	b.resources.IterCb(func(_ string, v interface{}) {
		desc.Resources = append(desc.Resources, v.(statejson.ResourceDescription))
	})
	sort.Slice(desc.Resources, func(i, j int) bool { return desc.Resources[i].ID < desc.Resources[j].ID })

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buffer != nil {
		buffer := *b.buffer
		desc.Buffer = &buffer
	}
	desc.SharedResource = string(b.shared)
	return desc
}

// LastModified returns the time of the newest retained event.
func (b *Board) LastModified() time.Time {
	events := b.Events()
	if len(events) == 0 {
		return time.Time{}
	}
	return events[len(events)-1].Time
}
