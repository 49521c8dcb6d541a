// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"context"

	log "github.com/sirupsen/logrus"

	"go.ossim.dev/sim/core"
	"go.ossim.dev/sim/metering"
	"go.ossim.dev/sim/observer"
)

const maxItemValue = 100

type producer struct {
	name   string
	buffer *core.Buffer[int]
}

func (p *producer) Acquire(ctx context.Context) error {
	value := randIntn(maxItemValue)
	if err := p.buffer.Put(p.name, value); err != nil {
		return err
	}
	log.Debugf("%s produced: %d | Buffer size: %d", p.name, value, p.buffer.Len())
	return nil
}

func (p *producer) Work(context.Context) error { return nil }
func (p *producer) Release()                   {}

type consumer struct {
	name   string
	buffer *core.Buffer[int]
}

func (c *consumer) Acquire(ctx context.Context) error {
	value, err := c.buffer.Take(c.name)
	if err != nil {
		return err
	}
	log.Debugf("%s consumed: %d | Buffer size: %d", c.name, value, c.buffer.Len())
	return nil
}

func (c *consumer) Work(context.Context) error { return nil }
func (c *consumer) Release()                   {}

type philosopher struct {
	seat      core.Seat
	resources *core.ResourceSet
	metrics   *metering.Recorder
	observer  observer.Observer
	thinking  bool
}

func (p *philosopher) think() {
	if !p.thinking {
		p.thinking = true
		p.observer.OnActorState(p.seat.Name(), observer.Thinking)
	}
}

func (p *philosopher) Rest() {
	p.think()
}

// Scope eats between two nested resource acquisitions. The philosopher is
// back to THINKING once both resources are released, however the meal ends.
func (p *philosopher) Scope(ctx context.Context, held func() error) error {
	p.thinking = false
	p.observer.OnActorState(p.seat.Name(), observer.Hungry)
	defer p.think()

	return p.resources.WithPair(ctx, p.seat, held)
}

func (p *philosopher) Work(context.Context) error {
	p.observer.OnActorState(p.seat.Name(), observer.Eating)
	log.Debugf("%s is eating.", p.seat.Name())
	p.metrics.RecordOperation()
	return nil
}

type reader struct {
	name    string
	monitor *core.RWMonitor
}

func (r *reader) Acquire(context.Context) error {
	return r.monitor.StartRead(r.name)
}

func (r *reader) Work(context.Context) error {
	log.Debugf("%s reads value: %d", r.name, r.monitor.Read())
	return nil
}

func (r *reader) Release() {
	r.monitor.EndRead(r.name)
}

type writer struct {
	name    string
	monitor *core.RWMonitor
}

func (w *writer) Acquire(context.Context) error {
	return w.monitor.StartWrite(w.name)
}

func (w *writer) Work(context.Context) error {
	value := randIntn(maxItemValue)
	w.monitor.Write(value)
	log.Debugf("%s writes value: %d", w.name, value)
	return nil
}

func (w *writer) Release() {
	w.monitor.EndWrite(w.name)
}
