// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"sync"
)

// Gate is a count-down latch: it opens once count walkers have arrived, or
// when it is cancelled. The driver uses one to wait until every actor is
// ready and another to release them all at once.
type Gate interface {
	WalkThrough() error
	AwaitGateCondition(ctx context.Context) error
	CancelWithError(error)
}

var ErrGateIntegrity = errors.New("ErrGateIntegrity")

var ErrGateCanceled = errors.New("ErrGateCanceled")

type gateImpl struct {
	mu       sync.Mutex
	count    uint16
	arrived  uint16
	opened   chan struct{}
	isOpen   bool
	canceled bool
	err      error
}

func (g *gateImpl) open() {
	if !g.isOpen {
		g.isOpen = true
		close(g.opened)
	}
}

func (g *gateImpl) WalkThrough() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.arrived == g.count {
		return ErrGateIntegrity
	}

	g.arrived++
	if g.arrived == g.count {
		g.open()
	}
	return nil
}

// AwaitGateCondition blocks until the gate opens or ctx is done. A ctx
// timeout leaves the gate untouched, so the caller may wait again.
// A cancelled gate returns the cancel error to every waiter.
func (g *gateImpl) AwaitGateCondition(ctx context.Context) error {
	select {
	case <-g.opened:
	case <-ctx.Done():
		return ctx.Err()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.canceled {
		if g.err != nil {
			return g.err
		}
		return ErrGateCanceled
	}
	return nil
}

func (g *gateImpl) CancelWithError(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.canceled = true
	g.err = err
	g.open()
}

func NewGate(count uint16) Gate {
	g := &gateImpl{
		count:  count,
		opened: make(chan struct{}),
	}
	if count == 0 {
		g.open()
	}
	return g
}
