// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"go.ossim.dev/sim/core"
)

// Role is what distinguishes one kind of actor from another: the one thing
// it does while it has access. How it gets access comes from Acquirer or
// Scoper; a role with neither works without coordination.
type Role interface {
	Work(ctx context.Context) error
}

// Acquirer takes access in Acquire and gives it back in Release. Release is
// called exactly once after every successful Acquire.
type Acquirer interface {
	Acquire(ctx context.Context) error
	Release()
}

// Scoper runs held while it has access and gives access back on every exit
// path out of held.
type Scoper interface {
	Scope(ctx context.Context, held func() error) error
}

// Rester is implemented by roles that report a state while pausing between
// rounds.
type Rester interface {
	Rest()
}

// Actor runs one role in a loop: pause, take access, work and hold, give
// access back.
type Actor struct {
	Name string
	Role Role
	// Pause is drawn before every acquisition.
	Pause Delay
	// Hold is drawn after Work, while access is still held.
	Hold Delay
}

// Run loops until ctx is done or the engine is stopped. Shutdown is the
// normal way out and returns nil; any other error ends the actor and is
// returned.
func (a *Actor) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if r, ok := a.Role.(Rester); ok {
			r.Rest()
		}
		if err := sleep(ctx, a.Pause.Next()); err != nil {
			return a.finish(err)
		}
		if err := a.access(ctx); err != nil {
			return a.finish(err)
		}
	}
	return a.finish(ctx.Err())
}

func (a *Actor) access(ctx context.Context) error {
	switch role := a.Role.(type) {
	case Scoper:
		return role.Scope(ctx, func() error { return a.hold(ctx) })
	case Acquirer:
		if err := role.Acquire(ctx); err != nil {
			return err
		}
		defer role.Release()
		return a.hold(ctx)
	}
	return a.hold(ctx)
}

func (a *Actor) hold(ctx context.Context) error {
	if err := a.Role.Work(ctx); err != nil {
		return err
	}
	return sleep(ctx, a.Hold.Next())
}

func (a *Actor) finish(err error) error {
	if err == nil || core.IsCancellation(err) {
		log.Debugf("%s stopped.", a.Name)
		return nil
	}
	return fmt.Errorf("%s: %w", a.Name, err)
}
