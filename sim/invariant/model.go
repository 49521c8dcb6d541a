// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invariant

import (
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// ViolationError reports a broken engine invariant. It always means a bug in
// the engine, never a condition callers are expected to handle.
type ViolationError struct {
	Component string
	Statement string
}

func (err ViolationError) Error() string {
	return fmt.Sprintf("%s: invariant violation: %s", err.Component, err.Statement)
}

type ViolationExecutor interface {
	Exec(ViolationError)
}

type PanicViolationExecutor struct{}

var _ ViolationExecutor = (*PanicViolationExecutor)(nil)

func NewPanicViolationExecutor() *PanicViolationExecutor {
	return &PanicViolationExecutor{}
}

func (executor *PanicViolationExecutor) Exec(err ViolationError) {
	panic(err)
}

// LogViolationExecutor keeps the simulation running and records every
// violation, so a long run can report how often an invariant broke.
type LogViolationExecutor struct {
	violations uint64
}

var _ ViolationExecutor = (*LogViolationExecutor)(nil)

func NewLogViolationExecutor() *LogViolationExecutor {
	return &LogViolationExecutor{}
}

func (executor *LogViolationExecutor) Exec(err ViolationError) {
	atomic.AddUint64(&executor.violations, 1)
	log.WithField("component", err.Component).Error(err.Error())
}

func (executor *LogViolationExecutor) Violations() uint64 {
	return atomic.LoadUint64(&executor.violations)
}
