// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package invariant checks the safety properties the engines promise
// (buffer bounds, reader/writer exclusion) at the points where state changes.
package invariant

import (
	"fmt"
	"sync"
)

func Check(component string, cond bool, statement string) {
	if !cond {
		Violate(component, statement)
	}
}

func Checkf(component string, cond bool, format string, args ...interface{}) {
	if !cond {
		Violatef(component, format, args...)
	}
}

func Violate(component, statement string) {
	executor().Exec(ViolationError{Component: component, Statement: statement})
}

func Violatef(component, format string, args ...interface{}) {
	Violate(component, fmt.Sprintf(format, args...))
}

// SetViolationExecutor replaces the process-wide executor and returns the
// previous one so tests can restore it.
func SetViolationExecutor(exec ViolationExecutor) ViolationExecutor {
	std.mtx.Lock()
	defer std.mtx.Unlock()

	prev := std.executor
	std.executor = exec
	return prev
}

// executor is read without holding the lock during Exec: a panicking
// executor must not leave the mutex locked.
func executor() ViolationExecutor {
	std.mtx.Lock()
	defer std.mtx.Unlock()
	return std.executor
}

var std = struct {
	executor ViolationExecutor
	mtx      sync.Mutex
}{
	executor: NewPanicViolationExecutor(),
}
