// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observer

import (
	log "github.com/sirupsen/logrus"
)

// Logger writes every observer call as a debug log line.
type Logger struct {
	Entry *log.Entry
}

var _ Observer = (*Logger)(nil)

func NewLogger(simulation string) *Logger {
	return &Logger{Entry: log.WithField("simulation", simulation)}
}

func (l *Logger) OnBufferSizeChanged(size, capacity int) {
	l.Entry.WithFields(log.Fields{"size": size, "capacity": capacity}).Debug("Buffer size changed")
}

func (l *Logger) OnActorState(actor string, state ActorState) {
	l.Entry.WithField("actor", actor).Debugf("%s is %s", actor, state)
}

func (l *Logger) OnResourceState(id int, taken bool) {
	l.Entry.WithFields(log.Fields{"resource": id, "taken": taken}).Debug("Resource state changed")
}

func (l *Logger) OnSharedResourceState(state ResourceState) {
	l.Entry.WithField("state", state).Debug("Shared resource state changed")
}
