// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"fmt"
	"time"

	"go.ossim.dev/sim/core"
	"go.ossim.dev/sim/observer"
)

// Simulation names accepted by Run.
const (
	ProducerConsumer   = "producer-consumer"
	DiningPhilosophers = "dining-philosophers"
	ReadersWriters     = "readers-writers"
)

// Names lists every simulation in the order "all" runs them.
var Names = []string{ProducerConsumer, DiningPhilosophers, ReadersWriters}

// Title is the heading used in the metrics summary.
func Title(simulation string) string {
	switch simulation {
	case ProducerConsumer:
		return "Producer-Consumer"
	case DiningPhilosophers:
		return "Dining Philosophers"
	case ReadersWriters:
		return "Readers-Writers"
	}
	return simulation
}

// Config sizes one run. DefaultConfig matches the classic setup: five-slot
// buffer with two producers and three consumers, five philosophers, three
// readers and two writers.
type Config struct {
	Duration time.Duration

	Capacity  int
	Producers int
	Consumers int

	ProducerPause Delay
	ConsumerPause Delay

	Philosophers int
	ThinkTime    Delay
	EatTime      Delay

	Readers        int
	Writers        int
	WriterPriority bool
	ReadTime       Delay
	WriteTime      Delay
	ReaderPause    Delay
	WriterPause    Delay

	// Observer receives engine callbacks. It is wrapped in an observer.Async
	// for the duration of the run, so it may be slow.
	Observer observer.Observer
	// ObserverQueueSize bounds the async queue; 0 selects the default.
	ObserverQueueSize int
	// DescribeHost adds CPU and memory details to the report.
	DescribeHost bool
}

func DefaultConfig() Config {
	return Config{
		Duration: 5 * time.Second,

		Capacity:      5,
		Producers:     2,
		Consumers:     3,
		ProducerPause: Delay{Min: 50 * time.Millisecond, Max: 150 * time.Millisecond},
		ConsumerPause: Delay{Min: 50 * time.Millisecond, Max: 150 * time.Millisecond},

		Philosophers: 5,
		ThinkTime:    Delay{Min: 50 * time.Millisecond, Max: 150 * time.Millisecond},
		EatTime:      Delay{Min: 50 * time.Millisecond, Max: 150 * time.Millisecond},

		Readers:     3,
		Writers:     2,
		ReadTime:    Delay{Min: 100 * time.Millisecond, Max: 600 * time.Millisecond},
		WriteTime:   Delay{Min: 100 * time.Millisecond, Max: 600 * time.Millisecond},
		ReaderPause: Delay{Max: time.Second},
		WriterPause: Delay{Max: time.Second},
	}
}

// Validate checks the fields used by simulation.
func (c Config) Validate(simulation string) error {
	if c.Duration < 0 {
		return fmt.Errorf("invalid duration %s: must not be negative", c.Duration)
	}

	var checks []check
	switch simulation {
	case ProducerConsumer:
		checks = []check{
			{"capacity", c.Capacity, 1},
			{"producers", c.Producers, 1},
			{"consumers", c.Consumers, 1},
		}
	case DiningPhilosophers:
		checks = []check{{"philosophers", c.Philosophers, 2}}
	case ReadersWriters:
		checks = []check{
			{"readers", c.Readers, 0},
			{"writers", c.Writers, 0},
			{"actors", c.Readers + c.Writers, 1},
		}
	default:
		return fmt.Errorf("unknown simulation %q", simulation)
	}

	for _, ch := range checks {
		if ch.value < ch.min {
			return &core.ConfigurationError{
				Field:  ch.field,
				Value:  ch.value,
				Reason: fmt.Sprintf("must be at least %d", ch.min),
			}
		}
	}

	for _, d := range []Delay{c.ProducerPause, c.ConsumerPause, c.ThinkTime, c.EatTime,
		c.ReadTime, c.WriteTime, c.ReaderPause, c.WriterPause} {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type check struct {
	field string
	value int
	min   int
}
