// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go.ossim.dev/sim/core"
	"go.ossim.dev/sim/metering"
	"go.ossim.dev/sim/observer"
	"go.ossim.dev/sim/statejson"
)

// StartHook is told about a run once its actors are released, so a caller
// can watch the metrics while the run is in flight.
type StartHook func(runID, simulation string, metrics *metering.Recorder)

// Run executes the named simulation.
func Run(ctx context.Context, simulation string, cfg Config, onStart StartHook) (*statejson.RunReport, error) {
	switch simulation {
	case ProducerConsumer:
		return RunProducerConsumer(ctx, cfg, onStart)
	case DiningPhilosophers:
		return RunDiningPhilosophers(ctx, cfg, onStart)
	case ReadersWriters:
		return RunReadersWriters(ctx, cfg, onStart)
	}
	return nil, fmt.Errorf("unknown simulation %q", simulation)
}

// RunProducerConsumer runs producers and consumers over one bounded buffer.
func RunProducerConsumer(ctx context.Context, cfg Config, onStart StartHook) (*statejson.RunReport, error) {
	return execute(ctx, ProducerConsumer, cfg, onStart, func(metrics *metering.Recorder, obs observer.Observer) ([]*Actor, []core.Stopper, error) {
		buffer, err := core.NewBuffer[int](cfg.Capacity, metrics, obs)
		if err != nil {
			return nil, nil, err
		}

		var actors []*Actor
		for i := 1; i <= cfg.Producers; i++ {
			name := fmt.Sprintf("Producer-%d", i)
			actors = append(actors, &Actor{Name: name, Role: &producer{name: name, buffer: buffer}, Pause: cfg.ProducerPause})
		}
		for i := 1; i <= cfg.Consumers; i++ {
			name := fmt.Sprintf("Consumer-%d", i)
			actors = append(actors, &Actor{Name: name, Role: &consumer{name: name, buffer: buffer}, Pause: cfg.ConsumerPause})
		}
		return actors, []core.Stopper{buffer}, nil
	})
}

// RunDiningPhilosophers seats cfg.Philosophers around a ring of as many
// resources.
func RunDiningPhilosophers(ctx context.Context, cfg Config, onStart StartHook) (*statejson.RunReport, error) {
	return execute(ctx, DiningPhilosophers, cfg, onStart, func(metrics *metering.Recorder, obs observer.Observer) ([]*Actor, []core.Stopper, error) {
		resources, err := core.NewResourceSet(cfg.Philosophers, metrics, obs)
		if err != nil {
			return nil, nil, err
		}

		actors := make([]*Actor, 0, cfg.Philosophers)
		for i := 0; i < cfg.Philosophers; i++ {
			seat := resources.Seat(i)
			actors = append(actors, &Actor{
				Name: seat.Name(),
				Role: &philosopher{
					seat:      seat,
					resources: resources,
					metrics:   metrics,
					observer:  observer.OrNop(obs),
				},
				Pause: cfg.ThinkTime,
				Hold:  cfg.EatTime,
			})
		}
		// Acquisitions are cancelled through the run context; nothing to stop.
		return actors, nil, nil
	})
}

// RunReadersWriters runs readers and writers against one monitor.
func RunReadersWriters(ctx context.Context, cfg Config, onStart StartHook) (*statejson.RunReport, error) {
	return execute(ctx, ReadersWriters, cfg, onStart, func(metrics *metering.Recorder, obs observer.Observer) ([]*Actor, []core.Stopper, error) {
		var opts []core.RWOption
		if cfg.WriterPriority {
			opts = append(opts, core.WithWriterPriority())
		}
		monitor := core.NewRWMonitor(metrics, obs, opts...)

		var actors []*Actor
		for i := 1; i <= cfg.Readers; i++ {
			name := fmt.Sprintf("Reader-%d", i)
			actors = append(actors, &Actor{Name: name, Role: &reader{name: name, monitor: monitor}, Pause: cfg.ReaderPause, Hold: cfg.ReadTime})
		}
		for i := 1; i <= cfg.Writers; i++ {
			name := fmt.Sprintf("Writer-%d", i)
			actors = append(actors, &Actor{Name: name, Role: &writer{name: name, monitor: monitor}, Pause: cfg.WriterPause, Hold: cfg.WriteTime})
		}
		return actors, []core.Stopper{monitor}, nil
	})
}

type buildFunc func(metrics *metering.Recorder, obs observer.Observer) ([]*Actor, []core.Stopper, error)

// execute starts every actor, releases them together, waits for the run to
// end and joins them all before taking the final snapshot.
func execute(ctx context.Context, simulation string, cfg Config, onStart StartHook, build buildFunc) (*statejson.RunReport, error) {
	if err := cfg.Validate(simulation); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	logger := log.WithFields(log.Fields{"run": runID, "simulation": simulation})
	metrics := metering.NewRecorder()

	var async *observer.Async
	var obs observer.Observer
	if cfg.Observer != nil {
		async = observer.NewAsync(cfg.Observer, cfg.ObserverQueueSize)
		obs = async
	}

	actors, stoppers, err := build(metrics, obs)
	if err == nil && len(actors) > math.MaxUint16 {
		err = &core.ConfigurationError{Field: "actors", Value: len(actors), Reason: "too many actors"}
	}
	if err != nil {
		if async != nil {
			async.Close()
		}
		return nil, err
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if cfg.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, cfg.Duration)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	// The recorder stops first: a run's duration ends with its context.
	watchdog := core.NewWatchdog(append([]core.Stopper{core.StopFunc(metrics.Stop)}, stoppers...)...)
	watchdog.GoWatch(gctx)

	ready := core.NewGate(uint16(len(actors)))
	start := core.NewGate(1)
	for _, a := range actors {
		a := a
		g.Go(func() error {
			if err := ready.WalkThrough(); err != nil {
				return fmt.Errorf("%s: %w", a.Name, err)
			}
			if err := start.AwaitGateCondition(gctx); err != nil {
				logger.WithError(err).Debugf("%s never started", a.Name)
				return nil
			}
			return a.Run(gctx)
		})
	}

	var startedAt time.Time
	if err := ready.AwaitGateCondition(gctx); err != nil {
		start.CancelWithError(err)
	} else {
		metrics.Start()
		startedAt = time.Now()
		logger.WithField("actors", len(actors)).Info("Simulation started")
		if onStart != nil {
			onStart(runID, simulation, metrics)
		}
		start.WalkThrough()
	}

	runErr := g.Wait()
	watchdog.StopAll(runErr)

	report := &statejson.RunReport{
		RunID:      runID,
		Simulation: simulation,
		Metrics:    metrics.Snapshot(),
	}
	if !startedAt.IsZero() {
		report.StartedAt = startedAt.UnixNano()
	}
	if async != nil {
		async.Close()
		report.DroppedEvents = async.Dropped()
	}
	if cfg.DescribeHost {
		report.Host = describeHost()
	}

	if runErr != nil {
		logger.WithError(runErr).Error("Simulation failed")
		return report, runErr
	}
	logger.WithFields(log.Fields{
		"cause":      watchdog.Cause(),
		"operations": report.Metrics.Operations,
		"throughput": report.Metrics.ThroughputOpsPerSec,
	}).Info("Simulation finished")
	return report, nil
}
