// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"go.ossim.dev/sim/invariant"
	"go.ossim.dev/sim/logging"
	"go.ossim.dev/sim/observer"
	"go.ossim.dev/sim/simulation"
	"go.ossim.dev/sim/statusapi"
)

const allSimulations = "all"

type options struct {
	LogLevel   string        `long:"log-level" env:"OSSIM_LOG_LEVEL" default:"info" description:"log level"`
	Simulation string        `long:"simulation" env:"OSSIM_SIMULATION" default:"all" choice:"producer-consumer" choice:"dining-philosophers" choice:"readers-writers" choice:"all" description:"simulation to run"`
	Duration   time.Duration `long:"duration" env:"OSSIM_DURATION" default:"5s" description:"how long each simulation runs, 0 runs until interrupted"`

	Capacity  int `long:"capacity" default:"5" description:"bounded buffer capacity"`
	Producers int `long:"producers" default:"2" description:"number of producers"`
	Consumers int `long:"consumers" default:"3" description:"number of consumers"`

	Philosophers int `long:"philosophers" default:"5" description:"number of philosophers, at least 2"`

	Readers        int  `long:"readers" default:"3" description:"number of readers"`
	Writers        int  `long:"writers" default:"2" description:"number of writers"`
	WriterPriority bool `long:"writer-priority" description:"hold back new readers while a writer waits"`

	HTTPAddress  string `long:"http" env:"OSSIM_HTTP" description:"serve the status API on this address, e.g. 127.0.0.1:8080"`
	EventLimit   int    `long:"event-limit" default:"256" description:"events kept for the status API"`
	QueueSize    int    `long:"observer-queue" default:"1024" description:"async observer queue size"`
	DescribeHost bool   `long:"describe-host" description:"add CPU and memory details to the run report"`
	Invariants   string `long:"invariants" default:"panic" choice:"panic" choice:"log" description:"what to do when an engine invariant breaks"`
}

func main() {
	opts := getCLIArgs()
	if err := logging.SetLogLevel(opts.LogLevel); err != nil {
		log.WithError(err).Fatal("Failed to set log level")
	}
	if opts.Invariants == "log" {
		invariant.SetViolationExecutor(invariant.NewLogViolationExecutor())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go signalHandler(cancel)

	board := observer.NewBoard(opts.EventLimit)
	tracker := statusapi.NewTracker()
	if opts.HTTPAddress != "" {
		go startHTTPServer(opts.HTTPAddress, statusapi.NewHTTPRouter(board, tracker, cancel))
	}

	if err := runSimulations(ctx, os.Stdout, opts, board, tracker.Track); err != nil {
		log.WithError(err).Fatal("Simulation failed")
	}
}

func getCLIArgs() options {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.WithError(err).Fatal("Failed to parse command line arguments:", os.Args)
	}
	return opts
}

// Trap SIGINT and SIGTERM signals and cancel the running simulation
func signalHandler(cancel context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	sigReceived := <-sig
	log.WithField("signal", sigReceived.String()).Info("Received signal")
	cancel()
}

func selectedSimulations(name string) []string {
	if name == allSimulations {
		return simulation.Names
	}
	return []string{name}
}

func buildConfig(opts options, board *observer.Board, name string) simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.Duration = opts.Duration
	cfg.Capacity = opts.Capacity
	cfg.Producers = opts.Producers
	cfg.Consumers = opts.Consumers
	cfg.Philosophers = opts.Philosophers
	cfg.Readers = opts.Readers
	cfg.Writers = opts.Writers
	cfg.WriterPriority = opts.WriterPriority
	cfg.ObserverQueueSize = opts.QueueSize
	cfg.DescribeHost = opts.DescribeHost
	cfg.Observer = observer.Multi{board, observer.NewLogger(name)}
	return cfg
}

// runSimulations runs the selected simulations one after another and prints
// the summary of each. The board only ever shows the current run. An
// interrupt ends the current run and skips the rest.
func runSimulations(ctx context.Context, out io.Writer, opts options, board *observer.Board, onStart simulation.StartHook) error {
	for _, name := range selectedSimulations(opts.Simulation) {
		if ctx.Err() != nil {
			log.WithField("simulation", name).Info("Skipping simulation after interrupt")
			continue
		}

		fmt.Fprintf(out, "\n=== %s ===\n", simulation.Title(name))
		board.Reset()
		report, err := simulation.Run(ctx, name, buildConfig(opts, board, name), onStart)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		report.Metrics.Print(out, simulation.Title(name))
		log.WithField("simulation", name).Debugf("Run report: %s", report.AsJSON())
	}
	return nil
}
