// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"

	"go.ossim.dev/sim/statejson"
)

// describeHost collects what is available; a probe that fails is logged and
// left out of the description.
func describeHost() *statejson.HostDescription {
	host := &statejson.HostDescription{GOMAXPROCS: runtime.GOMAXPROCS(0)}

	if n, err := cpu.Counts(false); err != nil {
		log.WithError(err).Warn("Failed to count physical cores")
	} else {
		host.PhysicalCores = n
	}

	if n, err := cpu.Counts(true); err != nil {
		log.WithError(err).Warn("Failed to count logical cores")
	} else {
		host.LogicalCores = n
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		log.WithError(err).Warn("Failed to read memory size")
	} else {
		host.TotalMemoryBytes = vm.Total
	}

	return host
}
