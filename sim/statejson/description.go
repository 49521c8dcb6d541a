// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package statejson

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"go.ossim.dev/sim/metering"
)

// ActorDescription ...
type ActorDescription struct {
	Name         string `json:"name"`
	State        string `json:"state"`
	LastModified int64  `json:"lastModified"`
}

// ResourceDescription describes one fork of the dining philosophers table.
type ResourceDescription struct {
	ID           int   `json:"id"`
	Taken        bool  `json:"taken"`
	LastModified int64 `json:"lastModified"`
}

// BufferDescription ...
type BufferDescription struct {
	Size     int `json:"size"`
	Capacity int `json:"capacity"`
}

// BoardDescription is the live view of a running simulation, for debugging
// and for external visualizers.
type BoardDescription struct {
	Actors         []ActorDescription    `json:"actors"`
	Resources      []ResourceDescription `json:"resources,omitempty"`
	Buffer         *BufferDescription    `json:"buffer,omitempty"`
	SharedResource string                `json:"sharedResource,omitempty"`
}

func (s *BoardDescription) AsJSON() []byte {
	bytes, err := json.Marshal(s)
	if err != nil {
		log.Panicf("Failed to marshall board state: %s", err)
	}
	return bytes
}

// HostDescription records the machine a run executed on, so throughput
// numbers from different hosts can be told apart.
type HostDescription struct {
	PhysicalCores    int    `json:"physicalCores,omitempty"`
	LogicalCores     int    `json:"logicalCores,omitempty"`
	TotalMemoryBytes uint64 `json:"totalMemoryBytes,omitempty"`
	GOMAXPROCS       int    `json:"gomaxprocs"`
}

// RunReport is the result of one simulation run.
type RunReport struct {
	RunID         string            `json:"runId"`
	Simulation    string            `json:"simulation"`
	StartedAt     int64             `json:"startedAt"`
	Metrics       metering.Snapshot `json:"metrics"`
	DroppedEvents uint64            `json:"droppedEvents"`
	Host          *HostDescription  `json:"host,omitempty"`
}

func (r *RunReport) AsJSON() []byte {
	bytes, err := json.Marshal(r)
	if err != nil {
		log.Panicf("Failed to marshall run report: %s", err)
	}
	return bytes
}
