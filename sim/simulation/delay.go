// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Delay is a uniformly random duration in [Min, Max). A zero Delay means no
// pause at all.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

func (d Delay) Validate() error {
	if d.Min < 0 || d.Max < 0 {
		return fmt.Errorf("invalid delay [%s, %s): must not be negative", d.Min, d.Max)
	}
	if d.Max != 0 && d.Max < d.Min {
		return fmt.Errorf("invalid delay [%s, %s): max below min", d.Min, d.Max)
	}
	return nil
}

var rng = struct {
	sync.Mutex
	*rand.Rand
}{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}

func randInt63n(n int64) int64 {
	rng.Lock()
	defer rng.Unlock()
	return rng.Int63n(n)
}

func randIntn(n int) int {
	rng.Lock()
	defer rng.Unlock()
	return rng.Intn(n)
}

// Next draws one duration.
func (d Delay) Next() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(randInt63n(int64(d.Max-d.Min)))
}

// sleep pauses for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
