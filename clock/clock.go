// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clock provides the wall-clock abstraction used by the process engine.
//
// Simulated process time is carried by each token in minutes and never reads
// the wall clock. The Clock interface covers the two places where real time
// matters:
//   - run statistics (how long a simulation took)
//   - pacing, where an activity holds its resource for a real duration
//     proportional to its simulated duration, so contention can be watched
//     as it happens
//
// RealTimeClock delegates to the time package. VirtualClock only moves when a
// test advances it, which makes paced runs deterministic.
//
// Example usage in tests:
//
//	clk := clock.NewVirtualClock(start)
//	go func() { _ = clk.Sleep(ctx, time.Minute) }()
//	clk.AdvanceBy(time.Minute) // the sleeper returns
package clock

import (
	"context"
	"time"
)

// Clock abstracts wall-clock time.
// Implementations must be safe for concurrent use by multiple goroutines.
type Clock interface {
	// Now returns the current time according to this clock.
	Now() time.Time

	// Sleep blocks for at least d, or until ctx is done, in which case it
	// returns ctx.Err(). Non-positive durations return immediately.
	Sleep(ctx context.Context, d time.Duration) error
}
