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

package clock

import (
	"context"
	"sync"
	"time"
)

// VirtualClock is a Clock whose time only moves when AdvanceTo or AdvanceBy
// is called. Sleepers are released as soon as the clock reaches their
// deadline, so paced simulations run instantly and deterministically under
// test.
//
// VirtualClock is safe for concurrent use by multiple goroutines.
type VirtualClock struct {
	mu      sync.RWMutex
	current time.Time
	sleeps  []*virtualSleep
}

// virtualSleep is a goroutine blocked in Sleep.
type virtualSleep struct {
	deadline time.Time
	ch       chan struct{}
}

// NewVirtualClock creates a virtual clock starting at start.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{current: start}
}

// Now returns the current virtual time.
func (v *VirtualClock) Now() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Sleep blocks until the virtual time reaches now+d or ctx is done.
// A sleeper abandoned through ctx is removed from the pending list.
func (v *VirtualClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	v.mu.Lock()
	s := &virtualSleep{
		deadline: v.current.Add(d),
		ch:       make(chan struct{}),
	}
	v.sleeps = append(v.sleeps, s)
	v.mu.Unlock()

	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		v.forget(s)
		return ctx.Err()
	}
}

// forget drops s from the pending sleeps if it has not fired yet.
func (v *VirtualClock) forget(s *virtualSleep) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, pending := range v.sleeps {
		if pending == s {
			v.sleeps = append(v.sleeps[:i], v.sleeps[i+1:]...)
			return
		}
	}
}

// AdvanceTo moves the clock to target and wakes every sleeper whose deadline
// has been reached. The clock never moves backwards.
func (v *VirtualClock) AdvanceTo(target time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !target.After(v.current) {
		return
	}
	v.current = target
	v.wake()
}

// AdvanceBy moves the clock forward by d. Non-positive durations are ignored.
func (v *VirtualClock) AdvanceBy(d time.Duration) {
	if d <= 0 {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = v.current.Add(d)
	v.wake()
}

// wake must be called with mu held.
func (v *VirtualClock) wake() {
	remaining := v.sleeps[:0]
	for _, s := range v.sleeps {
		if s.deadline.After(v.current) {
			remaining = append(remaining, s)
			continue
		}
		close(s.ch)
	}
	for i := len(remaining); i < len(v.sleeps); i++ {
		v.sleeps[i] = nil
	}
	v.sleeps = remaining
}

// PendingSleeps returns the number of goroutines blocked in Sleep.
func (v *VirtualClock) PendingSleeps() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.sleeps)
}

// WaitForSleepers blocks until at least n goroutines are blocked in Sleep or
// ctx is done. Tests use it to step a paced simulation without racing it.
func (v *VirtualClock) WaitForSleepers(ctx context.Context, n int) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for v.PendingSleeps() < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
