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

// Package resource provides the pool of named, capacity-bounded resources
// consumed by process activities.
//
// # Reservations
//
// A request names the simulated time it is made at and how many simulated
// minutes it holds the unit. Reserve assigns the unit that becomes free
// earliest in simulated time; the lease starts at max(request, unitFreeAt)
// and the unit is booked until the lease ends. Requests reserved in order of
// their simulated request time therefore form a first-come first-served
// queue in simulated time, independent of goroutine scheduling.
//
// # Blocking Semantics
//
// A reserved lease still has to wait in real time for the leases booked
// before it on the same unit to be released. Wait blocks in booking order;
// a context deadline bounds the wait and yields an errs.ResourceTimeoutError.
// Acquire reserves and waits in one call.
//
// # Invariants
//
// For every resource 0 <= InUse <= Capacity at all observable instants,
// because each unit is held by at most one lease. Usage is recorded while a
// lease is held.
package resource

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/jazzpetri/bpmn/errs"
)

// Definition describes a resource to register in a pool.
type Definition struct {
	// Name is the unique resource name referenced by activities.
	Name string `yaml:"name" json:"name"`

	// Capacity is the number of units that can be held concurrently (>= 1).
	Capacity int `yaml:"capacity" json:"capacity"`

	// CostPerHour is the hourly cost rate of one unit (>= 0).
	CostPerHour float64 `yaml:"cost_per_hour" json:"cost_per_hour"`
}

// Validate checks that the definition is usable.
func (d Definition) Validate() error {
	switch {
	case d.Name == "":
		return errs.Configuration("resource", "", "name cannot be empty")
	case d.Capacity < 1:
		return errs.Configuration("resource", d.Name, "capacity must be at least 1, got %d", d.Capacity)
	case d.CostPerHour < 0 || math.IsNaN(d.CostPerHour) || math.IsInf(d.CostPerHour, 0):
		return errs.Configuration("resource", d.Name, "cost per hour must be a non-negative number, got %v", d.CostPerHour)
	}
	return nil
}

// Usage is a point-in-time snapshot of a resource's accounting.
type Usage struct {
	Name         string
	Capacity     int
	CostPerHour  float64
	InUse        int
	PeakInUse    int
	Acquisitions int
	MinutesUsed  float64
	Cost         float64
	WaitMinutes  float64
}

// Resource is a named asset with a fixed number of interchangeable units.
type Resource struct {
	name        string
	capacity    int
	costPerHour float64

	mu sync.Mutex
	// freeAt is the simulated time each unit's last booking ends.
	freeAt []float64
	// tails is closed when the last booked lease of each unit lets go of
	// it; nil when nothing is booked.
	tails        []chan struct{}
	holders      []*Lease
	inUse        int
	peak         int
	acquisitions int
	minutesUsed  float64
	cost         float64
	waitMinutes  float64
}

func newResource(def Definition) *Resource {
	return &Resource{
		name:        def.Name,
		capacity:    def.Capacity,
		costPerHour: def.CostPerHour,
		freeAt:      make([]float64, def.Capacity),
		tails:       make([]chan struct{}, def.Capacity),
		holders:     make([]*Lease, def.Capacity),
	}
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return r.name
}

// Capacity returns the number of units.
func (r *Resource) Capacity() int {
	return r.capacity
}

// InUse returns the number of units currently held.
func (r *Resource) InUse() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inUse
}

// reserve books the unit that becomes free earliest for hold minutes from
// max(at, freeAt). Ties go to the lowest unit.
func (r *Resource) reserve(at, hold float64) (*Lease, error) {
	if math.IsNaN(at) || math.IsInf(at, 0) {
		return nil, fmt.Errorf("resource %s: request time must be a finite number, got %v", r.name, at)
	}
	if hold < 0 || math.IsNaN(hold) || math.IsInf(hold, 0) {
		return nil, fmt.Errorf("resource %s: hold must be a non-negative number of minutes, got %v", r.name, hold)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	unit := 0
	for i := range r.freeAt {
		if r.freeAt[i] < r.freeAt[unit] {
			unit = i
		}
	}

	start := math.Max(at, r.freeAt[unit])
	lease := &Lease{
		resource:   r,
		unit:       unit,
		requested:  at,
		start:      start,
		end:        start + hold,
		prevFreeAt: r.freeAt[unit],
		ready:      r.tails[unit],
		done:       make(chan struct{}),
	}
	r.freeAt[unit] = lease.end
	r.tails[unit] = lease.done
	return lease, nil
}

// hold marks lease as the holder of its unit once its predecessors let go.
func (r *Resource) hold(lease *Lease) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.holders[lease.unit] = lease
	r.inUse++
	if r.inUse > r.peak {
		r.peak = r.inUse
	}
	r.acquisitions++
	r.waitMinutes += lease.start - lease.requested
}

// abandon cancels a lease that never held its unit.
func (r *Resource) abandon(lease *Lease) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tails[lease.unit] == lease.done {
		r.tails[lease.unit] = lease.ready
		r.freeAt[lease.unit] = lease.prevFreeAt
		return
	}

	// Later bookings wait on this lease; pass the unit on once the
	// predecessor releases it.
	go func() {
		if lease.ready != nil {
			<-lease.ready
		}
		close(lease.done)
	}()
}

// release frees the unit held by lease. It reports false if the lease does
// not hold its unit.
func (r *Resource) release(lease *Lease, at float64) bool {
	r.mu.Lock()
	if r.holders[lease.unit] != lease {
		r.mu.Unlock()
		return false
	}
	r.holders[lease.unit] = nil
	r.inUse--
	if r.tails[lease.unit] == lease.done {
		// Nothing is booked after this lease; a late release extends it.
		if at > r.freeAt[lease.unit] {
			r.freeAt[lease.unit] = at
		}
		r.tails[lease.unit] = nil
	}
	r.mu.Unlock()

	close(lease.done)
	return true
}

// releaseAny frees the lowest-numbered held unit. It is a no-op when no unit
// is held.
func (r *Resource) releaseAny(at float64) {
	r.mu.Lock()
	var lease *Lease
	for _, holder := range r.holders {
		if holder != nil {
			lease = holder
			break
		}
	}
	r.mu.Unlock()

	if lease != nil {
		r.release(lease, at)
	}
}

func (r *Resource) addUsage(minutes float64) error {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return fmt.Errorf("resource %s: usage must be a non-negative number, got %v", r.name, minutes)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.minutesUsed += minutes
	r.cost += minutes / 60.0 * r.costPerHour
	return nil
}

// Usage returns a snapshot of the resource's accounting.
func (r *Resource) Usage() Usage {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Usage{
		Name:         r.name,
		Capacity:     r.capacity,
		CostPerHour:  r.costPerHour,
		InUse:        r.inUse,
		PeakInUse:    r.peak,
		Acquisitions: r.acquisitions,
		MinutesUsed:  r.minutesUsed,
		Cost:         r.cost,
		WaitMinutes:  r.waitMinutes,
	}
}

// String returns a human-readable representation of the resource for debugging.
func (r *Resource) String() string {
	u := r.Usage()
	return fmt.Sprintf("Resource[%s: %d/%d in use, %.2f min, $%.2f]", u.Name, u.InUse, u.Capacity, u.MinutesUsed, u.Cost)
}

// Lease is a booked unit of a resource.
type Lease struct {
	resource   *Resource
	unit       int
	requested  float64
	start      float64
	end        float64
	prevFreeAt float64
	ready      chan struct{}
	done       chan struct{}
}

// Resource returns the name of the leased resource.
func (l *Lease) Resource() string {
	return l.resource.name
}

// Unit returns the index of the leased unit.
func (l *Lease) Unit() int {
	return l.unit
}

// Start returns the simulated time at which the unit became available to
// this lease.
func (l *Lease) Start() float64 {
	return l.start
}

// End returns the simulated time the booking ends.
func (l *Lease) End() float64 {
	return l.end
}

// Waited returns the simulated minutes spent waiting for the unit.
func (l *Lease) Waited() float64 {
	return l.start - l.requested
}

// Wait blocks until the leases booked earlier on the same unit released it,
// then holds the unit. If ctx ends first the booking is cancelled and an
// errs.ResourceTimeoutError (deadline) or ctx.Err() is returned.
func (l *Lease) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		l.resource.abandon(l)
		return l.waitError(err)
	}
	if l.ready != nil {
		select {
		case <-l.ready:
		case <-ctx.Done():
			l.resource.abandon(l)
			return l.waitError(ctx.Err())
		}
	}
	l.resource.hold(l)
	return nil
}

func (l *Lease) waitError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &errs.ResourceTimeoutError{Resource: l.resource.name, Cause: err}
	}
	return err
}

// AddUsage records minutes of work performed with the held unit.
func (l *Lease) AddUsage(minutes float64) error {
	if !l.Held() {
		return fmt.Errorf("resource %s: usage recorded on a released lease", l.resource.name)
	}
	return l.resource.addUsage(minutes)
}

// Held reports whether the lease holds its unit.
func (l *Lease) Held() bool {
	l.resource.mu.Lock()
	defer l.resource.mu.Unlock()
	return l.resource.holders[l.unit] == l
}

// Release frees the unit at simulated time at and lets the next booking on
// the unit proceed. Releasing twice is a no-op.
func (l *Lease) Release(at float64) bool {
	return l.resource.release(l, at)
}
