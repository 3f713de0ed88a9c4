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

package resource

import (
	"context"
	"sync"

	"github.com/jazzpetri/bpmn/errs"
)

// Pool is a registry of resources keyed by unique name.
// It is safe for concurrent use.
type Pool struct {
	mu        sync.RWMutex
	resources map[string]*Resource
	names     []string
	frozen    bool
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		resources: make(map[string]*Resource),
	}
}

// Define registers a resource. Duplicate names, invalid definitions and
// definitions added after Freeze are configuration errors.
func (p *Pool) Define(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.frozen {
		return errs.Configuration("resource", def.Name, "pool is frozen, resources cannot be added during a simulation")
	}
	if _, exists := p.resources[def.Name]; exists {
		return errs.Configuration("resource", def.Name, "already defined")
	}

	p.resources[def.Name] = newResource(def)
	p.names = append(p.names, def.Name)
	return nil
}

// Freeze prevents further definitions.
func (p *Pool) Freeze() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frozen = true
}

// Get returns the named resource.
func (p *Pool) Get(name string) (*Resource, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.resources[name]
	if !ok {
		return nil, &errs.ResourceNotFoundError{Resource: name}
	}
	return r, nil
}

// Has reports whether a resource with the given name is defined.
func (p *Pool) Has(name string) bool {
	_, err := p.Get(name)
	return err == nil
}

// Names returns resource names in definition order.
func (p *Pool) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// Reserve books a unit of the named resource for hold simulated minutes,
// requested at simulated time at. It never blocks; the returned lease must
// be waited on before use.
func (p *Pool) Reserve(name string, at, hold float64) (*Lease, error) {
	r, err := p.Get(name)
	if err != nil {
		return nil, err
	}
	return r.reserve(at, hold)
}

// Acquire reserves a unit of the named resource and blocks until it is held.
// Callers are served in the order of their Acquire calls.
//
// Returns an errs.ResourceNotFoundError for undefined names, an
// errs.ResourceTimeoutError if ctx's deadline expires while waiting, or
// ctx.Err() if ctx is cancelled.
func (p *Pool) Acquire(ctx context.Context, name string, at, hold float64) (*Lease, error) {
	lease, err := p.Reserve(name, at, hold)
	if err != nil {
		return nil, err
	}
	if err := lease.Wait(ctx); err != nil {
		return nil, err
	}
	return lease, nil
}

// Release frees one held unit of the named resource at simulated time at and
// wakes one waiter. Releasing a resource with no held units is a no-op.
func (p *Pool) Release(name string, at float64) error {
	r, err := p.Get(name)
	if err != nil {
		return err
	}
	r.releaseAny(at)
	return nil
}

// AddUsage accumulates minutes of use and the matching cost
// (minutes / 60 * cost per hour) on the named resource.
func (p *Pool) AddUsage(name string, minutes float64) error {
	r, err := p.Get(name)
	if err != nil {
		return err
	}
	return r.addUsage(minutes)
}

// Snapshot returns the usage of every resource in definition order.
func (p *Pool) Snapshot() []Usage {
	p.mu.RLock()
	resources := make([]*Resource, 0, len(p.names))
	for _, name := range p.names {
		resources = append(resources, p.resources[name])
	}
	p.mu.RUnlock()

	usage := make([]Usage, 0, len(resources))
	for _, r := range resources {
		usage = append(usage, r.Usage())
	}
	return usage
}
