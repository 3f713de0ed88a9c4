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

// Package engine orchestrates simulations of a BPMN-style process.
//
// A Process owns the element graph and the resource pool. It is built with
// the Add* and Connect methods, then Simulate creates one token per case at
// its scheduled arrival time and drives the cases concurrently through the
// graph. Every case produces a metrics.TokenRecord; the run produces a
// metrics.Summary. Both are forwarded to the configured sinks.
//
// # Usage Example
//
//	ec := context.NewExecutionContext(stdcontext.Background(), clock.NewRealTimeClock())
//	p := engine.New("claims", ec, engine.DefaultConfig())
//
//	p.AddResource(resource.Definition{Name: "Clerk", Capacity: 2, CostPerHour: 30})
//	p.AddStartEvent("start", "Claim received")
//	p.AddActivity("review", "Review claim", 20, "Clerk")
//	p.AddEndEvent("end", "Settled")
//	p.Connect("start", "review")
//	p.Connect("review", "end")
//
//	result, err := p.Simulate(stdcontext.Background(), 100, 5)
//
// # Concurrency
//
// Cases run as goroutines, at most Config.MaxConcurrentCases at once, and
// are launched in arrival order. Within a case, each branch created by a
// parallel gateway runs in its own goroutine. A case blocks only while
// waiting for a resource unit; a token waiting at a join ends its goroutine
// and the last arrival continues with the merged token.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/jazzpetri/bpmn/bpmn"
	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/errs"
	"github.com/jazzpetri/bpmn/metrics"
	"github.com/jazzpetri/bpmn/resource"
	"github.com/jazzpetri/bpmn/token"
)

// Config defines the configuration for a simulation run.
type Config struct {
	// MaxConcurrentCases limits how many cases run at once.
	MaxConcurrentCases int

	// AcquireTimeout is the maximum real time an activity waits for a
	// resource unit. Zero waits until the run is cancelled.
	AcquireTimeout time.Duration

	// Pace is the real time an activity holds its unit per simulated
	// minute. Zero disables pacing.
	Pace time.Duration

	// Retry controls how activities retry acquisitions that hit
	// AcquireTimeout.
	Retry bpmn.RetryPolicy
}

// DefaultConfig returns a configuration without timeouts or pacing.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentCases: DefaultMaxConcurrentCases,
	}
}

// Statistics describes the execution of a run.
type Statistics struct {
	// CasesLaunched is the number of cases that entered the graph.
	CasesLaunched int64

	// CasesCompleted is the number of cases whose branches all ended.
	CasesCompleted int64

	// CasesFailed is the number of cases that returned an error.
	CasesFailed int64

	// NodeAdvances is the number of times a token was advanced through a
	// node.
	NodeAdvances int64

	// ExecutionTime is the wall time Simulate took.
	ExecutionTime time.Duration

	// StartTime is when Simulate started.
	StartTime time.Time
}

// Process is a process definition together with the resources it uses.
//
// Build methods return configuration errors once the process left the
// Building state.
type Process struct {
	name   string
	ec     *context.ExecutionContext
	config Config

	graph       *bpmn.Graph
	pool        *resource.Pool
	initializer func(*token.Token)
	sinks       metrics.MultiSink

	mu    sync.RWMutex
	state State

	statsMu sync.RWMutex
	stats   Statistics
	active  int64
}

// New creates an empty process.
//
// MaxConcurrentCases is validated and defaults to DefaultMaxConcurrentCases
// if it is not positive. A nil ec is replaced by a NoOp execution context on
// a real-time clock.
func New(name string, ec *context.ExecutionContext, config Config) *Process {
	if ec == nil {
		ec = context.NewExecutionContext(nil, nil)
	}
	if config.MaxConcurrentCases <= 0 {
		ec.Logger.Warn("invalid MaxConcurrentCases, using default", map[string]interface{}{
			"process":   name,
			"default":   DefaultMaxConcurrentCases,
			"operation": "engine_init",
		})
		config.MaxConcurrentCases = DefaultMaxConcurrentCases
	}

	return &Process{
		name:   name,
		ec:     ec,
		config: config,
		graph:  bpmn.NewGraph(),
		pool:   resource.NewPool(),
		state:  Building,
	}
}

// Name returns the process name.
func (p *Process) Name() string {
	return p.name
}

// Config returns the effective configuration.
func (p *Process) Config() Config {
	return p.config
}

// Graph returns the element graph.
func (p *Process) Graph() *bpmn.Graph {
	return p.graph
}

// Pool returns the resource pool.
func (p *Process) Pool() *resource.Pool {
	return p.pool
}

// ExecutionContext returns the execution context used by this process.
func (p *Process) ExecutionContext() *context.ExecutionContext {
	return p.ec
}

// State returns the lifecycle state.
func (p *Process) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Statistics returns a snapshot of the execution statistics.
func (p *Process) Statistics() Statistics {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	return p.stats
}

func (p *Process) building(component, id string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state != Building {
		return errs.Configuration(component, id, "process %s is %s and can no longer be changed", p.name, p.state)
	}
	return nil
}

// AddResource registers a resource in the pool.
func (p *Process) AddResource(def resource.Definition) error {
	if err := p.building("resource", def.Name); err != nil {
		return err
	}
	return p.pool.Define(def)
}

// AddStartEvent adds the start event. A process has exactly one.
func (p *Process) AddStartEvent(id, name string) error {
	if err := p.building("start event", id); err != nil {
		return err
	}
	_, err := p.graph.AddStartEvent(id, name)
	return err
}

// AddEndEvent adds an end event. Its name is the end reason of the tokens
// reaching it.
func (p *Process) AddEndEvent(id, name string) error {
	if err := p.building("end event", id); err != nil {
		return err
	}
	_, err := p.graph.AddEndEvent(id, name)
	return err
}

// AddActivity adds an activity that holds one unit of the resource named
// res for minutes of simulated time.
func (p *Process) AddActivity(id, name string, minutes float64, res string) error {
	if err := p.building("activity", id); err != nil {
		return err
	}
	_, err := p.graph.AddActivity(id, name, minutes, res)
	return err
}

// AddExclusiveGateway adds an exclusive gateway. Its edges are added with
// AddRule and SetDefault.
func (p *Process) AddExclusiveGateway(id, name string) error {
	if err := p.building("exclusive gateway", id); err != nil {
		return err
	}
	_, err := p.graph.AddExclusiveGateway(id, name)
	return err
}

// AddParallelGateway adds a forking or joining parallel gateway.
func (p *Process) AddParallelGateway(id, name string, dir bpmn.Direction) error {
	if err := p.building("parallel gateway", id); err != nil {
		return err
	}
	_, err := p.graph.AddParallelGateway(id, name, dir)
	return err
}

// Connect adds an edge from the node fromID to the node toID.
func (p *Process) Connect(fromID, toID string) error {
	if err := p.building("edge", fromID+"->"+toID); err != nil {
		return err
	}
	return p.graph.Connect(fromID, toID)
}

// AddRule appends a rule to the exclusive gateway gatewayID. Rules are
// evaluated in the order they were added.
func (p *Process) AddRule(gatewayID, ruleName string, pred bpmn.Predicate, targetID string) error {
	if err := p.building("exclusive gateway", gatewayID); err != nil {
		return err
	}
	gw, target, err := p.ruleEnds(gatewayID, targetID)
	if err != nil {
		return err
	}
	return gw.AddRule(ruleName, pred, target)
}

// SetDefault sets the edge the exclusive gateway gatewayID takes when no
// rule matches.
func (p *Process) SetDefault(gatewayID, targetID string) error {
	if err := p.building("exclusive gateway", gatewayID); err != nil {
		return err
	}
	gw, target, err := p.ruleEnds(gatewayID, targetID)
	if err != nil {
		return err
	}
	return gw.SetDefault(target)
}

func (p *Process) ruleEnds(gatewayID, targetID string) (*bpmn.ExclusiveGateway, bpmn.Node, error) {
	n, ok := p.graph.Lookup(gatewayID)
	if !ok {
		return nil, nil, errs.Configuration("exclusive gateway", gatewayID, "does not exist")
	}
	gw, ok := n.(*bpmn.ExclusiveGateway)
	if !ok {
		return nil, nil, errs.Configuration("exclusive gateway", gatewayID, "is a %s", n.Kind())
	}
	target, ok := p.graph.Lookup(targetID)
	if !ok {
		return nil, nil, errs.Configuration("exclusive gateway", gatewayID, "target %q does not exist", targetID)
	}
	return gw, target, nil
}

// WithCaseInitializer sets a function called with each case's token before
// it enters the start event. It typically fills the data bag that gateway
// rules read. The function runs on the case's goroutine.
func (p *Process) WithCaseInitializer(fn func(*token.Token)) *Process {
	p.initializer = fn
	return p
}

// WithSink adds a sink receiving the records and summary of the run.
func (p *Process) WithSink(sink metrics.Sink) *Process {
	if sink != nil {
		p.sinks = append(p.sinks, sink)
	}
	return p
}

// String returns a human-readable representation of the process for
// debugging.
func (p *Process) String() string {
	return fmt.Sprintf("Process[%s %s nodes=%d resources=%d]", p.name, p.State(), p.graph.Len(), len(p.pool.Names()))
}
