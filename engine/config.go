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

package engine

import (
	"github.com/jazzpetri/bpmn/bpmn"
	"github.com/jazzpetri/bpmn/config"
	"github.com/jazzpetri/bpmn/context"
)

// NewFromConfig creates a process named and configured after sim with its
// resources already defined. The graph is still empty. The schedule in sim
// is not applied; pass it to Simulate.
func NewFromConfig(sim config.Simulation, ec *context.ExecutionContext) (*Process, error) {
	if err := sim.Validate(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if sim.Engine.MaxConcurrentCases > 0 {
		cfg.MaxConcurrentCases = sim.Engine.MaxConcurrentCases
	}
	cfg.AcquireTimeout = sim.Engine.AcquireTimeout
	cfg.Pace = sim.Engine.Pace
	cfg.Retry = bpmn.RetryPolicy{
		MaxAttempts: sim.Engine.AcquireAttempts,
		Backoff:     sim.Engine.RetryBackoff,
	}

	p := New(sim.Name, ec, cfg)
	for _, def := range sim.Resources {
		if err := p.AddResource(def); err != nil {
			return nil, err
		}
	}
	return p, nil
}
