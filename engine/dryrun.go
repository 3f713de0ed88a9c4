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
	"errors"
	"fmt"

	"github.com/jazzpetri/bpmn/bpmn"
	"github.com/jazzpetri/bpmn/errs"
	"go.uber.org/multierr"
)

// DryRunResult contains the results of a dry-run validation.
type DryRunResult struct {
	Valid        bool
	Issues       []DryRunIssue
	Warnings     []DryRunIssue
	Analysis     map[string]interface{}
	Reachability map[string]bool
}

// DryRunIssue represents a problem found during dry-run validation.
type DryRunIssue struct {
	Type        string
	Severity    string
	Component   string
	ComponentID string
	Message     string
}

// HasIssues returns true if there are any validation issues.
func (r *DryRunResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// Validate checks the process without simulating it.
//
// Issues are the structural defects that make Simulate fail with a
// configuration error. Warnings point at things that are legal but likely
// mistakes:
//   - nodes that cannot be reached from the start event
//   - converging gateways with fewer than two incoming edges
//   - activities using a resource that is not defined, which fails every
//     case reaching them
//   - resources no activity uses
func (p *Process) Validate() *DryRunResult {
	result := &DryRunResult{
		Valid:        true,
		Issues:       []DryRunIssue{},
		Warnings:     []DryRunIssue{},
		Analysis:     make(map[string]interface{}),
		Reachability: p.graph.Reachability(),
	}

	p.analyze(result)

	warnings, err := p.graph.Check()
	for _, e := range multierr.Errors(err) {
		result.Issues = append(result.Issues, issueFrom(e))
	}
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, DryRunIssue{
			Type:        "structure",
			Severity:    "warning",
			Component:   "graph",
			ComponentID: p.name,
			Message:     w,
		})
	}

	p.checkResources(result)

	if len(result.Issues) > 0 {
		result.Valid = false
	}
	return result
}

func issueFrom(err error) DryRunIssue {
	var ce *errs.ConfigurationError
	if errors.As(err, &ce) {
		return DryRunIssue{
			Type:        "invalid_structure",
			Severity:    "error",
			Component:   ce.Component,
			ComponentID: ce.ID,
			Message:     ce.Reason,
		}
	}
	return DryRunIssue{
		Type:      "invalid_structure",
		Severity:  "error",
		Component: "graph",
		Message:   err.Error(),
	}
}

// checkResources compares the resources activities use with the pool.
func (p *Process) checkResources(result *DryRunResult) {
	used := make(map[string]bool)
	for _, name := range p.graph.Resources() {
		used[name] = true
		if !p.pool.Has(name) {
			result.Warnings = append(result.Warnings, DryRunIssue{
				Type:        "undefined_resource",
				Severity:    "warning",
				Component:   "resource",
				ComponentID: name,
				Message:     fmt.Sprintf("Resource '%s' is used by activities but not defined - cases reaching them will fail", name),
			})
		}
	}
	for _, name := range p.pool.Names() {
		if !used[name] {
			result.Warnings = append(result.Warnings, DryRunIssue{
				Type:        "unused_resource",
				Severity:    "warning",
				Component:   "resource",
				ComponentID: name,
				Message:     fmt.Sprintf("Resource '%s' is defined but no activity uses it", name),
			})
		}
	}
}

// analyze records structural counts.
func (p *Process) analyze(result *DryRunResult) {
	kinds := make(map[bpmn.Kind]int)
	edges := 0
	for _, n := range p.graph.Nodes() {
		kinds[n.Kind()]++
		edges += len(n.Outgoing())
	}

	result.Analysis["node_count"] = p.graph.Len()
	result.Analysis["edge_count"] = edges
	result.Analysis["resource_count"] = len(p.pool.Names())
	result.Analysis["activity_count"] = kinds[bpmn.KindActivity]
	result.Analysis["end_event_count"] = kinds[bpmn.KindEndEvent]
	result.Analysis["exclusive_gateway_count"] = kinds[bpmn.KindExclusiveGateway]
	result.Analysis["parallel_gateway_count"] = kinds[bpmn.KindParallelGateway]
}
