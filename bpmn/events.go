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

package bpmn

import (
	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/errs"
)

// StartEvent is the entry point of a process.
type StartEvent struct {
	base
}

func (s *StartEvent) Kind() Kind { return KindStartEvent }

// Advance marks the token Running, counts the case as started and emits the
// sole outgoing edge.
func (s *StartEvent) Advance(ec *context.ExecutionContext, pc *ProcessContext, hop Hop) (Outcome, error) {
	tok := hop.Token
	if tok.Start() {
		pc.caseStarted(tok)
		ec.Metrics.Inc(MetricCasesStarted)
	}
	return Outcome{Next: []Hop{s.next(0, tok)}}, nil
}

func (s *StartEvent) validate() []error {
	var issues []error
	if len(s.outgoing) != 1 {
		issues = append(issues, errs.Configuration("start event", s.id, "must have exactly one outgoing edge, has %d", len(s.outgoing)))
	}
	if n := len(s.graph.incoming[s.index]); n > 0 {
		issues = append(issues, errs.Configuration("start event", s.id, "cannot have incoming edges, has %d", n))
	}
	return issues
}

// EndEvent terminates a token. Its display name is the end reason.
type EndEvent struct {
	base
}

func (e *EndEvent) Kind() Kind { return KindEndEvent }

// Advance completes the token with the node's name as end reason. When this
// was the last live token of the case, the case is counted as completed.
func (e *EndEvent) Advance(ec *context.ExecutionContext, pc *ProcessContext, hop Hop) (Outcome, error) {
	tok := hop.Token
	tok.Complete(e.name)
	if pc.branchEnded(tok, e.name) {
		ec.Metrics.Inc(MetricCasesCompleted)
	}
	return Outcome{Terminal: true}, nil
}

func (e *EndEvent) validate() []error {
	if len(e.outgoing) != 0 {
		return []error{errs.Configuration("end event", e.id, "cannot have outgoing edges, has %d", len(e.outgoing))}
	}
	return nil
}
