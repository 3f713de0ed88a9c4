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
	"fmt"

	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/errs"
)

// Direction selects whether a parallel gateway forks or joins.
type Direction int

const (
	// Diverging gateways fork one sibling token per outgoing edge.
	Diverging Direction = iota

	// Converging gateways wait for one token from every incoming edge and
	// emit a single merged token.
	Converging
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case Diverging:
		return "Diverging"
	case Converging:
		return "Converging"
	default:
		return "Unknown"
	}
}

// ParallelGateway forks a token into concurrent branches or joins branches
// of the same case back together.
type ParallelGateway struct {
	base
	direction Direction
}

func (p *ParallelGateway) Kind() Kind { return KindParallelGateway }

// Direction returns whether the gateway forks or joins.
func (p *ParallelGateway) Direction() Direction { return p.direction }

// Advance forks or joins the token depending on the gateway's direction.
func (p *ParallelGateway) Advance(ec *context.ExecutionContext, pc *ProcessContext, hop Hop) (Outcome, error) {
	if p.direction == Converging {
		return p.join(ec, pc, hop)
	}
	return p.fork(ec, pc, hop)
}

// fork replaces the incoming token with one sibling per outgoing edge. The
// incoming token retires; siblings share its case id, clock and a copy of
// its data.
func (p *ParallelGateway) fork(ec *context.ExecutionContext, pc *ProcessContext, hop Hop) (Outcome, error) {
	tok := hop.Token
	next := make([]Hop, len(p.outgoing))
	for i := range p.outgoing {
		branch := fmt.Sprintf("%s/%d", p.id, i)
		if tok.Branch != "" {
			branch = tok.Branch + "." + branch
		}
		next[i] = p.next(i, tok.Fork(branch))
	}
	pc.forked(tok.CaseID, len(next))

	ec.Logger.Debug("token forked", map[string]interface{}{
		"case_id":  tok.CaseID,
		"node_id":  p.id,
		"branches": len(next),
	})
	return Outcome{Next: next}, nil
}

// join parks the token until every incoming edge has delivered one token
// for the same case. The arrival completing the set continues with the
// merged token.
func (p *ParallelGateway) join(ec *context.ExecutionContext, pc *ProcessContext, hop Hop) (Outcome, error) {
	tok := hop.Token
	edge := -1
	for i, src := range p.graph.incoming[p.index] {
		if src == hop.From {
			edge = i
			break
		}
	}
	if edge < 0 {
		return Outcome{}, fmt.Errorf("parallel gateway %s: case %d arrived from %d, which is not an incoming edge", p.id, tok.CaseID, hop.From)
	}

	merged, err := pc.arrive(p, edge, tok)
	if err != nil {
		return Outcome{}, err
	}
	if merged == nil {
		return Outcome{Parked: true}, nil
	}

	ec.Logger.Debug("branches joined", map[string]interface{}{
		"case_id": tok.CaseID,
		"node_id": p.id,
		"time":    merged.CurrentTime(),
	})
	return Outcome{Next: []Hop{p.next(0, merged)}}, nil
}

func (p *ParallelGateway) validate() []error {
	n := len(p.outgoing)
	switch {
	case p.direction == Converging && n != 1:
		return []error{errs.Configuration("parallel gateway", p.id, "a converging gateway must have exactly one outgoing edge, has %d", n)}
	case n == 0:
		return []error{errs.Configuration("parallel gateway", p.id, "has no outgoing edges")}
	}
	return nil
}
