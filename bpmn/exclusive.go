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

// DefaultRule is the rule name reported when an exclusive gateway takes its
// default edge.
const DefaultRule = "default"

// Rule is a named condition guarding one outgoing edge of an exclusive
// gateway.
type Rule struct {
	Name      string
	Predicate Predicate
	target    int
}

// ExclusiveGateway routes each token along exactly one outgoing edge: the
// edge of the first rule whose predicate holds, in the order the rules were
// added, or the default edge if none does.
type ExclusiveGateway struct {
	base
	rules      []Rule
	defaultIdx int
}

func (x *ExclusiveGateway) Kind() Kind { return KindExclusiveGateway }

// AddRule appends a rule routing to target when pred holds. A nil predicate
// or target, a target from another graph, or a frozen graph is a
// configuration error.
func (x *ExclusiveGateway) AddRule(name string, pred Predicate, target Node) error {
	if pred == nil {
		return errs.Configuration("exclusive gateway", x.id, "rule %q has a nil predicate", name)
	}
	idx, err := x.resolve(target, "rule "+name)
	if err != nil {
		return err
	}
	if err := x.graph.link(x.index, idx); err != nil {
		return err
	}
	x.rules = append(x.rules, Rule{Name: name, Predicate: pred, target: idx})
	return nil
}

// SetDefault sets the edge taken when no rule matches. It may only be set
// once.
func (x *ExclusiveGateway) SetDefault(target Node) error {
	if x.defaultIdx >= 0 {
		return errs.Configuration("exclusive gateway", x.id, "default target is already set")
	}
	idx, err := x.resolve(target, "default")
	if err != nil {
		return err
	}
	if err := x.graph.link(x.index, idx); err != nil {
		return err
	}
	x.defaultIdx = idx
	return nil
}

// Rules returns the rules in evaluation order.
func (x *ExclusiveGateway) Rules() []Rule {
	return append([]Rule(nil), x.rules...)
}

// Target returns the node a rule routes to.
func (x *ExclusiveGateway) Target(r Rule) Node {
	return x.graph.nodes[r.target]
}

// Default returns the default target, or nil if there is none.
func (x *ExclusiveGateway) Default() Node {
	if x.defaultIdx < 0 {
		return nil
	}
	return x.graph.nodes[x.defaultIdx]
}

func (x *ExclusiveGateway) resolve(target Node, what string) (int, error) {
	if isNil(target) {
		return 0, errs.Configuration("exclusive gateway", x.id, "%s has a nil target", what)
	}
	b := target.node()
	if b.graph != x.graph {
		return 0, errs.Configuration("exclusive gateway", x.id, "%s targets %q from another graph", what, b.id)
	}
	return b.index, nil
}

// Advance evaluates the rules in order and routes the token to the first
// match. Later predicates are not evaluated. Without a match the default
// edge is taken; without a default the token cannot be routed.
func (x *ExclusiveGateway) Advance(ec *context.ExecutionContext, pc *ProcessContext, hop Hop) (Outcome, error) {
	tok := hop.Token
	for _, r := range x.rules {
		if r.Predicate(tok) {
			return Outcome{
				Next: []Hop{{Node: r.target, Token: tok, From: x.index}},
				Rule: r.Name,
			}, nil
		}
	}
	if x.defaultIdx >= 0 {
		return Outcome{
			Next: []Hop{{Node: x.defaultIdx, Token: tok, From: x.index}},
			Rule: DefaultRule,
		}, nil
	}
	return Outcome{}, &errs.RoutingError{CaseID: tok.CaseID, GatewayID: x.id}
}

func (x *ExclusiveGateway) validate() []error {
	if len(x.rules) == 0 && x.defaultIdx < 0 {
		return []error{errs.Configuration("exclusive gateway", x.id, "has no rules and no default target")}
	}
	return nil
}
