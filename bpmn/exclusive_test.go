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
	"errors"
	"testing"

	"github.com/jazzpetri/bpmn/errs"
	"github.com/jazzpetri/bpmn/token"
)

// routingGraph builds start -> gw with one end event per rule and a
// "fallback" end event.
func routingGraph(t *testing.T) (*Graph, *ExclusiveGateway) {
	t.Helper()
	g := NewGraph()
	mustAdd(g.AddStartEvent("start", "Start"))
	gw, err := g.AddExclusiveGateway("gw", "Screening")
	mustNil(t, err)
	mustAdd(g.AddEndEvent("hired", "Hired"))
	mustAdd(g.AddEndEvent("interview", "Interview"))
	mustAdd(g.AddEndEvent("fallback", "Fallback"))
	mustNil(t, g.Connect("start", "gw"))
	return g, gw
}

func lookup(t *testing.T, g *Graph, id string) Node {
	t.Helper()
	n, ok := g.Lookup(id)
	if !ok {
		t.Fatalf("node %q not found", id)
	}
	return n
}

func TestExclusiveGateway_FirstMatchingRuleWins(t *testing.T) {
	g, gw := routingGraph(t)

	evaluated := 0
	counting := func(p Predicate) Predicate {
		return func(tok *token.Token) bool {
			evaluated++
			return p(tok)
		}
	}

	mustNil(t, gw.AddRule("experienced", counting(NumberAtLeast("years", 5)), lookup(t, g, "hired")))
	mustNil(t, gw.AddRule("any", counting(Always()), lookup(t, g, "interview")))
	mustNil(t, gw.AddRule("never reached", counting(Always()), lookup(t, g, "fallback")))
	mustNil(t, g.Freeze())

	tests := []struct {
		name      string
		years     string
		wantRule  string
		wantEnd   string
		wantEvals int
	}{
		{name: "first rule", years: "7", wantRule: "experienced", wantEnd: "Hired", wantEvals: 1},
		{name: "second rule", years: "2", wantRule: "any", wantEnd: "Interview", wantEvals: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluated = 0
			env := newTestEnv(t)
			tok := token.New(1, 0)
			tok.SetData("years", tt.years)

			rules, err := env.drive(t, g, tok)
			if err != nil {
				t.Fatalf("drive failed: %v", err)
			}
			if len(rules) != 1 || rules[0] != tt.wantRule {
				t.Errorf("rules = %v, want [%s]", rules, tt.wantRule)
			}
			if tok.EndReason() != tt.wantEnd {
				t.Errorf("EndReason() = %q, want %q", tok.EndReason(), tt.wantEnd)
			}
			if evaluated != tt.wantEvals {
				t.Errorf("evaluated %d predicates, want %d", evaluated, tt.wantEvals)
			}
		})
	}
}

func TestExclusiveGateway_Default(t *testing.T) {
	g, gw := routingGraph(t)
	mustNil(t, gw.AddRule("experienced", NumberAtLeast("years", 5), lookup(t, g, "hired")))
	mustNil(t, gw.SetDefault(lookup(t, g, "fallback")))
	mustNil(t, g.Freeze())

	env := newTestEnv(t)
	tok := token.New(1, 0)

	rules, err := env.drive(t, g, tok)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 || rules[0] != DefaultRule {
		t.Errorf("rules = %v, want [%s]", rules, DefaultRule)
	}
	if tok.EndReason() != "Fallback" {
		t.Errorf("EndReason() = %q, want Fallback", tok.EndReason())
	}
	if gw.Default().ID() != "fallback" {
		t.Errorf("Default() = %v, want fallback", gw.Default())
	}
}

func TestExclusiveGateway_NoMatchIsRoutingError(t *testing.T) {
	g, gw := routingGraph(t)
	mustNil(t, gw.AddRule("experienced", NumberAtLeast("years", 5), lookup(t, g, "hired")))
	mustNil(t, g.Freeze())

	env := newTestEnv(t)
	tok := token.New(42, 0)
	tok.SetData("years", "1")

	_, err := env.drive(t, g, tok)
	if !errors.Is(err, errs.ErrRouting) {
		t.Fatalf("error = %v, want routing error", err)
	}
	var routing *errs.RoutingError
	if !errors.As(err, &routing) || routing.GatewayID != "gw" || routing.CaseID != 42 {
		t.Errorf("error = %#v, want gateway gw and case 42", err)
	}
	if tok.IsCompleted() {
		t.Error("an unroutable token must not be completed")
	}
	if tok.State() != token.Running {
		t.Errorf("State() = %v, want Running", tok.State())
	}
	if env.pc.Completed() != 0 || env.pc.Started() != 1 {
		t.Errorf("started/completed = %d/%d, want 1/0", env.pc.Started(), env.pc.Completed())
	}
}

func TestExclusiveGateway_ConfigurationErrors(t *testing.T) {
	g, gw := routingGraph(t)
	other := NewGraph()
	foreign, err := other.AddEndEvent("foreign", "Foreign")
	mustNil(t, err)
	var typedNil *EndEvent

	tests := []struct {
		name string
		err  error
	}{
		{name: "nil predicate", err: gw.AddRule("r", nil, lookup(t, g, "hired"))},
		{name: "nil target", err: gw.AddRule("r", Always(), nil)},
		{name: "typed nil target", err: gw.AddRule("r", Always(), typedNil)},
		{name: "foreign target", err: gw.AddRule("r", Always(), foreign)},
		{name: "nil default", err: gw.SetDefault(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, errs.ErrConfiguration) {
				t.Errorf("error = %v, want configuration error", tt.err)
			}
		})
	}

	mustNil(t, gw.SetDefault(lookup(t, g, "fallback")))
	if err := gw.SetDefault(lookup(t, g, "hired")); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("second SetDefault error = %v, want configuration error", err)
	}
	if len(gw.Rules()) != 0 {
		t.Errorf("rejected rules were kept: %v", gw.Rules())
	}
}
