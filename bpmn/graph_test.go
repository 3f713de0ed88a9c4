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
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jazzpetri/bpmn/errs"
	"go.uber.org/multierr"
)

func TestGraph_Freeze_Validation(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T, g *Graph)
		want  []string
	}{
		{
			name:  "no start event",
			build: func(t *testing.T, g *Graph) { mustAdd(g.AddEndEvent("end", "Done")) },
			want:  []string{"has no start event"},
		},
		{
			name: "start event without edge",
			build: func(t *testing.T, g *Graph) {
				mustAdd(g.AddStartEvent("start", "Start"))
			},
			want: []string{"exactly one outgoing edge, has 0"},
		},
		{
			name: "start event with two edges",
			build: func(t *testing.T, g *Graph) {
				mustAdd(g.AddStartEvent("start", "Start"))
				mustAdd(g.AddEndEvent("a", "A"))
				mustAdd(g.AddEndEvent("b", "B"))
				mustNil(t, g.Connect("start", "a"))
				mustNil(t, g.Connect("start", "b"))
			},
			want: []string{"exactly one outgoing edge, has 2"},
		},
		{
			name: "activity with two edges",
			build: func(t *testing.T, g *Graph) {
				mustAdd(g.AddStartEvent("start", "Start"))
				mustAdd(g.AddActivity("work", "Work", 5, "Clerk"))
				mustAdd(g.AddEndEvent("a", "A"))
				mustAdd(g.AddEndEvent("b", "B"))
				mustNil(t, g.Connect("start", "work"))
				mustNil(t, g.Connect("work", "a"))
				mustNil(t, g.Connect("work", "b"))
			},
			want: []string{"at most one outgoing edge, has 2"},
		},
		{
			name: "activity dead end",
			build: func(t *testing.T, g *Graph) {
				mustAdd(g.AddStartEvent("start", "Start"))
				mustAdd(g.AddActivity("work", "Work", 5, "Clerk"))
				mustNil(t, g.Connect("start", "work"))
			},
			want: []string{"has no outgoing edge"},
		},
		{
			name: "end event with edge and edge into start",
			build: func(t *testing.T, g *Graph) {
				mustAdd(g.AddStartEvent("start", "Start"))
				mustAdd(g.AddEndEvent("end", "Done"))
				mustNil(t, g.Connect("start", "end"))
				mustNil(t, g.Connect("end", "start"))
			},
			want: []string{"cannot have outgoing edges", "cannot have incoming edges"},
		},
		{
			name: "converging gateway with two outgoing edges",
			build: func(t *testing.T, g *Graph) {
				mustAdd(g.AddStartEvent("start", "Start"))
				mustAdd(g.AddParallelGateway("join", "Join", Converging))
				mustAdd(g.AddEndEvent("a", "A"))
				mustAdd(g.AddEndEvent("b", "B"))
				mustNil(t, g.Connect("start", "join"))
				mustNil(t, g.Connect("join", "a"))
				mustNil(t, g.Connect("join", "b"))
			},
			want: []string{"exactly one outgoing edge, has 2"},
		},
		{
			name: "exclusive gateway without rules",
			build: func(t *testing.T, g *Graph) {
				mustAdd(g.AddStartEvent("start", "Start"))
				mustAdd(g.AddExclusiveGateway("gw", "Decide"))
				mustNil(t, g.Connect("start", "gw"))
			},
			want: []string{"no rules and no default"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			tt.build(t, g)

			err := g.Freeze()
			if !errors.Is(err, errs.ErrConfiguration) {
				t.Fatalf("Freeze() error = %v, want configuration error", err)
			}
			if got := len(multierr.Errors(err)); got != len(tt.want) {
				t.Errorf("Freeze() returned %d errors, want %d: %v", got, len(tt.want), err)
			}
			for _, want := range tt.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Freeze() error = %q, want it to mention %q", err, want)
				}
			}
			if g.Frozen() {
				t.Error("a graph that failed validation must not be frozen")
			}
		})
	}
}

func TestGraph_BuildErrors(t *testing.T) {
	g := NewGraph()
	mustAdd(g.AddStartEvent("start", "Start"))
	gw, err := g.AddExclusiveGateway("gw", "Decide")
	mustNil(t, err)
	mustAdd(g.AddEndEvent("end", "Done"))
	mustNil(t, g.Connect("start", "gw"))

	tests := []struct {
		name string
		err  error
	}{
		{name: "duplicate id", err: errOf(g.AddEndEvent("end", "Again"))},
		{name: "empty id", err: errOf(g.AddEndEvent("", "Nameless"))},
		{name: "second start event", err: errOf(g.AddStartEvent("start2", "Start"))},
		{name: "negative duration", err: errOf(g.AddActivity("a", "A", -1, "Clerk"))},
		{name: "nan duration", err: errOf(g.AddActivity("a", "A", math.NaN(), "Clerk"))},
		{name: "empty resource", err: errOf(g.AddActivity("a", "A", 1, ""))},
		{name: "unknown direction", err: errOf(g.AddParallelGateway("p", "P", Direction(7)))},
		{name: "unknown source", err: g.Connect("ghost", "end")},
		{name: "unknown target", err: g.Connect("start", "ghost")},
		{name: "edge from exclusive gateway", err: g.Connect("gw", "end")},
		{name: "duplicate edge", err: g.Connect("start", "gw")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, errs.ErrConfiguration) {
				t.Errorf("error = %v, want configuration error", tt.err)
			}
		})
	}

	end, _ := g.Lookup("end")
	mustNil(t, gw.SetDefault(end))
	mustNil(t, g.Freeze())

	t.Run("mutation after freeze", func(t *testing.T) {
		if _, err := g.AddEndEvent("late", "Late"); !errors.Is(err, errs.ErrConfiguration) {
			t.Errorf("AddEndEvent after Freeze error = %v", err)
		}
		if err := gw.AddRule("late", Always(), end); !errors.Is(err, errs.ErrConfiguration) {
			t.Errorf("AddRule after Freeze error = %v", err)
		}
	})
}

func TestGraph_Check_Warnings(t *testing.T) {
	g := NewGraph()
	mustAdd(g.AddStartEvent("start", "Start"))
	mustAdd(g.AddEndEvent("end", "Done"))
	mustAdd(g.AddEndEvent("orphan", "Orphan"))
	mustAdd(g.AddParallelGateway("join", "Join", Converging))
	mustNil(t, g.Connect("start", "end"))
	mustNil(t, g.Connect("join", "orphan"))

	warnings, err := g.Check()
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	want := []string{
		`EndEvent "orphan" is not reachable`,
		`ParallelGateway "join" is not reachable`,
		`converging gateway "join" has 0 incoming edges`,
	}
	joined := strings.Join(warnings, "\n")
	for _, w := range want {
		if !strings.Contains(joined, w) {
			t.Errorf("warnings = %q, want one containing %q", warnings, w)
		}
	}
	wantReach := map[string]bool{"start": true, "end": true, "orphan": false, "join": false}
	if diff := cmp.Diff(wantReach, g.Reachability()); diff != "" {
		t.Errorf("Reachability() mismatch (-want +got):\n%s", diff)
	}
	if err := g.Freeze(); err != nil {
		t.Errorf("warnings must not prevent Freeze: %v", err)
	}
}

func TestGraph_Accessors(t *testing.T) {
	g := NewGraph()
	start, err := g.AddStartEvent("start", "Start")
	mustNil(t, err)
	act, err := g.AddActivity("work", "Work", 5, "Clerk")
	mustNil(t, err)
	mustAdd(g.AddActivity("more", "More", 5, "Analyst"))
	end, err := g.AddEndEvent("end", "Done")
	mustNil(t, err)
	mustNil(t, g.Connect("start", "work"))
	mustNil(t, g.Connect("work", "more"))
	mustNil(t, g.Connect("more", "end"))

	if g.Start() != start {
		t.Error("Start() should return the start event")
	}
	if g.Len() != 4 || len(g.Nodes()) != 4 {
		t.Errorf("Len() = %d, want 4", g.Len())
	}
	if n, ok := g.Lookup("work"); !ok || n != Node(act) {
		t.Errorf("Lookup(work) = %v, %v", n, ok)
	}
	if out := act.Outgoing(); len(out) != 1 || out[0].ID() != "more" {
		t.Errorf("Outgoing() = %v, want [more]", out)
	}
	if in := g.Incoming(end); len(in) != 1 || in[0].ID() != "more" {
		t.Errorf("Incoming(end) = %v, want [more]", in)
	}
	if got := g.Resources(); strings.Join(got, ",") != "Analyst,Clerk" {
		t.Errorf("Resources() = %v, want [Analyst Clerk]", got)
	}
	if act.Kind().String() != "Activity" || act.Duration() != 5 || act.Resource() != "Clerk" {
		t.Errorf("activity accessors = %v %v %v", act.Kind(), act.Duration(), act.Resource())
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindStartEvent, "StartEvent"},
		{KindEndEvent, "EndEvent"},
		{KindActivity, "Activity"},
		{KindExclusiveGateway, "ExclusiveGateway"},
		{KindParallelGateway, "ParallelGateway"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
