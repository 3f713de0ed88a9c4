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
	"testing"

	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/resource"
	"github.com/jazzpetri/bpmn/token"
)

// testEnv bundles what a node needs to advance a token.
type testEnv struct {
	ec   *context.ExecutionContext
	pc   *ProcessContext
	pool *resource.Pool
}

func newTestEnv(t *testing.T, defs ...resource.Definition) *testEnv {
	t.Helper()
	pool := resource.NewPool()
	for _, def := range defs {
		if err := pool.Define(def); err != nil {
			t.Fatalf("Define(%+v) failed: %v", def, err)
		}
	}
	return &testEnv{
		ec:   context.NewExecutionContext(nil, nil),
		pc:   NewProcessContext(pool, Settings{}),
		pool: pool,
	}
}

// drive runs tok through g on the calling goroutine, breadth first, and
// returns the rules taken by exclusive gateways.
func (e *testEnv) drive(t *testing.T, g *Graph, tok *token.Token) ([]string, error) {
	t.Helper()
	var rules []string
	queue := []Hop{{Node: g.Start().Index(), Token: tok, From: -1}}
	for len(queue) > 0 {
		hop := queue[0]
		queue = queue[1:]
		out, err := g.Node(hop.Node).Advance(e.ec, e.pc, hop)
		if err != nil {
			return rules, err
		}
		if out.Rule != "" {
			rules = append(rules, out.Rule)
		}
		queue = append(queue, out.Next...)
	}
	return rules, nil
}

// mustAdd panics if adding a node failed. Build errors in fixtures are
// programming mistakes in the test itself.
func mustAdd(_ Node, err error) {
	if err != nil {
		panic(err)
	}
}

// errOf returns the error of a two-valued call.
func errOf(_ interface{}, err error) error {
	return err
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
