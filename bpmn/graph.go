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
	"math"
	"reflect"
	"sort"

	"github.com/jazzpetri/bpmn/errs"
	"go.uber.org/multierr"
)

// Graph is an arena of process nodes.
//
// Build a graph with the Add* and Connect methods, then call Freeze. Build
// methods are not safe for concurrent use; a frozen graph is read-only and
// may be traversed from any number of goroutines.
type Graph struct {
	nodes    []Node
	byID     map[string]int
	incoming [][]int
	start    int
	frozen   bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byID:  make(map[string]int),
		start: -1,
	}
}

// AddStartEvent adds the process entry point.
func (g *Graph) AddStartEvent(id, name string) (*StartEvent, error) {
	n := &StartEvent{}
	if err := g.add(n, &n.base, id, name); err != nil {
		return nil, err
	}
	return n, nil
}

// AddEndEvent adds a terminal node. name becomes the end reason of tokens
// that reach it.
func (g *Graph) AddEndEvent(id, name string) (*EndEvent, error) {
	n := &EndEvent{}
	if err := g.add(n, &n.base, id, name); err != nil {
		return nil, err
	}
	return n, nil
}

// AddActivity adds an activity that holds one unit of resource for minutes
// of simulated time.
func (g *Graph) AddActivity(id, name string, minutes float64, resource string) (*Activity, error) {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return nil, errs.Configuration("activity", id, "duration must be a non-negative number of minutes, got %v", minutes)
	}
	if resource == "" {
		return nil, errs.Configuration("activity", id, "resource name cannot be empty")
	}
	n := &Activity{duration: minutes, resource: resource}
	if err := g.add(n, &n.base, id, name); err != nil {
		return nil, err
	}
	return n, nil
}

// AddExclusiveGateway adds a rule-based branching gateway. Its edges are
// created by AddRule and SetDefault.
func (g *Graph) AddExclusiveGateway(id, name string) (*ExclusiveGateway, error) {
	n := &ExclusiveGateway{defaultIdx: -1}
	if err := g.add(n, &n.base, id, name); err != nil {
		return nil, err
	}
	return n, nil
}

// AddParallelGateway adds a fork or join gateway.
func (g *Graph) AddParallelGateway(id, name string, dir Direction) (*ParallelGateway, error) {
	if dir != Diverging && dir != Converging {
		return nil, errs.Configuration("parallel gateway", id, "unknown direction %d", dir)
	}
	n := &ParallelGateway{direction: dir}
	if err := g.add(n, &n.base, id, name); err != nil {
		return nil, err
	}
	return n, nil
}

func (g *Graph) add(n Node, b *base, id, name string) error {
	if g.frozen {
		return errs.Configuration(n.Kind().String(), id, "graph is frozen")
	}
	if id == "" {
		return errs.Configuration(n.Kind().String(), "", "id cannot be empty")
	}
	if _, exists := g.byID[id]; exists {
		return errs.Configuration(n.Kind().String(), id, "a node with this id already exists")
	}
	if n.Kind() == KindStartEvent && g.start >= 0 {
		return errs.Configuration("start event", id, "graph already has start event %q", g.nodes[g.start].ID())
	}

	b.id = id
	b.name = name
	b.index = len(g.nodes)
	b.graph = g

	g.nodes = append(g.nodes, n)
	g.incoming = append(g.incoming, nil)
	g.byID[id] = b.index
	if n.Kind() == KindStartEvent {
		g.start = b.index
	}
	return nil
}

// Connect adds an edge between the nodes with the given ids. Exclusive
// gateway edges are added with AddRule and SetDefault instead.
func (g *Graph) Connect(fromID, toID string) error {
	from, ok := g.byID[fromID]
	if !ok {
		return errs.Configuration("edge", fromID+"->"+toID, "source %q does not exist", fromID)
	}
	to, ok := g.byID[toID]
	if !ok {
		return errs.Configuration("edge", fromID+"->"+toID, "target %q does not exist", toID)
	}
	if g.nodes[from].Kind() == KindExclusiveGateway {
		return errs.Configuration("edge", fromID+"->"+toID, "exclusive gateway edges are added with rules")
	}
	for _, existing := range g.nodes[from].node().outgoing {
		if existing == to {
			return errs.Configuration("edge", fromID+"->"+toID, "edge already exists")
		}
	}
	return g.link(from, to)
}

// link records the edge from -> to. Rule edges may repeat a target; the
// incoming list keeps each source once.
func (g *Graph) link(from, to int) error {
	if g.frozen {
		return errs.Configuration("edge", g.nodes[from].ID()+"->"+g.nodes[to].ID(), "graph is frozen")
	}
	src := g.nodes[from].node()
	src.outgoing = append(src.outgoing, to)
	for _, s := range g.incoming[to] {
		if s == from {
			return nil
		}
	}
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// Check validates the graph structure. Structural defects are returned as
// configuration errors; nodes that cannot be reached from the start event
// are reported as warnings.
func (g *Graph) Check() (warnings []string, err error) {
	if g.start < 0 {
		err = multierr.Append(err, errs.Configuration("graph", "", "has no start event"))
	}
	for _, n := range g.nodes {
		err = multierr.Append(err, multierr.Combine(n.validate()...))
	}

	if g.start >= 0 {
		reached := g.reachable()
		for i, n := range g.nodes {
			if !reached[i] {
				warnings = append(warnings, fmt.Sprintf("%s %q is not reachable from the start event", n.Kind(), n.ID()))
			}
		}
	}
	for i, n := range g.nodes {
		if p, ok := n.(*ParallelGateway); ok && p.direction == Converging && len(g.incoming[i]) < 2 {
			warnings = append(warnings, fmt.Sprintf("converging gateway %q has %d incoming edges", n.ID(), len(g.incoming[i])))
		}
	}
	return warnings, err
}

func (g *Graph) reachable() []bool {
	reached := make([]bool, len(g.nodes))
	stack := []int{g.start}
	reached[g.start] = true
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.nodes[i].node().outgoing {
			if !reached[next] {
				reached[next] = true
				stack = append(stack, next)
			}
		}
	}
	return reached
}

// Reachability maps every node id to whether a token entering the start
// event can reach it. Without a start event nothing is reachable.
func (g *Graph) Reachability() map[string]bool {
	out := make(map[string]bool, len(g.nodes))
	var reached []bool
	if g.start >= 0 {
		reached = g.reachable()
	}
	for i, n := range g.nodes {
		out[n.ID()] = reached != nil && reached[i]
	}
	return out
}

// Freeze validates the graph and makes it immutable. Freezing a frozen
// graph is a no-op.
func (g *Graph) Freeze() error {
	if g.frozen {
		return nil
	}
	if _, err := g.Check(); err != nil {
		return err
	}
	g.frozen = true
	return nil
}

// Frozen reports whether the graph has been frozen.
func (g *Graph) Frozen() bool {
	return g.frozen
}

// Start returns the start event, or nil if there is none.
func (g *Graph) Start() *StartEvent {
	if g.start < 0 {
		return nil
	}
	return g.nodes[g.start].(*StartEvent)
}

// Node returns the node at arena index i.
func (g *Graph) Node(i int) Node {
	return g.nodes[i]
}

// Lookup returns the node with the given id.
func (g *Graph) Lookup(id string) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Incoming returns the nodes with an edge into n, in the order the edges
// were added.
func (g *Graph) Incoming(n Node) []Node {
	srcs := g.incoming[n.Index()]
	out := make([]Node, len(srcs))
	for i, s := range srcs {
		out[i] = g.nodes[s]
	}
	return out
}

// Resources returns the distinct resource names referenced by activities,
// sorted.
func (g *Graph) Resources() []string {
	seen := make(map[string]bool)
	var names []string
	for _, n := range g.nodes {
		if a, ok := n.(*Activity); ok && !seen[a.resource] {
			seen[a.resource] = true
			names = append(names, a.resource)
		}
	}
	sort.Strings(names)
	return names
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
