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

// Package bpmn provides the process element graph: the typed nodes a case
// token flows through, the gateway rule engine and the ProcessContext that
// nodes share while a simulation runs.
//
// # Graph
//
// Nodes live in an arena owned by a Graph and refer to each other by arena
// index. A graph is built with the Add* and Connect methods, then frozen.
// Freezing validates the structure; a frozen graph is immutable and safe for
// concurrent traversal.
//
// # Advancing
//
// Every node implements Advance, which mutates the token it receives (and
// possibly the shared ProcessContext) and returns an Outcome naming the next
// hops. The caller drives hops in a loop, so deep or cyclic processes never
// grow the goroutine stack. An Outcome with no next hops means the token has
// either reached an end event or parked at a join.
//
// # Concurrency
//
// A token is only touched by the goroutine advancing it. Shared state lives
// in the resource pool and the ProcessContext, both of which are guarded.
package bpmn

import (
	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/token"
)

// Kind identifies a node variant.
type Kind int

const (
	// KindStartEvent is the entry point where case tokens are created.
	KindStartEvent Kind = iota

	// KindEndEvent completes the token that reaches it.
	KindEndEvent

	// KindActivity holds a resource unit for a fixed simulated duration.
	KindActivity

	// KindExclusiveGateway routes a token along the first matching rule.
	KindExclusiveGateway

	// KindParallelGateway forks a token into branches or joins them.
	KindParallelGateway
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindStartEvent:
		return "StartEvent"
	case KindEndEvent:
		return "EndEvent"
	case KindActivity:
		return "Activity"
	case KindExclusiveGateway:
		return "ExclusiveGateway"
	case KindParallelGateway:
		return "ParallelGateway"
	default:
		return "Unknown"
	}
}

// Node is an element of a process graph.
type Node interface {
	// ID returns the unique node identifier.
	ID() string

	// Name returns the display name.
	Name() string

	// Kind returns the node variant.
	Kind() Kind

	// Index returns the node's position in its graph's arena.
	Index() int

	// Outgoing returns the targets of the node's outgoing edges in order.
	Outgoing() []Node

	// Advance moves the token of hop through this node.
	Advance(ec *context.ExecutionContext, pc *ProcessContext, hop Hop) (Outcome, error)

	node() *base
	validate() []error
}

// Hop is a token about to enter a node.
type Hop struct {
	// Node is the arena index of the node to enter.
	Node int

	// Token is the token entering the node.
	Token *token.Token

	// From is the arena index of the node the token left, or -1 when the
	// token enters the start event.
	From int
}

// Outcome is the result of advancing a token through a node.
type Outcome struct {
	// Next lists the hops to perform next, in edge order.
	Next []Hop

	// Terminal is set when the token reached an end event.
	Terminal bool

	// Parked is set when the token is waiting at a join for its siblings.
	Parked bool

	// Rule is the name of the rule an exclusive gateway selected, or
	// DefaultRule when it took the default edge.
	Rule string
}

// base holds the fields every node variant shares.
type base struct {
	id       string
	name     string
	index    int
	graph    *Graph
	outgoing []int
}

func (b *base) ID() string   { return b.id }
func (b *base) Name() string { return b.name }
func (b *base) Index() int   { return b.index }
func (b *base) node() *base  { return b }

func (b *base) Outgoing() []Node {
	out := make([]Node, len(b.outgoing))
	for i, idx := range b.outgoing {
		out[i] = b.graph.nodes[idx]
	}
	return out
}

// next returns a hop to the target of outgoing edge i.
func (b *base) next(i int, tok *token.Token) Hop {
	return Hop{Node: b.outgoing[i], Token: tok, From: b.index}
}

func (b *base) String() string {
	return b.id
}
