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
	stdcontext "context"
	"errors"
	"testing"

	"github.com/jazzpetri/bpmn/bpmn"
	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/errs"
	"github.com/jazzpetri/bpmn/resource"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_InvalidMaxConcurrentCases(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ec := context.NewExecutionContext(nil, nil).WithLogger(context.NewZapLogger(zap.New(core)))

	p := New("claims", ec, Config{MaxConcurrentCases: 0})

	if got := p.Config().MaxConcurrentCases; got != DefaultMaxConcurrentCases {
		t.Errorf("MaxConcurrentCases = %d, want %d", got, DefaultMaxConcurrentCases)
	}
	entries := logs.FilterMessage("invalid MaxConcurrentCases, using default").All()
	if len(entries) != 1 {
		t.Fatalf("got %d warnings, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["process"]; got != "claims" {
		t.Errorf("process field = %v, want claims", got)
	}
}

func TestNew_NilExecutionContext(t *testing.T) {
	p := New("claims", nil, DefaultConfig())
	if p.ExecutionContext() == nil || p.ExecutionContext().Logger == nil {
		t.Fatal("New should install a NoOp execution context")
	}
	if p.State() != Building {
		t.Errorf("State() = %v, want Building", p.State())
	}
	if p.Name() != "claims" {
		t.Errorf("Name() = %q, want claims", p.Name())
	}
}

func TestProcess_RuleErrors(t *testing.T) {
	p := newTestProcess(t, DefaultConfig())
	must(t, p.AddStartEvent("start", "Start"))
	must(t, p.AddExclusiveGateway("gw", "Decide"))
	must(t, p.AddParallelGateway("fork", "Fork", bpmn.Diverging))
	must(t, p.AddEndEvent("end", "Done"))

	tests := []struct {
		name string
		err  error
	}{
		{name: "unknown gateway", err: p.AddRule("nope", "r", bpmn.Always(), "end")},
		{name: "not exclusive", err: p.AddRule("fork", "r", bpmn.Always(), "end")},
		{name: "unknown target", err: p.AddRule("gw", "r", bpmn.Always(), "nope")},
		{name: "nil predicate", err: p.AddRule("gw", "r", nil, "end")},
		{name: "default unknown target", err: p.SetDefault("gw", "nope")},
		{name: "connect from exclusive", err: p.Connect("gw", "end")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, errs.ErrConfiguration) {
				t.Errorf("error = %v, want configuration error", tt.err)
			}
		})
	}

	must(t, p.AddRule("gw", "r", bpmn.Always(), "end"))
	must(t, p.SetDefault("gw", "end"))
	if err := p.SetDefault("gw", "end"); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("second SetDefault error = %v, want configuration error", err)
	}
}

func TestProcess_FrozenAfterSimulate(t *testing.T) {
	p := linearProcess(t, DefaultConfig(), 1, "Clerk", resource.Definition{Name: "Clerk", Capacity: 1})

	if _, err := p.Simulate(stdcontext.Background(), 1, 0); err != nil {
		t.Fatal(err)
	}
	if p.State() != Finished {
		t.Errorf("State() = %v, want Finished", p.State())
	}

	tests := []struct {
		name string
		err  error
	}{
		{name: "resource", err: p.AddResource(resource.Definition{Name: "Extra", Capacity: 1})},
		{name: "start event", err: p.AddStartEvent("start2", "Start")},
		{name: "end event", err: p.AddEndEvent("end2", "Done")},
		{name: "activity", err: p.AddActivity("work2", "Work", 1, "Clerk")},
		{name: "exclusive gateway", err: p.AddExclusiveGateway("gw", "Decide")},
		{name: "parallel gateway", err: p.AddParallelGateway("fork", "Fork", bpmn.Diverging)},
		{name: "connect", err: p.Connect("start", "end")},
		{name: "rule", err: p.AddRule("gw", "r", bpmn.Always(), "end")},
		{name: "default", err: p.SetDefault("gw", "end")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, errs.ErrConfiguration) {
				t.Errorf("error = %v, want configuration error", tt.err)
			}
		})
	}

	if _, err := p.Simulate(stdcontext.Background(), 1, 0); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("second Simulate error = %v, want configuration error", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Building, "Building"},
		{Running, "Running"},
		{Finished, "Finished"},
		{State(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
