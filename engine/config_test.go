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
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jazzpetri/bpmn/bpmn"
	"github.com/jazzpetri/bpmn/config"
	"github.com/jazzpetri/bpmn/errs"
)

func TestNewFromConfig(t *testing.T) {
	sim, err := config.Parse([]byte(`
name: intake
engine:
  max_concurrent_cases: 3
  acquire_timeout: 2s
  acquire_attempts: 2
  retry_backoff: 5ms
schedule:
  cases: 4
  arrival_interval: 10
resources:
  - name: Clerk
    capacity: 2
    cost_per_hour: 30
`))
	if err != nil {
		t.Fatal(err)
	}

	p, err := NewFromConfig(sim, nil)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	want := Config{
		MaxConcurrentCases: 3,
		AcquireTimeout:     2 * time.Second,
		Retry:              bpmn.RetryPolicy{MaxAttempts: 2, Backoff: 5 * time.Millisecond},
	}
	if diff := cmp.Diff(want, p.Config()); diff != "" {
		t.Errorf("Config() mismatch (-want +got):\n%s", diff)
	}
	if p.Name() != "intake" || !p.Pool().Has("Clerk") {
		t.Errorf("process = %v, want intake with Clerk", p)
	}

	must(t, p.AddStartEvent("start", "Start"))
	must(t, p.AddActivity("register", "Register", 5, "Clerk"))
	must(t, p.AddEndEvent("end", "Registered"))
	must(t, p.Connect("start", "register"))
	must(t, p.Connect("register", "end"))

	result, err := p.Simulate(stdcontext.Background(), sim.Schedule.Cases, sim.Schedule.ArrivalInterval)
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary.TokensCompleted != 4 {
		t.Errorf("TokensCompleted = %d, want 4", result.Summary.TokensCompleted)
	}
}

func TestNewFromConfig_DefaultConcurrency(t *testing.T) {
	sim := config.Default()
	p, err := NewFromConfig(sim, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Config().MaxConcurrentCases != DefaultMaxConcurrentCases {
		t.Errorf("MaxConcurrentCases = %d, want default", p.Config().MaxConcurrentCases)
	}
}

func TestNewFromConfig_Invalid(t *testing.T) {
	sim := config.Default()
	sim.Schedule.Cases = -1
	if _, err := NewFromConfig(sim, nil); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("NewFromConfig error = %v, want configuration error", err)
	}
}
