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

// Package config loads simulation settings from YAML.
//
// A configuration file describes everything about a run except the process
// graph itself, whose rules are Go predicates:
//
//	name: recruitment
//	engine:
//	  max_concurrent_cases: 8
//	  acquire_timeout: 30s
//	  pace: 0s
//	  acquire_attempts: 3
//	  retry_backoff: 100ms
//	schedule:
//	  cases: 100
//	  arrival_interval: 15
//	resources:
//	  - name: Clerk
//	    capacity: 2
//	    cost_per_hour: 10
//	logging:
//	  level: info
//	  development: false
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jazzpetri/bpmn/errs"
	"github.com/jazzpetri/bpmn/resource"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// Simulation is the root of a configuration file.
type Simulation struct {
	Name      string                `yaml:"name"`
	Engine    Engine                `yaml:"engine"`
	Schedule  Schedule              `yaml:"schedule"`
	Resources []resource.Definition `yaml:"resources"`
	Logging   Logging               `yaml:"logging"`
}

// Engine holds orchestrator settings.
type Engine struct {
	// MaxConcurrentCases bounds how many cases run at once. Zero selects the
	// engine default.
	MaxConcurrentCases int `yaml:"max_concurrent_cases"`

	// AcquireTimeout bounds the real time an activity waits for a resource.
	// Zero waits indefinitely.
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`

	// Pace is the real time an activity holds its resource per simulated
	// minute. Zero disables pacing.
	Pace time.Duration `yaml:"pace"`

	// AcquireAttempts is how many times an activity tries to acquire a
	// resource before a timeout fails the case. Zero means one attempt.
	AcquireAttempts int `yaml:"acquire_attempts"`

	// RetryBackoff is the real time waited between acquisition attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Schedule describes case arrivals.
type Schedule struct {
	// Cases is the number of cases to simulate.
	Cases int `yaml:"cases"`

	// ArrivalInterval is the simulated minutes between case arrivals.
	ArrivalInterval float64 `yaml:"arrival_interval"`
}

// Logging configures the zap logger.
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a configuration with no resources and info logging.
func Default() Simulation {
	return Simulation{
		Name:    "simulation",
		Logging: Logging{Level: "info"},
	}
}

// Validate reports every problem with the configuration at once.
func (s Simulation) Validate() error {
	var err error
	if strings.TrimSpace(s.Name) == "" {
		err = multierr.Append(err, errs.Configuration("config", "name", "cannot be empty"))
	}
	if s.Engine.MaxConcurrentCases < 0 {
		err = multierr.Append(err, errs.Configuration("config", "engine.max_concurrent_cases", "must not be negative, got %d", s.Engine.MaxConcurrentCases))
	}
	if s.Engine.AcquireTimeout < 0 {
		err = multierr.Append(err, errs.Configuration("config", "engine.acquire_timeout", "must not be negative, got %s", s.Engine.AcquireTimeout))
	}
	if s.Engine.Pace < 0 {
		err = multierr.Append(err, errs.Configuration("config", "engine.pace", "must not be negative, got %s", s.Engine.Pace))
	}
	if s.Engine.AcquireAttempts < 0 {
		err = multierr.Append(err, errs.Configuration("config", "engine.acquire_attempts", "must not be negative, got %d", s.Engine.AcquireAttempts))
	}
	if s.Engine.RetryBackoff < 0 {
		err = multierr.Append(err, errs.Configuration("config", "engine.retry_backoff", "must not be negative, got %s", s.Engine.RetryBackoff))
	}
	if s.Schedule.Cases < 0 {
		err = multierr.Append(err, errs.Configuration("config", "schedule.cases", "must not be negative, got %d", s.Schedule.Cases))
	}
	if iv := s.Schedule.ArrivalInterval; iv < 0 || math.IsNaN(iv) || math.IsInf(iv, 0) {
		err = multierr.Append(err, errs.Configuration("config", "schedule.arrival_interval", "must be a non-negative number, got %v", iv))
	}

	seen := make(map[string]bool, len(s.Resources))
	for i, def := range s.Resources {
		if verr := def.Validate(); verr != nil {
			err = multierr.Append(err, fmt.Errorf("resources[%d]: %w", i, verr))
			continue
		}
		if seen[def.Name] {
			err = multierr.Append(err, errs.Configuration("resource", def.Name, "defined more than once"))
		}
		seen[def.Name] = true
	}

	if _, lerr := zapcore.ParseLevel(s.Logging.Level); lerr != nil {
		err = multierr.Append(err, errs.Configuration("config", "logging.level", "%v", lerr))
	}
	return err
}
