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

// DefaultMaxConcurrentCases is the default number of cases a simulation
// runs at once.
//
// Cases mostly wait on resources, so the bound mainly limits how many
// tokens queue on the pool at the same time. Raise it for large capacities.
const DefaultMaxConcurrentCases = 10

// Metric names reported by the orchestrator through the execution context.
const (
	MetricCaseErrors  = "bpmn_case_errors_total"
	MetricCycleTime   = "bpmn_case_cycle_minutes"
	MetricActiveCases = "bpmn_active_cases"
)

// Span names.
const (
	spanSimulate = "bpmn.simulate"
	spanCase     = "bpmn.case"
	spanAdvance  = "bpmn.advance"
)
