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

package context

import "context"

// Tracer creates spans around simulation work.
type Tracer interface {
	// StartSpan starts a span named name as a child of any span in ctx and
	// returns a context carrying the new span. End the span when done.
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is a single traced operation.
type Span interface {
	// End marks the span as complete.
	End()

	// SetAttribute adds a key-value attribute to the span. Supported value
	// types are string, bool, int, int64 and float64; anything else is
	// recorded as its fmt representation.
	SetAttribute(key string, value interface{})

	// RecordError records an error and marks the span as failed.
	RecordError(err error)
}

// MetricsCollector collects run metrics.
//
// Metric names used by the engine:
//   - bpmn_cases_started_total
//   - bpmn_cases_completed_total
//   - bpmn_case_errors_total
//   - bpmn_case_cycle_minutes (histogram)
//   - bpmn_resource_wait_minutes (histogram)
//   - bpmn_active_cases (gauge)
type MetricsCollector interface {
	// Inc increments a counter by 1.
	Inc(name string)

	// Add adds value to a counter or gauge.
	Add(name string, value float64)

	// Observe records a value in a histogram.
	Observe(name string, value float64)

	// Set sets a gauge.
	Set(name string, value float64)
}

// Logger is a structured, leveled logger.
//
// Example:
//
//	logger.Info("case completed", map[string]interface{}{
//	    "case_id":    3,
//	    "end_reason": "Hired",
//	})
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorRecorder records errors for observability. It is called once for
// every case that fails, with metadata such as "case_id" and "node_id".
type ErrorRecorder interface {
	RecordError(err error, metadata map[string]interface{})
}
