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

// NoOp implementations provide zero-overhead defaults when observability is
// disabled. All methods are empty and safe for concurrent use.

// NoOpTracer is a Tracer that does nothing.
type NoOpTracer struct{}

// StartSpan returns ctx unchanged and a NoOpSpan.
func (n *NoOpTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &NoOpSpan{}
}

// NoOpSpan is a Span that does nothing.
type NoOpSpan struct{}

func (n *NoOpSpan) End() {}

func (n *NoOpSpan) SetAttribute(key string, value interface{}) {}

func (n *NoOpSpan) RecordError(err error) {}

// NoOpMetrics is a MetricsCollector that does nothing.
type NoOpMetrics struct{}

func (n *NoOpMetrics) Inc(name string) {}

func (n *NoOpMetrics) Add(name string, value float64) {}

func (n *NoOpMetrics) Observe(name string, value float64) {}

func (n *NoOpMetrics) Set(name string, value float64) {}

// NoOpLogger is a Logger that does nothing.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}

func (n *NoOpLogger) Info(msg string, fields map[string]interface{}) {}

func (n *NoOpLogger) Warn(msg string, fields map[string]interface{}) {}

func (n *NoOpLogger) Error(msg string, fields map[string]interface{}) {}

// NoOpErrorRecorder is an ErrorRecorder that does nothing.
type NoOpErrorRecorder struct{}

func (n *NoOpErrorRecorder) RecordError(err error, metadata map[string]interface{}) {}
