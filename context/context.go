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

// Package context provides the ExecutionContext that carries capabilities
// through a simulation run.
//
// ExecutionContext combines:
//   - the standard Go context for cancellation
//   - the wall Clock used for pacing and run statistics
//   - observability (Tracer, MetricsCollector, Logger)
//   - the ErrorRecorder that sees every per-case failure
//
// Every observability field defaults to a NoOp implementation, so callers
// never nil-check before logging or tracing.
//
// Example usage:
//
//	ec := context.NewExecutionContextBuilder().
//	    WithLogger(context.NewZapLogger(zapLogger)).
//	    WithTracer(context.NewOTelTracer(otel.Tracer("bpmn"))).
//	    Build()
//	ec.Logger.Info("simulation started", map[string]interface{}{"cases": 10})
package context

import (
	"context"

	"github.com/jazzpetri/bpmn/clock"
)

// ExecutionContext carries the capabilities shared by every case of a run.
// It is immutable once built: the With* methods return modified copies.
type ExecutionContext struct {
	// Context is the standard Go context for cancellation and deadlines.
	Context context.Context

	// Clock provides wall-clock time. Use VirtualClock in tests.
	Clock clock.Clock

	// Tracer handles distributed tracing. Defaults to NoOpTracer.
	Tracer Tracer

	// Metrics handles metrics collection. Defaults to NoOpMetrics.
	Metrics MetricsCollector

	// Logger handles structured logging. Defaults to NoOpLogger.
	Logger Logger

	// ErrorRecorder records per-case errors. Defaults to NoOpErrorRecorder.
	ErrorRecorder ErrorRecorder
}

// NewExecutionContext creates an execution context with NoOp observability.
// A nil ctx is replaced by context.Background and a nil clock by a
// RealTimeClock.
func NewExecutionContext(ctx context.Context, clk clock.Clock) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if clk == nil {
		clk = clock.NewRealTimeClock()
	}
	ec := &ExecutionContext{
		Context: ctx,
		Clock:   clk,
	}
	ec.ensureObservability()
	return ec
}

// ensureObservability replaces nil observability components with NoOps.
func (e *ExecutionContext) ensureObservability() {
	if e.Logger == nil {
		e.Logger = &NoOpLogger{}
	}
	if e.Metrics == nil {
		e.Metrics = &NoOpMetrics{}
	}
	if e.Tracer == nil {
		e.Tracer = &NoOpTracer{}
	}
	if e.ErrorRecorder == nil {
		e.ErrorRecorder = &NoOpErrorRecorder{}
	}
}

// WithTracer returns a copy using tracer.
func (e *ExecutionContext) WithTracer(tracer Tracer) *ExecutionContext {
	c := *e
	c.Tracer = tracer
	c.ensureObservability()
	return &c
}

// WithMetrics returns a copy using metrics.
func (e *ExecutionContext) WithMetrics(metrics MetricsCollector) *ExecutionContext {
	c := *e
	c.Metrics = metrics
	c.ensureObservability()
	return &c
}

// WithLogger returns a copy using logger.
func (e *ExecutionContext) WithLogger(logger Logger) *ExecutionContext {
	c := *e
	c.Logger = logger
	c.ensureObservability()
	return &c
}

// WithErrorRecorder returns a copy using recorder.
func (e *ExecutionContext) WithErrorRecorder(recorder ErrorRecorder) *ExecutionContext {
	c := *e
	c.ErrorRecorder = recorder
	c.ensureObservability()
	return &c
}

// WithContext returns a copy bound to ctx. Cases run under a derived context
// so that one case's span does not leak into its siblings.
func (e *ExecutionContext) WithContext(ctx context.Context) *ExecutionContext {
	c := *e
	c.Context = ctx
	return &c
}

// Clone returns a builder pre-populated with this context's components.
func (e *ExecutionContext) Clone() *ExecutionContextBuilder {
	return &ExecutionContextBuilder{
		ctx:           e.Context,
		clock:         e.Clock,
		logger:        e.Logger,
		metrics:       e.Metrics,
		tracer:        e.Tracer,
		errorRecorder: e.ErrorRecorder,
	}
}
