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

import (
	stdcontext "context"

	"github.com/jazzpetri/bpmn/clock"
)

// ExecutionContextBuilder builds an ExecutionContext fluently.
//
// Example:
//
//	ec := NewExecutionContextBuilder().
//	    WithClock(clock.NewVirtualClock(start)).
//	    WithLogger(logger).
//	    Build()
type ExecutionContextBuilder struct {
	ctx           stdcontext.Context
	clock         clock.Clock
	logger        Logger
	metrics       MetricsCollector
	tracer        Tracer
	errorRecorder ErrorRecorder
}

// NewExecutionContextBuilder creates a builder with a background context, a
// real-time clock and NoOp observability.
func NewExecutionContextBuilder() *ExecutionContextBuilder {
	return &ExecutionContextBuilder{
		ctx:   stdcontext.Background(),
		clock: clock.NewRealTimeClock(),
	}
}

func (b *ExecutionContextBuilder) WithLogger(logger Logger) *ExecutionContextBuilder {
	b.logger = logger
	return b
}

func (b *ExecutionContextBuilder) WithMetrics(metrics MetricsCollector) *ExecutionContextBuilder {
	b.metrics = metrics
	return b
}

func (b *ExecutionContextBuilder) WithTracer(tracer Tracer) *ExecutionContextBuilder {
	b.tracer = tracer
	return b
}

func (b *ExecutionContextBuilder) WithContext(ctx stdcontext.Context) *ExecutionContextBuilder {
	b.ctx = ctx
	return b
}

func (b *ExecutionContextBuilder) WithClock(clk clock.Clock) *ExecutionContextBuilder {
	b.clock = clk
	return b
}

func (b *ExecutionContextBuilder) WithErrorRecorder(recorder ErrorRecorder) *ExecutionContextBuilder {
	b.errorRecorder = recorder
	return b
}

// Build creates the ExecutionContext. Unset components fall back to NoOps.
func (b *ExecutionContextBuilder) Build() *ExecutionContext {
	ec := NewExecutionContext(b.ctx, b.clock)
	if b.logger != nil {
		ec.Logger = b.logger
	}
	if b.metrics != nil {
		ec.Metrics = b.metrics
	}
	if b.tracer != nil {
		ec.Tracer = b.tracer
	}
	if b.errorRecorder != nil {
		ec.ErrorRecorder = b.errorRecorder
	}
	return ec
}
