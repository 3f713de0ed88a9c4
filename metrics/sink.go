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

package metrics

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Sink receives the outcome of a simulation run.
type Sink interface {
	// RecordToken receives the record of one case.
	RecordToken(ctx context.Context, rec TokenRecord) error

	// RecordSummary receives the run summary after every record.
	RecordSummary(ctx context.Context, s Summary) error
}

// BatchSink is a Sink that can store many records at once.
type BatchSink interface {
	Sink

	// RecordTokens receives the records of several cases.
	RecordTokens(ctx context.Context, recs []TokenRecord) error
}

// RecordTokens forwards recs to s in one call when s is a BatchSink, and
// record by record otherwise.
func RecordTokens(ctx context.Context, s Sink, recs []TokenRecord) error {
	if b, ok := s.(BatchSink); ok {
		return b.RecordTokens(ctx, recs)
	}
	var err error
	for _, rec := range recs {
		err = multierr.Append(err, s.RecordToken(ctx, rec))
	}
	return err
}

// MemorySink keeps records and summaries in memory.
// It is safe for concurrent use.
type MemorySink struct {
	mu        sync.Mutex
	records   []TokenRecord
	summaries []Summary
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) RecordToken(ctx context.Context, rec TokenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *MemorySink) RecordTokens(ctx context.Context, recs []TokenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, recs...)
	return nil
}

func (m *MemorySink) RecordSummary(ctx context.Context, s Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, s)
	return nil
}

// Records returns the received records in arrival order.
func (m *MemorySink) Records() []TokenRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TokenRecord(nil), m.records...)
}

// Summary returns the most recent summary.
func (m *MemorySink) Summary() (Summary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.summaries) == 0 {
		return Summary{}, false
	}
	return m.summaries[len(m.summaries)-1], true
}

// MultiSink forwards to every sink in order. A failing sink does not stop
// the others; their errors are combined.
type MultiSink []Sink

func (ms MultiSink) RecordToken(ctx context.Context, rec TokenRecord) error {
	var err error
	for _, s := range ms {
		err = multierr.Append(err, s.RecordToken(ctx, rec))
	}
	return err
}

func (ms MultiSink) RecordTokens(ctx context.Context, recs []TokenRecord) error {
	var err error
	for _, s := range ms {
		err = multierr.Append(err, RecordTokens(ctx, s, recs))
	}
	return err
}

func (ms MultiSink) RecordSummary(ctx context.Context, sum Summary) error {
	var err error
	for _, s := range ms {
		err = multierr.Append(err, s.RecordSummary(ctx, sum))
	}
	return err
}
