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

import "sync"

// MemoryMetrics is a MetricsCollector that keeps every value in memory.
// It backs tests and the end-of-run statistics printed by the examples.
type MemoryMetrics struct {
	mu         sync.Mutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewMemoryMetrics creates an empty collector.
func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (m *MemoryMetrics) Inc(name string) {
	m.Add(name, 1)
}

func (m *MemoryMetrics) Add(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.gauges[name]; ok {
		m.gauges[name] += value
		return
	}
	m.counters[name] += value
}

func (m *MemoryMetrics) Observe(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[name] = append(m.histograms[name], value)
}

func (m *MemoryMetrics) Set(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// Counter returns the value of a counter.
func (m *MemoryMetrics) Counter(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// Gauge returns the value of a gauge.
func (m *MemoryMetrics) Gauge(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauges[name]
}

// Observations returns a copy of the values observed for a histogram.
func (m *MemoryMetrics) Observations(name string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.histograms[name]...)
}

// ErrorEntry is one error captured by an ErrorLog.
type ErrorEntry struct {
	Err      error
	Metadata map[string]interface{}
}

// ErrorLog is an ErrorRecorder that keeps every recorded error and, when a
// logger is set, also logs it at error level.
type ErrorLog struct {
	logger Logger

	mu      sync.Mutex
	entries []ErrorEntry
}

// NewErrorLog creates an ErrorLog. logger may be nil.
func NewErrorLog(logger Logger) *ErrorLog {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &ErrorLog{logger: logger}
}

// RecordError stores err with a copy of metadata.
func (l *ErrorLog) RecordError(err error, metadata map[string]interface{}) {
	fields := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		fields[k] = v
	}

	l.mu.Lock()
	l.entries = append(l.entries, ErrorEntry{Err: err, Metadata: fields})
	l.mu.Unlock()

	logged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		logged[k] = v
	}
	logged["error"] = err
	l.logger.Error("case failed", logged)
}

// Entries returns the recorded errors in recording order.
func (l *ErrorLog) Entries() []ErrorEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ErrorEntry(nil), l.entries...)
}
