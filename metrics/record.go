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

// Package metrics receives the outcome of a simulation run: one TokenRecord
// per case and a Summary of counters, end reasons and resource usage.
//
// Sinks persist or forward what they receive. MemorySink keeps everything in
// memory, BoltSink stores runs in a bbolt database, and MultiSink fans out
// to several sinks. BuildReport aggregates records into the figures a
// simulation report shows.
package metrics

import (
	"math"
	"sort"

	"github.com/jazzpetri/bpmn/resource"
)

// TokenRecord is the outcome of one case.
type TokenRecord struct {
	CaseID    int     `json:"case_id"`
	TokenID   string  `json:"token_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	CycleTime float64 `json:"cycle_time"`
	Completed bool    `json:"completed"`
	EndReason string  `json:"end_reason,omitempty"`
}

// ResourceSummary is the usage of one resource over a run.
type ResourceSummary struct {
	Name               string  `json:"name"`
	Capacity           int     `json:"capacity"`
	CostPerHour        float64 `json:"cost_per_hour"`
	TotalMinutesUsed   float64 `json:"total_minutes_used"`
	TotalCost          float64 `json:"total_cost"`
	UtilizationPercent float64 `json:"utilization_percent"`
	Acquisitions       int     `json:"acquisitions"`
	TotalWaitMinutes   float64 `json:"total_wait_minutes"`
	PeakInUse          int     `json:"peak_in_use"`
}

// Summary aggregates a run.
type Summary struct {
	TokensStarted      int               `json:"tokens_started"`
	TokensCompleted    int               `json:"tokens_completed"`
	EndReasonHistogram map[string]int    `json:"end_reason_histogram"`
	Resources          []ResourceSummary `json:"resources"`

	// Horizon is the simulated span in minutes from the earliest case start
	// to the latest case end.
	Horizon float64 `json:"horizon"`
}

// NewSummary builds a Summary from the records of a run, the final resource
// usage and the case counters.
//
// Utilization is the share of the available unit-minutes that were used:
// minutes used / (capacity × horizon) × 100. It is 0 when the horizon is 0.
func NewSummary(records []TokenRecord, usage []resource.Usage, started, completed int, histogram map[string]int) Summary {
	s := Summary{
		TokensStarted:      started,
		TokensCompleted:    completed,
		EndReasonHistogram: make(map[string]int, len(histogram)),
		Horizon:            Horizon(records),
	}
	for k, v := range histogram {
		s.EndReasonHistogram[k] = v
	}

	for _, u := range usage {
		rs := ResourceSummary{
			Name:             u.Name,
			Capacity:         u.Capacity,
			CostPerHour:      u.CostPerHour,
			TotalMinutesUsed: u.MinutesUsed,
			TotalCost:        u.Cost,
			Acquisitions:     u.Acquisitions,
			TotalWaitMinutes: u.WaitMinutes,
			PeakInUse:        u.PeakInUse,
		}
		if s.Horizon > 0 && u.Capacity > 0 {
			rs.UtilizationPercent = u.MinutesUsed / (float64(u.Capacity) * s.Horizon) * 100
		}
		s.Resources = append(s.Resources, rs)
	}
	return s
}

// Horizon returns the span from the earliest start to the latest end of
// records, or 0 for no records.
func Horizon(records []TokenRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	first, last := math.Inf(1), math.Inf(-1)
	for _, r := range records {
		first = math.Min(first, r.StartTime)
		last = math.Max(last, r.EndTime)
	}
	return math.Max(0, last-first)
}

// SortRecords orders records by case id.
func SortRecords(records []TokenRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].CaseID < records[j].CaseID
	})
}
