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
	"math"
	"sort"
)

// ReasonShare is the share of completed cases that ended at one end event.
type ReasonShare struct {
	Reason  string
	Count   int
	Percent float64
}

// Report holds the aggregate figures of a run. Cycle time statistics only
// consider completed cases.
type Report struct {
	CasesStarted   int
	CasesCompleted int
	CompletionRate float64

	AvgCycleTime float64
	MinCycleTime float64
	MaxCycleTime float64

	// Reasons is ordered by descending count, then by reason.
	Reasons   []ReasonShare
	Resources []ResourceSummary
	Horizon   float64
}

// BuildReport aggregates records and the run summary.
func BuildReport(records []TokenRecord, s Summary) Report {
	r := Report{
		CasesStarted:   s.TokensStarted,
		CasesCompleted: s.TokensCompleted,
		Resources:      append([]ResourceSummary(nil), s.Resources...),
		Horizon:        s.Horizon,
	}
	if r.CasesStarted > 0 {
		r.CompletionRate = float64(r.CasesCompleted) / float64(r.CasesStarted) * 100
	}

	var (
		n     int
		total float64
		min   = math.Inf(1)
		max   = math.Inf(-1)
	)
	for _, rec := range records {
		if !rec.Completed {
			continue
		}
		n++
		total += rec.CycleTime
		min = math.Min(min, rec.CycleTime)
		max = math.Max(max, rec.CycleTime)
	}
	if n > 0 {
		r.AvgCycleTime = total / float64(n)
		r.MinCycleTime = min
		r.MaxCycleTime = max
	}

	for reason, count := range s.EndReasonHistogram {
		share := ReasonShare{Reason: reason, Count: count}
		if s.TokensCompleted > 0 {
			share.Percent = float64(count) / float64(s.TokensCompleted) * 100
		}
		r.Reasons = append(r.Reasons, share)
	}
	sort.Slice(r.Reasons, func(i, j int) bool {
		if r.Reasons[i].Count != r.Reasons[j].Count {
			return r.Reasons[i].Count > r.Reasons[j].Count
		}
		return r.Reasons[i].Reason < r.Reasons[j].Reason
	})

	return r
}

// TotalCost returns the summed cost of every resource.
func (r Report) TotalCost() float64 {
	total := 0.0
	for _, res := range r.Resources {
		total += res.TotalCost
	}
	return total
}
