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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestBuildReport(t *testing.T) {
	records := []TokenRecord{
		{CaseID: 1, CycleTime: 30, Completed: true, EndReason: "Hired"},
		{CaseID: 2, CycleTime: 10, Completed: true, EndReason: "Rejected"},
		{CaseID: 3, CycleTime: 20, Completed: true, EndReason: "Rejected"},
		{CaseID: 4, CycleTime: 500},
	}
	summary := Summary{
		TokensStarted:      4,
		TokensCompleted:    3,
		EndReasonHistogram: map[string]int{"Hired": 1, "Rejected": 2},
		Resources: []ResourceSummary{
			{Name: "Clerk", TotalCost: 12.5},
			{Name: "Manager", TotalCost: 7.5},
		},
		Horizon: 80,
	}

	r := BuildReport(records, summary)

	if r.CompletionRate != 75 {
		t.Errorf("CompletionRate = %v, want 75", r.CompletionRate)
	}
	if r.AvgCycleTime != 20 || r.MinCycleTime != 10 || r.MaxCycleTime != 30 {
		t.Errorf("cycle avg/min/max = %v/%v/%v, want 20/10/30 (uncompleted excluded)", r.AvgCycleTime, r.MinCycleTime, r.MaxCycleTime)
	}
	wantReasons := []ReasonShare{
		{Reason: "Rejected", Count: 2, Percent: 200.0 / 3},
		{Reason: "Hired", Count: 1, Percent: 100.0 / 3},
	}
	if diff := cmp.Diff(wantReasons, r.Reasons, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Reasons mismatch (-want +got):\n%s", diff)
	}
	if r.TotalCost() != 20 {
		t.Errorf("TotalCost() = %v, want 20", r.TotalCost())
	}
	if r.Horizon != 80 {
		t.Errorf("Horizon = %v, want 80", r.Horizon)
	}
}

func TestBuildReport_Empty(t *testing.T) {
	r := BuildReport(nil, Summary{})
	if r.CompletionRate != 0 || r.AvgCycleTime != 0 || r.MinCycleTime != 0 || r.MaxCycleTime != 0 {
		t.Errorf("empty report = %+v, want zero figures", r)
	}
	if len(r.Reasons) != 0 {
		t.Errorf("Reasons = %v, want none", r.Reasons)
	}
}
