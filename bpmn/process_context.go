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

package bpmn

import (
	"sort"
	"sync"
	"time"

	"github.com/jazzpetri/bpmn/resource"
	"github.com/jazzpetri/bpmn/token"
)

// Metric names reported through the execution context.
const (
	MetricCasesStarted   = "bpmn_cases_started_total"
	MetricCasesCompleted = "bpmn_cases_completed_total"
	MetricResourceWait   = "bpmn_resource_wait_minutes"
)

// Settings tune how activities use the resource pool.
type Settings struct {
	// AcquireTimeout bounds the real time an activity waits for a resource
	// unit. Zero waits until the run is cancelled.
	AcquireTimeout time.Duration

	// Pace is the real time an activity holds its unit per simulated
	// minute. Zero disables pacing.
	Pace time.Duration

	// Retry controls retries of acquisitions that hit AcquireTimeout.
	Retry RetryPolicy

	// Timeline, when set, orders reservations by simulated time across
	// concurrently advancing branches. Without it reservations happen in
	// the order activities reach the pool.
	Timeline *Timeline
}

// ProcessContext is the state shared by every node during a run: the
// resource pool, the started and completed counters, the end reason
// histogram and, per case, the live branch ledger and pending joins.
//
// Counters and the histogram are updated once per case, when its last live
// branch reaches an end event. All methods are safe for concurrent use.
type ProcessContext struct {
	pool           *resource.Pool
	acquireTimeout time.Duration
	pace           time.Duration
	retry          RetryPolicy
	timeline       *Timeline

	mu        sync.Mutex
	started   int
	completed int
	histogram map[string]int
	cases     map[int]*caseLedger
	joins     map[joinKey]*joinState
}

// caseLedger tracks the branches of one case.
type caseLedger struct {
	live      int
	ended     bool
	endReason string
	endTime   float64
	completed bool
}

type joinKey struct {
	gateway int
	caseID  int
}

// joinState queues arrivals per incoming edge.
type joinState struct {
	gateway *ParallelGateway
	queues  [][]*token.Token
}

// CaseStatus is the outcome of one case as seen by the ProcessContext.
type CaseStatus struct {
	// Started is set once the case passed its start event.
	Started bool

	// Completed is set once every branch of the case reached an end event.
	Completed bool

	// EndReason is the end event name of the latest finishing branch.
	EndReason string

	// EndTime is the latest simulated time any branch ended at.
	EndTime float64

	// Live is the number of branches that have not ended.
	Live int

	// Parked lists the ids of joins holding tokens of the case, sorted.
	Parked []string
}

// NewProcessContext creates a ProcessContext over pool.
func NewProcessContext(pool *resource.Pool, settings Settings) *ProcessContext {
	return &ProcessContext{
		pool:           pool,
		acquireTimeout: settings.AcquireTimeout,
		pace:           settings.Pace,
		retry:          settings.Retry,
		timeline:       settings.Timeline,
		histogram:      make(map[string]int),
		cases:          make(map[int]*caseLedger),
		joins:          make(map[joinKey]*joinState),
	}
}

// Pool returns the resource pool.
func (pc *ProcessContext) Pool() *resource.Pool {
	return pc.pool
}

// Started returns the number of cases that passed their start event.
func (pc *ProcessContext) Started() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.started
}

// Completed returns the number of cases whose branches all ended.
func (pc *ProcessContext) Completed() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.completed
}

// Histogram returns a copy of the end reason histogram.
func (pc *ProcessContext) Histogram() map[string]int {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	h := make(map[string]int, len(pc.histogram))
	for k, v := range pc.histogram {
		h[k] = v
	}
	return h
}

// Case returns the status of a case.
func (pc *ProcessContext) Case(caseID int) CaseStatus {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	l, ok := pc.cases[caseID]
	if !ok {
		return CaseStatus{}
	}

	status := CaseStatus{
		Started:   true,
		Completed: l.completed,
		EndReason: l.endReason,
		EndTime:   l.endTime,
		Live:      l.live,
	}
	for key, js := range pc.joins {
		if key.caseID != caseID {
			continue
		}
		for _, q := range js.queues {
			if len(q) > 0 {
				status.Parked = append(status.Parked, js.gateway.id)
				break
			}
		}
	}
	sort.Strings(status.Parked)
	return status
}

// Forget drops the ledger and pending joins of a finished case.
func (pc *ProcessContext) Forget(caseID int) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	delete(pc.cases, caseID)
	for key := range pc.joins {
		if key.caseID == caseID {
			delete(pc.joins, key)
		}
	}
}

// caseStarted registers the root token of a case.
func (pc *ProcessContext) caseStarted(tok *token.Token) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.started++
	pc.cases[tok.CaseID] = &caseLedger{live: 1}
}

// forked replaces one live branch of a case with n branches.
func (pc *ProcessContext) forked(caseID, n int) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if l, ok := pc.cases[caseID]; ok {
		l.live += n - 1
	}
}

// branchEnded records that a branch reached an end event. It reports true
// when this completed the case.
func (pc *ProcessContext) branchEnded(tok *token.Token, reason string) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	l, ok := pc.cases[tok.CaseID]
	if !ok {
		// A token that never passed a start event still completes.
		l = &caseLedger{live: 1}
		pc.cases[tok.CaseID] = l
	}

	at := tok.CurrentTime()
	if !l.ended || at > l.endTime || (at == l.endTime && reason < l.endReason) {
		l.endTime = at
		l.endReason = reason
	}
	l.ended = true

	l.live--
	if l.live > 0 || l.completed {
		return false
	}
	l.completed = true
	pc.completed++
	pc.histogram[l.endReason]++
	return true
}

// arrive queues tok at join gateway g on incoming edge position edge. When
// every edge has a queued token, the heads are merged in edge order and the
// merged token is returned; otherwise arrive returns nil and the token stays
// parked.
func (pc *ProcessContext) arrive(g *ParallelGateway, edge int, tok *token.Token) (*token.Token, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	key := joinKey{gateway: g.index, caseID: tok.CaseID}
	js, ok := pc.joins[key]
	if !ok {
		js = &joinState{
			gateway: g,
			queues:  make([][]*token.Token, len(g.graph.incoming[g.index])),
		}
		pc.joins[key] = js
	}
	js.queues[edge] = append(js.queues[edge], tok)

	for _, q := range js.queues {
		if len(q) == 0 {
			return nil, nil
		}
	}

	merged := js.queues[0][0]
	js.queues[0] = js.queues[0][1:]
	for i := 1; i < len(js.queues); i++ {
		head := js.queues[i][0]
		js.queues[i] = js.queues[i][1:]
		if err := merged.Absorb(head); err != nil {
			return nil, err
		}
	}

	if l, ok := pc.cases[tok.CaseID]; ok {
		l.live -= len(js.queues) - 1
	}
	return merged, nil
}
