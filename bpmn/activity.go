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
	"errors"
	"fmt"
	"time"

	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/errs"
)

// Activity is a unit of work that holds one unit of a named resource for a
// fixed simulated duration.
type Activity struct {
	base
	duration float64
	resource string
}

func (a *Activity) Kind() Kind { return KindActivity }

// Duration returns the simulated duration in minutes.
func (a *Activity) Duration() float64 { return a.duration }

// Resource returns the name of the resource the activity consumes.
func (a *Activity) Resource() string { return a.resource }

// Advance acquires the resource, waits in simulated time until the granted
// unit is free, works for the activity's duration, records the usage and
// releases the unit. The token then follows the single outgoing edge.
//
// With pacing enabled the unit is also held for a real duration
// proportional to the simulated one.
func (a *Activity) Advance(ec *context.ExecutionContext, pc *ProcessContext, hop Hop) (Outcome, error) {
	tok := hop.Token

	lease, err := pc.acquire(ec, a.resource, a.id, tok, a.duration)
	if err != nil {
		return Outcome{}, a.annotate(tok.CaseID, err)
	}

	if err := a.work(ec, pc, hop, lease.Start()); err != nil {
		lease.Release(tok.CurrentTime())
		return Outcome{}, err
	}
	if err := lease.AddUsage(a.duration); err != nil {
		lease.Release(tok.CurrentTime())
		return Outcome{}, err
	}
	lease.Release(tok.CurrentTime())

	ec.Metrics.Observe(MetricResourceWait, lease.Waited())
	ec.Logger.Debug("activity finished", map[string]interface{}{
		"case_id":  tok.CaseID,
		"node_id":  a.id,
		"resource": a.resource,
		"unit":     lease.Unit(),
		"waited":   lease.Waited(),
		"time":     tok.CurrentTime(),
	})

	return Outcome{Next: []Hop{a.next(0, tok)}}, nil
}

// work advances the token through the activity while the unit is held.
func (a *Activity) work(ec *context.ExecutionContext, pc *ProcessContext, hop Hop, start float64) error {
	tok := hop.Token
	if err := tok.AdvanceTo(start); err != nil {
		return fmt.Errorf("activity %s: %w", a.id, err)
	}
	if err := tok.AdvanceTime(a.duration); err != nil {
		return fmt.Errorf("activity %s: %w", a.id, err)
	}
	if pc.pace > 0 && a.duration > 0 {
		hold := time.Duration(a.duration * float64(pc.pace))
		if err := ec.Clock.Sleep(ec.Context, hold); err != nil {
			return fmt.Errorf("activity %s: %w", a.id, err)
		}
	}
	return nil
}

// annotate adds the case and node to pool errors.
func (a *Activity) annotate(caseID int, err error) error {
	var notFound *errs.ResourceNotFoundError
	if errors.As(err, &notFound) {
		annotated := *notFound
		annotated.CaseID = caseID
		annotated.NodeID = a.id
		return &annotated
	}

	var timeout *errs.ResourceTimeoutError
	if errors.As(err, &timeout) {
		annotated := *timeout
		annotated.CaseID = caseID
		annotated.NodeID = a.id
		return &annotated
	}

	return fmt.Errorf("activity %s: acquire %s: %w", a.id, a.resource, err)
}

func (a *Activity) validate() []error {
	switch n := len(a.outgoing); {
	case n == 0:
		return []error{errs.Configuration("activity", a.id, "has no outgoing edge")}
	case n > 1:
		return []error{errs.Configuration("activity", a.id, "must have at most one outgoing edge, has %d", n)}
	}
	return nil
}
