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

package engine

import (
	stdcontext "context"
	"fmt"
	"math"

	"github.com/jazzpetri/bpmn/bpmn"
	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/errs"
	"github.com/jazzpetri/bpmn/metrics"
	"github.com/jazzpetri/bpmn/token"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Result is the outcome of a simulation run.
type Result struct {
	// Records holds one record per launched case, ordered by case id.
	Records []metrics.TokenRecord

	// Summary aggregates counters, end reasons and resource usage.
	Summary metrics.Summary

	// Report holds the figures derived from the completed cases.
	Report metrics.Report

	// Statistics describes the execution of the run.
	Statistics Statistics
}

// Simulate freezes the process and runs caseCount cases. Case i (counting
// from 0) gets case id i+1 and arrives at simulated minute
// i × arrivalInterval.
//
// Structural defects are returned as configuration errors before any case
// starts. Errors of individual cases do not stop the others: they are
// recorded through the execution context, combined and returned together
// with the complete Result. Cancelling ctx cancels every resource wait;
// cases not yet launched are skipped.
//
// Resource units are granted in simulated time order. A branch books a unit
// only once every other live branch, and the next case still to arrive, has
// reached its simulated time; ties go to the lower case id. The order does
// not depend on goroutine scheduling.
//
// A process simulates once. Later calls return a configuration error.
func (p *Process) Simulate(ctx stdcontext.Context, caseCount int, arrivalInterval float64) (*Result, error) {
	if caseCount < 0 {
		return nil, errs.Configuration("schedule", "cases", "must not be negative, got %d", caseCount)
	}
	if arrivalInterval < 0 || math.IsNaN(arrivalInterval) || math.IsInf(arrivalInterval, 0) {
		return nil, errs.Configuration("schedule", "arrival_interval", "must be a non-negative number, got %v", arrivalInterval)
	}
	if ctx == nil {
		ctx = p.ec.Context
	}

	if err := p.begin(); err != nil {
		return nil, err
	}

	ctx, span := p.ec.Tracer.StartSpan(ctx, spanSimulate)
	defer span.End()
	span.SetAttribute("process", p.name)
	span.SetAttribute("cases", caseCount)

	started := p.ec.Clock.Now()
	p.statsMu.Lock()
	p.stats.StartTime = started
	p.statsMu.Unlock()

	p.ec.Logger.Info("simulation started", map[string]interface{}{
		"process":          p.name,
		"cases":            caseCount,
		"arrival_interval": arrivalInterval,
		"max_concurrent":   p.config.MaxConcurrentCases,
	})

	tl := bpmn.NewTimeline()
	pc := bpmn.NewProcessContext(p.pool, bpmn.Settings{
		AcquireTimeout: p.config.AcquireTimeout,
		Pace:           p.config.Pace,
		Retry:          p.config.Retry,
		Timeline:       tl,
	})

	records := make([]metrics.TokenRecord, caseCount)
	caseErrs := make([]error, caseCount)

	var g errgroup.Group
	slots := semaphore.NewWeighted(int64(p.config.MaxConcurrentCases))

	launched := 0
	for i := 0; i < caseCount; i++ {
		if ctx.Err() != nil {
			break
		}
		if !slots.TryAcquire(1) {
			// Running cases must not wait for a case that cannot start
			// before one of them finishes.
			tl.ClearExpected()
			if err := slots.Acquire(ctx, 1); err != nil {
				break
			}
		}

		tok := token.New(i+1, float64(i)*arrivalInterval)
		if p.initializer != nil {
			p.initializer(tok)
		}
		tl.Track(tok)
		if i+1 < caseCount {
			tl.Expect(i+2, float64(i+1)*arrivalInterval)
		} else {
			tl.ClearExpected()
		}

		launched++
		g.Go(func() error {
			defer slots.Release(1)
			records[i], caseErrs[i] = p.runCase(ctx, pc, tl, tok)
			return nil
		})
	}
	tl.ClearExpected()
	_ = g.Wait()

	records = records[:launched]
	err := multierr.Combine(caseErrs...)
	if launched < caseCount {
		err = multierr.Append(err, fmt.Errorf("engine: %d of %d cases not launched: %w", caseCount-launched, caseCount, ctx.Err()))
	}

	summary := metrics.NewSummary(records, p.pool.Snapshot(), pc.Started(), pc.Completed(), pc.Histogram())

	// Partial results of a cancelled run are still delivered.
	sinkCtx := stdcontext.WithoutCancel(ctx)
	err = multierr.Append(err, p.sinks.RecordTokens(sinkCtx, records))
	err = multierr.Append(err, p.sinks.RecordSummary(sinkCtx, summary))

	p.statsMu.Lock()
	p.stats.ExecutionTime = p.ec.Clock.Now().Sub(started)
	stats := p.stats
	p.statsMu.Unlock()

	p.mu.Lock()
	p.state = Finished
	p.mu.Unlock()

	if err != nil {
		span.RecordError(err)
	}
	p.ec.Logger.Info("simulation finished", map[string]interface{}{
		"process":   p.name,
		"started":   summary.TokensStarted,
		"completed": summary.TokensCompleted,
		"failed":    stats.CasesFailed,
		"horizon":   summary.Horizon,
		"duration":  stats.ExecutionTime.String(),
	})

	return &Result{
		Records:    records,
		Summary:    summary,
		Report:     metrics.BuildReport(records, summary),
		Statistics: stats,
	}, err
}

// begin freezes the graph and the pool and moves the process to Running.
func (p *Process) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Building {
		return errs.Configuration("process", p.name, "is %s, a process simulates once", p.state)
	}
	if err := p.graph.Freeze(); err != nil {
		return err
	}
	p.pool.Freeze()
	p.state = Running
	return nil
}

// runCase drives the case of tok from the start event until all of its
// branches ended, parked or failed.
func (p *Process) runCase(ctx stdcontext.Context, pc *bpmn.ProcessContext, tl *bpmn.Timeline, tok *token.Token) (metrics.TokenRecord, error) {
	caseID := tok.CaseID

	ctx, span := p.ec.Tracer.StartSpan(ctx, spanCase)
	defer span.End()
	span.SetAttribute("case_id", caseID)
	span.SetAttribute("token_id", tok.ID)

	p.caseActive(1)
	defer p.caseActive(-1)

	g, gctx := errgroup.WithContext(ctx)
	ec := p.ec.WithContext(gctx)
	entry := bpmn.Hop{Node: p.graph.Start().Index(), Token: tok, From: -1}
	g.Go(func() error {
		return p.drive(ec, pc, tl, g, entry)
	})
	err := g.Wait()
	tl.RetireCase(caseID)

	status := pc.Case(caseID)
	pc.Forget(caseID)
	if err == nil && status.Started && !status.Completed {
		err = &errs.StalledError{CaseID: caseID, Gateways: status.Parked}
	}

	// The root token retires at the first fork; it carries the outcome of
	// the whole case.
	if status.Completed && !tok.IsCompleted() {
		_ = tok.AdvanceTo(status.EndTime)
		tok.Complete(status.EndReason)
	}

	rec := metrics.TokenRecord{
		CaseID:    caseID,
		TokenID:   tok.ID,
		StartTime: tok.StartTime(),
		EndTime:   tok.CurrentTime(),
		CycleTime: tok.CycleTime(),
		Completed: tok.IsCompleted(),
		EndReason: tok.EndReason(),
	}

	p.statsMu.Lock()
	p.stats.CasesLaunched++
	if rec.Completed {
		p.stats.CasesCompleted++
	}
	if err != nil {
		p.stats.CasesFailed++
	}
	p.statsMu.Unlock()

	if err != nil {
		span.RecordError(err)
		p.ec.Metrics.Inc(MetricCaseErrors)
		p.ec.ErrorRecorder.RecordError(err, map[string]interface{}{
			"process":   p.name,
			"case_id":   caseID,
			"token_id":  tok.ID,
			"operation": "simulate",
		})
		p.ec.Logger.Warn("case did not complete", map[string]interface{}{
			"process": p.name,
			"case_id": caseID,
			"error":   err,
		})
		return rec, fmt.Errorf("case %d: %w", caseID, err)
	}

	span.SetAttribute("end_reason", rec.EndReason)
	p.ec.Metrics.Observe(MetricCycleTime, rec.CycleTime)
	return rec, nil
}

// drive advances a token node by node until it ends, parks or fails. Every
// hop beyond the first of an outcome is a new branch and runs in its own
// goroutine of the case group.
//
// The timeline tracks every token that leaves a hop and forgets the token
// that arrived when it does not go on.
func (p *Process) drive(ec *context.ExecutionContext, pc *bpmn.ProcessContext, tl *bpmn.Timeline, g *errgroup.Group, hop bpmn.Hop) error {
	for {
		n := p.graph.Node(hop.Node)

		ctx, span := ec.Tracer.StartSpan(ec.Context, spanAdvance)
		span.SetAttribute("node_id", n.ID())
		span.SetAttribute("kind", n.Kind().String())
		span.SetAttribute("case_id", hop.Token.CaseID)
		if hop.Token.Branch != "" {
			span.SetAttribute("branch", hop.Token.Branch)
		}

		out, err := n.Advance(ec.WithContext(ctx), pc, hop)
		p.statsMu.Lock()
		p.stats.NodeAdvances++
		p.statsMu.Unlock()
		if err != nil {
			tl.Retire(hop.Token)
			span.RecordError(err)
			span.End()
			return err
		}
		if out.Rule != "" {
			span.SetAttribute("rule", out.Rule)
		}
		span.End()

		continues := false
		for _, next := range out.Next {
			tl.Track(next.Token)
			continues = continues || next.Token == hop.Token
		}
		if !continues {
			tl.Retire(hop.Token)
		}

		if len(out.Next) == 0 {
			return nil
		}
		for _, branch := range out.Next[1:] {
			g.Go(func() error {
				return p.drive(ec, pc, tl, g, branch)
			})
		}
		hop = out.Next[0]
	}
}

func (p *Process) caseActive(delta int64) {
	p.statsMu.Lock()
	p.active += delta
	active := p.active
	p.statsMu.Unlock()
	p.ec.Metrics.Set(MetricActiveCases, float64(active))
}
