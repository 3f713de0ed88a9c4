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
	"time"

	"github.com/dogmatiq/linger"
	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/errs"
	"github.com/jazzpetri/bpmn/resource"
	"github.com/jazzpetri/bpmn/token"
)

// MetricAcquireRetries counts acquisitions retried after a timeout.
const MetricAcquireRetries = "bpmn_acquire_retries_total"

// RetryPolicy controls how often an activity retries a resource acquisition
// that timed out. Only resource timeouts are retried; a missing resource or
// a cancelled run fails immediately.
//
// Example with exponential backoff:
//
//	RetryPolicy{
//	    MaxAttempts: 4,
//	    BackoffFunc: func(attempt int) time.Duration {
//	        return time.Duration(1<<uint(attempt)) * 50 * time.Millisecond
//	    },
//	}
type RetryPolicy struct {
	// MaxAttempts is the number of acquisition attempts including the
	// first. Values below 1 mean a single attempt.
	MaxAttempts int

	// Backoff is the fixed real-time delay between attempts. It is used
	// when BackoffFunc is nil.
	Backoff time.Duration

	// BackoffFunc returns the delay before retry attempt (starting at 1 for
	// the first retry). It overrides Backoff.
	BackoffFunc func(attempt int) time.Duration
}

func (r RetryPolicy) attempts() int {
	if r.MaxAttempts < 1 {
		return 1
	}
	return r.MaxAttempts
}

func (r RetryPolicy) delay(attempt int) time.Duration {
	if r.BackoffFunc != nil {
		return r.BackoffFunc(attempt)
	}
	return r.Backoff
}

// acquire books a unit of res for hold minutes at the token's current time
// and waits for it, bounding each wait by the acquire timeout and retrying
// timeouts per the retry policy. Backoff delays run on the execution
// context's clock.
func (pc *ProcessContext) acquire(ec *context.ExecutionContext, res, nodeID string, tok *token.Token, hold float64) (*resource.Lease, error) {
	var lastErr error
	for attempt := 1; attempt <= pc.retry.attempts(); attempt++ {
		if attempt > 1 {
			ec.Metrics.Inc(MetricAcquireRetries)
			ec.Logger.Debug("retrying acquisition", map[string]interface{}{
				"case_id":  tok.CaseID,
				"node_id":  nodeID,
				"resource": res,
				"attempt":  attempt,
			})
			if err := ec.Clock.Sleep(ec.Context, pc.retry.delay(attempt-1)); err != nil {
				return nil, err
			}
		}

		lease, err := pc.acquireOnce(ec, res, tok, hold)
		if err == nil {
			return lease, nil
		}
		if !errors.Is(err, errs.ErrResourceTimeout) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (pc *ProcessContext) acquireOnce(ec *context.ExecutionContext, res string, tok *token.Token, hold float64) (*resource.Lease, error) {
	lease, err := pc.reserve(ec, res, tok, hold)
	if err != nil {
		return nil, err
	}

	ctx := ec.Context
	if pc.acquireTimeout > 0 {
		var cancel func()
		ctx, cancel = linger.ContextWithTimeout(ctx, pc.acquireTimeout)
		defer cancel()
	}
	if err := lease.Wait(ctx); err != nil {
		return nil, err
	}
	return lease, nil
}

// reserve books the unit in simulated time order when a timeline is set.
func (pc *ProcessContext) reserve(ec *context.ExecutionContext, res string, tok *token.Token, hold float64) (*resource.Lease, error) {
	at := tok.CurrentTime()
	if pc.timeline == nil {
		return pc.pool.Reserve(res, at, hold)
	}

	if err := pc.timeline.Enter(ec.Context, tok, at); err != nil {
		return nil, err
	}
	lease, err := pc.pool.Reserve(res, at, hold)
	next := at
	if err == nil {
		next = lease.End()
	}
	pc.timeline.Leave(tok, next)
	return lease, err
}
