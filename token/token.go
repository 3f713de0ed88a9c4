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

// Package token provides the case token that flows through a process graph.
//
// A Token is one instance of the process in flight. It carries its own
// simulated clock (in minutes), a string data bag used as input for gateway
// rules, and a small state machine:
//
//	Created ──(first node visit)──► Running ──(end event)──► Completed
//
// There is no failed state. A token that cannot be routed stays Running and
// the orchestrator reports the failure.
//
// Tokens are case-local: a token is only ever touched by the goroutine that is
// currently advancing it, so it carries no synchronization. Parallel branches
// receive their own sibling copies via Fork.
package token

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// ErrNegativeDuration is returned when a token's clock would move backwards.
var ErrNegativeDuration = errors.New("token: duration must not be negative")

// ErrInvalidTime is returned for NaN or infinite clock values.
var ErrInvalidTime = errors.New("token: time must be a finite number")

// ErrCompleted is returned when the clock of a completed token is advanced.
var ErrCompleted = errors.New("token: token is already completed")

// State is the lifecycle state of a token.
type State int

const (
	// Created is the state of a token that has not visited any node.
	Created State = iota

	// Running is the state of a token that is moving through the graph.
	Running

	// Completed is the terminal state, reached exactly once.
	Completed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Created:
		return "Created"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Token is a case instance moving through a process graph.
type Token struct {
	// ID uniquely identifies this token instance. Forked siblings share a
	// CaseID but have distinct IDs.
	ID string

	// CaseID identifies the case. It is unique per simulation run.
	CaseID int

	// Branch is the fork path of this token ("" for the case's root token,
	// "split/0" for the first branch of gateway "split", and so on).
	Branch string

	data        map[string]string
	startTime   float64
	currentTime float64
	state       State
	endReason   string
}

// New creates a token for the given case, arriving at start (minutes).
func New(caseID int, start float64) *Token {
	return &Token{
		ID:          uuid.NewString(),
		CaseID:      caseID,
		data:        make(map[string]string),
		startTime:   start,
		currentTime: start,
		state:       Created,
	}
}

// SetData stores a value in the data bag.
func (t *Token) SetData(key, value string) {
	if t.data == nil {
		t.data = make(map[string]string)
	}
	t.data[key] = value
}

// Data returns the value stored under key, or "" if there is none.
func (t *Token) Data(key string) string {
	return t.data[key]
}

// Lookup returns the value stored under key and whether it was present.
func (t *Token) Lookup(key string) (string, bool) {
	v, ok := t.data[key]
	return v, ok
}

// DataSnapshot returns a copy of the data bag.
func (t *Token) DataSnapshot() map[string]string {
	snapshot := make(map[string]string, len(t.data))
	for k, v := range t.data {
		snapshot[k] = v
	}
	return snapshot
}

// StartTime returns the simulated arrival time of the case.
func (t *Token) StartTime() float64 {
	return t.startTime
}

// CurrentTime returns the token's simulated clock.
func (t *Token) CurrentTime() float64 {
	return t.currentTime
}

// CycleTime returns the elapsed simulated time since the case started.
func (t *Token) CycleTime() float64 {
	return t.currentTime - t.startTime
}

// State returns the lifecycle state.
func (t *Token) State() State {
	return t.state
}

// IsCompleted reports whether the token reached an end event.
func (t *Token) IsCompleted() bool {
	return t.state == Completed
}

// EndReason returns the name of the end event that completed the token.
func (t *Token) EndReason() string {
	return t.endReason
}

// Start moves a Created token to Running. It returns false if the token had
// already left the Created state.
func (t *Token) Start() bool {
	if t.state != Created {
		return false
	}
	t.state = Running
	return true
}

// AdvanceTime moves the clock forward by d minutes.
func (t *Token) AdvanceTime(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: advance by %v", ErrInvalidTime, d)
	}
	if d < 0 {
		return fmt.Errorf("%w: advance by %v", ErrNegativeDuration, d)
	}
	if t.state == Completed {
		return ErrCompleted
	}
	t.currentTime += d
	return nil
}

// AdvanceTo moves the clock forward to at. Times earlier than the current
// clock leave it unchanged.
func (t *Token) AdvanceTo(at float64) error {
	if math.IsNaN(at) || math.IsInf(at, 0) {
		return fmt.Errorf("%w: advance to %v", ErrInvalidTime, at)
	}
	if at <= t.currentTime {
		return nil
	}
	if t.state == Completed {
		return ErrCompleted
	}
	t.currentTime = at
	return nil
}

// Complete marks the token completed with the given end reason. The first
// call wins: it returns false and leaves the reason untouched if the token is
// already completed.
func (t *Token) Complete(reason string) bool {
	if t.state == Completed {
		return false
	}
	t.state = Completed
	t.endReason = reason
	return true
}

// Fork returns a sibling token for a parallel branch. The sibling shares the
// case id, start time and clock, gets a fresh instance id and a deep copy of
// the data bag.
func (t *Token) Fork(branch string) *Token {
	return &Token{
		ID:          uuid.NewString(),
		CaseID:      t.CaseID,
		Branch:      branch,
		data:        t.DataSnapshot(),
		startTime:   t.startTime,
		currentTime: t.currentTime,
		state:       Running,
	}
}

// Absorb folds a sibling into t: data entries of other overwrite those of t
// and t's clock moves forward to other's clock if that is later.
func (t *Token) Absorb(other *Token) error {
	keys := make([]string, 0, len(other.data))
	for k := range other.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.SetData(k, other.data[k])
	}
	return t.AdvanceTo(other.currentTime)
}

// String returns a human-readable representation of the token for debugging.
func (t *Token) String() string {
	branch := ""
	if t.Branch != "" {
		branch = " branch=" + t.Branch
	}
	return fmt.Sprintf("Token[case=%d%s %s t=%.2f cycle=%.2f]", t.CaseID, branch, t.state, t.currentTime, t.CycleTime())
}
