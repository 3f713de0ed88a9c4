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
	stdcontext "context"
	"sync"

	"github.com/jazzpetri/bpmn/token"
)

// Timeline orders resource reservations by simulated time across branches
// that run on separate goroutines.
//
// Every live branch is tracked with a position: its simulated time, case id
// and the order it was tracked in. A tracked time is a lower bound on the
// time of the branch's next reservation. Enter lets a branch reserve only
// once no other tracked branch, and no expected case that has not arrived
// yet, sits at an earlier position. Reservations therefore happen in
// simulated time order whatever the goroutine scheduling.
//
// A branch passing Enter must call Leave with the simulated time of its
// next possible reservation. Branches that end, park or fail must be
// retired, or later branches wait for them forever.
type Timeline struct {
	mu       sync.Mutex
	seq      uint64
	branches map[*token.Token]*position
	expected *position
	changed  chan struct{}
}

type position struct {
	time   float64
	caseID int
	seq    uint64
}

func (p position) before(o position) bool {
	if p.time != o.time {
		return p.time < o.time
	}
	if p.caseID != o.caseID {
		return p.caseID < o.caseID
	}
	return p.seq < o.seq
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{
		branches: make(map[*token.Token]*position),
		changed:  make(chan struct{}),
	}
}

// Track starts tracking tok at its current time, or moves an already
// tracked token forward to its current time. It must be called by the
// goroutine that owns tok.
func (t *Timeline) Track(tok *token.Token) {
	now := tok.CurrentTime()

	t.mu.Lock()
	defer t.mu.Unlock()

	if pos, ok := t.branches[tok]; ok {
		if now > pos.time {
			pos.time = now
			t.broadcast()
		}
		return
	}
	t.seq++
	t.branches[tok] = &position{time: now, caseID: tok.CaseID, seq: t.seq}
}

// Retire stops tracking tok.
func (t *Timeline) Retire(tok *token.Token) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.branches[tok]; ok {
		delete(t.branches, tok)
		t.broadcast()
	}
}

// RetireCase stops tracking every branch of a case.
func (t *Timeline) RetireCase(caseID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for tok, pos := range t.branches {
		if pos.caseID == caseID {
			delete(t.branches, tok)
		}
	}
	t.broadcast()
}

// Expect holds back every branch positioned after the arrival of case
// caseID at simulated time at, until the case is tracked or the
// expectation is cleared.
func (t *Timeline) Expect(caseID int, at float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.expected = &position{time: at, caseID: caseID}
	t.broadcast()
}

// ClearExpected drops the expected arrival.
func (t *Timeline) ClearExpected() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.expected != nil {
		t.expected = nil
		t.broadcast()
	}
}

// Enter blocks until tok, positioned at simulated time at, is the earliest
// tracked branch and no earlier arrival is expected. An untracked tok is
// tracked first. Enter returns ctx.Err() if ctx ends while waiting.
func (t *Timeline) Enter(ctx stdcontext.Context, tok *token.Token, at float64) error {
	t.mu.Lock()
	pos, ok := t.branches[tok]
	if !ok {
		t.seq++
		pos = &position{caseID: tok.CaseID, seq: t.seq}
		t.branches[tok] = pos
	}
	pos.time = at

	for !t.earliest(pos) {
		changed := t.changed
		t.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
		t.mu.Lock()
	}
	t.mu.Unlock()
	return nil
}

// Leave moves tok to simulated time next after it reserved.
func (t *Timeline) Leave(tok *token.Token, next float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pos, ok := t.branches[tok]; ok {
		pos.time = next
	}
	t.broadcast()
}

// Len returns the number of tracked branches.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.branches)
}

// earliest must be called with mu held.
func (t *Timeline) earliest(pos *position) bool {
	if t.expected != nil && t.expected.before(*pos) {
		return false
	}
	for _, other := range t.branches {
		if other != pos && other.before(*pos) {
			return false
		}
	}
	return true
}

// broadcast wakes every goroutine waiting in Enter. It must be called with
// mu held.
func (t *Timeline) broadcast() {
	close(t.changed)
	t.changed = make(chan struct{})
}
