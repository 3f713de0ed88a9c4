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
	"testing"

	"github.com/jazzpetri/bpmn/token"
)

func TestPredicates(t *testing.T) {
	tok := token.New(1, 0)
	tok.SetData("role", "engineer")
	tok.SetData("score", "72.5")
	tok.SetData("notes", "n/a")

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{name: "equals", pred: Equals("role", "engineer"), want: true},
		{name: "equals other value", pred: Equals("role", "manager"), want: false},
		{name: "equals missing", pred: Equals("missing", ""), want: false},
		{name: "has data", pred: HasData("notes"), want: true},
		{name: "has data missing", pred: HasData("missing"), want: false},
		{name: "number above", pred: NumberAbove("score", 70), want: true},
		{name: "number above equal", pred: NumberAbove("score", 72.5), want: false},
		{name: "number at least equal", pred: NumberAtLeast("score", 72.5), want: true},
		{name: "number not numeric", pred: NumberAbove("notes", 0), want: false},
		{name: "number missing", pred: NumberAtLeast("missing", 0), want: false},
		{name: "not", pred: Not(HasData("missing")), want: true},
		{name: "all", pred: All(HasData("role"), NumberAbove("score", 50)), want: true},
		{name: "all one false", pred: All(HasData("role"), HasData("missing")), want: false},
		{name: "all empty", pred: All(), want: true},
		{name: "any", pred: Any(HasData("missing"), Equals("role", "engineer")), want: true},
		{name: "any empty", pred: Any(), want: false},
		{name: "always", pred: Always(), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tok); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredicates_ShortCircuit(t *testing.T) {
	tok := token.New(1, 0)
	called := false
	spy := func(*token.Token) bool {
		called = true
		return true
	}

	All(Not(Always()), spy)(tok)
	Any(Always(), spy)(tok)

	if called {
		t.Error("All and Any should stop at the first deciding predicate")
	}
}
