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
	"strconv"

	"github.com/jazzpetri/bpmn/token"
)

// Predicate is a business rule evaluated against a token's data bag.
// Predicates must not mutate the token.
type Predicate func(tok *token.Token) bool

// Always matches every token.
func Always() Predicate {
	return func(*token.Token) bool { return true }
}

// Equals matches tokens whose data value for key equals value.
func Equals(key, value string) Predicate {
	return func(tok *token.Token) bool {
		v, ok := tok.Lookup(key)
		return ok && v == value
	}
}

// HasData matches tokens that carry key.
func HasData(key string) Predicate {
	return func(tok *token.Token) bool {
		_, ok := tok.Lookup(key)
		return ok
	}
}

// NumberAbove matches tokens whose value for key parses as a number greater
// than threshold.
func NumberAbove(key string, threshold float64) Predicate {
	return func(tok *token.Token) bool {
		n, ok := number(tok, key)
		return ok && n > threshold
	}
}

// NumberAtLeast matches tokens whose value for key parses as a number of at
// least threshold.
func NumberAtLeast(key string, threshold float64) Predicate {
	return func(tok *token.Token) bool {
		n, ok := number(tok, key)
		return ok && n >= threshold
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(tok *token.Token) bool { return !p(tok) }
}

// All matches when every predicate matches. It short-circuits.
func All(ps ...Predicate) Predicate {
	return func(tok *token.Token) bool {
		for _, p := range ps {
			if !p(tok) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one predicate matches. It short-circuits.
func Any(ps ...Predicate) Predicate {
	return func(tok *token.Token) bool {
		for _, p := range ps {
			if p(tok) {
				return true
			}
		}
		return false
	}
}

func number(tok *token.Token, key string) (float64, bool) {
	v, ok := tok.Lookup(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
