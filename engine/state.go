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

// State is the lifecycle state of a Process.
//
//	Building ──(Simulate)──► Running ──► Finished
//
// The graph and resources can only be changed while Building. A process
// simulates once.
type State int

const (
	// Building accepts graph and resource definitions.
	Building State = iota

	// Running is set while Simulate drives cases.
	Running

	// Finished is set once Simulate returned.
	Finished
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case Building:
		return "Building"
	case Running:
		return "Running"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}
