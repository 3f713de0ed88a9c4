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
	"testing"

	"github.com/jazzpetri/bpmn/context"
	"github.com/jazzpetri/bpmn/resource"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func newTestProcess(t *testing.T, config Config, defs ...resource.Definition) *Process {
	t.Helper()
	p := New("test", context.NewExecutionContext(nil, nil), config)
	for _, def := range defs {
		must(t, p.AddResource(def))
	}
	return p
}

// linearProcess builds start -> work(minutes, res) -> end("Done").
func linearProcess(t *testing.T, config Config, minutes float64, res string, defs ...resource.Definition) *Process {
	t.Helper()
	p := newTestProcess(t, config, defs...)
	must(t, p.AddStartEvent("start", "Start"))
	must(t, p.AddActivity("work", "Work", minutes, res))
	must(t, p.AddEndEvent("end", "Done"))
	must(t, p.Connect("start", "work"))
	must(t, p.Connect("work", "end"))
	return p
}
