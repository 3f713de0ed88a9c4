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

package context

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Debug("d", nil)
	logger.Info("i", nil)
	logger.Warn("w", nil)
	logger.Error("e", nil)

	entries := logs.AllUntimed()
	want := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, want[i])
		}
	}
}

func TestZapLogger_FieldsSortedAndTyped(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Info("case completed", map[string]interface{}{
		"node_id": "end1",
		"case_id": 3,
		"error":   errors.New("boom"),
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	fields := entries[0].Context
	var keys []string
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	wantKeys := []string{"case_id", "error", "node_id"}
	if len(keys) != len(wantKeys) {
		t.Fatalf("keys = %v, want %v", keys, wantKeys)
	}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] {
			t.Errorf("keys = %v, want %v", keys, wantKeys)
			break
		}
	}

	ctx := entries[0].ContextMap()
	if ctx["error"] != "boom" {
		t.Errorf("error field = %v, want boom", ctx["error"])
	}
	if ctx["node_id"] != "end1" {
		t.Errorf("node_id field = %v, want end1", ctx["node_id"])
	}
}

func TestZapLogger_NilIsNop(t *testing.T) {
	logger := NewZapLogger(nil)
	logger.Info("discarded", map[string]interface{}{"k": "v"})
	if logger.Zap() == nil {
		t.Error("Zap() should never return nil")
	}
}

func TestErrorLog_RecordsAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	recorder := NewErrorLog(NewZapLogger(zap.New(core)))

	meta := map[string]interface{}{"case_id": 2}
	recorder.RecordError(errors.New("routing failed"), meta)
	meta["case_id"] = 99

	entries := recorder.Entries()
	if len(entries) != 1 {
		t.Fatalf("Entries() = %d, want 1", len(entries))
	}
	if entries[0].Metadata["case_id"] != 2 {
		t.Errorf("metadata was not copied: %v", entries[0].Metadata)
	}
	if _, ok := entries[0].Metadata["error"]; ok {
		t.Error("the logged error field should not leak into stored metadata")
	}
	if logs.FilterMessage("case failed").Len() != 1 {
		t.Errorf("expected one 'case failed' log line, got %d", logs.Len())
	}
}
