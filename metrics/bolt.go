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

package metrics

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dogmatiq/linger"
	"go.etcd.io/bbolt"
	"go.uber.org/multierr"
)

var (
	runsBucket    = []byte("runs")
	tokensBucket  = []byte("tokens")
	summaryKey    = []byte("summary")
	defaultBoltDB = "bpmn-metrics.db"
)

// BoltSink stores the records and summary of a run in a bbolt database.
//
// Each run lives in its own bucket under "runs", keyed by run name. Records
// are stored as JSON in a nested "tokens" bucket keyed by big-endian case
// id, so they load back in case order.
type BoltSink struct {
	db    *bbolt.DB
	run   []byte
	owned bool
}

// OpenBoltSink opens (creating if needed) the database at path and returns
// a sink writing to run. If ctx has a deadline it bounds how long Open waits
// for the file lock.
func OpenBoltSink(ctx context.Context, path, run string) (*BoltSink, error) {
	if path == "" {
		path = defaultBoltDB
	}

	opts := &bbolt.Options{Timeout: time.Second}
	if timeout, ok := linger.FromContextDeadline(ctx); ok && timeout > 0 {
		opts.Timeout = timeout
	}

	db, err := bbolt.Open(path, 0600, opts)
	if err != nil {
		return nil, fmt.Errorf("metrics: open %s: %w", path, err)
	}

	s, err := NewBoltSink(db, run)
	if err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	s.owned = true
	return s, nil
}

// NewBoltSink returns a sink writing run into an already open database. The
// caller keeps ownership of db.
func NewBoltSink(db *bbolt.DB, run string) (*BoltSink, error) {
	if run == "" {
		return nil, fmt.Errorf("metrics: run name cannot be empty")
	}
	return &BoltSink{db: db, run: []byte(run)}, nil
}

// RecordToken stores rec, replacing any earlier record of the same case.
// Concurrent calls are coalesced into shared transactions.
func (s *BoltSink) RecordToken(ctx context.Context, rec TokenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Batch(func(tx *bbolt.Tx) error {
		tokens, err := s.tokensBucket(tx)
		if err != nil {
			return err
		}
		return tokens.Put(marshalCaseID(rec.CaseID), data)
	})
}

// RecordTokens stores recs in a single transaction.
func (s *BoltSink) RecordTokens(ctx context.Context, recs []TokenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}
	encoded := make([][]byte, len(recs))
	for i, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("metrics: case %d: %w", rec.CaseID, err)
		}
		encoded[i] = data
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		tokens, err := s.tokensBucket(tx)
		if err != nil {
			return err
		}
		for i, rec := range recs {
			if err := tokens.Put(marshalCaseID(rec.CaseID), encoded[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordSummary stores the run summary.
func (s *BoltSink) RecordSummary(ctx context.Context, sum Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := s.runBucket(tx)
		if err != nil {
			return err
		}
		return b.Put(summaryKey, data)
	})
}

// Records loads the stored records of the run in case order.
func (s *BoltSink) Records() ([]TokenRecord, error) {
	var records []TokenRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		tokens := s.existingRun(tx, tokensBucket)
		if tokens == nil {
			return nil
		}
		return tokens.ForEach(func(k, v []byte) error {
			var rec TokenRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("metrics: case %d: %w", unmarshalCaseID(k), err)
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// Summary loads the stored summary of the run.
func (s *BoltSink) Summary() (Summary, bool, error) {
	var (
		sum   Summary
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := s.existingRun(tx, nil)
		if b == nil {
			return nil
		}
		v := b.Get(summaryKey)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &sum)
	})
	return sum, found, err
}

// Runs lists the stored run names.
func (s *BoltSink) Runs() ([]string, error) {
	var runs []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(runsBucket)
		if root == nil {
			return nil
		}
		return root.ForEach(func(k, _ []byte) error {
			runs = append(runs, string(k))
			return nil
		})
	})
	return runs, err
}

// Close closes the database if the sink opened it.
func (s *BoltSink) Close() error {
	if !s.owned {
		return nil
	}
	path := s.db.Path()
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("metrics: close %s: %w", path, err)
	}
	return nil
}

func (s *BoltSink) runBucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	root, err := tx.CreateBucketIfNotExists(runsBucket)
	if err != nil {
		return nil, err
	}
	return root.CreateBucketIfNotExists(s.run)
}

func (s *BoltSink) tokensBucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b, err := s.runBucket(tx)
	if err != nil {
		return nil, err
	}
	return b.CreateBucketIfNotExists(tokensBucket)
}

// existingRun returns the run bucket, or its child bucket named child,
// without creating anything.
func (s *BoltSink) existingRun(tx *bbolt.Tx, child []byte) *bbolt.Bucket {
	root := tx.Bucket(runsBucket)
	if root == nil {
		return nil
	}
	b := root.Bucket(s.run)
	if b == nil || child == nil {
		return b
	}
	return b.Bucket(child)
}

func marshalCaseID(id int) []byte {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(id))
	return data
}

func unmarshalCaseID(data []byte) int {
	if len(data) != 8 {
		return -1
	}
	return int(binary.BigEndian.Uint64(data))
}
