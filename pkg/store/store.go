/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package store

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"github.com/HWQuantum/coincidence-counter/pkg/log"
)

const (
	RunsBucket   = "runs"
	RunIDsBucket = "run_ids"
	EpochsBucket = "epochs"

	// bbolt holds an exclusive file lock, e.g. while `serve` runs
	openTimeout = time.Second
)

// Store keeps run results and per device rollover epochs in a bbolt file
type Store struct {
	DB *bbolt.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{RunsBucket, RunIDsBucket, EpochsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func uint64ToByte(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func bucket(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(name))
	if b == nil {
		return nil, ErrBucketNotFound{Name: name}
	}
	return b, nil
}

// SaveRun assigns the run a sequence number and, if it has none, an ID
func (s *Store) SaveRun(run *Run) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		runs, err := bucket(tx, RunsBucket)
		if err != nil {
			return err
		}
		ids, err := bucket(tx, RunIDsBucket)
		if err != nil {
			return err
		}
		seq, err := runs.NextSequence()
		if err != nil {
			return err
		}
		run.Seq = seq
		if run.ID == "" {
			run.ID = uuid.NewString()
		}
		data, err := yaml.Marshal(run)
		if err != nil {
			return err
		}
		log.Debug("Saving run %s as %d", run.ID, seq)
		if err := runs.Put(uint64ToByte(seq), data); err != nil {
			return err
		}
		return ids.Put([]byte(run.ID), uint64ToByte(seq))
	})
}

func (s *Store) GetRun(id string) (*Run, error) {
	run := &Run{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		runs, err := bucket(tx, RunsBucket)
		if err != nil {
			return err
		}
		ids, err := bucket(tx, RunIDsBucket)
		if err != nil {
			return err
		}
		key := ids.Get([]byte(id))
		if key == nil {
			return ErrRunNotFound{ID: id}
		}
		data := runs.Get(key)
		if data == nil {
			return ErrRunNotFound{ID: id}
		}
		return yaml.Unmarshal(data, run)
	}); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	var result []*Run
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		runs, err := bucket(tx, RunsBucket)
		if err != nil {
			return err
		}
		c := runs.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(result) >= limit {
				break
			}
			run := &Run{}
			if err := yaml.Unmarshal(v, run); err != nil {
				return err
			}
			result = append(result, run)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// Epoch returns the last stored epoch of the device, 0 when there is none
func (s *Store) Epoch(deviceName string) (uint64, error) {
	var epoch uint64
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, EpochsBucket)
		if err != nil {
			return err
		}
		if v := b.Get([]byte(deviceName)); len(v) == 8 {
			epoch = binary.BigEndian.Uint64(v)
		}
		return nil
	})
	return epoch, err
}

func (s *Store) SetEpoch(deviceName string, epoch uint64) error {
	log.Debug("Setting epoch of %s: %d", deviceName, epoch)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, EpochsBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(deviceName), uint64ToByte(epoch))
	})
}
