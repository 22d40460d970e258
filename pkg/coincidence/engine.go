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

package coincidence

import (
	"fmt"

	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

type Policy int

const (
	// AllPairs counts every pair of distinct channels closer than the window
	AllPairs Policy = iota
	// SyncRelative counts each event against the pending sync timestamps only
	SyncRelative
)

const (
	AllPairsName     = "all-pairs"
	SyncRelativeName = "sync-relative"
)

func (p Policy) String() string {
	switch p {
	case AllPairs:
		return AllPairsName
	case SyncRelative:
		return SyncRelativeName
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case AllPairsName:
		return AllPairs, nil
	case SyncRelativeName:
		return SyncRelative, nil
	}
	return 0, fmt.Errorf("unknown coincidence policy: %q", s)
}

// Engine folds an unbounded event stream into singles and coincidences.
// Memory is bounded by the number of events inside one window.
// An Engine is not safe for concurrent use.
type Engine struct {
	policy       Policy
	window       uint64
	syncChannel  uint8
	singles      Singles
	coincidences Coincidences
	// AllPairs: recent events, oldest first
	recent []t2.Event
	// SyncRelative: pending sync timestamps, oldest first
	syncs []uint64
}

func NewEngine(policy Policy, window uint64, syncChannel uint8) *Engine {
	return &Engine{
		policy:      policy,
		window:      window,
		syncChannel: syncChannel,
	}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

func (e *Engine) Window() uint64 {
	return e.window
}

func (e *Engine) Singles() Singles {
	return e.singles
}

func (e *Engine) Coincidences() Coincidences {
	return e.coincidences
}

// Pending returns how many events or sync timestamps are held for matching
func (e *Engine) Pending() int {
	if e.policy == SyncRelative {
		return len(e.syncs)
	}
	return len(e.recent)
}

func (e *Engine) AddAll(events []t2.Event) {
	for _, ev := range events {
		e.Add(ev)
	}
}

func (e *Engine) Add(ev t2.Event) {
	if ev.Channel >= NumChannels {
		return
	}
	if e.policy == SyncRelative {
		e.addSyncRelative(ev)
		return
	}
	e.addAllPairs(ev)
}

// addAllPairs expects events sorted by timestamp
func (e *Engine) addAllPairs(ev t2.Event) {
	e.singles[ev.Channel]++

	drop := 0
	for drop < len(e.recent) && ev.Timestamp-e.recent[drop].Timestamp >= e.window {
		drop++
	}
	if drop > 0 {
		e.recent = append(e.recent[:0], e.recent[drop:]...)
	}
	for _, prev := range e.recent {
		if prev.Channel == ev.Channel {
			continue
		}
		e.coincidences[PairIndex(prev.Channel, ev.Channel)]++
	}
	if e.window > 0 {
		e.recent = append(e.recent, ev)
	}
}

// addSyncRelative assumes sync timestamps arrive in ascending order. A sync
// older than a stale one is evicted together with it.
func (e *Engine) addSyncRelative(ev t2.Event) {
	if ev.Channel == e.syncChannel {
		e.syncs = append(e.syncs, ev.Timestamp)
		return
	}
	e.singles[ev.Channel]++

	stale := -1
	pair := PairIndex(e.syncChannel, ev.Channel)
	for i, sync := range e.syncs {
		// unsigned: a sync newer than the event wraps to a huge delta
		if ev.Timestamp-sync > e.window {
			stale = i
			continue
		}
		if pair != InvalidPair {
			e.coincidences[pair]++
		}
	}
	if stale >= 0 {
		e.syncs = append(e.syncs[:0], e.syncs[stale+1:]...)
	}
}
