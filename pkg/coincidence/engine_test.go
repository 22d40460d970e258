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
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

func TestComputeAllPairsExample(t *testing.T) {
	events := []t2.Event{{Channel: 0, Timestamp: 100}, {Channel: 1, Timestamp: 150}, {Channel: 2, Timestamp: 5000}}
	singles, coincidences := ComputeAllPairs(events, 100)

	assert.Equal(t, Singles{1, 1, 1}, singles)
	want := Coincidences{}
	want[PairIndex(0, 1)] = 1
	assert.Equal(t, want, coincidences)
}

func TestComputeAllPairsStrictWindow(t *testing.T) {
	events := []t2.Event{{Channel: 1, Timestamp: 0}, {Channel: 2, Timestamp: 10}, {Channel: 3, Timestamp: 11}}
	_, coincidences := ComputeAllPairs(events, 10)
	assert.Equal(t, uint64(0), coincidences.Pair(1, 2))
	assert.Equal(t, uint64(0), coincidences.Pair(1, 3))
	assert.Equal(t, uint64(1), coincidences.Pair(2, 3))
}

func TestComputeAllPairsSameChannelIgnored(t *testing.T) {
	events := []t2.Event{{Channel: 4, Timestamp: 0}, {Channel: 4, Timestamp: 1}, {Channel: 4, Timestamp: 2}}
	singles, coincidences := ComputeAllPairs(events, 100)
	assert.Equal(t, uint64(3), singles[4])
	assert.Equal(t, uint64(0), coincidences.Total())
}

func TestZeroWindow(t *testing.T) {
	events := randomSortedEvents(rand.New(rand.NewSource(3)), 2000)

	singles, coincidences := ComputeAllPairs(events, 0)
	assert.Equal(t, Coincidences{}, coincidences)
	assert.NotZero(t, singles.Total())

	engine := NewEngine(AllPairs, 0, t2.SyncChannel)
	engine.AddAll(events)
	assert.Equal(t, Coincidences{}, engine.Coincidences())
	assert.Equal(t, 0, engine.Pending())
}

func TestOutOfRangeChannelsIgnored(t *testing.T) {
	events := []t2.Event{{Channel: 0, Timestamp: 0}, {Channel: 9, Timestamp: 1}, {Channel: 8, Timestamp: 2}, {Channel: 1, Timestamp: 3}}
	singles, coincidences := ComputeAllPairs(events, 100)
	assert.Equal(t, uint64(2), singles.Total())
	assert.Equal(t, uint64(1), coincidences.Total())
}

func TestAllPairsEngineMatchesBatch(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for round := 0; round < 20; round++ {
		events := randomSortedEvents(r, 1+r.Intn(3000))
		window := uint64(r.Intn(200))

		singles, coincidences := ComputeAllPairs(events, window)

		engine := NewEngine(AllPairs, window, t2.SyncChannel)
		// feed in uneven bursts, the way the acquisition loop does
		for rest := events; len(rest) > 0; {
			n := 1 + r.Intn(64)
			if n > len(rest) {
				n = len(rest)
			}
			engine.AddAll(rest[:n])
			rest = rest[n:]
		}
		if diff := cmp.Diff(singles, engine.Singles()); diff != "" {
			t.Fatalf("singles mismatch (-batch +engine):\n%s", diff)
		}
		if diff := cmp.Diff(coincidences, engine.Coincidences()); diff != "" {
			t.Fatalf("coincidences mismatch (-batch +engine):\n%s", diff)
		}
	}
}

func TestSyncRelativeMatchesBatchOnSyncPairs(t *testing.T) {
	const window = 100
	const period = 4 * window
	r := rand.New(rand.NewSource(5))

	var events []t2.Event
	for k := 0; k < 500; k++ {
		base := uint64(k) * period
		events = append(events, t2.Event{Channel: t2.SyncChannel, Timestamp: base})
		var offsets []int
		for n := r.Intn(5); n > 0; n-- {
			// never exactly on the window edge: batch is strict, streaming inclusive
			offsets = append(offsets, 1+r.Intn(window-1))
		}
		sort.Ints(offsets)
		for _, d := range offsets {
			events = append(events, t2.Event{Channel: uint8(1 + r.Intn(7)), Timestamp: base + uint64(d)})
		}
	}

	batchSingles, batchCoincidences := ComputeAllPairs(events, window)

	engine := NewEngine(SyncRelative, window, t2.SyncChannel)
	engine.AddAll(events)
	singles, coincidences := engine.Singles(), engine.Coincidences()

	assert.Equal(t, uint64(0), singles[t2.SyncChannel])
	for ch := uint8(1); ch < NumChannels; ch++ {
		assert.Equal(t, batchSingles[ch], singles[ch], "singles of channel %d", ch)
		assert.Equal(t, batchCoincidences.Pair(0, ch), coincidences.Pair(0, ch), "pair (0,%d)", ch)
		for other := ch + 1; other < NumChannels; other++ {
			assert.Zero(t, coincidences.Pair(ch, other))
		}
	}
	assert.NotZero(t, coincidences.Total())
}

func TestSyncRelativeInclusiveWindow(t *testing.T) {
	engine := NewEngine(SyncRelative, 50, t2.SyncChannel)
	engine.AddAll([]t2.Event{{Channel: 0, Timestamp: 1000}, {Channel: 3, Timestamp: 1050}, {Channel: 4, Timestamp: 1051}})
	assert.Equal(t, uint64(1), engine.Coincidences().Pair(0, 3))
	assert.Equal(t, uint64(0), engine.Coincidences().Pair(0, 4))
	assert.Equal(t, 0, engine.Pending())
}

func TestSyncRelativeEvictsStalePrefix(t *testing.T) {
	engine := NewEngine(SyncRelative, 50, t2.SyncChannel)
	engine.AddAll([]t2.Event{{Channel: 0, Timestamp: 0}, {Channel: 0, Timestamp: 10}, {Channel: 0, Timestamp: 200}})
	require.Equal(t, 3, engine.Pending())

	engine.Add(t2.Event{Channel: 1, Timestamp: 205})
	assert.Equal(t, 1, engine.Pending())
	assert.Equal(t, uint64(1), engine.Coincidences().Pair(0, 1))

	// several syncs in the window each pair with the event
	engine.AddAll([]t2.Event{{Channel: 0, Timestamp: 210}, {Channel: 2, Timestamp: 220}})
	assert.Equal(t, uint64(2), engine.Coincidences().Pair(0, 2))
	assert.Equal(t, Singles{0, 1, 1}, engine.Singles())
}

func TestSyncRelativeOutOfOrderSyncEvicted(t *testing.T) {
	// syncs must arrive in ascending order: an older sync queued behind a
	// newer one goes stale first and takes the newer one with it
	engine := NewEngine(SyncRelative, 30, t2.SyncChannel)
	engine.AddAll([]t2.Event{{Channel: 0, Timestamp: 100}, {Channel: 0, Timestamp: 50}})

	engine.Add(t2.Event{Channel: 1, Timestamp: 120})
	assert.Equal(t, uint64(1), engine.Coincidences().Pair(0, 1))
	assert.Equal(t, 0, engine.Pending())

	engine.Add(t2.Event{Channel: 2, Timestamp: 125})
	assert.Equal(t, uint64(0), engine.Coincidences().Pair(0, 2))
}

func TestSyncRelativeFutureSyncWraps(t *testing.T) {
	engine := NewEngine(SyncRelative, 30, t2.SyncChannel)
	engine.Add(t2.Event{Channel: 0, Timestamp: 500})
	engine.Add(t2.Event{Channel: 1, Timestamp: 490})
	assert.Equal(t, uint64(0), engine.Coincidences().Total())
	assert.Equal(t, 0, engine.Pending())
}

func TestSyncRelativeCustomSyncChannel(t *testing.T) {
	engine := NewEngine(SyncRelative, 10, 3)
	engine.AddAll([]t2.Event{{Channel: 3, Timestamp: 100}, {Channel: 0, Timestamp: 101}, {Channel: 5, Timestamp: 102}})
	assert.Equal(t, uint64(1), engine.Coincidences().Pair(3, 0))
	assert.Equal(t, uint64(1), engine.Coincidences().Pair(3, 5))
	assert.Equal(t, uint64(0), engine.Singles()[3])
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{AllPairs, SyncRelative} {
		got, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePolicy("triples")
	assert.Error(t, err)
}

func randomSortedEvents(r *rand.Rand, n int) []t2.Event {
	events := make([]t2.Event, n)
	var ts uint64
	for i := range events {
		ts += uint64(r.Intn(50))
		events[i] = t2.Event{Channel: uint8(r.Intn(NumChannels + 2)), Timestamp: ts}
	}
	return events
}
