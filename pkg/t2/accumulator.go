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

package t2

// SyncChannel is the event channel reserved for sync records.
// Input channel n is reported as event channel n+1.
const SyncChannel uint8 = 0

// Event is a record with a global timestamp in time tag units
type Event struct {
	Channel   uint8
	Timestamp uint64
}

// Stats counts what an Accumulator has seen so far
type Stats struct {
	Records   uint64
	Events    uint64
	Overflows uint64 // overflow marker records
	Rollovers uint64 // sum of their counts
	Unhandled uint64
}

// Accumulator keeps the rollover epoch of a measurement and converts local
// time tags into global timestamps. An Accumulator is not safe for
// concurrent use. To restart, create a new one with an explicit epoch.
type Accumulator struct {
	overflow uint64
	stats    Stats
}

// NewAccumulator starts at the given epoch, normally 0 or the final
// Epoch() of a previous run when acquisitions are chained.
func NewAccumulator(epoch uint64) *Accumulator {
	return &Accumulator{overflow: epoch}
}

// Epoch returns the accumulated overflow in time tag units
func (a *Accumulator) Epoch() uint64 {
	return a.overflow
}

func (a *Accumulator) Stats() Stats {
	return a.stats
}

// Advance decodes words and returns their events in input order
func (a *Accumulator) Advance(words []uint32) []Event {
	return a.AppendEvents(make([]Event, 0, len(words)), words)
}

// AppendEvents decodes words and appends their events to dst.
// Passing dst[:0] of a reused slice keeps the acquisition loop allocation free.
func (a *Accumulator) AppendEvents(dst []Event, words []uint32) []Event {
	for _, w := range words {
		r := Decode(w)
		switch r.Kind {
		case KindChannel:
			dst = append(dst, Event{Channel: r.Channel + 1, Timestamp: uint64(r.Value) + a.overflow})
			a.stats.Events++
		case KindSync:
			dst = append(dst, Event{Channel: SyncChannel, Timestamp: uint64(r.Value) + a.overflow})
			a.stats.Events++
		case KindOverflow:
			// the device coalesces rollovers at high rates, never count a marker as one
			a.overflow += uint64(r.Value) * OverflowPeriod
			a.stats.Overflows++
			a.stats.Rollovers += uint64(r.Value)
		case KindUnhandled:
			a.stats.Unhandled++
		}
	}
	a.stats.Records += uint64(len(words))
	return dst
}

// DecodeAndAccumulate runs words through acc and returns the events
func DecodeAndAccumulate(acc *Accumulator, words []uint32) []Event {
	return acc.Advance(words)
}
