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
	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

// ComputeAllPairs counts singles and two-way coincidences over events sorted
// ascending by timestamp. Two events on different channels coincide when
// their timestamps differ by strictly less than window.
func ComputeAllPairs(events []t2.Event, window uint64) (Singles, Coincidences) {
	var singles Singles
	var coincidences Coincidences
	for i, ev := range events {
		if ev.Channel < NumChannels {
			singles[ev.Channel]++
		}
		for j := i + 1; j < len(events); j++ {
			// sorted input: nothing after the first gap >= window can be closer
			if events[j].Timestamp-ev.Timestamp >= window {
				break
			}
			if events[j].Channel == ev.Channel {
				continue
			}
			if p := PairIndex(ev.Channel, events[j].Channel); p != InvalidPair {
				coincidences[p]++
			}
		}
	}
	return singles, coincidences
}
