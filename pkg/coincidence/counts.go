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

// Singles holds raw event counts per channel id
type Singles [NumChannels]uint64

// Coincidences holds pair counts indexed by PairIndex
type Coincidences [NumPairs]uint64

// Pair returns the count of the unordered pair (a, b), zero for invalid pairs
func (c Coincidences) Pair(a, b uint8) uint64 {
	i := PairIndex(a, b)
	if i == InvalidPair {
		return 0
	}
	return c[i]
}

func (s Singles) Total() (total uint64) {
	for _, v := range s {
		total += v
	}
	return
}

func (c Coincidences) Total() (total uint64) {
	for _, v := range c {
		total += v
	}
	return
}

// Add accumulates other into s, e.g. when chaining runs
func (s *Singles) Add(other Singles) {
	for i := range s {
		s[i] += other[i]
	}
}

func (c *Coincidences) Add(other Coincidences) {
	for i := range c {
		c[i] += other[i]
	}
}
