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

const (
	// NumChannels is the number of event channels: sync plus seven inputs
	NumChannels = 8
	// NumPairs is the number of unordered channel pairs
	NumPairs = NumChannels * (NumChannels - 1) / 2
	// InvalidPair is returned by PairIndex for equal or out of range channels
	InvalidPair = NumPairs
	// InvalidChannel is returned by IndexToPair for out of range indices
	InvalidChannel uint8 = 255
)

// PairIndex maps an unordered channel pair to its slot in Coincidences.
// Pairs are numbered lexicographically: (0,1)=0, (0,2)=1, ... (0,7)=6, (1,2)=7, ... (6,7)=27.
func PairIndex(a, b uint8) int {
	if a == b || a >= NumChannels || b >= NumChannels {
		return InvalidPair
	}
	if a > b {
		a, b = b, a
	}
	x, y := int(a), int(b)
	// pairs (i, *) with i < x come first: sum over i<x of (N-1-i)
	return x*(2*NumChannels-x-1)/2 + (y - x - 1)
}

// IndexToPair is the inverse of PairIndex. The smaller channel comes first.
func IndexToPair(index int) (uint8, uint8) {
	if index < 0 || index >= NumPairs {
		return InvalidChannel, InvalidChannel
	}
	a := 0
	for rowLen := NumChannels - 1; index >= rowLen; rowLen-- {
		index -= rowLen
		a++
	}
	return uint8(a), uint8(a + 1 + index)
}
