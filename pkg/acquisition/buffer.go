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

package acquisition

// buffer is the raw word store of one run with a write cursor
type buffer struct {
	words []uint32
	n     int
}

func newBuffer(burst int) *buffer {
	return &buffer{words: make([]uint32, 2*burst)}
}

// Tail returns the free space after the cursor, at least burst words long.
// Capacity doubles when less than one burst is left.
func (b *buffer) Tail(burst int) []uint32 {
	if len(b.words)-b.n < burst {
		size := 2 * len(b.words)
		for size-b.n < burst {
			size *= 2
		}
		words := make([]uint32, size)
		copy(words, b.words[:b.n])
		b.words = words
	}
	return b.words[b.n:]
}

// Commit moves the cursor past n freshly written words and returns them
func (b *buffer) Commit(n int) []uint32 {
	w := b.words[b.n : b.n+n]
	b.n += n
	return w
}

func (b *buffer) Reset() {
	b.n = 0
}

func (b *buffer) Len() int {
	return b.n
}

func (b *buffer) Cap() int {
	return len(b.words)
}

func (b *buffer) Words() []uint32 {
	return b.words[:b.n]
}
