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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		word uint32
		want Record
	}{
		{"channel 0", 0x0000000A, Record{Kind: KindChannel, Channel: 0, Value: 10}},
		{"channel 5", 5<<25 | 0x123456, Record{Kind: KindChannel, Channel: 5, Value: 0x123456}},
		{"channel 63", 0x7E000000 | 1, Record{Kind: KindChannel, Channel: 63, Value: 1}},
		{"bit 24 is not payload", 1<<24 | 7, Record{Kind: KindChannel, Channel: 0, Value: 7}},
		{"sync", 0x80000000 | 42, Record{Kind: KindSync, Value: 42}},
		{"overflow", 0xFE000000 | 3, Record{Kind: KindOverflow, Value: 3}},
		{"overflow max count", 0xFFFFFFFF, Record{Kind: KindOverflow, Value: 0x00FFFFFF}},
		{"marker 1", 0x80000000 | 1<<25 | 99, Record{Kind: KindUnhandled}},
		{"marker 0x3E", 0x80000000 | 0x3E<<25, Record{Kind: KindUnhandled}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.word))
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	assert.Equal(t, Record{Kind: KindChannel, Channel: 6, Value: 1000}, Decode(EncodeChannel(6, 1000)))
	assert.Equal(t, Record{Kind: KindSync, Value: 77}, Decode(EncodeSync(77)))
	assert.Equal(t, Record{Kind: KindOverflow, Value: 12}, Decode(EncodeOverflow(12)))
	assert.Equal(t, Record{Kind: KindSync, Value: 5}, Decode(EncodeMarker(0, 5)))
	assert.Equal(t, Record{Kind: KindOverflow, Value: 5}, Decode(EncodeMarker(0x3F, 5)))
	assert.Equal(t, KindUnhandled, Decode(EncodeMarker(4, 5)).Kind)
}

func TestRecordKindString(t *testing.T) {
	assert.Equal(t, "channel", KindChannel.String())
	assert.Equal(t, "sync", KindSync.String())
	assert.Equal(t, "overflow", KindOverflow.String())
	assert.Equal(t, "unhandled", KindUnhandled.String())
	assert.Equal(t, "invalid", RecordKind(9).String())
}
