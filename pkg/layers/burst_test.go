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

package layers

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeBurstLayout(t *testing.T) {
	data, err := SerializeBurst([]uint32{0x80000001, 0x02000005}, 1234)
	require.NoError(t, err)
	require.Len(t, data, BurstHeaderSize+8)

	assert.Equal(t, uint32(BurstSync), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint64(1234), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint32(0x80000001), binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, uint32(0x02000005), binary.LittleEndian.Uint32(data[20:24]))
}

func TestDecodeViaPacket(t *testing.T) {
	data, err := SerializeBurst([]uint32{7, 8, 9}, 55)
	require.NoError(t, err)

	packet := gopacket.NewPacket(data, BurstLayerType, gopacket.Default)
	require.Nil(t, packet.ErrorLayer())
	bl, ok := packet.Layer(BurstLayerType).(*BurstLayer)
	require.True(t, ok)
	assert.Equal(t, []uint32{7, 8, 9}, bl.Words)
	assert.Equal(t, uint64(55), bl.Timestamp)
	assert.Len(t, bl.LayerContents(), BurstHeaderSize)
}

func TestDecodeCapture(t *testing.T) {
	var capture bytes.Buffer
	bursts := [][]uint32{{1, 2, 3}, {}, {0xFE000001, 0x80000000}}
	for i, words := range bursts {
		data, err := SerializeBurst(words, uint64(i))
		require.NoError(t, err)
		capture.Write(data)
	}

	got, err := DecodeCapture(&capture)
	require.NoError(t, err)
	require.Len(t, got, len(bursts))
	for i, bl := range got {
		assert.Equal(t, uint32(len(bursts[i])), bl.Length)
		assert.Equal(t, len(bursts[i]), len(bl.Words))
		if len(bursts[i]) > 0 {
			assert.Equal(t, bursts[i], bl.Words)
		}
		assert.Equal(t, uint64(i), bl.Timestamp)
	}
}

func TestDecodeCaptureErrors(t *testing.T) {
	good, err := SerializeBurst([]uint32{1, 2}, 0)
	require.NoError(t, err)

	badSync := append([]byte(nil), good...)
	badSync[0] ^= 0xFF

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated header", good[:10]},
		{"truncated payload", good[:len(good)-2]},
		{"bad sync", badSync},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCapture(bytes.NewReader(tt.data))
			var bad ErrBadCapture
			assert.True(t, errors.As(err, &bad), "got %v", err)
		})
	}
}

func TestSerializeRejectsLengthMismatch(t *testing.T) {
	bl := &BurstLayer{BurstHeader: BurstHeader{Sync: BurstSync, Length: 5}, Words: []uint32{1}}
	err := gopacket.SerializeLayers(gopacket.NewSerializeBuffer(), gopacket.SerializeOptions{}, bl)
	assert.Error(t, err)
}
