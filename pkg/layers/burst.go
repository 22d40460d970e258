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
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// BurstLayerNum identifies the layer
	BurstLayerNum = 2002
	// BurstSync is a magic number that appears in the beginning of each burst frame
	BurstSync = 0x54325431
	// BurstHeaderSize is sync, word count and timestamp
	BurstHeaderSize = 16
	// MaxBurstWords bounds a single frame, a FIFO read never returns more
	MaxBurstWords = 1 << 20
)

// BurstHeader ... 16 bytes
type BurstHeader struct {
	Sync   uint32
	Length uint32 // payload size in 32-bit words
	// milliseconds since epoch when the burst was read
	Timestamp uint64
}

// Serialize BurstHeader
func (h *BurstHeader) Serialize(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Sync)
	binary.LittleEndian.PutUint32(buf[4:8], h.Length)
	binary.LittleEndian.PutUint64(buf[8:16], h.Timestamp)
}

func (h *BurstHeader) Deserialize(buf []byte) {
	h.Sync = binary.LittleEndian.Uint32(buf[0:4])
	h.Length = binary.LittleEndian.Uint32(buf[4:8])
	h.Timestamp = binary.LittleEndian.Uint64(buf[8:16])
}

// BurstLayer is one FIFO read of raw T2 words as stored in a capture file
type BurstLayer struct {
	layers.BaseLayer
	BurstHeader
	Words []uint32
}

var BurstLayerType = gopacket.RegisterLayerType(BurstLayerNum,
	gopacket.LayerTypeMetadata{Name: "BurstLayerType", Decoder: gopacket.DecodeFunc(decodeBurstLayer)})

// LayerType returns the type of the burst layer in the layer catalog
func (bl *BurstLayer) LayerType() gopacket.LayerType {
	return BurstLayerType
}

func (bl *BurstLayer) CanDecode() gopacket.LayerClass {
	return BurstLayerType
}

func (bl *BurstLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

// SerializeTo serializes the burst into bytes and writes the bytes to the SerializeBuffer
func (bl *BurstLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	if opts.FixLengths {
		bl.Sync = BurstSync
		bl.Length = uint32(len(bl.Words))
	}
	if int(bl.Length) != len(bl.Words) {
		return ErrBadCapture{What: fmt.Sprintf("header length %d, %d words", bl.Length, len(bl.Words))}
	}
	headerBytes, err := b.AppendBytes(BurstHeaderSize)
	if err != nil {
		return err
	}
	bl.BurstHeader.Serialize(headerBytes)

	dataBytes, err := b.AppendBytes(4 * len(bl.Words))
	if err != nil {
		return err
	}
	for i, w := range bl.Words {
		binary.LittleEndian.PutUint32(dataBytes[4*i:], w)
	}
	return nil
}

// DecodeFromBytes attempts to decode the byte slice as a burst frame
func (bl *BurstLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < BurstHeaderSize {
		df.SetTruncated()
		return errors.New("Burst frame too short")
	}
	bl.BurstHeader.Deserialize(data)
	if bl.Sync != BurstSync {
		return ErrBadCapture{What: fmt.Sprintf("wrong sync 0x%08x, must be 0x%08x", bl.Sync, BurstSync)}
	}
	end := BurstHeaderSize + 4*int(bl.Length)
	if len(data) < end {
		df.SetTruncated()
		return ErrBadCapture{What: fmt.Sprintf("truncated payload: %d of %d bytes", len(data)-BurstHeaderSize, 4*bl.Length)}
	}

	bl.BaseLayer = layers.BaseLayer{
		Contents: data[:BurstHeaderSize],
		Payload:  data[BurstHeaderSize:end],
	}
	bl.Words = make([]uint32, bl.Length)
	for i := range bl.Words {
		bl.Words[i] = binary.LittleEndian.Uint32(bl.Payload[4*i:])
	}
	return nil
}

func decodeBurstLayer(data []byte, p gopacket.PacketBuilder) error {
	bl := &BurstLayer{}
	err := bl.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(bl)
	return nil
}

// SerializeBurst builds a complete frame from words
func SerializeBurst(words []uint32, timestampMs uint64) ([]byte, error) {
	bl := &BurstLayer{
		BurstHeader: BurstHeader{Timestamp: timestampMs},
		Words:       words,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, bl); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BurstReader reads consecutive burst frames from a capture stream
type BurstReader struct {
	r      io.Reader
	header [BurstHeaderSize]byte
	frame  []byte
}

func NewBurstReader(r io.Reader) *BurstReader {
	return &BurstReader{r: r}
}

// Next returns the next burst or io.EOF at a clean end of stream
func (br *BurstReader) Next() (*BurstLayer, error) {
	if _, err := io.ReadFull(br.r, br.header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrBadCapture{What: "truncated header"}
		}
		return nil, err
	}
	var h BurstHeader
	h.Deserialize(br.header[:])
	if h.Sync != BurstSync {
		return nil, ErrBadCapture{What: fmt.Sprintf("wrong sync 0x%08x, must be 0x%08x", h.Sync, BurstSync)}
	}
	if h.Length > MaxBurstWords {
		return nil, ErrBadCapture{What: fmt.Sprintf("burst of %d words exceeds %d", h.Length, MaxBurstWords)}
	}

	size := BurstHeaderSize + 4*int(h.Length)
	if cap(br.frame) < size {
		br.frame = make([]byte, size)
	}
	br.frame = br.frame[:size]
	copy(br.frame, br.header[:])
	if _, err := io.ReadFull(br.r, br.frame[BurstHeaderSize:]); err != nil {
		return nil, ErrBadCapture{What: fmt.Sprintf("truncated payload: %v", err)}
	}

	packet := gopacket.NewPacket(br.frame, BurstLayerType, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, errLayer.Error()
	}
	layer := packet.Layer(BurstLayerType)
	if layer == nil {
		return nil, ErrBadCapture{What: "no burst layer in frame"}
	}
	return layer.(*BurstLayer), nil
}

// DecodeCapture reads every burst of a capture stream
func DecodeCapture(r io.Reader) ([]*BurstLayer, error) {
	br := NewBurstReader(r)
	var bursts []*BurstLayer
	for {
		bl, err := br.Next()
		if err == io.EOF {
			return bursts, nil
		}
		if err != nil {
			return bursts, err
		}
		bursts = append(bursts, bl)
	}
}
