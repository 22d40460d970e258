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

// Package t2 decodes HydraHarp T2 mode FIFO records and turns them into
// globally timestamped events.
//
// A T2 record is one little-endian 32-bit word:
//
//	bit  31     special flag
//	bits 25-30  channel number, or marker selector when special is set
//	bits 0-24   time tag (low 24 bits carry the payload)
//
// Special records with all selector bits set are overflow markers whose
// payload is the number of coalesced time tag rollovers. Special records with
// a zero selector are sync events.
package t2

const (
	// OverflowPeriod is the number of time tag units per rollover
	OverflowPeriod uint64 = 33554432
	// SpecialBit marks sync, overflow and marker records
	SpecialBit uint32 = 1 << 31
	// ChannelShift is the position of the channel / marker selector field
	ChannelShift = 25
	// ChannelMask is the 6 bit channel / marker selector field after shift
	ChannelMask uint32 = 0x3F
	// MarkerMask selects bits 25-30 in place
	MarkerMask uint32 = ChannelMask << ChannelShift
	// TimeMask selects the usable time tag / overflow count payload
	TimeMask uint32 = 0x00FFFFFF
)

type RecordKind uint8

const (
	KindChannel RecordKind = iota
	KindSync
	KindOverflow
	KindUnhandled
)

func (k RecordKind) String() string {
	switch k {
	case KindChannel:
		return "channel"
	case KindSync:
		return "sync"
	case KindOverflow:
		return "overflow"
	case KindUnhandled:
		return "unhandled"
	}
	return "invalid"
}

// Record is a decoded T2 word.
// Channel is set only for KindChannel. Value is the local time tag for
// KindChannel and KindSync and the rollover count for KindOverflow.
type Record struct {
	Kind    RecordKind
	Channel uint8
	Value   uint32
}

// Decode converts one raw FIFO word into a Record. It never fails:
// marker types that are not interpreted come back as KindUnhandled.
func Decode(word uint32) Record {
	if word&SpecialBit == 0 {
		return Record{
			Kind:    KindChannel,
			Channel: uint8((word >> ChannelShift) & ChannelMask),
			Value:   word & TimeMask,
		}
	}
	switch word & MarkerMask {
	case MarkerMask:
		return Record{Kind: KindOverflow, Value: word & TimeMask}
	case 0:
		return Record{Kind: KindSync, Value: word & TimeMask}
	default:
		return Record{Kind: KindUnhandled}
	}
}

// EncodeChannel builds the word of an input channel event
func EncodeChannel(channel uint8, localTime uint32) uint32 {
	return (uint32(channel)&ChannelMask)<<ChannelShift | localTime&TimeMask
}

// EncodeSync builds the word of a sync event
func EncodeSync(localTime uint32) uint32 {
	return SpecialBit | localTime&TimeMask
}

// EncodeOverflow builds an overflow marker carrying count rollovers
func EncodeOverflow(count uint32) uint32 {
	return SpecialBit | MarkerMask | count&TimeMask
}

// EncodeMarker builds a special record with an arbitrary selector.
// Selectors 0 and 0x3F produce sync and overflow records.
func EncodeMarker(selector uint8, payload uint32) uint32 {
	return SpecialBit | (uint32(selector)&ChannelMask)<<ChannelShift | payload&TimeMask
}
