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

// Package hydraharp drives a PicoQuant HydraHarp 400 in T2 mode through HHLib.
//
// The driver needs cgo and is only compiled with the hydraharp build tag:
//
//	CGO_CFLAGS=-I/opt/hhlib/include CGO_LDFLAGS=-L/opt/hhlib/lib go build -tags hydraharp
//
// Without the tag Open returns ErrNotSupported.
package hydraharp

import (
	"errors"
	"time"
)

const Name = "hydraharp"

var ErrNotSupported = errors.New("hydraharp: built without HHLib support, rebuild with -tags hydraharp")

// Setup is applied after the device is initialised and calibrated
type Setup struct {
	SyncDivider       int32
	SyncCFDLevel      int32 // mV
	SyncCFDZeroCross  int32 // mV
	SyncOffsetPs      int32
	InputCFDLevel     int32
	InputCFDZeroCross int32
	// per input channel; missing entries are 0
	InputOffsetsPs []int32
	// wait for the rate meters to settle before the first measurement
	SettleTime time.Duration
}

func DefaultSetup() Setup {
	return Setup{
		SyncDivider:       1,
		SyncCFDLevel:      50,
		SyncCFDZeroCross:  10,
		SyncOffsetPs:      -5000,
		InputCFDLevel:     50,
		InputCFDZeroCross: 10,
		SettleTime:        200 * time.Millisecond,
	}
}

func (s Setup) inputOffset(channel int) int32 {
	if channel < len(s.InputOffsetsPs) {
		return s.InputOffsetsPs[channel]
	}
	return 0
}
