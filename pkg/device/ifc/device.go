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

package ifc

import (
	"github.com/HWQuantum/coincidence-counter/pkg/device"
)

// Device is a time tagger yielding raw T2 words from its FIFO
type Device interface {
	// StartMeasurement starts an acquisition lasting durationMs
	StartMeasurement(durationMs int32) error
	// ReadFIFO copies up to maxRecords words into buffer and returns how many it wrote
	ReadFIFO(buffer []uint32, maxRecords int32) (int32, error)
	GetRunStatus() (device.RunStatus, error)
	GetFlags() (device.Flags, error)
}

// Stopper is implemented by devices that can end a measurement early
type Stopper interface {
	StopMeasurement() error
}

// Closer releases the device handle
type Closer interface {
	Close() error
}

// Describer reports a human readable device identity, e.g. a serial number
type Describer interface {
	GetName() string
}
