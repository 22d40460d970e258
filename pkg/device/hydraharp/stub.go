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

//go:build !hydraharp || !cgo

package hydraharp

import (
	"github.com/HWQuantum/coincidence-counter/pkg/device"
)

type Device struct{}

func Open(index int32, setup Setup) (*Device, error) {
	return nil, ErrNotSupported
}

func LibraryVersion() (string, error) {
	return "", ErrNotSupported
}

func (d *Device) GetName() string {
	return Name
}

func (d *Device) StartMeasurement(durationMs int32) error {
	return ErrNotSupported
}

func (d *Device) StopMeasurement() error {
	return ErrNotSupported
}

func (d *Device) GetRunStatus() (device.RunStatus, error) {
	return device.Ended, ErrNotSupported
}

func (d *Device) GetFlags() (device.Flags, error) {
	return 0, ErrNotSupported
}

func (d *Device) ReadFIFO(buffer []uint32, maxRecords int32) (int32, error) {
	return 0, ErrNotSupported
}

func (d *Device) Close() error {
	return nil
}
