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

//go:build hydraharp && cgo

package hydraharp

/*
#cgo LDFLAGS: -lhh400
#include <hhdefin.h>
#include <hhlib.h>
#include <errorcodes.h>
*/
import "C"

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/HWQuantum/coincidence-counter/pkg/device"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
)

type Device struct {
	index  C.int
	serial string
	inputs int
}

func check(code C.int) error {
	return device.FromCode(int32(code))
}

func LibraryVersion() (string, error) {
	var version [8]C.char
	if err := check(C.HH_GetLibraryVersion(&version[0])); err != nil {
		return "", err
	}
	return C.GoString(&version[0]), nil
}

// Open opens the device at index, initialises it for T2 mode with the
// internal reference, calibrates it and applies setup.
func Open(index int32, setup Setup) (*Device, error) {
	var serial [8]C.char
	if err := check(C.HH_OpenDevice(C.int(index), &serial[0])); err != nil {
		return nil, fmt.Errorf("opening device %d: %w", index, err)
	}
	d := &Device{
		index:  C.int(index),
		serial: C.GoString(&serial[0]),
	}
	log.Info("Opened HydraHarp %d serial %s", index, d.serial)

	if err := d.init(setup); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) init(setup Setup) error {
	if err := check(C.HH_Initialize(d.index, C.int(device.ModeT2), C.int(device.RefInternal))); err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	if err := check(C.HH_Calibrate(d.index)); err != nil {
		return fmt.Errorf("calibrate: %w", err)
	}
	if err := check(C.HH_SetSyncDiv(d.index, C.int(setup.SyncDivider))); err != nil {
		return fmt.Errorf("sync divider: %w", err)
	}
	if err := check(C.HH_SetSyncCFD(d.index, C.int(setup.SyncCFDLevel), C.int(setup.SyncCFDZeroCross))); err != nil {
		return fmt.Errorf("sync CFD: %w", err)
	}
	if err := check(C.HH_SetSyncChannelOffset(d.index, C.int(setup.SyncOffsetPs))); err != nil {
		return fmt.Errorf("sync offset: %w", err)
	}

	var inputs C.int
	if err := check(C.HH_GetNumOfInputChannels(d.index, &inputs)); err != nil {
		return fmt.Errorf("number of inputs: %w", err)
	}
	d.inputs = int(inputs)
	for ch := 0; ch < d.inputs; ch++ {
		if err := check(C.HH_SetInputCFD(d.index, C.int(ch), C.int(setup.InputCFDLevel), C.int(setup.InputCFDZeroCross))); err != nil {
			return fmt.Errorf("input %d CFD: %w", ch, err)
		}
		if err := check(C.HH_SetInputChannelOffset(d.index, C.int(ch), C.int(setup.inputOffset(ch)))); err != nil {
			return fmt.Errorf("input %d offset: %w", ch, err)
		}
	}
	time.Sleep(setup.SettleTime)

	if rate, err := d.GetSyncRate(); err == nil {
		log.Info("Sync rate: %d/s", rate)
	}
	if w, err := d.GetWarnings(); err == nil && w != 0 {
		log.Warning("Device warnings: %v", w.List())
	}
	return nil
}

func (d *Device) GetName() string {
	return fmt.Sprintf("%s:%s", Name, d.serial)
}

func (d *Device) Inputs() int {
	return d.inputs
}

func (d *Device) StartMeasurement(durationMs int32) error {
	return check(C.HH_StartMeas(d.index, C.int(durationMs)))
}

func (d *Device) StopMeasurement() error {
	return check(C.HH_StopMeas(d.index))
}

func (d *Device) GetRunStatus() (device.RunStatus, error) {
	var status C.int
	if err := check(C.HH_CTCStatus(d.index, &status)); err != nil {
		return device.Running, err
	}
	return device.RunStatus(status), nil
}

func (d *Device) GetFlags() (device.Flags, error) {
	var flags C.int
	err := check(C.HH_GetFlags(d.index, &flags))
	return device.Flags(flags), err
}

func (d *Device) GetWarnings() (device.Warnings, error) {
	var warnings C.int
	err := check(C.HH_GetWarnings(d.index, &warnings))
	return device.Warnings(warnings), err
}

func (d *Device) GetSyncRate() (int32, error) {
	var rate C.int
	err := check(C.HH_GetSyncRate(d.index, &rate))
	return int32(rate), err
}

func (d *Device) GetCountRate(channel int32) (int32, error) {
	var rate C.int
	err := check(C.HH_GetCountRate(d.index, C.int(channel), &rate))
	return int32(rate), err
}

// GetResolution returns the current bin width in ps
func (d *Device) GetResolution() (float64, error) {
	var res C.double
	err := check(C.HH_GetResolution(d.index, &res))
	return float64(res), err
}

func (d *Device) GetElapsedMeasTime() (time.Duration, error) {
	var ms C.double
	err := check(C.HH_GetElapsedMeasTime(d.index, &ms))
	return time.Duration(float64(ms) * float64(time.Millisecond)), err
}

// ReadFIFO reads up to maxRecords words. HHLib expects maxRecords to be a
// multiple of FIFOReadAlign and at most TTReadMax.
func (d *Device) ReadFIFO(buffer []uint32, maxRecords int32) (int32, error) {
	if maxRecords <= 0 || int(maxRecords) > len(buffer) || maxRecords > device.TTReadMax || maxRecords%device.FIFOReadAlign != 0 {
		return 0, device.ErrInvalidArgument
	}
	var n C.int
	ptr := (*C.uint)(unsafe.Pointer(&buffer[0]))
	if err := check(C.HH_ReadFiFo(d.index, ptr, C.int(maxRecords), &n)); err != nil {
		return 0, err
	}
	return int32(n), nil
}

func (d *Device) Close() error {
	log.Debug("Closing HydraHarp %d", int(d.index))
	return check(C.HH_CloseDevice(d.index))
}
