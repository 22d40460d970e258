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

// Package replay plays a capture file back through the device interface.
package replay

import (
	"bufio"
	"io"
	"os"
	"sync"

	"github.com/HWQuantum/coincidence-counter/pkg/device"
	"github.com/HWQuantum/coincidence-counter/pkg/layers"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
)

const Name = "replay"

// Device serves the bursts of a capture file in order. Each measurement
// rewinds to the beginning of the file; the measurement duration is ignored.
type Device struct {
	mu       sync.Mutex
	filename string
	file     *os.File
	reader   *layers.BurstReader
	// words of the current burst not yet handed out
	rest    []uint32
	running bool
	started bool
	bursts  uint64
}

func New(filename string) (*Device, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	return &Device{
		filename: filename,
		file:     file,
	}, nil
}

func (d *Device) GetName() string {
	return Name + ":" + d.filename
}

func (d *Device) StartMeasurement(durationMs int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if durationMs < device.AcqTMin || durationMs > device.AcqTMax {
		return device.ErrInvalidArgument
	}
	if d.running {
		return device.ErrInstanceRunning
	}
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	d.reader = layers.NewBurstReader(bufio.NewReader(d.file))
	d.rest = nil
	d.bursts = 0
	d.running = true
	d.started = true
	return nil
}

func (d *Device) StopMeasurement() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	d.rest = nil
	return nil
}

// ReadFIFO returns at most one burst of the capture per call
func (d *Device) ReadFIFO(buffer []uint32, maxRecords int32) (int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return 0, device.ErrNotInitialized
	}
	if maxRecords < 0 || maxRecords > device.TTReadMax || int(maxRecords) > len(buffer) {
		return 0, device.ErrInvalidArgument
	}
	if !d.running {
		return 0, nil
	}
	if len(d.rest) == 0 {
		bl, err := d.reader.Next()
		if err == io.EOF {
			log.Debug("Replay of %s ended after %d bursts", d.filename, d.bursts)
			d.running = false
			return 0, nil
		}
		if err != nil {
			d.running = false
			return 0, err
		}
		d.bursts++
		d.rest = bl.Words
	}
	n := copy(buffer[:maxRecords], d.rest)
	d.rest = d.rest[n:]
	return int32(n), nil
}

func (d *Device) GetRunStatus() (device.RunStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return device.Running, nil
	}
	return device.Ended, nil
}

func (d *Device) GetFlags() (device.Flags, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return device.FlagActive, nil
	}
	return 0, nil
}

func (d *Device) Close() error {
	return d.file.Close()
}
