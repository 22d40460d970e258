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

// Package sim is a software time tagger producing heralded photon streams in T2 format.
//
// The simulator clocks events on a compressed axis where every rollover
// period only uses the low 2^24 time tags, so every emitted local time fits
// the 24 bit payload. Decoded timestamps therefore jump by 2^24 at each
// rollover, the truth log records them exactly as a decoder will see them.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/HWQuantum/coincidence-counter/pkg/device"
	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

const (
	Name             = "sim"
	// time tag units per second (1 ps)
	TagsPerSecond    = 1e12
	maxOverflowCount = 0xFFFFFF
)

type Options struct {
	Seed int64
	// number of detector inputs, event channels 1..Inputs
	Inputs          int
	SyncPeriodPs    uint64
	Efficiency      float64
	PairProbability float64
	DelayPs         uint64
	JitterPs        float64
	DarkRate        float64
	// 0 means as many as the caller asks for
	BurstRecords       int
	FIFOFullAfterReads int
	// every IdleEvery-th read returns no records while running
	IdleEvery   int
	RecordTruth bool
}

func DefaultOptions() Options {
	return Options{
		Seed:            1,
		Inputs:          4,
		SyncPeriodPs:    1000000,
		Efficiency:      0.2,
		PairProbability: 0.05,
		DelayPs:         20000,
		JitterPs:        500,
		DarkRate:        1000,
		BurstRecords:    8192,
	}
}

type Device struct {
	mu   sync.Mutex
	opts Options
	rnd  *rand.Rand

	running bool
	started bool
	periods uint64
	next    uint64
	epoch   uint64
	reads   int

	pending []uint32
	scratch []t2.Event
	truth   []t2.Event
}

func New(opts Options) (*Device, error) {
	if opts.Inputs < 1 || opts.Inputs > 7 {
		return nil, fmt.Errorf("sim: inputs must be in [1, 7], got %d", opts.Inputs)
	}
	if opts.SyncPeriodPs == 0 {
		return nil, fmt.Errorf("sim: sync period must be positive")
	}
	for name, p := range map[string]float64{"efficiency": opts.Efficiency, "pair probability": opts.PairProbability} {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("sim: %s must be in [0, 1], got %g", name, p)
		}
	}
	if opts.PairProbability > 0 && opts.Inputs < 2 {
		return nil, fmt.Errorf("sim: photon pairs need at least 2 inputs")
	}
	return &Device{
		opts: opts,
		rnd:  rand.New(rand.NewSource(opts.Seed)),
	}, nil
}

func (d *Device) GetName() string {
	return Name
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
	d.running = true
	d.started = true
	d.periods = uint64(durationMs) * uint64(TagsPerSecond/1000) / d.opts.SyncPeriodPs
	d.next = 0
	d.epoch = 0
	d.reads = 0
	d.pending = d.pending[:0]
	d.truth = d.truth[:0]
	return nil
}

func (d *Device) StopMeasurement() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.periods = d.next
	if len(d.pending) == 0 {
		d.running = false
	}
	return nil
}

func (d *Device) ReadFIFO(buffer []uint32, maxRecords int32) (int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return 0, device.ErrNotInitialized
	}
	if maxRecords < 0 || maxRecords > device.TTReadMax || int(maxRecords) > len(buffer) {
		return 0, device.ErrInvalidArgument
	}
	d.reads++
	if d.running && d.opts.IdleEvery > 0 && d.reads%d.opts.IdleEvery == 0 {
		return 0, nil
	}

	n := int(maxRecords)
	if d.opts.BurstRecords > 0 && d.opts.BurstRecords < n {
		n = d.opts.BurstRecords
	}
	for len(d.pending) < n && d.next < d.periods {
		d.generatePeriod()
	}
	if n > len(d.pending) {
		n = len(d.pending)
	}
	copy(buffer, d.pending[:n])
	d.pending = append(d.pending[:0], d.pending[n:]...)
	if d.next >= d.periods && len(d.pending) == 0 {
		d.running = false
	}
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
	var flags device.Flags
	if d.running {
		flags |= device.FlagActive
	}
	if d.opts.FIFOFullAfterReads > 0 && d.reads >= d.opts.FIFOFullAfterReads {
		flags |= device.FlagFIFOFull
	}
	return flags, nil
}

func (d *Device) Close() error {
	return d.StopMeasurement()
}

// Truth returns the events emitted in the current run when RecordTruth is set
func (d *Device) Truth() []t2.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]t2.Event(nil), d.truth...)
}

// deviceTime maps the compressed clock onto tags whose local part stays below 2^24
func deviceTime(c uint64) uint64 {
	return (c>>24)*t2.OverflowPeriod + c&uint64(t2.TimeMask)
}

func (d *Device) generatePeriod() {
	period := d.opts.SyncPeriodPs
	base := d.next * period
	d.next++

	events := d.scratch[:0]
	events = append(events, t2.Event{Channel: t2.SyncChannel, Timestamp: base})
	if d.rnd.Float64() < d.opts.Efficiency {
		events = append(events, t2.Event{Channel: d.input(), Timestamp: d.arrival(base)})
	}
	if d.rnd.Float64() < d.opts.PairProbability {
		a := d.input()
		b := d.input()
		for b == a {
			b = d.input()
		}
		events = append(events,
			t2.Event{Channel: a, Timestamp: d.arrival(base)},
			t2.Event{Channel: b, Timestamp: d.arrival(base)})
	}
	dark := d.opts.DarkRate * float64(period) / TagsPerSecond
	for ch := 1; ch <= d.opts.Inputs; ch++ {
		if d.rnd.Float64() < dark {
			events = append(events, t2.Event{Channel: uint8(ch), Timestamp: base + uint64(d.rnd.Int63n(int64(period)))})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })

	for _, ev := range events {
		ts := deviceTime(ev.Timestamp)
		for ep := ts / t2.OverflowPeriod; ep > d.epoch; {
			n := ep - d.epoch
			if n > maxOverflowCount {
				n = maxOverflowCount
			}
			d.pending = append(d.pending, t2.EncodeOverflow(uint32(n)))
			d.epoch += n
		}
		local := uint32(ts % t2.OverflowPeriod)
		if ev.Channel == t2.SyncChannel {
			d.pending = append(d.pending, t2.EncodeSync(local))
		} else {
			d.pending = append(d.pending, t2.EncodeChannel(ev.Channel-1, local))
		}
		if d.opts.RecordTruth {
			d.truth = append(d.truth, t2.Event{Channel: ev.Channel, Timestamp: ts})
		}
	}
	d.scratch = events
}

func (d *Device) input() uint8 {
	return uint8(1 + d.rnd.Intn(d.opts.Inputs))
}

// arrival is base plus delay and gaussian jitter, kept inside the sync period
func (d *Device) arrival(base uint64) uint64 {
	offset := float64(d.opts.DelayPs) + d.rnd.NormFloat64()*d.opts.JitterPs
	offset = math.Max(0, math.Min(offset, float64(d.opts.SyncPeriodPs-1)))
	return base + uint64(offset)
}
