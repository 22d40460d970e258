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

package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HWQuantum/coincidence-counter/pkg/device"
	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

func drain(t *testing.T, d *Device, burst int32) []uint32 {
	t.Helper()
	buf := make([]uint32, burst)
	var words []uint32
	for i := 0; i < 1000000; i++ {
		n, err := d.ReadFIFO(buf, burst)
		require.NoError(t, err)
		words = append(words, buf[:n]...)
		if n == 0 {
			status, err := d.GetRunStatus()
			require.NoError(t, err)
			if status == device.Ended {
				return words
			}
		}
	}
	t.Fatal("simulator never ended")
	return nil
}

func TestStreamDecodesToTruth(t *testing.T) {
	opts := DefaultOptions()
	opts.RecordTruth = true
	opts.SyncPeriodPs = 10000000
	d, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, d.StartMeasurement(50))

	words := drain(t, d, 1024)
	events := t2.NewAccumulator(0).Advance(words)
	truth := d.Truth()
	require.NotEmpty(t, truth)
	assert.Equal(t, truth, events)

	syncs := 0
	for _, ev := range events {
		if ev.Channel == t2.SyncChannel {
			syncs++
		}
	}
	assert.Equal(t, 5000, syncs)
}

func TestLocalTimesFitPayload(t *testing.T) {
	d, err := New(DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, d.StartMeasurement(100))

	for _, w := range drain(t, d, device.TTReadMax) {
		r := t2.Decode(w)
		if r.Kind == t2.KindOverflow {
			continue
		}
		assert.Equal(t, w&^(t2.SpecialBit|t2.MarkerMask), r.Value, "bit 24 set in 0x%08x", w)
	}
}

func TestCoalescedOverflows(t *testing.T) {
	opts := DefaultOptions()
	opts.SyncPeriodPs = 3 << 24
	opts.Efficiency = 0
	opts.PairProbability = 0
	opts.DarkRate = 0
	opts.RecordTruth = true
	d, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, d.StartMeasurement(10))

	words := drain(t, d, 512)
	var counts []uint32
	for _, w := range words {
		if r := t2.Decode(w); r.Kind == t2.KindOverflow {
			counts = append(counts, r.Value)
		}
	}
	require.NotEmpty(t, counts)
	for _, c := range counts {
		assert.Equal(t, uint32(3), c)
	}

	acc := t2.NewAccumulator(0)
	events := acc.Advance(words)
	assert.Equal(t, d.Truth(), events)
	assert.Equal(t, uint64(len(counts))*3, acc.Stats().Rollovers)
}

func TestDeterministicSeed(t *testing.T) {
	run := func() []uint32 {
		d, err := New(DefaultOptions())
		require.NoError(t, err)
		require.NoError(t, d.StartMeasurement(20))
		return drain(t, d, 4096)
	}
	assert.Equal(t, run(), run())
}

func TestFIFOFullInjection(t *testing.T) {
	opts := DefaultOptions()
	opts.FIFOFullAfterReads = 2
	d, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, d.StartMeasurement(100))

	buf := make([]uint32, 128)
	flags, err := d.GetFlags()
	require.NoError(t, err)
	assert.False(t, flags.Has(device.FlagFIFOFull))
	assert.True(t, flags.Has(device.FlagActive))

	for i := 0; i < 2; i++ {
		_, err = d.ReadFIFO(buf, 128)
		require.NoError(t, err)
	}
	flags, err = d.GetFlags()
	require.NoError(t, err)
	assert.True(t, flags.Has(device.FlagFIFOFull))
}

func TestIdleReads(t *testing.T) {
	opts := DefaultOptions()
	opts.IdleEvery = 2
	d, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, d.StartMeasurement(100))

	buf := make([]uint32, 256)
	n, err := d.ReadFIFO(buf, 256)
	require.NoError(t, err)
	assert.NotZero(t, n)
	n, err = d.ReadFIFO(buf, 256)
	require.NoError(t, err)
	assert.Zero(t, n)
	status, err := d.GetRunStatus()
	require.NoError(t, err)
	assert.Equal(t, device.Running, status)
}

func TestStopMeasurement(t *testing.T) {
	d, err := New(DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, d.StartMeasurement(1000))
	buf := make([]uint32, 64)
	_, err = d.ReadFIFO(buf, 64)
	require.NoError(t, err)

	require.NoError(t, d.StopMeasurement())
	words := drain(t, d, 64)
	assert.Less(t, len(words), 10000)
	require.NoError(t, d.StartMeasurement(10))
}

func TestDeviceErrors(t *testing.T) {
	d, err := New(DefaultOptions())
	require.NoError(t, err)

	_, err = d.ReadFIFO(make([]uint32, 8), 8)
	assert.ErrorIs(t, err, device.ErrNotInitialized)

	assert.ErrorIs(t, d.StartMeasurement(0), device.ErrInvalidArgument)
	require.NoError(t, d.StartMeasurement(10))
	assert.ErrorIs(t, d.StartMeasurement(10), device.ErrInstanceRunning)

	_, err = d.ReadFIFO(make([]uint32, 8), 16)
	assert.ErrorIs(t, err, device.ErrInvalidArgument)
	_, err = d.ReadFIFO(make([]uint32, 8), -1)
	assert.ErrorIs(t, err, device.ErrInvalidArgument)
}

func TestNewRejectsBadOptions(t *testing.T) {
	for _, mutate := range []func(o *Options){
		func(o *Options) { o.Inputs = 0 },
		func(o *Options) { o.Inputs = 8 },
		func(o *Options) { o.SyncPeriodPs = 0 },
		func(o *Options) { o.Efficiency = 1.5 },
		func(o *Options) { o.Inputs = 1 },
	} {
		opts := DefaultOptions()
		mutate(&opts)
		_, err := New(opts)
		assert.Error(t, err)
	}
}
