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

package acquisition

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/device"
	"github.com/HWQuantum/coincidence-counter/pkg/device/ifc"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

// BurstSink receives every non-empty FIFO read before it is decoded
type BurstSink interface {
	WriteBurst(words []uint32) error
}

type Options struct {
	DurationMs  int32
	Window      uint64
	SyncChannel uint8
	Policy      coincidence.Policy
	// records per ReadFIFO call
	Burst        int32
	InitialEpoch uint64
	// keep every raw word in Result.Raw
	KeepRaw    bool
	SortBursts bool
	MinBackoff time.Duration
	MaxBackoff time.Duration
	// 0 means no deadline
	Timeout       time.Duration
	Capture       BurstSink
	MeterProvider metric.MeterProvider
}

func DefaultOptions() Options {
	return Options{
		DurationMs:  config.DefaultAcquisitionTimeMs,
		Window:      config.DefaultWindow,
		SyncChannel: config.DefaultSyncChannel,
		Policy:      coincidence.AllPairs,
		Burst:       config.DefaultBurst,
		MinBackoff:  config.DefaultMinBackoff,
		MaxBackoff:  config.DefaultMaxBackoff,
	}
}

func OptionsFromConfig(c *config.AcquisitionConfig) (Options, error) {
	opts := DefaultOptions()
	policy, err := coincidence.ParsePolicy(c.Policy)
	if err != nil {
		return opts, err
	}
	opts.DurationMs = c.TimeMs
	opts.Window = c.Window
	opts.SyncChannel = c.SyncChannel
	opts.Policy = policy
	opts.Burst = c.Burst
	opts.MinBackoff = c.MinBackoff
	opts.MaxBackoff = c.MaxBackoff
	opts.Timeout = c.Timeout
	opts.SortBursts = c.SortBursts
	return opts, nil
}

type Result struct {
	Singles      coincidence.Singles
	Coincidences coincidence.Coincidences
	Stats        t2.Stats
	// rollover epoch at the end of the run, the InitialEpoch of a chained run
	Epoch     uint64
	Bursts    uint64
	IdlePolls uint64
	Raw       []uint32
	Elapsed   time.Duration
}

// RunStreamingAcquisition counts sync-relative coincidences over one
// measurement of durationMs
func RunStreamingAcquisition(ctx context.Context, durationMs int32, window uint64, syncChannel uint8, dev ifc.Device) (coincidence.Singles, coincidence.Coincidences, error) {
	opts := DefaultOptions()
	opts.DurationMs = durationMs
	opts.Window = window
	opts.SyncChannel = syncChannel
	opts.Policy = coincidence.SyncRelative
	res, err := Run(ctx, dev, opts)
	if err != nil {
		return coincidence.Singles{}, coincidence.Coincidences{}, err
	}
	return res.Singles, res.Coincidences, nil
}

// Run performs one measurement on dev and folds every burst through a
// fresh accumulator and coincidence engine as it arrives. The measurement
// is stopped on every return path when dev implements ifc.Stopper.
func Run(ctx context.Context, dev ifc.Device, opts Options) (*Result, error) {
	if opts.Burst <= 0 || opts.Burst > device.TTReadMax {
		return nil, fmt.Errorf("burst of %d records: %w", opts.Burst, device.ErrInvalidArgument)
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = opts.MinBackoff
	}
	m, err := newMetrics(opts.MeterProvider, attribute.String("policy", opts.Policy.String()))
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrAborted{Err: err}
	}

	log.Info("Starting %d ms measurement, window %d, policy %s", opts.DurationMs, opts.Window, opts.Policy)
	start := time.Now()
	if err := dev.StartMeasurement(opts.DurationMs); err != nil {
		return nil, fmt.Errorf("start measurement: %w", err)
	}
	defer stop(dev)

	acc := t2.NewAccumulator(opts.InitialEpoch)
	engine := coincidence.NewEngine(opts.Policy, opts.Window, opts.SyncChannel)
	buf := newBuffer(int(opts.Burst))
	var events []t2.Event
	res := &Result{}
	backoff := opts.MinBackoff

	for {
		if err := ctx.Err(); err != nil {
			return nil, ErrAborted{Err: err}
		}
		flags, err := dev.GetFlags()
		if err != nil {
			return nil, fmt.Errorf("get flags: %w", err)
		}
		if flags.Has(device.FlagFIFOFull) {
			m.fifoOverflows.Add(ctx, 1, m.attrs)
			log.Error("FIFO overflow after %d bursts, discarding counts", res.Bursts)
			return nil, ErrFIFOOverflow{Flags: flags}
		}

		n, err := dev.ReadFIFO(buf.Tail(int(opts.Burst)), opts.Burst)
		if err != nil {
			return nil, fmt.Errorf("read fifo: %w", err)
		}
		if n < 0 || n > opts.Burst {
			return nil, fmt.Errorf("read fifo returned %d records: %w", n, device.ErrInvalidRData)
		}

		if n == 0 {
			status, err := dev.GetRunStatus()
			if err != nil {
				return nil, fmt.Errorf("get run status: %w", err)
			}
			if status == device.Ended {
				break
			}
			res.IdlePolls++
			m.idlePolls.Add(ctx, 1, m.attrs)
			if err := sleep(ctx, backoff); err != nil {
				return nil, ErrAborted{Err: err}
			}
			backoff *= 2
			if backoff > opts.MaxBackoff {
				backoff = opts.MaxBackoff
			}
			continue
		}
		backoff = opts.MinBackoff

		words := buf.Commit(int(n))
		if opts.Capture != nil {
			if err := opts.Capture.WriteBurst(words); err != nil {
				return nil, fmt.Errorf("capture burst: %w", err)
			}
		}
		prev := acc.Stats()
		events = acc.AppendEvents(events[:0], words)
		if opts.SortBursts {
			sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })
		}
		engine.AddAll(events)
		res.Bursts++
		m.burst(ctx, prev, acc.Stats())
		log.Debug("Burst %d: %d records, %d events", res.Bursts, n, len(events))
		if !opts.KeepRaw {
			buf.Reset()
		}
	}

	res.Singles = engine.Singles()
	res.Coincidences = engine.Coincidences()
	res.Stats = acc.Stats()
	res.Epoch = acc.Epoch()
	res.Elapsed = time.Since(start)
	if opts.KeepRaw {
		res.Raw = buf.Words()
	}
	m.runs.Add(ctx, 1, m.attrs)
	m.runLatency.Record(ctx, float64(res.Elapsed)/float64(time.Millisecond), m.attrs)
	log.Info("Measurement ended: %d records, %d singles, %d coincidences",
		res.Stats.Records, res.Singles.Total(), res.Coincidences.Total())
	return res, nil
}

func stop(dev ifc.Device) {
	s, ok := dev.(ifc.Stopper)
	if !ok {
		return
	}
	if err := s.StopMeasurement(); err != nil {
		log.Warning("Error while stopping measurement: %s", err)
	}
}

// sleep waits d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
