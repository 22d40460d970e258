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

package srv

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/HWQuantum/coincidence-counter/pkg/acquisition"
	"github.com/HWQuantum/coincidence-counter/pkg/capture"
	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/device/drivers"
	"github.com/HWQuantum/coincidence-counter/pkg/device/ifc"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
	"github.com/HWQuantum/coincidence-counter/pkg/store"
)

// MeasureRequest overrides the configured acquisition. Zero values and nil
// pointers keep the configuration; a zero window is requested as &0.
type MeasureRequest struct {
	DurationMs  int32   `json:"duration_ms,omitempty"`
	Window      *uint64 `json:"window,omitempty"`
	SyncChannel *uint8  `json:"sync_channel,omitempty"`
	Policy      string  `json:"policy,omitempty"`
	CaptureFile string  `json:"capture_file,omitempty"`
}

// Measurer opens the configured device for every measurement and records
// the outcome. Measurements are serialized since a device hosts one run
// at a time.
type Measurer struct {
	*config.Config
	Store         *store.Store
	OpenDevice    func(*config.DeviceConfig) (ifc.Device, error)
	MeterProvider metric.MeterProvider
	mu            sync.Mutex
}

func NewMeasurer(cfg *config.Config, st *store.Store) *Measurer {
	return &Measurer{
		Config:     cfg,
		Store:      st,
		OpenDevice: drivers.Open,
	}
}

func (m *Measurer) options(req MeasureRequest) (acquisition.Options, error) {
	opts, err := acquisition.OptionsFromConfig(m.Config.Acquisition)
	if err != nil {
		return opts, err
	}
	if req.DurationMs != 0 {
		opts.DurationMs = req.DurationMs
	}
	if req.Window != nil {
		opts.Window = *req.Window
	}
	if req.SyncChannel != nil {
		if *req.SyncChannel >= coincidence.NumChannels {
			return opts, ErrBadRequest{What: "sync channel out of range"}
		}
		opts.SyncChannel = *req.SyncChannel
	}
	if req.Policy != "" {
		policy, err := coincidence.ParsePolicy(req.Policy)
		if err != nil {
			return opts, ErrBadRequest{What: err.Error()}
		}
		opts.Policy = policy
	}
	opts.MeterProvider = m.MeterProvider
	return opts, nil
}

// Measure runs one acquisition and stores it when the Measurer has a store
func (m *Measurer) Measure(ctx context.Context, req MeasureRequest) (*store.Run, error) {
	opts, err := m.options(req)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dev, err := m.OpenDevice(m.Config.Device)
	if err != nil {
		return nil, err
	}
	defer drivers.Release(dev)
	name := drivers.Name(dev)

	chain := m.Config.Acquisition.ChainEpoch && m.Store != nil
	if chain {
		if opts.InitialEpoch, err = m.Store.Epoch(name); err != nil {
			return nil, err
		}
	}

	captureFile := req.CaptureFile
	if captureFile == "" {
		captureFile = m.Config.Acquisition.CaptureFile
	}
	var writer *capture.Writer
	if captureFile != "" {
		if writer, err = capture.NewWriter(captureFile); err != nil {
			return nil, err
		}
		opts.Capture = writer
	}

	started := time.Now()
	res, err := acquisition.Run(ctx, dev, opts)
	if writer != nil {
		if flushErr := writer.Flush(); flushErr != nil && err == nil {
			err = flushErr
		}
	}
	if err != nil {
		return nil, err
	}

	run := store.NewRun(name, opts, res, started)
	run.CaptureFile = captureFile
	if m.Store != nil {
		if err := m.Store.SaveRun(run); err != nil {
			return nil, err
		}
		if chain {
			if err := m.Store.SetEpoch(name, res.Epoch); err != nil {
				return nil, err
			}
		}
	}
	log.Info("Run %s: %d singles, %d coincidences", run.ID, run.Singles.Total(), run.Coincidences.Total())
	return run, nil
}
