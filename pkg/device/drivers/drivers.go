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

package drivers

import (
	"fmt"
	"time"

	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/device/hydraharp"
	"github.com/HWQuantum/coincidence-counter/pkg/device/ifc"
	"github.com/HWQuantum/coincidence-counter/pkg/device/replay"
	"github.com/HWQuantum/coincidence-counter/pkg/device/sim"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
)

// ErrUnknownDeviceKind returned by Open for a kind no driver handles
type ErrUnknownDeviceKind struct {
	Kind string
}

func (e ErrUnknownDeviceKind) Error() string {
	return fmt.Sprintf("Unknown device kind: %s", e.Kind)
}

func Kinds() []string {
	return []string{config.DeviceKindSim, config.DeviceKindReplay, config.DeviceKindHydraHarp}
}

// Open returns the device described by cfg. Close it through Release.
func Open(cfg *config.DeviceConfig) (ifc.Device, error) {
	log.Debug("Opening %s device", cfg.Kind)
	switch cfg.Kind {
	case config.DeviceKindSim:
		d, err := sim.New(SimOptions(cfg.Sim))
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DeviceKindReplay:
		d, err := replay.New(cfg.ReplayFile)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DeviceKindHydraHarp:
		d, err := hydraharp.Open(cfg.Index, HydraHarpSetup(cfg.HydraHarp))
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, ErrUnknownDeviceKind{Kind: cfg.Kind}
}

// Release closes the device if it holds a handle
func Release(dev ifc.Device) {
	closer, ok := dev.(ifc.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		log.Error("Error while closing device: %s", err)
	}
}

// Name describes the device for logs and run records
func Name(dev ifc.Device) string {
	if d, ok := dev.(ifc.Describer); ok {
		return d.GetName()
	}
	return fmt.Sprintf("%T", dev)
}

func SimOptions(c *config.SimConfig) sim.Options {
	opts := sim.DefaultOptions()
	if c == nil {
		return opts
	}
	opts.Seed = c.Seed
	opts.Inputs = c.Inputs
	opts.SyncPeriodPs = c.SyncPeriodPs
	opts.Efficiency = c.Efficiency
	opts.PairProbability = c.PairProbability
	opts.DelayPs = c.DelayPs
	opts.JitterPs = c.JitterPs
	opts.DarkRate = c.DarkRate
	opts.BurstRecords = c.BurstRecords
	opts.FIFOFullAfterReads = c.FIFOFullAfterReads
	return opts
}

func HydraHarpSetup(c *config.HydraHarpConfig) hydraharp.Setup {
	setup := hydraharp.DefaultSetup()
	if c == nil {
		return setup
	}
	setup.SyncDivider = c.SyncDivider
	setup.SyncCFDLevel = c.SyncCFDLevel
	setup.SyncCFDZeroCross = c.SyncCFDZeroCross
	setup.SyncOffsetPs = c.SyncOffsetPs
	setup.InputCFDLevel = c.InputCFDLevel
	setup.InputCFDZeroCross = c.InputCFDZeroCross
	setup.InputOffsetsPs = c.InputOffsetsPs
	setup.SettleTime = time.Duration(c.SettleTimeMs) * time.Millisecond
	return setup
}
