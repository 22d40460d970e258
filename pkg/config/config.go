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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
	"github.com/HWQuantum/coincidence-counter/pkg/device"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
)

type SimConfig struct {
	Seed            int64   `yaml:"seed"`
	Inputs          int     `yaml:"inputs"`
	SyncPeriodPs    uint64  `yaml:"sync_period_ps"`
	Efficiency      float64 `yaml:"efficiency"`
	PairProbability float64 `yaml:"pair_probability"`
	DelayPs         uint64  `yaml:"delay_ps"`
	JitterPs        float64 `yaml:"jitter_ps"`
	// per input, counts per second
	DarkRate     float64 `yaml:"dark_rate"`
	BurstRecords int     `yaml:"burst_records"`
	// 0 disables FIFO overflow injection
	FIFOFullAfterReads int `yaml:"fifo_full_after_reads,omitempty"`
}

type HydraHarpConfig struct {
	SyncDivider       int32   `yaml:"sync_divider"`
	SyncCFDLevel      int32   `yaml:"sync_cfd_level"`
	SyncCFDZeroCross  int32   `yaml:"sync_cfd_zero_cross"`
	SyncOffsetPs      int32   `yaml:"sync_offset_ps"`
	InputCFDLevel     int32   `yaml:"input_cfd_level"`
	InputCFDZeroCross int32   `yaml:"input_cfd_zero_cross"`
	InputOffsetsPs    []int32 `yaml:"input_offsets_ps,omitempty"`
	SettleTimeMs      int     `yaml:"settle_time_ms"`
}

type DeviceConfig struct {
	Kind       string           `yaml:"kind"`
	Index      int32            `yaml:"index"`
	ReplayFile string           `yaml:"replay_file,omitempty"`
	Sim        *SimConfig       `yaml:"sim,omitempty"`
	HydraHarp  *HydraHarpConfig `yaml:"hydraharp,omitempty"`
}

type AcquisitionConfig struct {
	TimeMs      int32         `yaml:"time_ms"`
	Window      uint64        `yaml:"window"`
	SyncChannel uint8         `yaml:"sync_channel"`
	Policy      string        `yaml:"policy"`
	Burst       int32         `yaml:"burst"`
	MinBackoff  time.Duration `yaml:"min_backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
	// 0 means no deadline beyond the measurement itself
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	SortBursts  bool          `yaml:"sort_bursts"`
	CaptureFile string        `yaml:"capture_file,omitempty"`
	// chain the rollover epoch across runs of the same device
	ChainEpoch bool `yaml:"chain_epoch"`
}

type APIConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	// remote requests may only name capture files inside this directory,
	// empty disables captures requested over the API
	CaptureDir string `yaml:"capture_dir,omitempty"`
}

type Config struct {
	LogLevel    string             `yaml:"log_level"`
	DBPath      string             `yaml:"db_path"`
	Device      *DeviceConfig      `yaml:"device"`
	Acquisition *AcquisitionConfig `yaml:"acquisition"`
	API         *APIConfig         `yaml:"api"`
	filepath    string
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// LoadConfig reads the file over the current values, so missing keys keep their defaults
func (c *Config) LoadConfig() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Load returns the defaults overlaid with the file at path. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	c := NewDefaultConfig()
	if path != "" {
		c.filepath = path
	}
	if err := c.LoadConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config %s: %w", c.filepath, err)
		}
		log.Debug("Config file %s not found, using defaults", c.filepath)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return ErrInvalidConfig{Field: "log_level", What: err.Error()}
	}
	if c.Device == nil || c.Acquisition == nil || c.API == nil {
		return ErrInvalidConfig{Field: "device/acquisition/api", What: "section missing"}
	}
	switch c.Device.Kind {
	case DeviceKindSim, DeviceKindHydraHarp:
	case DeviceKindReplay:
		if c.Device.ReplayFile == "" {
			return ErrInvalidConfig{Field: "device.replay_file", What: "required for replay device"}
		}
	default:
		return ErrInvalidConfig{Field: "device.kind", What: fmt.Sprintf("unknown kind %q", c.Device.Kind)}
	}
	if c.Device.Index < 0 || c.Device.Index >= device.MaxDevices {
		return ErrInvalidConfig{Field: "device.index", What: fmt.Sprintf("must be in [0, %d)", device.MaxDevices)}
	}

	a := c.Acquisition
	if a.TimeMs < device.AcqTMin || a.TimeMs > device.AcqTMax {
		return ErrInvalidConfig{Field: "acquisition.time_ms", What: fmt.Sprintf("must be in [%d, %d]", device.AcqTMin, device.AcqTMax)}
	}
	if a.SyncChannel >= coincidence.NumChannels {
		return ErrInvalidConfig{Field: "acquisition.sync_channel", What: fmt.Sprintf("must be below %d", coincidence.NumChannels)}
	}
	if _, err := coincidence.ParsePolicy(a.Policy); err != nil {
		return ErrInvalidConfig{Field: "acquisition.policy", What: err.Error()}
	}
	if a.Burst <= 0 || a.Burst > device.TTReadMax {
		return ErrInvalidConfig{Field: "acquisition.burst", What: fmt.Sprintf("must be in [1, %d]", device.TTReadMax)}
	}
	if c.Device.Kind == DeviceKindHydraHarp && a.Burst%device.FIFOReadAlign != 0 {
		return ErrInvalidConfig{Field: "acquisition.burst", What: fmt.Sprintf("must be a multiple of %d for the hydraharp device", device.FIFOReadAlign)}
	}
	if a.MinBackoff <= 0 || a.MaxBackoff < a.MinBackoff {
		return ErrInvalidConfig{Field: "acquisition.min_backoff", What: "backoff bounds must satisfy 0 < min <= max"}
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return ErrInvalidConfig{Field: "api.port", What: "out of range"}
	}
	return nil
}

func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), ConfigFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		DBPath:   filepath.Join(DefaultConfigDir(), DBFile),
		Device: &DeviceConfig{
			Kind: DefaultDeviceKind,
			Sim: &SimConfig{
				Seed:            DefaultSimSeed,
				Inputs:          DefaultSimInputs,
				SyncPeriodPs:    DefaultSimSyncPeriodPs,
				Efficiency:      DefaultSimEfficiency,
				PairProbability: DefaultSimPairProbability,
				DelayPs:         DefaultSimDelayPs,
				JitterPs:        DefaultSimJitterPs,
				DarkRate:        DefaultSimDarkRate,
				BurstRecords:    DefaultSimBurst,
			},
			HydraHarp: &HydraHarpConfig{
				SyncDivider:       DefaultSyncDivider,
				SyncCFDLevel:      DefaultCFDLevel,
				SyncCFDZeroCross:  DefaultCFDZeroCross,
				SyncOffsetPs:      DefaultSyncOffsetPs,
				InputCFDLevel:     DefaultCFDLevel,
				InputCFDZeroCross: DefaultCFDZeroCross,
				SettleTimeMs:      DefaultSettleTimeMs,
			},
		},
		Acquisition: &AcquisitionConfig{
			TimeMs:      DefaultAcquisitionTimeMs,
			Window:      DefaultWindow,
			SyncChannel: DefaultSyncChannel,
			Policy:      DefaultPolicy,
			Burst:       DefaultBurst,
			MinBackoff:  DefaultMinBackoff,
			MaxBackoff:  DefaultMaxBackoff,
		},
		API: &APIConfig{
			Address: DefaultAPIAddress,
			Port:    DefaultAPIPort,
		},
		filepath: DefaultConfigPath(),
	}
}
