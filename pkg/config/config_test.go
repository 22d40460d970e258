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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	c := NewDefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, filepath.Join(DefaultConfigDir(), ConfigFile), c.Path())
}

func TestPersistAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFile)
	c := NewDefaultConfig()
	c.SetPath(path)
	c.Acquisition.Window = 2500
	c.Acquisition.Policy = "sync-relative"
	c.Acquisition.MaxBackoff = 5 * time.Millisecond
	require.NoError(t, c.Persist(false))

	err := c.Persist(false)
	var exists ErrConfigFileExists
	require.True(t, errors.As(err, &exists))
	assert.Equal(t, path, exists.Path)
	require.NoError(t, c.Persist(true))

	loaded, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(c, loaded, cmp.AllowUnexported(Config{})); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	data := []byte("log_level: debug\nacquisition:\n  window: 42\n  min_backoff: 1ms\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, uint64(42), c.Acquisition.Window)
	assert.Equal(t, time.Millisecond, c.Acquisition.MinBackoff)
	assert.Equal(t, int32(DefaultAcquisitionTimeMs), c.Acquisition.TimeMs)
	assert.Equal(t, DefaultDeviceKind, c.Device.Kind)
	assert.Equal(t, DefaultAPIPort, c.API.Port)
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	want := NewDefaultConfig()
	if diff := cmp.Diff(want, c, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestBurstAlignmentOnlyForHydraHarp(t *testing.T) {
	c := NewDefaultConfig()
	c.Acquisition.Burst = 1000
	assert.NoError(t, c.Validate())

	c.Device.Kind = DeviceKindHydraHarp
	assert.Error(t, c.Validate())
	c.Acquisition.Burst = 8 * 128
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"device kind", func(c *Config) { c.Device.Kind = "picoharp" }, "device.kind"},
		{"replay needs file", func(c *Config) { c.Device.Kind = DeviceKindReplay }, "device.replay_file"},
		{"device index", func(c *Config) { c.Device.Index = 8 }, "device.index"},
		{"time", func(c *Config) { c.Acquisition.TimeMs = 0 }, "acquisition.time_ms"},
		{"sync channel", func(c *Config) { c.Acquisition.SyncChannel = 8 }, "acquisition.sync_channel"},
		{"policy", func(c *Config) { c.Acquisition.Policy = "triples" }, "acquisition.policy"},
		{"burst", func(c *Config) { c.Acquisition.Burst = 131073 }, "acquisition.burst"},
		{"hydraharp burst alignment", func(c *Config) {
			c.Device.Kind = DeviceKindHydraHarp
			c.Acquisition.Burst = 1000
		}, "acquisition.burst"},
		{"backoff", func(c *Config) { c.Acquisition.MaxBackoff = time.Microsecond }, "acquisition.min_backoff"},
		{"port", func(c *Config) { c.API.Port = 0 }, "api.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			var invalid ErrInvalidConfig
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}
