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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/device"
	"github.com/HWQuantum/coincidence-counter/pkg/device/ifc"
	"github.com/HWQuantum/coincidence-counter/pkg/device/sim"
	"github.com/HWQuantum/coincidence-counter/pkg/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "runs.db")
	cfg.Acquisition.TimeMs = 10
	return cfg
}

func testServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	return testServerWith(t, testConfig(t))
}

func testServerWith(t *testing.T, cfg *config.Config) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.Open(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	api := NewApiServer(context.Background(), cfg, NewMeasurer(cfg, st), st)
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func postMeasure(t *testing.T, url string, req MeasureRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url+"/api/measure", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestMeasureAndFetchRun(t *testing.T) {
	ts, st := testServer(t)

	resp := postMeasure(t, ts.URL, MeasureRequest{Policy: "sync-relative"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	run := &store.Run{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "sync-relative", run.Policy)
	assert.Equal(t, int32(10), run.DurationMs)
	assert.Equal(t, sim.Name, run.Device)
	assert.NotZero(t, run.Singles.Total())

	stored, err := st.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Singles, stored.Singles)

	get, err := http.Get(ts.URL + "/api/runs/" + run.ID)
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)
	fetched := &store.Run{}
	require.NoError(t, json.NewDecoder(get.Body).Decode(fetched))
	assert.Equal(t, run.Coincidences, fetched.Coincidences)

	list, err := http.Get(ts.URL + "/api/runs?limit=5")
	require.NoError(t, err)
	defer list.Body.Close()
	var runs []*store.Run
	require.NoError(t, json.NewDecoder(list.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestMeasureBadRequest(t *testing.T) {
	ts, _ := testServer(t)
	resp := postMeasure(t, ts.URL, MeasureRequest{Policy: "three-fold"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ch := uint8(8)
	resp = postMeasure(t, ts.URL, MeasureRequest{SyncChannel: &ch})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := http.Post(ts.URL+"/api/measure", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestMeasureCaptureFileConfinedToDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.CaptureDir = t.TempDir()
	ts, _ := testServerWith(t, cfg)

	outside := filepath.Join(t.TempDir(), "keep.bin")
	require.NoError(t, os.WriteFile(outside, []byte("12345678"), 0600))

	for _, name := range []string{outside, "../keep.bin", "sub/run.t2", "..", "."} {
		resp := postMeasure(t, ts.URL, MeasureRequest{CaptureFile: name})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}
	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(data))

	resp := postMeasure(t, ts.URL, MeasureRequest{CaptureFile: "run.t2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	run := &store.Run{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(run))
	assert.Equal(t, filepath.Join(cfg.API.CaptureDir, "run.t2"), run.CaptureFile)
	assert.FileExists(t, run.CaptureFile)

	// never overwritten
	resp = postMeasure(t, ts.URL, MeasureRequest{CaptureFile: "run.t2"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMeasureCaptureDisabledWithoutDir(t *testing.T) {
	ts, _ := testServer(t)
	resp := postMeasure(t, ts.URL, MeasureRequest{CaptureFile: "run.t2"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunNotFound(t *testing.T) {
	ts, _ := testServer(t)
	resp, err := http.Get(ts.URL + "/api/runs/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/runs?limit=x")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmptyRunList(t *testing.T) {
	ts, _ := testServer(t)
	resp, err := http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	var runs []*store.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestPairsEndpoint(t *testing.T) {
	ts, _ := testServer(t)
	resp, err := http.Get(ts.URL + "/api/pairs")
	require.NoError(t, err)
	defer resp.Body.Close()
	var pairs []Pair
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pairs))
	require.Len(t, pairs, 28)
	assert.Equal(t, Pair{Index: 13, A: 2, B: 3}, pairs[13])
}

type overflowDevice struct{}

func (overflowDevice) StartMeasurement(int32) error { return nil }
func (overflowDevice) ReadFIFO([]uint32, int32) (int32, error) {
	return 0, nil
}
func (overflowDevice) GetRunStatus() (device.RunStatus, error) { return device.Running, nil }
func (overflowDevice) GetFlags() (device.Flags, error) { return device.FlagFIFOFull, nil }

func TestMeasureDeviceFailure(t *testing.T) {
	cfg := testConfig(t)
	m := NewMeasurer(cfg, nil)
	m.OpenDevice = func(*config.DeviceConfig) (ifc.Device, error) { return overflowDevice{}, nil }
	api := NewApiServer(context.Background(), cfg, m, nil)
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	resp := postMeasure(t, ts.URL, MeasureRequest{})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
