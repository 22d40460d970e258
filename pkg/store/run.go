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

package store

import (
	"time"

	"github.com/HWQuantum/coincidence-counter/pkg/acquisition"
	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

// Run is the stored outcome of one acquisition
type Run struct {
	ID           string                   `json:"id"`
	Seq          uint64                   `json:"seq"`
	Device       string                   `json:"device"`
	Started      time.Time                `json:"started"`
	DurationMs   int32                    `json:"duration_ms"`
	Window       uint64                   `json:"window"`
	SyncChannel  uint8                    `json:"sync_channel"`
	Policy       string                   `json:"policy"`
	Singles      coincidence.Singles      `json:"singles"`
	Coincidences coincidence.Coincidences `json:"coincidences"`
	Stats        t2.Stats                 `json:"stats"`
	Epoch        uint64                   `json:"epoch"`
	ElapsedMs    int64                    `json:"elapsed_ms"`
	CaptureFile  string                   `json:"capture_file,omitempty"`
}

func NewRun(deviceName string, opts acquisition.Options, res *acquisition.Result, started time.Time) *Run {
	return &Run{
		Device:       deviceName,
		Started:      started.UTC(),
		DurationMs:   opts.DurationMs,
		Window:       opts.Window,
		SyncChannel:  opts.SyncChannel,
		Policy:       opts.Policy.String(),
		Singles:      res.Singles,
		Coincidences: res.Coincidences,
		Stats:        res.Stats,
		Epoch:        res.Epoch,
		ElapsedMs:    res.Elapsed.Milliseconds(),
	}
}
