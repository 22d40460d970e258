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

package measure

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/layers"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
	"github.com/HWQuantum/coincidence-counter/pkg/report"
	"github.com/HWQuantum/coincidence-counter/pkg/srv"
	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

const (
	BatchOptionName = "batch"
)

func NewReplayCommand(cfg *config.Config) *cobra.Command {
	var flags requestFlags
	var batch bool
	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Count a capture file written by measure --capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if batch {
				window := cfg.Acquisition.Window
				if req := flags.request(cmd); req.Window != nil {
					window = *req.Window
				}
				return Batch(out, args[0], window)
			}
			m := srv.NewMeasurer(ReplayConfig(cfg, args[0]), nil)
			run, err := m.Measure(context.Background(), flags.request(cmd))
			if err != nil {
				return err
			}
			return report.WriteRun(out, run)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&batch, BatchOptionName, false, "Load the whole capture and count all pairs at once")
	return cmd
}

// ReplayConfig copies cfg with the replay device reading file
func ReplayConfig(cfg *config.Config, file string) *config.Config {
	c := *cfg
	dev := *cfg.Device
	dev.Kind = config.DeviceKindReplay
	dev.ReplayFile = file
	acq := *cfg.Acquisition
	acq.CaptureFile = ""
	acq.ChainEpoch = false
	c.Device = &dev
	c.Acquisition = &acq
	return &c
}

// Batch decodes the whole capture and counts all pairs with a strict window
func Batch(out io.Writer, file string, window uint64) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	bursts, err := layers.DecodeCapture(f)
	if err != nil {
		return err
	}

	acc := t2.NewAccumulator(0)
	var events []t2.Event
	for _, b := range bursts {
		events = append(events, t2.DecodeAndAccumulate(acc, b.Words)...)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })
	stats := acc.Stats()
	log.Info("Decoded %d bursts: %d records, %d events", len(bursts), stats.Records, stats.Events)

	singles, coincidences := coincidence.ComputeAllPairs(events, window)
	fmt.Fprintf(out, "%s: %d records, %d events, window %d\n\n", file, stats.Records, stats.Events, window)
	return report.WriteCounts(out, singles, coincidences)
}
