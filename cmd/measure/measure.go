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
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/report"
	"github.com/HWQuantum/coincidence-counter/pkg/srv"
	"github.com/HWQuantum/coincidence-counter/pkg/store"
)

const (
	TimeOptionName        = "time"
	WindowOptionName      = "window"
	SyncChannelOptionName = "sync-channel"
	PolicyOptionName      = "policy"
	RepeatOptionName      = "repeat"
	CaptureOptionName     = "capture"
	NoStoreOptionName     = "no-store"
)

type requestFlags struct {
	durationMs  int32
	window      uint64
	syncChannel uint8
	policy      string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int32Var(&f.durationMs, TimeOptionName, 0, "Acquisition time in ms. Default from config")
	cmd.Flags().Uint64Var(&f.window, WindowOptionName, 0, "Coincidence window in time tag units (ps), 0 counts no pairs. Default from config")
	cmd.Flags().Uint8Var(&f.syncChannel, SyncChannelOptionName, 0, "Sync channel. Default from config")
	cmd.Flags().StringVar(&f.policy, PolicyOptionName, "", "Coincidence policy: all-pairs or sync-relative. Default from config")
}

func (f *requestFlags) request(cmd *cobra.Command) srv.MeasureRequest {
	req := srv.MeasureRequest{
		DurationMs: f.durationMs,
		Policy:     f.policy,
	}
	if cmd.Flags().Changed(WindowOptionName) {
		w := f.window
		req.Window = &w
	}
	if cmd.Flags().Changed(SyncChannelOptionName) {
		ch := f.syncChannel
		req.SyncChannel = &ch
	}
	return req
}

func NewCommand(cfg *config.Config) *cobra.Command {
	var flags requestFlags
	var repeat int
	var captureFile string
	var noStore bool
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Run acquisitions on the configured device and print the counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if repeat < 1 {
				return fmt.Errorf("--%s must be at least 1", RepeatOptionName)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			var st *store.Store
			if !noStore {
				var err error
				if st, err = store.Open(cfg.DBPath); err != nil {
					return fmt.Errorf("open run store %s: %w", cfg.DBPath, err)
				}
				defer st.Close()
			}
			req := flags.request(cmd)
			req.CaptureFile = captureFile
			return Repeat(ctx, cmd.OutOrStdout(), srv.NewMeasurer(cfg, st), req, repeat)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&repeat, RepeatOptionName, 1, "Number of consecutive acquisitions")
	cmd.Flags().StringVar(&captureFile, CaptureOptionName, "", "Write raw FIFO bursts to this file. Numbered per run with --repeat")
	cmd.Flags().BoolVar(&noStore, NoStoreOptionName, false, "Do not record runs in the run store")
	return cmd
}

// Repeat runs n measurements, printing each and a summary when n > 1
func Repeat(ctx context.Context, out io.Writer, m *srv.Measurer, req srv.MeasureRequest, n int) error {
	captureFile := req.CaptureFile
	var counts []report.Counts
	for i := 0; i < n; i++ {
		if captureFile != "" && n > 1 {
			req.CaptureFile = fmt.Sprintf("%s.%d", captureFile, i)
		}
		run, err := m.Measure(ctx, req)
		if err != nil {
			return err
		}
		if err := report.WriteRun(out, run); err != nil {
			return err
		}
		fmt.Fprintln(out)
		counts = append(counts, report.Counts{Singles: run.Singles, Coincidences: run.Coincidences})
	}
	if n > 1 {
		return report.WriteSummary(out, report.Summarize(counts))
	}
	return nil
}
