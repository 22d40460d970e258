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

package plot

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HWQuantum/coincidence-counter/pkg/chart"
	"github.com/HWQuantum/coincidence-counter/pkg/command"
	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
)

const (
	OutOptionName   = "out"
	LimitOptionName = "limit"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot runs recorded by the API server",
	}
	cmd.AddCommand(NewSinglesCommand(cfg))
	cmd.AddCommand(NewHistoryCommand(cfg))
	return cmd
}

func NewSinglesCommand(cfg *config.Config) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "singles ID",
		Short: "Bar chart of the singles of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := command.NewApiClient(cfg).GetRun(args[0])
			if err != nil {
				return err
			}
			if err := chart.Singles(run.Singles, fmt.Sprintf("run %d singles", run.Seq), out); err != nil {
				return err
			}
			log.Info("Saved %s", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, OutOptionName, "singles.png", "Output file, format by extension")
	return cmd
}

func NewHistoryCommand(cfg *config.Config) *cobra.Command {
	var out string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Coincidences of every active pair across recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := command.NewApiClient(cfg).ListRuns(limit)
			if err != nil {
				return err
			}
			// oldest first
			for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
				runs[i], runs[j] = runs[j], runs[i]
			}
			if err := chart.History(runs, chart.ActivePairs(runs), out); err != nil {
				return err
			}
			log.Info("Saved %s", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, OutOptionName, "history.png", "Output file, format by extension")
	cmd.Flags().IntVar(&limit, LimitOptionName, 50, "Number of recent runs")
	return cmd
}
