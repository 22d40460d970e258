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

package runs

import (
	"github.com/spf13/cobra"

	"github.com/HWQuantum/coincidence-counter/pkg/command"
	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/report"
)

const (
	LimitOptionName = "limit"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect runs recorded by the API server",
	}
	cmd.AddCommand(NewListCommand(cfg))
	cmd.AddCommand(NewGetCommand(cfg))
	return cmd
}

func NewListCommand(cfg *config.Config) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := command.NewApiClient(cfg).ListRuns(limit)
			if err != nil {
				return err
			}
			return report.WriteRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVar(&limit, LimitOptionName, 20, "Maximum number of runs. 0 lists all")
	return cmd
}

func NewGetCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Print the counts of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := command.NewApiClient(cfg).GetRun(args[0])
			if err != nil {
				return err
			}
			return report.WriteRun(cmd.OutOrStdout(), run)
		},
	}
	return cmd
}
