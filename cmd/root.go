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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/HWQuantum/coincidence-counter/cmd/completion"
	"github.com/HWQuantum/coincidence-counter/cmd/config"
	"github.com/HWQuantum/coincidence-counter/cmd/device"
	"github.com/HWQuantum/coincidence-counter/cmd/measure"
	"github.com/HWQuantum/coincidence-counter/cmd/pairs"
	"github.com/HWQuantum/coincidence-counter/cmd/plot"
	"github.com/HWQuantum/coincidence-counter/cmd/runs"
	"github.com/HWQuantum/coincidence-counter/cmd/serve"
	pkgconfig "github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
	ConfigOptionName   = "config"
)

// NewRootCommand builds the command tree. Sub-commands share cfg, which is
// loaded from the config file before any of them runs.
func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel, configPath string
	cfg := pkgconfig.NewDefaultConfig()
	cmd := &cobra.Command{
		Use:           "coincidence-counter",
		Short:         "Count singles and coincidences from time tagged photon streams",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := pkgconfig.Load(configPath)
			if err != nil {
				return err
			}
			*cfg = *loaded
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
				return err
			}
			log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(completion.NewCommand())
	cmd.AddCommand(config.NewCommand(cfg))
	cmd.AddCommand(device.NewCommand(cfg))
	cmd.AddCommand(measure.NewCommand(cfg))
	cmd.AddCommand(measure.NewReplayCommand(cfg))
	cmd.AddCommand(pairs.NewCommand())
	cmd.AddCommand(plot.NewCommand(cfg))
	cmd.AddCommand(runs.NewCommand(cfg))
	cmd.AddCommand(serve.NewCommand(cfg))
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	cmd.PersistentFlags().StringVar(&configPath, ConfigOptionName, "", fmt.Sprintf("Config file. Default: %s", pkgconfig.DefaultConfigPath()))
	return cmd
}
