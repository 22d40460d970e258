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

package device

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/device/drivers"
	"github.com/HWQuantum/coincidence-counter/pkg/device/hydraharp"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Show device drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "configured: %s (index %d)\n", cfg.Device.Kind, cfg.Device.Index)
			fmt.Fprintf(out, "drivers: %v\n", drivers.Kinds())
			version, err := hydraharp.LibraryVersion()
			switch {
			case errors.Is(err, hydraharp.ErrNotSupported):
				fmt.Fprintln(out, "hydraharp library: not built in")
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "hydraharp library: %s\n", version)
			}
			return nil
		},
	}
	return cmd
}
