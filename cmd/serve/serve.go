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

package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/srv"
	"github.com/HWQuantum/coincidence-counter/pkg/store"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var address string
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the measurement API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.API.Address = address
			}
			if port != 0 {
				cfg.API.Port = port
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open run store %s: %w", cfg.DBPath, err)
			}
			defer st.Close()
			server := srv.NewApiServer(ctx, cfg, srv.NewMeasurer(cfg, st), st)
			return server.Run()
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultAPIAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Port number to bind. E.g. %d", config.DefaultAPIPort))
	return cmd
}
