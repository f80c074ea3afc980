// Package serve implements the serve command
package serve

import (
	"os"
	"os/signal"
	"syscall"

	"autosales/salesdash/cmd/root"
	"autosales/salesdash/internal/api"
	"autosales/salesdash/internal/container"

	"github.com/spf13/cobra"
)

var address string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sales pipeline as a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		addr := address
		if addr == "" {
			addr = c.GetConfig().Server.Address
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.Serve(ctx, addr, NewHandler(c).Routes(), c.GetLogger())
	},
}

func init() {
	Cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from config server.address)")
}

// NewHandler builds the API handler from the container.
// The metrics endpoint is mounted when server.metrics is enabled.
func NewHandler(c *container.Container) *api.Handler {
	svc := api.Services{
		Pipeline: c.GetPipeline(),
		Storage:  c.GetStorage(),
		History:  c.GetHistory(),
		Reports:  c.GetReports(),
		Reader:   c.GetReader(),
		Logger:   c.GetLogger(),
	}
	if c.GetConfig().Server.Metrics {
		svc.Metrics = c.GetMetrics()
	}
	return api.NewHandler(svc)
}
