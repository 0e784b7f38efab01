package cli

import (
	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/server"
)

// newServeCmd runs the JSON tool server.
func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON tool server",
		Long:  "Run the JSON tool server. Every CLI operation is exposed as a POST endpoint under /v1, taking storage URIs so remote callers can edit archives living in redis, mongo, or S3.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			listen := cfg.Server.Addr
			if cmd.Flags().Changed("addr") {
				listen = addr
			}
			srv := server.New(server.Config{
				Addr:    listen,
				Storage: cfg.storageConfig(),
			}, loggerFromContext(cmd.Context()))
			return srv.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}
