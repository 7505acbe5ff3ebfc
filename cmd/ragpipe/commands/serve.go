package commands

import (
	"github.com/spf13/cobra"

	"ragpipe/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for querying and ingestion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		pipe, cfg, err := buildPipeline(true, logger)
		if err != nil {
			return err
		}
		if err := loadIndexIfPresent(pipe, logger); err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		return server.New(pipe, logger).Run(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to the configured server.addr)")
}
