package main

import (
	"github.com/spf13/cobra"

	"captiontrans/internal/serverrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var opts serverrun.Options

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP subtitle server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return serverrun.Run(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Bind, "bind", "", "Listen address (overrides server.bind)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.SkipNetworkChecks, "skip-network-checks", false, "Skip the startup backend reachability check")
	return cmd
}
