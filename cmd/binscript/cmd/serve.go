/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/binscript/pkg/api"
	"github.com/ssargent/binscript/pkg/metrics"
	"github.com/ssargent/binscript/pkg/xlog"
)

// newServeCmd represents the serve command
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the binscript REST API server. It decodes and encodes streams with
the loaded language definition and, unless --archive-dir is empty, keeps
captures in a pebble archive.

Examples:
  binscript --schema robot.def serve --port 9300
  binscript --schema robot.def serve --api-key=mysecretkey --archive-dir ./captures`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCodec()
			if err != nil {
				return err
			}

			cfg := appConfig.Server
			flags := cmd.Flags()
			if flags.Changed("bind") {
				cfg.Bind, _ = flags.GetString("bind")
			}
			if flags.Changed("port") {
				cfg.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("api-key") {
				cfg.APIKey, _ = flags.GetString("api-key")
			}
			archiveDir := archiveDirFlag(cmd)

			var captures api.CaptureStore
			if archiveDir != "" {
				a, err := getContainer().GetArchiveFactory().OpenArchive(archiveDir)
				if err != nil {
					return err
				}
				defer a.Close()
				captures = a
			}
			if cfg.APIKey == "" {
				xlog.Warn("no API key configured, the API is open to anyone who can reach it")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			starter := getContainer().GetServerFactory().CreateServerStarter()
			return starter.StartServer(ctx, c, captures, metrics.New(), api.ServerConfig{
				Bind:   cfg.Bind,
				Port:   cfg.Port,
				APIKey: cfg.APIKey,
			})
		},
	}

	cmd.Flags().String("bind", "", "Address to bind to (default from config)")
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().String("api-key", "", "API key required in X-API-Key")
	addArchiveDirFlag(cmd.Flags())
	return cmd
}
