package cmd

import (
	"os/signal"
	"syscall"

	"github.com/TFMV/fsview/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP backend",
	Long: `Run the HTTP backend serving tree projections, file operations and
settings, and streaming change events over a websocket at /api/events.

Examples:
  fsview serve
  fsview serve --port 8080 --allowed-origins http://localhost:5173`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(rt.config.Server, rt.facade, rt.metrics, rt.logger.Named("http"))
		rt.logger.Info("starting fsview",
			zap.String("version", version),
			zap.String("addr", rt.config.Server.Addr()),
		)
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "127.0.0.1", "Address to listen on")
	serveCmd.Flags().Int("port", 1420, "Port to listen on")
	serveCmd.Flags().StringSlice("allowed-origins", nil, "Allowed CORS and websocket origins")
	serveCmd.Flags().Int("event-buffer", 128, "Per-client event buffer size")

	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.allowed_origins", serveCmd.Flags().Lookup("allowed-origins"))
	viper.BindPFlag("events.buffer", serveCmd.Flags().Lookup("event-buffer"))
}
