package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/deckhand/internal/health"
	"github.com/cameronsjo/deckhand/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON health endpoint",
	Long: `Serve a minimal JSON API used as a target for readiness and smoke tests.

Routes (GET and HEAD):
  /      {"code":200,"message":"OK"}
  /test  {"code":200,"message":"Nope!"}

Settings come from DECKHAND_HEALTH_ADDR, DECKHAND_HEALTH_READ_TIMEOUT,
DECKHAND_HEALTH_WRITE_TIMEOUT, DECKHAND_HEALTH_IDLE_TIMEOUT and
DECKHAND_HEALTH_SHUTDOWN_TIMEOUT; --addr overrides the address.
The server stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default $DECKHAND_HEALTH_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := health.ConfigFromEnv()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return health.NewServer(cfg, logging.FromContext(cmd.Context())).Run(ctx)
}
