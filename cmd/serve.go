package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sqlpilot/sqlpilot/internal/api"
	"github.com/sqlpilot/sqlpilot/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversation API over HTTP",
	Long: `Expose the agent as an HTTP API:

  POST /v1/chat    {"thread_id": "...", "message": "..."}
  GET  /v1/schema  registered tables and fields
  GET  /metrics    Prometheus metrics
  GET  /healthz    liveness probe

Thread ids returned by /v1/chat route follow-up answers to the right
conversation.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	server := api.NewServer(cfg.Server, application.agent, application.registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logging.GetLogger().WithField("signal", sig.String()).Info("shutting down")
		return server.Shutdown(context.Background())
	}
}
