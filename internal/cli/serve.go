package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanglvm/duriancare/internal/server"
)

// NewServeCmd creates the 'serve' command for running the local HTTP API.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		Long: `Start the DurianCare HTTP API for a web or mobile front end.

Endpoints:
  GET    /health                          liveness
  GET    /api/summary                     dashboard totals and recent scans
  GET    /api/info                        about, model and preferences
  GET    /api/records?q=                  history, newest first
  GET    /api/records/{id}                one assessment
  DELETE /api/records/{id}?confirm=true   delete one assessment
  POST   /api/records/delete              delete several {"ids":[..],"confirm":true}
  POST   /api/assessments                 upload an image and classify it
  POST   /api/assessments/{session}/commit  log the result
  DELETE /api/assessments/{session}       discard the result
  GET    /api/onboarding                  walkthrough and onboarding state
  POST   /api/onboarding                  mark onboarding as seen
  POST   /api/reset?confirm=true          factory reset`,
		Example: `  duriancare serve
  duriancare serve --addr 0.0.0.0:8088`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

// runServe starts the HTTP API with signal handling.
// Implements graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe(addr string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	srv := server.New(a.store, a.history, a.newPipeline, server.Options{
		Addr:           addr,
		SessionTTL:     a.cfg.SessionTTL(),
		MaxUploadBytes: a.cfg.Server.MaxUploadMB << 20,
		Haptic:         a.cfg.Preferences.Haptic,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Printf("Received signal: %v, shutting down gracefully...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return srv.Run(ctx)
}
