package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceledger/internal/config"
	"github.com/kozaktomas/faceledger/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Ledger web server.

The server exposes the register and recognize endpoints for attendance
marking, the attendance ledger, the subject roster and an async retrain
job under /api/v1.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	fmt.Printf("Loading face cascade from %s...\n", cfg.Data.CascadePath)
	detector, err := newDetector(cfg)
	if err != nil {
		return err
	}

	svc := newService(cfg, detector)
	if info, err := svc.ModelInfo(); err == nil {
		fmt.Printf("Loaded model: %d samples, %d subjects, %d components (trained %s)\n",
			info.Samples, info.Subjects, info.Components, info.TrainedAt.Format(time.DateTime))
	} else {
		fmt.Println("No trained model yet - register a face to create one")
	}

	server := web.NewServer(cfg, svc, Version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Ledger on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
