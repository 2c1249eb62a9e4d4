package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/figgest/internal/api"
	"github.com/dgallion1/figgest/internal/config"
	"github.com/dgallion1/figgest/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP extraction API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(cmd, true)

		if p, _ := cmd.Flags().GetString("port"); p != "" {
			v.Set("port", p)
		}
		cfg := config.Load(v)
		if err := cfg.Validate(); err != nil {
			log.Error("invalid configuration", "error", err)
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		orch := pipeline.NewOrchestrator(cfg, pipeline.NewAssembler(cfg, log), log)
		orch.Start(context.Background())

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      api.NewServer(orch, log, cfg),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		done := make(chan struct{})
		go func() {
			defer close(done)
			<-ctx.Done()
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)

			orch.Stop()
		}()

		log.Info("starting figgest", "port", cfg.Port, "output_dir", cfg.OutputDir, "workers", cfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			return err
		}
		<-done
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (overrides FIGGEST_PORT)")
	rootCmd.AddCommand(serveCmd)
}
