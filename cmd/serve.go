package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/restore-pt/clinibot/internal/config"
	"github.com/restore-pt/clinibot/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the CliniBot HTTP API",
	Long: `Start the chat API server.

Required environment variables:
  OPENAI_API_KEY   - OpenAI API key for embeddings and completions
  MILVUS_ADDRESS   - Milvus server address (default: localhost:19530)

The similarity threshold, top-k, and timeouts are read from CLINIBOT_*
environment variables; see internal/config for the full list.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	api := httpapi.New(cfg, p.turns, p.store, p.metrics)
	srv := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[serve] listening on %s", cfg.BindAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		log.Printf("[serve] received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
