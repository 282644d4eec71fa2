package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/vaultlint/internal/api"
	"github.com/dgallion1/vaultlint/internal/vault"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the vault and its reports over HTTP",
	Long: `Starts the JSON API on the configured port. Races, parsed documents,
cities and consistency reports are served read-only; /metrics exposes
Prometheus metrics. Set VAULTLINT_API_KEY to require a bearer token.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	level, _ := cfg.SlogLevel()
	log := slog.New(slog.NewJSONHandler(cmd.OutOrStdout(), &slog.HandlerOptions{Level: level}))

	v, err := vault.Open(cfg.VaultPath)
	if err != nil {
		return err
	}
	httpServer := newHTTPServer(v, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting vaultlint", "port", cfg.Port, "vault", v.Root())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newHTTPServer(v *vault.Vault, log *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(v, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
