package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/newsgrab/api"
	"github.com/use-agent/newsgrab/api/handler"
	"github.com/use-agent/newsgrab/api/middleware"
	"github.com/use-agent/newsgrab/batch"
	"github.com/use-agent/newsgrab/cache"
	"github.com/use-agent/newsgrab/coder"
	"github.com/use-agent/newsgrab/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the capture API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("newsgrab starting",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"mode", cfg.Server.Mode,
			"output", cfg.Store.OutputDir,
		)
		if cfg.Auth.Enabled && len(cfg.Auth.APIKeys) == 0 {
			slog.Warn("auth enabled without NEWSGRAB_API_KEYS, API is open")
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		prompt, err := coder.LoadPrompt(cfg.LLM.PromptFile)
		if err != nil {
			return err
		}

		cc := cache.New(cfg.Cache.MaxEntries)
		defer cc.Close()
		rl := middleware.NewRateLimiter(cfg.RateLimit)
		defer rl.Close()
		jobs := handler.NewJobs(batch.NewRunner(a.capturer, cfg.Capture.SessionGap), cc, webhook.NewNotifier())
		defer jobs.Close()

		router := api.NewRouter(api.Deps{
			Capturer:    a.capturer,
			Jobs:        jobs,
			Cache:       cc,
			RateLimiter: rl,
			Store:       a.store,
			NewModel:    modelFactory(cfg.LLM),
			Prompt:      prompt,
		}, cfg, time.Now())

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{Addr: addr, Handler: router}

		ctx := cmd.Context()
		errCh := make(chan error, 1)
		go func() {
			slog.Info("HTTP server listening", "addr", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server: %w", err)
			}
			return nil
		case <-ctx.Done():
			slog.Info("shutdown signal received")
		}

		// Give in-flight requests 5 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server forced shutdown", "error", err)
		} else {
			slog.Info("HTTP server drained gracefully")
		}
		slog.Info("newsgrab stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
