package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpLayer "elena-agent/http"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the affordability HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		validator := httpLayer.NewRequestValidator()
		affordabilityHandler := httpLayer.NewAffordabilityHandler(a.Affordability, validator)
		termOptionsHandler := httpLayer.NewTermOptionsHandler(a.TermOptions, validator)

		rateLimiter := httpLayer.NewRateLimiter(cfg.Server.RateLimitPerMinute, cfg.Server.RateLimitBurst)
		defer rateLimiter.Stop()

		router := httpLayer.NewRouter(httpLayer.RouterConfig{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RateLimiter:    rateLimiter,
		}, affordabilityHandler, termOptionsHandler)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		server := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}

		serverErr := make(chan error, 1)
		go func() {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		select {
		case err := <-serverErr:
			return eris.Wrap(err, "server listen")
		case <-ctx.Done():
			zap.L().Info("shutting down server")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server shutdown")
		}
		zap.L().Info("server exited")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
