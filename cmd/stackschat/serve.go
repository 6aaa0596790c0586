package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stacks-chat-assistant/server/internal/assistant/engine"
	"github.com/stacks-chat-assistant/server/internal/assistant/openrouter"
	"github.com/stacks-chat-assistant/server/internal/assistant/repo"
	"github.com/stacks-chat-assistant/server/internal/server"
	"github.com/stacks-chat-assistant/server/internal/stacks"
	logx "github.com/stacks-chat-assistant/server/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadAppConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		rdb, err := cfg.Redis.New()
		if err != nil {
			return fmt.Errorf("initialise redis client: %w", err)
		}
		defer rdb.Close()

		ttl, err := time.ParseDuration(cfg.Conversation.TTL)
		if err != nil {
			return fmt.Errorf("invalid CONVERSATION_TTL %q: %w", cfg.Conversation.TTL, err)
		}

		network := stacks.ParseNetwork(cfg.Stacks.Network)

		reg := prometheus.NewRegistry()
		eng := engine.New(
			cfg.Engine,
			openrouter.NewClient(openrouter.Config{
				APIKey:  cfg.Engine.APIKey,
				BaseURL: cfg.Engine.BaseURL,
			}, nil),
			engine.WithMetrics(engine.NewMetrics(reg)),
		)

		srv := server.New(
			eng,
			repo.NewRedisChatRepository(rdb, ttl),
			repo.NewRedisTransferRepository(rdb),
			stacks.NewBalanceClient(network, nil),
			network,
			reg,
		)

		httpSrv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logx.Info().Str("addr", cfg.Server.Addr).Str("network", network.Name()).Msg("starting HTTP server")
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			logx.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}
		return nil
	},
}
