package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saharlajmi1/recmooc4all/config"
	"github.com/saharlajmi1/recmooc4all/internal/httpapi"
	"github.com/saharlajmi1/recmooc4all/providers/observability"
	"github.com/saharlajmi1/recmooc4all/providers/observability/slogobs"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chatbot HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observer := slogobs.New()

	bot, store, err := buildChatbot(ctx, cfg, observer)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	api := httpapi.NewServer(bot,
		httpapi.WithHistory(store),
		httpapi.WithObserver(observer),
	)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		observer.Info(ctx, "http server listening", observability.String("addr", cfg.Server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	observer.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err = <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
