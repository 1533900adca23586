package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve starts the automation web service and blocks until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	db, registry, executor, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	port := r.config.Server.Port
	if flagPort := cmd.Int("port"); flagPort > 0 {
		port = int(flagPort)
	}
	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, port)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(server.NewAutomationHandler(registry, executor, r.logger))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		r.logger.Info("listening", "addr", addr)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
