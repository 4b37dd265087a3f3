package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/temcen/movierec/internal/app"
	"github.com/temcen/movierec/internal/config"
)

const (
	// The first load builds every similarity matrix, which takes a while on
	// the full MovieLens set.
	initialLoadTimeout = 5 * time.Minute
	shutdownTimeout    = 30 * time.Second
)

// newLogger tags every startup and shutdown line with the service name.
func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "movierec: ", log.LstdFlags|log.Lmsgprefix)
}

func main() {
	logger := newLogger(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		logger.Fatalf("failed to initialize: %v", err)
	}

	logger.Printf("loading %s data and building recommendation matrices", cfg.Data.Source)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), initialLoadTimeout)
	err = application.Start(loadCtx)
	cancelLoad()
	if err != nil {
		logger.Fatalf("initial matrix build failed: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	logger.Printf("recommendation API listening on :%s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Printf("received %s, draining requests", sig)
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server stopped: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("forced HTTP shutdown: %v", err)
	}
	// Stops the event consumer before closing backend clients.
	if err := application.Shutdown(ctx); err != nil {
		logger.Printf("error releasing backends: %v", err)
	}

	logger.Println("stopped")
}
