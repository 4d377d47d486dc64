/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the worktime engine server: configuration,
  dependency wiring, the rollover scheduler, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (env / .env, overridable by flags)
  2. Initialize the SQLite store
  3. Wire the worktime service and HTTP handlers
  4. Start the rollover scheduler
  5. Start the server; shut down cleanly on SIGINT/SIGTERM

EXAMPLES:
  # Run with file database
  ./server -db=./data/worktime.db

  # Run with in-memory database
  ./server -db=:memory:

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/timeclerk/worktime-engine/api"
	"github.com/timeclerk/worktime-engine/config"
	"github.com/timeclerk/worktime-engine/store/sqlite"
	"github.com/timeclerk/worktime-engine/worktime"
)

func main() {
	cfg := config.Load()

	port := flag.String("port", cfg.ServerPort, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path (':memory:' for in-memory)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	svc := worktime.NewService(store)
	handler := api.NewHandler(svc, logger)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	scheduler := api.NewRolloverScheduler(svc, logger, cfg.RolloverInterval)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
