package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "net/http/pprof"

	"github.com/medpreis/festbetrag-api/compare"
	"github.com/medpreis/festbetrag-api/config"
	"github.com/medpreis/festbetrag-api/data"
	"github.com/medpreis/festbetrag-api/handlers"
	"github.com/medpreis/festbetrag-api/health"
	"github.com/medpreis/festbetrag-api/importer"
	"github.com/medpreis/festbetrag-api/logging"
	"github.com/medpreis/festbetrag-api/scheduler"
	"github.com/medpreis/festbetrag-api/server"
	"github.com/medpreis/festbetrag-api/store"
	"github.com/medpreis/festbetrag-api/validation"
)

func init() {
	// Read the env variables from the working directory, falling back to
	// the executable directory
	if err := godotenv.Load(); err != nil {
		ex, err := os.Executable()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to get executable path:", err)
			os.Exit(1)
		}

		if err := os.Chdir(filepath.Dir(ex)); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to change directory:", err)
			os.Exit(1)
		}
	}
}

func main() {
	logging.InitLogger("logs")

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	recordStore, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logging.Error("Failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer recordStore.Close()

	statusContainer := data.NewStatusContainer()
	statusContainer.SetServerStartTime(time.Now())

	validator := validation.NewFieldValidator()
	imp := importer.New(recordStore, validator)
	matcher := compare.NewMatcher(recordStore)
	healthChecker := health.NewHealthChecker(recordStore, statusContainer)

	sched := scheduler.NewScheduler(recordStore, statusContainer, imp, cfg.ImportDir)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	handler := handlers.NewHandler(recordStore, validator, matcher, statusContainer, healthChecker, cfg.SearchLimit)
	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
	}
}
