package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prepdeck/backend/internal/api"
	"github.com/prepdeck/backend/internal/importer"
	"github.com/prepdeck/backend/internal/infrastructure/config"
	"github.com/prepdeck/backend/internal/scheduler"
	"github.com/prepdeck/backend/internal/selection"
	"github.com/prepdeck/backend/internal/service"
	"github.com/prepdeck/backend/internal/store"
	"github.com/prepdeck/backend/internal/worker"
)

// @title           Prepdeck API
// @version         1.0
// @description     Exam-prep backend — adaptive practice-question selection, answer tracking and catalog management.

// @host      localhost:8080
// @BasePath  /

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pool := worker.NewPool[error](3, 32)
	defer pool.Stop()

	engine := selection.NewEngine(db, logger)
	answerSvc := service.NewAnswerService(db, pool, logger)
	imp := importer.New(db)
	handler := api.NewHandler(db, engine, answerSvc, imp, logger)

	sched := scheduler.New(db, logger)
	sched.Start()
	defer sched.Stop()

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	api.RegisterRoutes(mux, handler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
