package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"exam-assembly-server/accesscode"
	"exam-assembly-server/cache"
	"exam-assembly-server/config"
	"exam-assembly-server/db"
	"exam-assembly-server/handlers"
	"exam-assembly-server/ingestion"
	"exam-assembly-server/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", "error", err)
	}
	defer store.Close()

	variantCache := cache.NewNoop()
	if cfg.Redis.Addr != "" {
		variantCache, err = cache.NewRedisVariantCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, log)
		if err != nil {
			log.Fatal("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		}
		log.Info("Variant cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}
	defer variantCache.Close()

	deps := &handlers.Deps{
		Store:    store,
		Cache:    variantCache,
		Log:      log,
		Exam:     cfg.Exam,
		Codes:    accesscode.NewGenerator(cfg.AccessCode.Length, nil),
		BankPath: cfg.QuestionBank.Path,
	}
	router, err := handlers.SetupRouter(deps, cfg.FIRM)
	if err != nil {
		log.Fatal("Failed to set up router", "error", err)
	}

	if cfg.QuestionBank.Path != "" {
		if _, err := ingestion.ProcessBank(ctx, store, cfg.QuestionBank.Path, log); err != nil {
			log.Error("Initial question bank ingestion failed", "path", cfg.QuestionBank.Path, "error", err)
		}
		go runIngestion(ctx, store, cfg.QuestionBank.Path, cfg.IngestionInterval, log)
	}

	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	// Goroutine to gracefully shut down the server
	go func() {
		<-ctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", "error", err)
		}
	}()

	log.Info("Exam assembly server starting", "addr", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server startup error", "error", err)
	}
	log.Info("Server exited gracefully.")
}

// openStore connects to PostgreSQL when a database URL is configured and falls back to
// the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (db.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is empty, using the in-memory store")
		return db.NewMemoryStore(), nil
	}

	pool, err := db.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	store := db.NewPostgresStore(pool, log)
	if err := store.CreateSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	log.Info("Database connection established and schema ensured")
	return store, nil
}

// runIngestion reloads the question bank every interval until ctx is cancelled.
func runIngestion(ctx context.Context, store db.Store, path string, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		log.Warn("Scheduled ingestion disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info("Running scheduled question bank ingestion", "path", path)
			if _, err := ingestion.ProcessBank(ctx, store, path, log); err != nil {
				log.Error("Scheduled ingestion failed", "path", path, "error", err)
				store.LogAdminEvent(ctx, "system", "INGESTION_FAILED", path, err.Error())
			}
		}
	}
}
