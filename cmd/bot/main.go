package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tango/internal/api"
	"tango/internal/config"
	"tango/internal/handler"
	"tango/internal/logger"
	"tango/internal/repository/postgres"
	"tango/internal/service"
	"tango/internal/session"
	"tango/internal/translator"
	"tango/internal/translator/gemini"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Tango Bot", zap.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to database with retries
	db, err := connectDatabase(ctx, cfg.DSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Database connection established")

	if err := runMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	snapshotRepo := postgres.NewSnapshotRepo(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.BotPassword, log)
	snapshotService := service.NewSnapshotService(snapshotRepo, log)
	retentionService := service.NewRetentionService(snapshotRepo, cfg.SnapshotRetentionDays, log)

	tr, err := newTranslator(ctx, cfg.Translator, log)
	if err != nil {
		log.Fatal("Failed to create translator", zap.Error(err))
	}

	// One study session shared by the bot and the API
	controller := session.NewController(tr, nil, log)

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("Bot handler failed", zap.Error(err))
		},
	})
	if err != nil {
		log.Fatal("Failed to create bot", zap.Error(err))
	}

	log.Info("Telegram bot initialized")

	h := handler.NewHandler(ctx, bot, authService, snapshotService, controller, log)
	h.RegisterHandlers()

	go runCleanupJob(ctx, retentionService, log)

	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           api.NewServer(controller, db, cfg.HTTP.Token, log).Routes(cfg.HTTP.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info("HTTP API listening", zap.String("addr", cfg.HTTP.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("HTTP API stopped", zap.Error(err))
				cancel()
			}
		}()
	}

	// Start bot in background
	go func() {
		log.Info("Bot started successfully")
		bot.Start()
	}()

	<-ctx.Done()

	log.Info("Shutdown signal received, stopping...")

	bot.Stop()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down HTTP API", zap.Error(err))
		}
	}

	log.Info("Stopped gracefully")
}

// newTranslator builds the translation backend chosen in config
func newTranslator(ctx context.Context, cfg config.TranslatorConfig, log *zap.Logger) (session.Translator, error) {
	if cfg.Kind == config.TranslatorGemini {
		return gemini.New(ctx, gemini.Config{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			SourceLang: cfg.SourceLang,
			TargetLang: cfg.TargetLang,
			MaxRetries: 3,
			RetryDelay: time.Second,
		}, log)
	}

	dict, err := translator.LoadDictionary(cfg.GlossaryPath, log)
	if err != nil {
		log.Warn("Glossary unavailable, translations will be empty", zap.Error(err))
		return translator.NewDictionary(nil, log), nil
	}
	return dict, nil
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(ctx context.Context, dsn string, log *zap.Logger) (*sql.DB, error) {
	const (
		maxRetries = 30
		retryDelay = 2 * time.Second
	)

	var err error
	for i := 0; i < maxRetries; i++ {
		var db *sql.DB
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				db.SetMaxOpenConns(25)
				db.SetMaxIdleConns(5)
				db.SetConnMaxLifetime(5 * time.Minute)
				return db, nil
			}
			db.Close()
		}

		log.Warn("Failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, log *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		log.Info("Migrations applied successfully")
	}

	return nil
}

// runCleanupJob deletes expired snapshots at startup and then daily
func runCleanupJob(ctx context.Context, retentionService *service.RetentionService, log *zap.Logger) {
	if err := retentionService.CleanupOldSnapshots(ctx); err != nil {
		log.Error("Failed to run initial cleanup", zap.Error(err))
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Cleanup job stopped")
			return
		case <-ticker.C:
			log.Info("Running scheduled cleanup")
			if err := retentionService.CleanupOldSnapshots(ctx); err != nil {
				log.Error("Failed to run scheduled cleanup", zap.Error(err))
			}
		}
	}
}
