package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reikiduel/reiki-server-go/internal/catalog"
	"github.com/reikiduel/reiki-server-go/internal/config"
	"github.com/reikiduel/reiki-server-go/internal/server"
)

var (
	configPath = flag.String("config", "", "path to configuration file (built-in defaults when empty)")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting reiki duel server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Load the card catalog: database, file, or the embedded set
	defs, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to load card catalog", zap.Error(err))
	}
	logger.Info("card catalog loaded", zap.Int("cards", len(defs)))

	srv := server.New(cfg, defs, logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: srv.Handler(),
	}

	// Start HTTP server
	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	logger.Info("reiki duel server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	// Cancel every running duel and close their websockets
	srv.Shutdown()

	logger.Info("reiki duel server stopped")
}

func loadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]catalog.CardDefinition, error) {
	switch {
	case cfg.Database.URL != "":
		store, err := catalog.NewStore(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Definitions(ctx)
	case cfg.Game.CardFile != "":
		return catalog.LoadFile(cfg.Game.CardFile)
	default:
		return catalog.Default(), nil
	}
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
