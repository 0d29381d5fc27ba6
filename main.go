package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/lithuaningo/internal/api"
	"github.com/example/lithuaningo/internal/backend"
	"github.com/example/lithuaningo/internal/config"
	"github.com/example/lithuaningo/internal/excel"
	"github.com/example/lithuaningo/internal/logger"
	"github.com/example/lithuaningo/internal/scheduler"
	"github.com/example/lithuaningo/internal/storage"
)

func main() {
	importPath := flag.String("import", "", "import a sentence deck from an xlsx/csv file and exit")
	sweepOnce := flag.Bool("sweep", false, "run one retention sweep and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	if err := storage.Connect(storage.Options{
		Type:        cfg.DBType,
		DataDir:     cfg.DataDir,
		DatabaseURL: cfg.DatabaseURL,
	}); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer storage.Close()

	if *importPath != "" {
		runImport(zl, *importPath)
		return
	}

	sweeper := scheduler.New(cfg.RetentionDays, zl)
	if *sweepOnce {
		purged, err := sweeper.RunManualSweep(context.Background())
		if err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		zl.Info("sweep finished", zap.Int("purged", purged))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	baseURL := cfg.APIBaseURL
	var srv *http.Server
	if cfg.LocalMode {
		srv = &http.Server{
			Addr:    cfg.LocalAddr,
			Handler: api.NewServer(zl).Router(),
		}
		go func() {
			zl.Info("local sync API listening", zap.String("addr", cfg.LocalAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zl.Error("local API server error", zap.Error(err))
			}
		}()
		baseURL = "http://" + cfg.LocalAddr
	}

	client := backend.New(baseURL, cfg.APIKey, zl)
	sweeper.Start()

	// Surface a version mismatch early; failure here is not fatal
	go func() {
		infoCtx, infoCancel := context.WithTimeout(ctx, 10*time.Second)
		defer infoCancel()
		info, err := client.FetchAppInfo(infoCtx)
		if err != nil {
			zl.Warn("app info check failed", zap.Error(err))
			return
		}
		zl.Info("sync API reachable",
			zap.String("latest_version", info.LatestVersion),
			zap.Bool("maintenance", info.MaintenanceMode))
	}()

	done := make(chan struct{})
	go func() {
		sig := <-sigChan
		zl.Info("received signal", zap.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		sweeper.Stop()
		if srv != nil {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zl.Warn("error during shutdown", zap.Error(err))
			}
		}
		close(done)
	}()

	zl.Info("sync daemon started", zap.Bool("local_mode", cfg.LocalMode))
	<-done
	zl.Info("sync daemon stopped")
}

func runImport(zl *zap.Logger, path string) {
	importCfg := excel.DefaultImportConfig()
	importCfg.FilePath = path

	result, err := excel.ImportSentences(context.Background(), importCfg)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	zl.Info("import finished",
		zap.Int("processed", result.TotalProcessed),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	for _, e := range result.Errors {
		zl.Warn("import row error", zap.String("detail", e))
	}
}
