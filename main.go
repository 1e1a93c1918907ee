package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"rejectlearn/config"
	"rejectlearn/db"
	rhttp "rejectlearn/http"
	"rejectlearn/logging"
	"rejectlearn/ml"
	"rejectlearn/replay"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	flag.Parse()

	// 1. Load config
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}

	// 2. Logger
	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Printf("Failed to build logger: %v", err)
		return 1
	}
	defer logger.Sync()

	// 3. Classifier and repair gate
	classifier, err := ml.NewClassifier(cfg.ClassifierConfig(), logger)
	if err != nil {
		logger.Errorf("Failed to build classifier: %v", err)
		return 1
	}
	gate, err := ml.NewRepairGate(cfg.RepairConfig(), rand.New(rand.NewSource(cfg.Classifier.Seed)))
	if err != nil {
		logger.Errorf("Failed to build repair gate: %v", err)
		return 1
	}
	logger.Infow("classifier ready", "model", cfg.Classifier.Model, "encoder", cfg.Classifier.Encoder, "warmup", cfg.Classifier.Warmup)

	// 4. Replay the journal, if any
	if cfg.Journal.Path != "" {
		if err := replayJournal(cfg, classifier, gate, logger); err != nil {
			logger.Errorf("Failed to replay journal: %v", err)
			return 1
		}
	}

	if cfg.Http.Port <= 0 {
		return 0
	}

	// 5. Serve until a signal arrives or the server fails
	serverConfig := rhttp.DefaultServerConfig()
	serverConfig.Port = cfg.Http.Port
	server := rhttp.NewServer(serverConfig, classifier, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	if err := serve(server, quit, logger); err != nil {
		logger.Errorf("HTTP server failed: %v", err)
		return 1
	}

	logger.Info("Exiting")
	return 0
}

type statusServer interface {
	Start() error
	Stop() error
}

// serve starts server and blocks until quit fires, stopping it gracefully, or
// until Start itself returns.
func serve(server statusServer, quit <-chan os.Signal, logger *zap.SugaredLogger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Infow("Shutting down...", "signal", sig.String())
		if err := server.Stop(); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return <-errCh
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func replayJournal(cfg *config.Config, classifier *ml.Classifier, gate *ml.RepairGate, logger *zap.SugaredLogger) error {
	journal, err := db.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer journal.Close()

	observations, err := journal.Observations()
	if err != nil {
		return err
	}
	runner, err := replay.NewRunner(classifier, gate, cfg.Classifier.Model, logger)
	if err != nil {
		return err
	}
	report, err := runner.Run(context.Background(), observations)
	if err != nil {
		return err
	}
	for _, e := range report.Evaluations() {
		if err := journal.SaveEvaluation(e); err != nil {
			return fmt.Errorf("save evaluation: %w", err)
		}
	}
	logger.Infow("journal replayed",
		"observations", report.Total,
		"flagged", report.Flagged,
		"accuracy", report.OverallAccuracy,
		"duration", report.Duration)
	return nil
}
