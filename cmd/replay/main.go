package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"

	"rejectlearn/config"
	"rejectlearn/db"
	"rejectlearn/logging"
	"rejectlearn/ml"
	"rejectlearn/replay"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config")
	journalPath := flag.String("journal", "", "observation journal to replay")
	model := flag.String("model", "", "override the configured model")
	save := flag.Bool("save", false, "store the evaluation rows in the journal")
	flag.Parse()

	if *journalPath == "" {
		log.Fatal("journal is required")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *model != "" {
		cfg.Classifier.Model = *model
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid model: %v", err)
		}
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	journal, err := db.Open(*journalPath)
	if err != nil {
		logger.Fatalf("failed to open journal: %v", err)
	}
	defer journal.Close()

	observations, err := journal.Observations()
	if err != nil {
		logger.Fatalf("failed to read observations: %v", err)
	}

	classifier, err := ml.NewClassifier(cfg.ClassifierConfig(), logger)
	if err != nil {
		logger.Fatalf("failed to build classifier: %v", err)
	}
	gate, err := ml.NewRepairGate(cfg.RepairConfig(), rand.New(rand.NewSource(cfg.Classifier.Seed)))
	if err != nil {
		logger.Fatalf("failed to build repair gate: %v", err)
	}
	runner, err := replay.NewRunner(classifier, gate, cfg.Classifier.Model, logger)
	if err != nil {
		logger.Fatalf("failed to build runner: %v", err)
	}

	report, err := runner.Run(context.Background(), observations)
	if err != nil {
		logger.Fatalf("replay failed: %v", err)
	}

	if *save {
		for _, e := range report.Evaluations() {
			if err := journal.SaveEvaluation(e); err != nil {
				logger.Fatalf("failed to save evaluation: %v", err)
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Fatalf("failed to write report: %v", err)
	}
}
