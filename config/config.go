// Package config loads the YAML configuration of the classifier service.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"rejectlearn/ml"
	"rejectlearn/monitoring"
)

type Config struct {
	Classifier struct {
		Model    string `yaml:"model"`
		Encoder  string `yaml:"encoder"`
		Warmup   int    `yaml:"warmup"`
		Seed     int64  `yaml:"seed"`
		Accuracy string `yaml:"accuracy"`
		Window   int    `yaml:"window"`
		KNN      struct {
			K int `yaml:"k"`
		} `yaml:"knn"`
		KDE struct {
			MaxStored int `yaml:"max_stored"`
		} `yaml:"kde"`
		NN struct {
			LearningRate float64 `yaml:"learning_rate"`
		} `yaml:"nn"`
		GLM struct {
			LearningRate float64 `yaml:"learning_rate"`
		} `yaml:"glm"`
	} `yaml:"classifier"`
	Repair struct {
		Decision    string  `yaml:"decision"`
		Threshold   float64 `yaml:"threshold"`
		MinAccuracy float64 `yaml:"min_accuracy"`
		MaxAttempts int     `yaml:"max_attempts"`
		CacheSize   int     `yaml:"cache_size"`
	} `yaml:"repair"`
	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Default returns a configuration that runs the Gaussian model with a short
// warmup and no journal or HTTP server.
func Default() *Config {
	var c Config
	c.Classifier.Model = string(ml.ModelGaussian)
	c.Classifier.Encoder = string(ml.EncoderNormal)
	c.Classifier.Warmup = 10
	c.Classifier.Seed = 1
	c.Classifier.Accuracy = string(monitoring.AccuracyTimeWindow)
	c.Classifier.Window = monitoring.DefaultWindowSize
	c.Classifier.KNN.K = ml.DefaultK
	c.Classifier.NN.LearningRate = ml.DefaultNNLearningRate
	c.Classifier.GLM.LearningRate = ml.DefaultGLMLearningRate
	c.Repair.Decision = string(ml.DecisionThreshold)
	c.Repair.Threshold = 0.5
	c.Repair.MinAccuracy = 0.6
	c.Repair.MaxAttempts = 10
	c.Repair.CacheSize = 4096
	c.Log.Level = "info"
	c.Log.MaxSizeMB = 100
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	return &c
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks enum strings and sizes.
func (c *Config) Validate() error {
	switch ml.ModelType(c.Classifier.Model) {
	case ml.ModelGaussian, ml.ModelGLM, ml.ModelKDE, ml.ModelKNN, ml.ModelNN:
	default:
		return fmt.Errorf("classifier.model: unknown model %q", c.Classifier.Model)
	}
	switch ml.EncoderMode(c.Classifier.Encoder) {
	case ml.EncoderRaw, ml.EncoderNormal:
	default:
		return fmt.Errorf("classifier.encoder: unknown mode %q", c.Classifier.Encoder)
	}
	switch monitoring.AccuracyKind(c.Classifier.Accuracy) {
	case monitoring.AccuracyFullHistory, monitoring.AccuracyTimeWindow:
	default:
		return fmt.Errorf("classifier.accuracy: unknown estimator %q", c.Classifier.Accuracy)
	}
	switch ml.DecisionMode(c.Repair.Decision) {
	case ml.DecisionProbability, ml.DecisionThreshold:
	default:
		return fmt.Errorf("repair.decision: unknown mode %q", c.Repair.Decision)
	}
	if c.Classifier.Warmup < 0 {
		return fmt.Errorf("classifier.warmup must not be negative, got %d", c.Classifier.Warmup)
	}
	if c.Classifier.Window <= 0 {
		return fmt.Errorf("classifier.window must be positive, got %d", c.Classifier.Window)
	}
	if c.Classifier.KNN.K <= 0 {
		return fmt.Errorf("classifier.knn.k must be positive, got %d", c.Classifier.KNN.K)
	}
	if c.Classifier.KDE.MaxStored < 0 {
		return fmt.Errorf("classifier.kde.max_stored must not be negative, got %d", c.Classifier.KDE.MaxStored)
	}
	if c.Repair.Threshold < 0 || c.Repair.Threshold > 1 {
		return fmt.Errorf("repair.threshold must be in [0,1], got %v", c.Repair.Threshold)
	}
	if c.Repair.MaxAttempts < 0 {
		return fmt.Errorf("repair.max_attempts must not be negative, got %d", c.Repair.MaxAttempts)
	}
	return nil
}

// ClassifierConfig converts the classifier section for ml.NewClassifier.
func (c *Config) ClassifierConfig() ml.ClassifierConfig {
	return ml.ClassifierConfig{
		Strategy: ml.StrategyConfig{
			Type:            ml.ModelType(c.Classifier.Model),
			K:               c.Classifier.KNN.K,
			MaxStored:       c.Classifier.KDE.MaxStored,
			NNLearningRate:  c.Classifier.NN.LearningRate,
			GLMLearningRate: c.Classifier.GLM.LearningRate,
		},
		Encoder: ml.EncoderMode(c.Classifier.Encoder),
		Model: ml.ModelOptions{
			Warmup:       c.Classifier.Warmup,
			Accuracy:     monitoring.AccuracyKind(c.Classifier.Accuracy),
			MetricWindow: c.Classifier.Window,
		},
		Seed: c.Classifier.Seed,
	}
}

// RepairConfig converts the repair section for ml.NewRepairGate.
func (c *Config) RepairConfig() ml.RepairConfig {
	return ml.RepairConfig{
		Mode:        ml.DecisionMode(c.Repair.Decision),
		Threshold:   c.Repair.Threshold,
		MinAccuracy: c.Repair.MinAccuracy,
		MaxAttempts: c.Repair.MaxAttempts,
		CacheSize:   c.Repair.CacheSize,
	}
}
