package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// APIConfig holds the settings for the HTTP scoring API.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DetectorConfig holds the hyper-parameters handed to the outlier ensemble
// and the training input contract.
type DetectorConfig struct {
	NumTrees        int     `yaml:"num_trees"`
	SampleSize      int     `yaml:"sample_size"`
	Contamination   float64 `yaml:"contamination"`
	Seed            int64   `yaml:"seed"`
	MinTrainSamples int     `yaml:"min_train_samples"`
}

// IngestConfig holds the NATS settings shared by the probe publisher and
// the engine subscriber.
type IngestConfig struct {
	NATSURL      string `yaml:"nats_url"`
	FlowSubject  string `yaml:"flow_subject"`
	AlertSubject string `yaml:"alert_subject"`
}

// ClickHouseConfig holds the connection settings for detection storage.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TextWriterConfig holds the settings for the plain-text detection writer.
type TextWriterConfig struct {
	Path string `yaml:"path"`
}

// WriterDef defines a single detection event writer. Type selects the
// implementation; only the matching sub-section is read.
type WriterDef struct {
	Type       string           `yaml:"type"` // "clickhouse" or "text"
	Enabled    bool             `yaml:"enabled"`
	Interval   string           `yaml:"interval"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Text       TextWriterConfig `yaml:"text"`
}

// PipelineConfig holds the streaming scorer settings.
type PipelineConfig struct {
	NumWorkers        int         `yaml:"num_workers"`
	SizeOfFlowChannel int         `yaml:"size_of_flow_channel"`
	Writers           []WriterDef `yaml:"writers"`
}

// AlerterConfig holds the anomaly summary notification settings.
type AlerterConfig struct {
	Enabled       bool    `yaml:"enabled"`
	CheckInterval string  `yaml:"check_interval"`
	MinScore      float64 `yaml:"min_score"`
}

// SMTPConfig holds the email notifier settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// SnapshotConfig controls persistence of the most recent training corpus.
// The fitted model itself is never persisted; the snapshot lets an operator
// retrain after a restart.
type SnapshotConfig struct {
	Enabled  bool   `yaml:"enabled"`
	RootPath string `yaml:"root_path"`
}

// LoggingConfig holds the structured logger settings. When File is empty,
// logs go to stderr only.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Detector DetectorConfig `yaml:"detector"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Alerter  AlerterConfig  `yaml:"alerter"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct with defaults applied.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.Detector.NumTrees == 0 {
		c.Detector.NumTrees = 100
	}
	if c.Detector.SampleSize == 0 {
		c.Detector.SampleSize = 256
	}
	if c.Detector.Contamination == 0 {
		c.Detector.Contamination = 0.1
	}
	if c.Detector.Seed == 0 {
		c.Detector.Seed = 42
	}
	if c.Detector.MinTrainSamples < 2 {
		c.Detector.MinTrainSamples = 2
	}
	if c.Ingest.FlowSubject == "" {
		c.Ingest.FlowSubject = "flowsentry.flows.raw"
	}
	if c.Ingest.AlertSubject == "" {
		c.Ingest.AlertSubject = "flowsentry.alerts"
	}
	if c.Alerter.CheckInterval == "" {
		c.Alerter.CheckInterval = "1m"
	}
	if c.Pipeline.NumWorkers <= 0 {
		c.Pipeline.NumWorkers = 4
	}
	if c.Pipeline.SizeOfFlowChannel <= 0 {
		c.Pipeline.SizeOfFlowChannel = 1024
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
