package config

import (
	"fmt"
	"time"
)

// ArtifactConfig represents the configuration for the artifact store
type ArtifactConfig struct {
	Backend        string
	Bucket         string
	Root           string
	Region         string
	Endpoint       string
	SQLitePath     string
	MySQLDSN       string
	// Stage keys; each run prefixes them with its run ID.
	TransformerKey string
	TrainMatrixKey string
	TestMatrixKey  string
	// ModelKey and ServingTransformerKey hold the accepted pair read by
	// the prediction service.
	ModelKey              string
	ServingTransformerKey string
	CacheTTL              time.Duration
}

// IngestionConfig points at the raw train/test tables
type IngestionConfig struct {
	TrainPath string
	TestPath  string
}

// TrainingConfig represents the classifier training parameters
type TrainingConfig struct {
	LearningRate float64
	Epochs       int
	L2           float64
	Threshold    float64
	MinAccuracy  float64
}

// ServerConfig represents the HTTP serving layer configuration
type ServerConfig struct {
	ListenAddress  string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// StatusConfig holds the display text for each decision
type StatusConfig struct {
	Approved string
	Rejected string
}

// NotifyConfig represents the SMTP notification settings
type NotifyConfig struct {
	Enabled     bool
	SMTPAddress string
	From        string
	To          []string
}

// GetArtifact returns the artifact store configuration
func (c *Config) GetArtifact() (ArtifactConfig, error) {
	ttl, err := c.GetDuration("artifact.cache_ttl")
	if err != nil {
		return ArtifactConfig{}, fmt.Errorf("invalid artifact cache ttl: %w", err)
	}
	return ArtifactConfig{
		Backend:               c.GetString("artifact.backend"),
		Bucket:                c.GetString("artifact.bucket"),
		Root:                  c.GetString("artifact.root"),
		Region:                c.GetString("artifact.region"),
		Endpoint:              c.GetString("artifact.endpoint"),
		SQLitePath:            c.GetString("artifact.sqlite_path"),
		MySQLDSN:              c.GetString("artifact.mysql_dsn"),
		TransformerKey:        c.GetString("artifact.transformer_key"),
		TrainMatrixKey:        c.GetString("artifact.train_matrix_key"),
		TestMatrixKey:         c.GetString("artifact.test_matrix_key"),
		ModelKey:              c.GetString("artifact.model_key"),
		ServingTransformerKey: c.GetString("artifact.serving_transformer_key"),
		CacheTTL:              ttl,
	}, nil
}

// GetIngestion returns the ingestion configuration
func (c *Config) GetIngestion() IngestionConfig {
	return IngestionConfig{
		TrainPath: c.GetString("ingestion.train_path"),
		TestPath:  c.GetString("ingestion.test_path"),
	}
}

// GetTraining returns the training configuration
func (c *Config) GetTraining() TrainingConfig {
	return TrainingConfig{
		LearningRate: c.GetFloat64("training.learning_rate"),
		Epochs:       c.GetInt("training.epochs"),
		L2:           c.GetFloat64("training.l2"),
		Threshold:    c.GetFloat64("training.threshold"),
		MinAccuracy:  c.GetFloat64("training.min_accuracy"),
	}
}

// GetServer returns the server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server read timeout: %w", err)
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server write timeout: %w", err)
	}
	return ServerConfig{
		ListenAddress:  c.GetString("server.listen_address"),
		AllowedOrigins: c.GetStringSlice("server.allowed_origins"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
	}, nil
}

// GetStatus returns the decision display text
func (c *Config) GetStatus() StatusConfig {
	return StatusConfig{
		Approved: c.GetString("status.approved"),
		Rejected: c.GetString("status.rejected"),
	}
}

// GetNotify returns the notification configuration
func (c *Config) GetNotify() NotifyConfig {
	return NotifyConfig{
		Enabled:     c.GetBool("notify.enabled"),
		SMTPAddress: c.GetString("notify.smtp_address"),
		From:        c.GetString("notify.from"),
		To:          c.GetStringSlice("notify.to"),
	}
}

// GetFieldMapping returns the external field name to schema column mapping.
// Keys are lower-cased by viper.
func (c *Config) GetFieldMapping() map[string]string {
	return c.GetStringMapString("inference.fields")
}
