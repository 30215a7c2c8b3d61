package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewWithFile("")
}

// NewWithFile creates a configuration instance. An explicit file must exist;
// without one the usual search paths are tried and a missing file is fine.
func NewWithFile(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/loan-predictor/")
		v.AddConfigPath("$HOME/.loan-predictor")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("LOAN_PREDICTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema.path", "./configs/schema.yaml")

	// Artifact store
	v.SetDefault("artifact.backend", "filesystem")
	v.SetDefault("artifact.bucket", "loan-model")
	v.SetDefault("artifact.root", "./artifacts")
	v.SetDefault("artifact.region", "us-east-1")
	v.SetDefault("artifact.endpoint", "")
	v.SetDefault("artifact.sqlite_path", "./artifacts/artifacts.db")
	v.SetDefault("artifact.mysql_dsn", "user:password@tcp(localhost:3306)/loan_predictor")
	v.SetDefault("artifact.transformer_key", "transformation/preprocessing.json")
	v.SetDefault("artifact.model_key", "model/model.json")
	v.SetDefault("artifact.serving_transformer_key", "model/preprocessing.json")
	v.SetDefault("artifact.train_matrix_key", "transformation/train.bin")
	v.SetDefault("artifact.test_matrix_key", "transformation/test.bin")
	v.SetDefault("artifact.cache_ttl", "0s")

	// Ingestion
	v.SetDefault("ingestion.train_path", "./data/train.csv")
	v.SetDefault("ingestion.test_path", "./data/test.csv")

	// Training
	v.SetDefault("training.learning_rate", 0.1)
	v.SetDefault("training.epochs", 500)
	v.SetDefault("training.l2", 0.0)
	v.SetDefault("training.threshold", 0.5)
	v.SetDefault("training.min_accuracy", 0.0)

	// Server
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")

	// Display text for predictions
	v.SetDefault("status.approved", "Loan is Approved")
	v.SetDefault("status.rejected", "Loan is Not-Approved")

	// Notification
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.smtp_address", "localhost:25")
	v.SetDefault("notify.from", "loan-predictor@localhost")
	v.SetDefault("notify.to", []string{})

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetStringMapString gets a string map value from the configuration
func (c *Config) GetStringMapString(key string) map[string]string {
	return c.v.GetStringMapString(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
