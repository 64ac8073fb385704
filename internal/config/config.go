package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Google    GoogleConfig    `mapstructure:"google"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GoogleConfig holds the OAuth2 client used for every connected Gmail account.
// Per-account refresh tokens live in the email_accounts table.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// OpenAIConfig holds the AI analysis client configuration
type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Temperature    float64       `mapstructure:"temperature"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay  time.Duration `mapstructure:"retry_max_delay"`
}

// SyncConfig holds the mailbox sync pipeline configuration
type SyncConfig struct {
	MaxResults        int64  `mapstructure:"max_results"`
	Query             string `mapstructure:"query"`
	MaxBodyChars      int    `mapstructure:"max_body_chars"`
	AnalyzeAfterSync  bool   `mapstructure:"analyze_after_sync"`
	AnalysisBatchSize int    `mapstructure:"analysis_batch_size"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.max_tokens", 1024)
	viper.SetDefault("openai.temperature", 0.2)
	viper.SetDefault("openai.request_timeout", "30s")
	viper.SetDefault("openai.max_retries", 3)
	viper.SetDefault("openai.retry_base_delay", "1s")
	viper.SetDefault("openai.retry_max_delay", "30s")

	viper.SetDefault("sync.max_results", 50)
	viper.SetDefault("sync.max_body_chars", 8000)
	viper.SetDefault("sync.analyze_after_sync", false)
	viper.SetDefault("sync.analysis_batch_size", 10)

	viper.SetDefault("scheduler.interval_minutes", 15)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	viper.BindEnv("google.client_id", "GOOGLE_CLIENT_ID")
	viper.BindEnv("google.client_secret", "GOOGLE_CLIENT_SECRET")

	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.BindEnv("openai.max_tokens", "OPENAI_MAX_TOKENS")
	viper.BindEnv("openai.request_timeout", "OPENAI_REQUEST_TIMEOUT")
	viper.BindEnv("openai.max_retries", "OPENAI_MAX_RETRIES")

	viper.BindEnv("sync.max_results", "SYNC_MAX_RESULTS")
	viper.BindEnv("sync.query", "SYNC_QUERY")
	viper.BindEnv("sync.max_body_chars", "SYNC_MAX_BODY_CHARS")
	viper.BindEnv("sync.analyze_after_sync", "SYNC_ANALYZE_AFTER_SYNC")
	viper.BindEnv("sync.analysis_batch_size", "SYNC_ANALYSIS_BATCH_SIZE")

	viper.BindEnv("scheduler.interval_minutes", "SCHEDULER_INTERVAL_MINUTES")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return fmt.Errorf("Google OAuth2 client credentials are required")
	}

	if c.Sync.MaxResults <= 0 {
		return fmt.Errorf("sync max_results must be greater than 0")
	}

	if c.Sync.MaxBodyChars <= 0 {
		return fmt.Errorf("sync max_body_chars must be greater than 0")
	}

	if c.Sync.AnalyzeAfterSync && c.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required when analyze_after_sync is enabled")
	}

	if c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	return nil
}
