package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds settings for both the API server and the generation worker.
type Config struct {
	// HTTP
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9091"`

	// Logging
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// AI provider
	AIClientType     string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL        string        `envconfig:"AI_BASE_URL" default:"https://openrouter.ai/api/v1"`
	AIModel          string        `envconfig:"AI_MODEL" default:"deepseek/deepseek-chat"`
	AITimeout        time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	AIMaxAttempts    int           `envconfig:"AI_MAX_ATTEMPTS" default:"3"`
	AIBaseRetryDelay time.Duration `envconfig:"AI_BASE_RETRY_DELAY" default:"1s"`
	// Secret, loaded from file or env in LoadConfig
	AIAPIKey string

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"lingo_db"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	MigrationsDir string        `envconfig:"MIGRATIONS_DIR" default:"migrations"`
	// Secret, loaded from file or env in LoadConfig
	DBPassword string

	// RabbitMQ. Empty URL disables job notifications (nop notifier).
	RabbitMQURL     string `envconfig:"RABBITMQ_URL" default:""`
	NotifyQueueName string `envconfig:"NOTIFY_QUEUE_NAME" default:"generation_job_updates"`

	// Worker pool
	WorkerCount        int           `envconfig:"WORKER_COUNT" default:"2"`
	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"2s"`
	JobStaleTimeout    time.Duration `envconfig:"JOB_STALE_TIMEOUT" default:"10m"`
	JobSweepInterval   time.Duration `envconfig:"JOB_SWEEP_INTERVAL" default:"1m"`
	PersistRetryDelay  time.Duration `envconfig:"PERSIST_RETRY_DELAY" default:"500ms"`
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// MaskedDSN returns the DSN with the password replaced, for logging.
func (c *Config) MaskedDSN() string {
	dsn := c.GetDSN()
	parts := strings.Split(dsn, "@")
	if len(parts) != 2 {
		return "[invalid dsn format]"
	}
	userInfo := strings.Split(parts[0], ":")
	if len(userInfo) >= 2 {
		userInfo[len(userInfo)-1] = "********"
	}
	return strings.Join(userInfo, ":") + "@" + parts[1]
}

// LoadConfig loads configuration from the environment plus secret files.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// The API key is only required by the worker when an OpenAI-compatible
	// provider is configured, so a missing secret is not fatal here.
	cfg.AIAPIKey, _ = ReadSecret("ai_api_key", "AI_API_KEY")

	var err error
	cfg.DBPassword, err = ReadSecret("db_password", "DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.AIMaxAttempts < 1 {
		cfg.AIMaxAttempts = 1
	}

	return &cfg, nil
}
