package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the platform daemon configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Solana     SolanaConfig     `mapstructure:"solana"`
	Automation AutomationConfig `mapstructure:"automation"`
	Staking    StakingConfig    `mapstructure:"staking"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Shutdown   ShutdownConfig   `mapstructure:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// GetConnectionString builds a lib/pq connection string from the config
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// SolanaConfig contains Solana RPC client settings for the chain executor
type SolanaConfig struct {
	RPCURL            string        `mapstructure:"rpc_url"`
	Commitment        string        `mapstructure:"commitment"`
	FeeProgramID      string        `mapstructure:"fee_program_id"`
	StakingProgramID  string        `mapstructure:"staking_program_id"`
	TreasuryAccount   string        `mapstructure:"treasury_account"`
	AuthorityKeyFile  string        `mapstructure:"authority_key_file"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	SkipPreflight     bool          `mapstructure:"skip_preflight"`
	ConfirmationLevel string        `mapstructure:"confirmation_level"`
}

// AutomationConfig contains fee-automation orchestrator settings
type AutomationConfig struct {
	// WorkerPoolSize bounds concurrent token processing within one cycle.
	// 1 keeps the reference sequential behavior.
	WorkerPoolSize int `mapstructure:"worker_pool_size"`
	// ReclaimOnManualTrigger controls whether single-purpose manual triggers
	// perform a fresh fee claim before the requested step.
	ReclaimOnManualTrigger bool          `mapstructure:"reclaim_on_manual_trigger"`
	JobRetention           time.Duration `mapstructure:"job_retention"`
}

// StakingConfig contains staking engine settings
type StakingConfig struct {
	// TablesPath points to an optional YAML file overriding the built-in
	// tier and lock-multiplier tables.
	TablesPath string `mapstructure:"tables_path"`
}

// SchedulerConfig contains cron cadence settings for the named jobs
type SchedulerConfig struct {
	AutomationSchedule string `mapstructure:"automation_schedule"`
	GraduationSchedule string `mapstructure:"graduation_schedule"`
	CleanupSchedule    string `mapstructure:"cleanup_schedule"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "platform")

	// Solana defaults
	viper.SetDefault("solana.rpc_url", "http://localhost:8899")
	viper.SetDefault("solana.commitment", "confirmed")
	viper.SetDefault("solana.request_timeout", "30s")
	viper.SetDefault("solana.skip_preflight", false)

	// Automation defaults
	viper.SetDefault("automation.worker_pool_size", 1)
	viper.SetDefault("automation.reclaim_on_manual_trigger", true)
	viper.SetDefault("automation.job_retention", "720h") // 30 days

	// Scheduler defaults
	viper.SetDefault("scheduler.automation_schedule", "@hourly")
	viper.SetDefault("scheduler.graduation_schedule", "@every 15m")
	viper.SetDefault("scheduler.cleanup_schedule", "@daily")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")

	// Shutdown defaults
	viper.SetDefault("shutdown.timeout", "30s")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Solana.RPCURL == "" {
		return fmt.Errorf("solana.rpc_url is required")
	}
	if config.Solana.FeeProgramID == "" {
		return fmt.Errorf("solana.fee_program_id is required")
	}
	if config.Automation.WorkerPoolSize < 1 {
		return fmt.Errorf("automation.worker_pool_size must be at least 1")
	}
	return nil
}
