package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "guildpass/internal/shared/config"
)

type Config struct {
	Server         sharedConfig.ServerConfig         `mapstructure:"server"`
	Database       sharedConfig.DatabaseConfig       `mapstructure:"database"`
	Logger         sharedConfig.LoggerConfig         `mapstructure:"logger"`
	Stripe         sharedConfig.StripeConfig         `mapstructure:"stripe"`
	Discord        sharedConfig.DiscordConfig        `mapstructure:"discord"`
	Email          sharedConfig.EmailConfig          `mapstructure:"email"`
	Redis          sharedConfig.RedisConfig          `mapstructure:"redis"`
	Reconciliation sharedConfig.ReconciliationConfig `mapstructure:"reconciliation"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("GUILDPASS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "guildpass_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Stripe defaults (must be configured)
	viper.SetDefault("stripe.api_key", "")
	viper.SetDefault("stripe.webhook_secret", "")

	// Discord defaults (must be configured)
	viper.SetDefault("discord.bot_token", "")
	viper.SetDefault("discord.oauth.client_id", "")
	viper.SetDefault("discord.oauth.client_secret", "")
	viper.SetDefault("discord.oauth.redirect_url", "http://localhost:8080/link/callback")

	// Email defaults
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.smtp_user", "")
	viper.SetDefault("email.smtp_password", "")
	viper.SetDefault("email.from_address", "noreply@guildpass.dev")
	viper.SetDefault("email.from_name", "GuildPass")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Reconciliation defaults
	viper.SetDefault("reconciliation.interval_minutes", 60)
}
