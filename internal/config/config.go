package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Authentication configuration
	Auth AuthConfig

	// Article visibility configuration
	Publication PublicationConfig

	// ID generation
	Snowflake SnowflakeConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// BaseURL prefixes hyperlinks in responses; empty means derive from the request
	BaseURL         string
	DefaultPageSize int
	MaxPageSize     int
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// AuthConfig holds token and credential settings
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	BcryptCost        int
	MinPasswordLength int
}

// PublicationConfig holds article listing settings
type PublicationConfig struct {
	// Ordering is "newest" (descending pub_date) or "title" (ascending title)
	Ordering string
}

// SnowflakeConfig holds the ID generator node
type SnowflakeConfig struct {
	NodeID int64
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from an optional config file and environment variables.
// configPath may be empty, in which case only defaults and the environment are used.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			BaseURL:         strings.TrimRight(strings.TrimSpace(v.GetString("server.base_url")), "/"),
			DefaultPageSize: v.GetInt("server.default_page_size"),
			MaxPageSize:     v.GetInt("server.max_page_size"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("database.host"),
			Port:           v.GetString("database.port"),
			User:           v.GetString("database.user"),
			Password:       v.GetString("database.password"),
			Name:           v.GetString("database.name"),
			SSLMode:        v.GetString("database.sslmode"),
			MaxOpenConns:   v.GetInt("database.max_open_conns"),
			MaxIdleConns:   v.GetInt("database.max_idle_conns"),
			MaxLifetime:    v.GetDuration("database.max_lifetime"),
			MigrationsPath: v.GetString("database.migrations_path"),
		},
		Auth: AuthConfig{
			JWTSecret:         v.GetString("auth.jwt_secret"),
			TokenTTL:          v.GetDuration("auth.token_ttl"),
			BcryptCost:        v.GetInt("auth.bcrypt_cost"),
			MinPasswordLength: v.GetInt("auth.min_password_length"),
		},
		Publication: PublicationConfig{
			Ordering: strings.ToLower(v.GetString("publication.ordering")),
		},
		Snowflake: SnowflakeConfig{
			NodeID: v.GetInt64("snowflake.node_id"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.default_page_size", 20)
	v.SetDefault("server.max_page_size", 100)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "library")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_path", "./migrations")

	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.min_password_length", 8)

	v.SetDefault("publication.ordering", "newest")

	v.SetDefault("snowflake.node_id", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// bindEnvs keeps the flat variable names used by existing deployments
func bindEnvs(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	v.BindEnv("server.base_url", "BASE_URL")

	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.max_open_conns", "DB_MAX_OPEN_CONNS")
	v.BindEnv("database.max_idle_conns", "DB_MAX_IDLE_CONNS")
	v.BindEnv("database.max_lifetime", "DB_MAX_LIFETIME")
	v.BindEnv("database.migrations_path", "MIGRATIONS_PATH")

	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_ttl", "JWT_TOKEN_TTL")

	v.BindEnv("publication.ordering", "ARTICLE_ORDERING")

	v.BindEnv("snowflake.node_id", "SNOWFLAKE_NODE_ID")

	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Publication.Ordering != "newest" && c.Publication.Ordering != "title" {
		return fmt.Errorf("ARTICLE_ORDERING must be one of: newest, title")
	}
	if c.Server.DefaultPageSize <= 0 || c.Server.MaxPageSize < c.Server.DefaultPageSize {
		return fmt.Errorf("invalid page size settings: default=%d max=%d", c.Server.DefaultPageSize, c.Server.MaxPageSize)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
