package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Tableau   TableauConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	URL          string        `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	Environment  string        `env:"ENVIRONMENT" envDefault:"development"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	Name            string        `env:"DB_NAME" envDefault:"planets"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath      string        `env:"DB_SQLITE_PATH" envDefault:"planets.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

type RedisConfig struct {
	Enabled     bool          `env:"REDIS_ENABLED" envDefault:"false"`
	URL         string        `env:"REDIS_URL"`
	Host        string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port        string        `env:"REDIS_PORT" envDefault:"6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	SnapshotTTL time.Duration `env:"REDIS_SNAPSHOT_TTL" envDefault:"1h"`
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	TokenExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	AdminToken      string        `env:"ADMIN_TOKEN"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite  string        `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

type FrontendConfig struct {
	URL       string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	CORSDebug bool   `env:"CORS_DEBUG" envDefault:"false"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"debug"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
	// JSONFormat is derived from Format and the environment.
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RequestsPerSecond float64 `env:"RATE_LIMIT_REQUESTS_PER_SECOND" envDefault:"10"`
	BurstSize         int     `env:"RATE_LIMIT_BURST_SIZE" envDefault:"20"`
	TrustProxy        bool    `env:"RATE_LIMIT_TRUST_PROXY" envDefault:"false"`
}

// TableauConfig holds the defaults used when a new game does not specify them.
type TableauConfig struct {
	Width        int `env:"TABLEAU_WIDTH" envDefault:"150"`
	Height       int `env:"TABLEAU_HEIGHT" envDefault:"150"`
	PlanetCount  int `env:"TABLEAU_PLANET_COUNT" envDefault:"10"`
	MinDistance  int `env:"TABLEAU_MIN_DISTANCE" envDefault:"10"`
	MaxPlayers   int `env:"TABLEAU_MAX_PLAYERS" envDefault:"8"`
	MaxAttempts  int `env:"TABLEAU_MAX_PLACEMENT_ATTEMPTS" envDefault:"1000"`
	// MaxPlanets and MaxDimension cap what a single request may ask for.
	MaxPlanets   int `env:"TABLEAU_MAX_PLANETS" envDefault:"200"`
	MaxDimension int `env:"TABLEAU_MAX_DIMENSION" envDefault:"10000"`
}

type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"OTEL_EXPORTER_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"planets-tableau"`
}

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config, err := Load()
	if err != nil {
		return err
	}

	GlobalConfig = config
	return nil
}

// Load parses and validates configuration from the process environment.
func Load() (*Config, error) {
	config, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func load() (*Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	config.Logging.JSONFormat = config.Logging.Format == "json" || config.IsProduction()

	return &config, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	if c.Tableau.Width <= 0 || c.Tableau.Height <= 0 {
		return fmt.Errorf("TABLEAU_WIDTH and TABLEAU_HEIGHT must be positive")
	}

	if c.Tableau.PlanetCount < 0 || c.Tableau.MinDistance < 0 {
		return fmt.Errorf("TABLEAU_PLANET_COUNT and TABLEAU_MIN_DISTANCE must not be negative")
	}

	if c.Tableau.MaxAttempts <= 0 {
		return fmt.Errorf("TABLEAU_MAX_PLACEMENT_ATTEMPTS must be positive")
	}

	if c.Tableau.MaxPlanets <= 0 || c.Tableau.MaxDimension <= 0 {
		return fmt.Errorf("TABLEAU_MAX_PLANETS and TABLEAU_MAX_DIMENSION must be positive")
	}

	if c.Tableau.PlanetCount > c.Tableau.MaxPlanets {
		return fmt.Errorf("TABLEAU_PLANET_COUNT must not exceed TABLEAU_MAX_PLANETS")
	}

	if c.Tableau.Width > c.Tableau.MaxDimension || c.Tableau.Height > c.Tableau.MaxDimension {
		return fmt.Errorf("TABLEAU_WIDTH and TABLEAU_HEIGHT must not exceed TABLEAU_MAX_DIMENSION")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", c.Database.SQLitePath)
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
