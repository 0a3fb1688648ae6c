package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Admin     AdminConfig
	Cache     CacheConfig
	ProduceDB ProduceDBConfig
	Storage   StorageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"produce-lookup-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// AdminConfig holds the admin gate settings.
//
// The passcode and route token are deliberately a lightweight deterrent,
// not a security boundary: anyone who can read the deployment environment
// can read them. Real access control would need an account system, which
// is out of scope here.
type AdminConfig struct {
	// Passcode is the shared 6-digit admin passcode.
	Passcode string `envconfig:"ADMIN_PASSCODE" default:"123456"`
	// RouteToken is the secret-like path segment under which the admin
	// routes are mounted. Requests with any other segment are redirected
	// to the public home before an admin handler runs.
	RouteToken string `envconfig:"ADMIN_ROUTE_TOKEN" default:"d4sh8o4rd_s3cur3_t0k3n_2024"`
	// SessionTTL is how long a successful passcode entry stays valid.
	SessionTTL time.Duration `envconfig:"ADMIN_SESSION_TTL" default:"30m"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// ProduceDBConfig holds produce database settings.
type ProduceDBConfig struct {
	Type string `envconfig:"PRODUCE_DB_TYPE" default:"sqlite"` // sqlite, postgres, or mysql
	Path string `envconfig:"PRODUCE_DB_PATH" default:"./data/produce.db"`
	// PostgreSQL settings
	Host     string `envconfig:"PRODUCE_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"PRODUCE_DB_PORT" default:"5432"`
	Name     string `envconfig:"PRODUCE_DB_NAME" default:"produce"`
	User     string `envconfig:"PRODUCE_DB_USER" default:"postgres"`
	Password string `envconfig:"PRODUCE_DB_PASS" default:""`
	SSLMode  string `envconfig:"PRODUCE_DB_SSLMODE" default:"disable"`
	// MySQL settings
	MySQLHost     string `envconfig:"PRODUCE_MYSQL_HOST" default:"localhost"`
	MySQLPort     int    `envconfig:"PRODUCE_MYSQL_PORT" default:"3306"`
	MySQLName     string `envconfig:"PRODUCE_MYSQL_NAME" default:"produce"`
	MySQLUser     string `envconfig:"PRODUCE_MYSQL_USER" default:"root"`
	MySQLPassword string `envconfig:"PRODUCE_MYSQL_PASS" default:""`
}

// StorageConfig holds photo object storage settings.
type StorageConfig struct {
	Type string `envconfig:"STORAGE_TYPE" default:"local"` // local or s3

	// Local filesystem settings (development)
	LocalDir string `envconfig:"STORAGE_LOCAL_DIR" default:"./data/photos"`

	// S3-compatible settings (AWS S3, MinIO, RustFS, ...)
	Endpoint     string `envconfig:"STORAGE_ENDPOINT" default:""`
	Region       string `envconfig:"STORAGE_REGION" default:"us-east-1"`
	Bucket       string `envconfig:"STORAGE_BUCKET" default:"produce-images"`
	AccessKey    string `envconfig:"STORAGE_ACCESS_KEY" default:""`
	SecretKey    string `envconfig:"STORAGE_SECRET_KEY" default:""`
	UsePathStyle bool   `envconfig:"STORAGE_USE_PATH_STYLE" default:"true"`

	// PublicBaseURL is the base URL photos are served from. For local
	// storage this is the server's own /photos mount; for S3 it defaults
	// to <endpoint>/<bucket>.
	PublicBaseURL string `envconfig:"STORAGE_PUBLIC_BASE_URL" default:""`
}

// PostgresDSN returns the PostgreSQL connection string.
func (p *ProduceDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (p *ProduceDBConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		p.MySQLUser, p.MySQLPassword, p.MySQLHost, p.MySQLPort, p.MySQLName)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if len(c.Admin.Passcode) != 6 {
		return fmt.Errorf("ADMIN_PASSCODE must be exactly 6 digits, got %d characters", len(c.Admin.Passcode))
	}
	for _, r := range c.Admin.Passcode {
		if r < '0' || r > '9' {
			return fmt.Errorf("ADMIN_PASSCODE must contain only digits")
		}
	}
	if c.Admin.RouteToken == "" {
		return fmt.Errorf("ADMIN_ROUTE_TOKEN must not be empty")
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("ADMIN_SESSION_TTL must be positive")
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
