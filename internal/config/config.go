package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverRedis = "redis"
	DriverMongo = "mongo"
)

// Config holds the microblog API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Query    QueryConfig    `yaml:"query"`
	Ratings  RatingsConfig  `yaml:"ratings"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port               int      `yaml:"port"`
	ReadTimeoutSec     int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec    int      `yaml:"write_timeout_sec"`
	ShutdownSec        int      `yaml:"shutdown_timeout_sec"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string      `yaml:"driver"` // redis, mongo (default: redis)
	Addrs            []string    `yaml:"addrs"`
	Username         string      `yaml:"username"`
	Password         string      `yaml:"password"`
	DB               int         `yaml:"db"`
	ReadinessTimeout int         `yaml:"readiness_timeout_sec"`
	Mongo            MongoConfig `yaml:"mongo"`
}

// MongoConfig holds MongoDB settings, used when driver is mongo.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// StorageConfig holds storage layout settings.
type StorageConfig struct {
	KeyPrefix     string `yaml:"key_prefix"`
	CreateIndexes *bool  `yaml:"create_indexes"` // default true
}

// QueryConfig holds listing limits.
type QueryConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// RatingsConfig holds rating submission rules.
type RatingsConfig struct {
	RequireExistingPost *bool `yaml:"require_existing_post"` // default true
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the process
// environment first; variables already set win.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config, expanding ${VAR} references, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = max(1, int(c.HTTP.RateLimitRPS))
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.Mongo.Database == "" {
		c.Database.Mongo.Database = "microblog"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "microblog:"
	}
	if c.Storage.CreateIndexes == nil {
		c.Storage.CreateIndexes = boolPtr(true)
	}
	if c.Query.MaxPageSize <= 0 {
		c.Query.MaxPageSize = 10000
	}
	if c.Query.DefaultPageSize <= 0 {
		c.Query.DefaultPageSize = c.Query.MaxPageSize
	}
	if c.Ratings.RequireExistingPost == nil {
		c.Ratings.RequireExistingPost = boolPtr(true)
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("http.rate_limit_rps must be >= 0, got %g", c.HTTP.RateLimitRPS)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required for the redis driver")
		}
	case DriverMongo:
		if c.Database.Mongo.URI == "" {
			return errors.New("database.mongo.uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverMongo, c.Database.Driver)
	}
	if c.Query.DefaultPageSize > c.Query.MaxPageSize {
		return fmt.Errorf("query.default_page_size (%d) exceeds query.max_page_size (%d)",
			c.Query.DefaultPageSize, c.Query.MaxPageSize)
	}
	return nil
}

// ShouldCreateIndexes reports whether indexes are created at startup.
func (c *Config) ShouldCreateIndexes() bool {
	return c.Storage.CreateIndexes == nil || *c.Storage.CreateIndexes
}

// RequireExistingPost reports whether ratings need an existing post.
func (c *Config) RequireExistingPost() bool {
	return c.Ratings.RequireExistingPost == nil || *c.Ratings.RequireExistingPost
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func boolPtr(b bool) *bool { return &b }

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
