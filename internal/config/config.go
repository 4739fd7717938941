package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Config holds the bookstore configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Seed     SeedConfig     `yaml:"seed"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver              string `yaml:"driver"` // mongo, memory (default: mongo)
	URI                 string `yaml:"uri"`
	Name                string `yaml:"name"`
	Collection          string `yaml:"collection"`
	AppName             string `yaml:"app_name"`
	ConnectTimeoutSec   int    `yaml:"connect_timeout_sec"`
	OperationTimeoutSec int    `yaml:"operation_timeout_sec"`
	ReadinessTimeout    int    `yaml:"readiness_timeout_sec"`
}

// ConnectTimeout returns the connect timeout as a duration.
func (d DatabaseConfig) ConnectTimeout() time.Duration {
	return time.Duration(d.ConnectTimeoutSec) * time.Second
}

// OperationTimeout returns the per-operation client timeout as a duration.
func (d DatabaseConfig) OperationTimeout() time.Duration {
	return time.Duration(d.OperationTimeoutSec) * time.Second
}

// CatalogConfig holds query catalog settings.
type CatalogConfig struct {
	DefaultPageSize int               `yaml:"default_page_size"`
	MaxPageSize     int               `yaml:"max_page_size"`
	TopAuthors      int               `yaml:"top_authors"`
	Walkthrough     WalkthroughConfig `yaml:"walkthrough"`
}

// WalkthroughConfig parameterizes the fixed query walkthrough.
type WalkthroughConfig struct {
	Genre            string  `yaml:"genre"`
	YearAfter        int     `yaml:"year_after"`
	Author           string  `yaml:"author"`
	UpdateTitle      string  `yaml:"update_title"`
	NewPrice         float64 `yaml:"new_price"`
	DeleteTitle      string  `yaml:"delete_title"`
	InStockYearAfter int     `yaml:"in_stock_year_after"`
	PageNumber       int     `yaml:"page_number"`
	PageSize         int     `yaml:"page_size"`
	ExplainTitle     string  `yaml:"explain_title"`
	ExplainYearAfter int     `yaml:"explain_year_after"`
}

// SeedConfig holds sample data settings.
type SeedConfig struct {
	Fixtures bool  `yaml:"fixtures"`
	Random   int   `yaml:"random"`
	Seed     int64 `yaml:"seed"` // 0 = time-based
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	c.Database.applyDefaults()
	c.Catalog.applyDefaults()
	// Unset ${VAR} entries expand to empty keys.
	c.Auth.APIKeys = lo.Filter(c.Auth.APIKeys, func(k string, _ int) bool {
		return strings.TrimSpace(k) != ""
	})
}

func (d *DatabaseConfig) applyDefaults() {
	if d.Driver == "" {
		d.Driver = DriverMongo
	}
	if d.Name == "" {
		d.Name = "plp_bookstore"
	}
	if d.Collection == "" {
		d.Collection = "books"
	}
	if d.AppName == "" {
		d.AppName = "bookstore"
	}
	if d.ConnectTimeoutSec <= 0 {
		d.ConnectTimeoutSec = 10
	}
	if d.OperationTimeoutSec <= 0 {
		d.OperationTimeoutSec = 30
	}
	if d.ReadinessTimeout <= 0 {
		d.ReadinessTimeout = 10
	}
}

func (c *CatalogConfig) applyDefaults() {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}
	if c.TopAuthors <= 0 {
		c.TopAuthors = 1
	}

	c.Walkthrough.ApplyDefaults()
}

// ApplyDefaults fills unset walkthrough parameters with the sample
// catalog's stock queries.
func (w *WalkthroughConfig) ApplyDefaults() {
	if w.Genre == "" {
		w.Genre = "Fantasy"
	}
	if w.YearAfter == 0 {
		w.YearAfter = 2012
	}
	if w.Author == "" {
		w.Author = "Madeline Miller"
	}
	if w.UpdateTitle == "" {
		w.UpdateTitle = "Educated"
	}
	if w.NewPrice == 0 {
		w.NewPrice = 10.99
	}
	if w.DeleteTitle == "" {
		w.DeleteTitle = "Wuthering Heights"
	}
	if w.InStockYearAfter == 0 {
		w.InStockYearAfter = 2010
	}
	if w.PageNumber <= 0 {
		w.PageNumber = 2
	}
	if w.PageSize <= 0 {
		w.PageSize = 5
	}
	if w.ExplainTitle == "" {
		w.ExplainTitle = "Project Hail Mary"
	}
	if w.ExplainYearAfter == 0 {
		w.ExplainYearAfter = 2000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri is required for driver %q", DriverMongo)
		}
	case DriverMemory:
		// ok
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverMongo, DriverMemory, c.Database.Driver)
	}
	if c.Catalog.DefaultPageSize > c.Catalog.MaxPageSize {
		return fmt.Errorf(
			"catalog.default_page_size (%d) exceeds catalog.max_page_size (%d)",
			c.Catalog.DefaultPageSize, c.Catalog.MaxPageSize,
		)
	}
	if c.Seed.Random < 0 {
		return fmt.Errorf("seed.random must not be negative, got %d", c.Seed.Random)
	}
	return nil
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
