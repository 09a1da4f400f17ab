package worker

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/jigsaw/adjacency"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid solver configuration")

// Config holds configuration for the solver
type Config struct {
	PopulationSize int `yaml:"population_size"`
	Generations    int `yaml:"generations"`
	CompatibilityK int `yaml:"compatibility_k"`
	EliteCount     int `yaml:"elite_count"`
	// Parallelism bounds concurrent tasks; 0 means GOMAXPROCS.
	Parallelism int `yaml:"parallelism"`
	// MaxAssemblyAttempts caps retries per offspring slot; 0 retries until success.
	MaxAssemblyAttempts int `yaml:"max_assembly_attempts"`
	// Seed makes runs reproducible; 0 picks a random seed.
	Seed           uint64 `yaml:"seed"`
	StopOnZeroCost bool   `yaml:"stop_on_zero_cost"`
	// FitnessCacheSize is the cost cache capacity; 0 disables the cache.
	FitnessCacheSize int           `yaml:"fitness_cache_size"`
	ReportInterval   time.Duration `yaml:"report_interval"`

	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	MetricsAddr    string `yaml:"metrics_addr"`
	JaegerEndpoint string `yaml:"jaeger_endpoint"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PopulationSize:   500,
		Generations:      30,
		CompatibilityK:   adjacency.DefaultK,
		EliteCount:       4,
		FitnessCacheSize: 4096,
		ReportInterval:   5 * time.Second,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	config := DefaultConfig()
	applyEnv(config)
	return config
}

// LoadConfigFile reads a YAML file over the defaults; environment variables still win.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	applyEnv(config)

	return config, nil
}

func applyEnv(c *Config) {
	c.PopulationSize = getEnvInt("JIGSAW_POPULATION_SIZE", c.PopulationSize)
	c.Generations = getEnvInt("JIGSAW_GENERATIONS", c.Generations)
	c.CompatibilityK = getEnvInt("JIGSAW_COMPATIBILITY_K", c.CompatibilityK)
	c.EliteCount = getEnvInt("JIGSAW_ELITE_COUNT", c.EliteCount)
	c.Parallelism = getEnvInt("JIGSAW_PARALLELISM", c.Parallelism)
	c.MaxAssemblyAttempts = getEnvInt("JIGSAW_MAX_ASSEMBLY_ATTEMPTS", c.MaxAssemblyAttempts)
	c.Seed = getEnvUint64("JIGSAW_SEED", c.Seed)
	c.StopOnZeroCost = getEnvBool("JIGSAW_STOP_ON_ZERO_COST", c.StopOnZeroCost)
	c.FitnessCacheSize = getEnvInt("JIGSAW_FITNESS_CACHE_SIZE", c.FitnessCacheSize)
	c.ReportInterval = getEnvDuration("JIGSAW_REPORT_INTERVAL", c.ReportInterval)
	c.LogLevel = getEnv("JIGSAW_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("JIGSAW_LOG_FORMAT", c.LogFormat)
	c.MetricsAddr = getEnv("JIGSAW_METRICS_ADDR", c.MetricsAddr)
	c.JaegerEndpoint = getEnv("JIGSAW_JAEGER_ENDPOINT", c.JaegerEndpoint)
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	switch {
	case c.PopulationSize < 1:
		return fmt.Errorf("%w: population size must be positive, got %d", ErrInvalidConfig, c.PopulationSize)
	case c.Generations < 0:
		return fmt.Errorf("%w: generations must not be negative, got %d", ErrInvalidConfig, c.Generations)
	case c.CompatibilityK < 1:
		return fmt.Errorf("%w: compatibility K must be positive, got %d", ErrInvalidConfig, c.CompatibilityK)
	case c.EliteCount < 0 || c.EliteCount > c.PopulationSize:
		return fmt.Errorf("%w: elite count must be within [0, %d], got %d", ErrInvalidConfig, c.PopulationSize, c.EliteCount)
	case c.Parallelism < 0:
		return fmt.Errorf("%w: parallelism must not be negative, got %d", ErrInvalidConfig, c.Parallelism)
	case c.MaxAssemblyAttempts < 0:
		return fmt.Errorf("%w: max assembly attempts must not be negative, got %d", ErrInvalidConfig, c.MaxAssemblyAttempts)
	case c.FitnessCacheSize < 0:
		return fmt.Errorf("%w: fitness cache size must not be negative, got %d", ErrInvalidConfig, c.FitnessCacheSize)
	case c.LogFormat != "json" && c.LogFormat != "console":
		return fmt.Errorf("%w: log format must be json or console, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
