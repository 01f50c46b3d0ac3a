package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"lora/domain/enrichment"
	"lora/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Profiling ProfilingConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	Parser    ParserConfig
	Analysis  AnalysisConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Cache backends
const (
	CacheBackendMemory   = "memory"
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
)

// CacheConfig selects and configures the per-session result cache
type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	Prefix        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// DatabaseConfig holds database connection settings (postgres cache backend only)
type DatabaseConfig struct {
	URL string
}

// ParserConfig locates the external lipid name normalizer
type ParserConfig struct {
	JavaBin string
	JarPath string
	Timeout time.Duration
}

// AnalysisConfig holds the default analysis parameters applied when a request omits them
type AnalysisConfig struct {
	TestType        string
	Alternative     string
	Correction      string
	Alpha           float64
	FilterCount     int
	SignificantOnly bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Profiling: *loadProfilingConfig(),
		Cache:     *loadCacheConfig(),
		Database:  DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Parser:    *loadParserConfig(),
		Analysis:  *loadAnalysisConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func loadCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend:       strings.ToLower(getEnvOrDefault("CACHE_BACKEND", CacheBackendMemory)),
		TTL:           getEnvDurationOrDefault("CACHE_TTL", 10*time.Minute),
		Prefix:        getEnvOrDefault("CACHE_PREFIX", "lora:"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),
	}
}

func loadParserConfig() *ParserConfig {
	return &ParserConfig{
		JavaBin: getEnvOrDefault("JAVA_BIN", "java"),
		JarPath: getEnvOrDefault("GOSLIN_JAR", ""),
		Timeout: getEnvDurationOrDefault("GOSLIN_TIMEOUT", 2*time.Minute),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	defaults := enrichment.DefaultParams()
	return &AnalysisConfig{
		TestType:        getEnvOrDefault("TEST_TYPE", string(defaults.TestType)),
		Alternative:     getEnvOrDefault("ALTERNATIVE", string(defaults.Alternative)),
		Correction:      getEnvOrDefault("CORRECTION_METHOD", string(defaults.Correction)),
		Alpha:           getEnvFloatOrDefault("ALPHA", defaults.Alpha),
		FilterCount:     getEnvIntOrDefault("FILTER_COUNT", defaults.FilterCount),
		SignificantOnly: getEnvBoolOrDefault("SIGNIFICANT_ONLY", defaults.SignificantOnly),
	}
}

// Params converts the configured defaults into analysis parameters
func (a AnalysisConfig) Params() (enrichment.Params, error) {
	testType, err := enrichment.ParseTestType(a.TestType)
	if err != nil {
		return enrichment.Params{}, err
	}
	alternative, err := enrichment.ParseAlternative(a.Alternative)
	if err != nil {
		return enrichment.Params{}, err
	}
	method, err := enrichment.ParseCorrectionMethod(a.Correction)
	if err != nil {
		return enrichment.Params{}, err
	}
	params := enrichment.Params{
		TestType:        testType,
		Alternative:     alternative,
		Correction:      method,
		Alpha:           a.Alpha,
		FilterCount:     a.FilterCount,
		SignificantOnly: a.SignificantOnly,
	}
	return params, params.Validate()
}

func validateConfig(config *Config) error {
	switch config.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	case CacheBackendPostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres cache backend")
		}
	default:
		return errors.ConfigInvalid("unknown CACHE_BACKEND " + config.Cache.Backend)
	}
	if config.Cache.TTL <= 0 {
		return errors.ConfigInvalid("CACHE_TTL must be positive")
	}
	if _, err := config.Analysis.Params(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
