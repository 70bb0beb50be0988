// Package config loads docpipe configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMongo   = "mongo"
	BackendSurreal = "surreal"
	BackendMemory  = "memory"
)

// Admission policies for a full submission queue.
const (
	AdmissionBlock  = "block"
	AdmissionReject = "reject"
)

// Config holds all configuration values.
type Config struct {
	// Metadata store
	Store string `yaml:"store"`

	// MongoDB connection
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`

	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// Worker pool
	Workers   int    `yaml:"workers"`
	QueueSize int    `yaml:"queue_size"`
	Admission string `yaml:"admission"`

	// Logging
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from environment variables.
// Defaults target a local MongoDB with five workers.
func Load() Config {
	return Config{
		Store: getEnv("DOCPIPE_STORE", BackendMongo),

		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017/"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "pdf_pipeline"),
		MongoCollection: getEnv("MONGODB_COLLECTION", "documents"),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "docpipe"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "documents"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		Workers:   getEnvInt("DOCPIPE_WORKERS", 5),
		QueueSize: getEnvInt("DOCPIPE_QUEUE_SIZE", 100),
		Admission: getEnv("DOCPIPE_ADMISSION", AdmissionBlock),

		LogFile:  getEnv("DOCPIPE_LOG_FILE", "pipeline.log"),
		LogLevel: getEnv("DOCPIPE_LOG_LEVEL", "INFO"),
	}
}

// LoadFile loads the environment configuration and overlays the YAML file at
// path on top of it. Keys missing from the file keep their environment value.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Level returns the configured slog level.
func (c Config) Level() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
