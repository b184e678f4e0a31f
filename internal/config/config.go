// Package config collects all pipeline settings from the environment.
// Stages receive the Config struct explicitly so they stay testable
// without ambient process state.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BartekS5/ytetl/pkg/utils"
)

// Config holds every setting the pipeline stages recognize. Secrets are
// expected to arrive via the orchestrator's environment, never hard-coded.
type Config struct {
	APIKey        string
	SearchKeyword string
	MaxResults    int
	ArtifactDir   string
	DBConnString  string
	TargetTable   string
	MongoURI      string
	MongoDatabase string
	LogLevel      string
}

// Load reads the configuration from environment variables. The .env file,
// if any, has already been loaded by main.
func Load() *Config {
	return &Config{
		APIKey:        os.Getenv("YT_API_KEY"),
		SearchKeyword: os.Getenv("SEARCH_KEYWORD"),
		MaxResults:    getEnvAsInt("MAX_RESULTS", 50),
		ArtifactDir:   getEnv("ARTIFACT_DIR", "data"),
		DBConnString:  os.Getenv("DB_URL"),
		TargetTable:   getEnv("TARGET_TABLE", "youtube_videos"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "ytetl"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// ValidateExtract checks the settings the extract stage cannot run without.
func (c *Config) ValidateExtract() error {
	if c.APIKey == "" {
		return errors.New("YT_API_KEY environment variable not set")
	}
	return nil
}

// ValidateLoad checks the settings the load stage cannot run without.
func (c *Config) ValidateLoad() error {
	if c.DBConnString == "" {
		return errors.New("DB_URL environment variable not set")
	}
	if c.TargetTable == "" {
		return errors.New("TARGET_TABLE must not be empty")
	}
	return nil
}

// RawArtifactPath is where extract writes and transform reads the JSON
// artifact for a keyword. Paths are deterministic so each orchestrator task
// can locate its input from config alone.
func (c *Config) RawArtifactPath(keyword string) string {
	return filepath.Join(c.ArtifactDir, "raw", utils.SlugifyKeyword(keyword)+".json")
}

// ProcessedArtifactPath is where transform writes and load reads the CSV
// artifact for a keyword.
func (c *Config) ProcessedArtifactPath(keyword string) string {
	return filepath.Join(c.ArtifactDir, "processed", utils.SlugifyKeyword(keyword)+".csv")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}
