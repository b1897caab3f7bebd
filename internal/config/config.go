package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	FactorsFile string
	RulesFile   string

	FactorAPIBaseURL   string
	FactorAPIToken     string
	FactorRateLimitRPS int
	FactorTimeoutMs    int

	MatchKeywordThreshold float64
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("GHG_DB_PATH", filepath.Join(cwd, "data", "ghg.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		FactorsFile: getEnv("FACTORS_FILE", ""),
		RulesFile:   getEnv("RULES_FILE", ""),

		FactorAPIBaseURL:   getEnv("FACTOR_API_BASE_URL", ""),
		FactorAPIToken:     getEnv("FACTOR_API_TOKEN", ""),
		FactorRateLimitRPS: getEnvInt("FACTOR_RATE_LIMIT_RPS", 5),
		FactorTimeoutMs:    getEnvInt("FACTOR_TIMEOUT_MS", 30000),

		MatchKeywordThreshold: getEnvFloat("MATCH_KEYWORD_THRESHOLD", 0.55),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
