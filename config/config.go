// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for rulecore.
type Config struct {
	LogFormat string `env:"RULECORE_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"RULECORE_LOG_LEVEL" envDefault:"info"`
	// LogFile receives logs instead of stderr when set.
	LogFile string `env:"RULECORE_LOG_FILE"`

	Seed        int64  `env:"RULECORE_SEED" envDefault:"0"`
	JournalPath string `env:"RULECORE_JOURNAL_PATH"`
	SaveDir     string `env:"RULECORE_SAVE_DIR" envDefault:"~/.rulecore/saves"`

	ValidatorURL      string        `env:"RULECORE_VALIDATOR_URL"`
	ValidatorModel    string        `env:"RULECORE_VALIDATOR_MODEL" envDefault:"gpt-4o-mini"`
	ValidatorAPIKey   string        `env:"RULECORE_VALIDATOR_API_KEY"`
	ValidatorTimeout  time.Duration `env:"RULECORE_VALIDATOR_TIMEOUT" envDefault:"15s"`
	ValidatorFailOpen bool          `env:"RULECORE_VALIDATOR_FAIL_OPEN" envDefault:"false"`
}

// Load reads the given .env files, or ./.env when none are named, then
// parses the environment. A missing .env file is not an error; variables
// already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.SaveDir = expandHome(cfg.SaveDir)
	return cfg, nil
}

// ValidatorEnabled reports whether the external plausibility check is
// configured.
func (c Config) ValidatorEnabled() bool {
	return strings.TrimSpace(c.ValidatorURL) != ""
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
