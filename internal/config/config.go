// Package config loads hivectl settings from ~/.hivectl/config.yaml with
// HIVECTL_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	fileName  = "config"
	fileType  = "yaml"
	envPrefix = "HIVECTL"
)

// Settings is the resolved configuration for one CLI invocation.
type Settings struct {
	Owner        string
	Repo         string
	Branch       string
	ManifestPath string
	InstallRoot  string
	Interpreter  string
	Token        string
	TestBudget   time.Duration
	MaxRetries   uint64
}

// Dir returns the hivectl home directory (~/.hivectl).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".hivectl")
	}
	return filepath.Join(home, ".hivectl")
}

// FilePath returns the config file location.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the hivectl home directory if needed.
func EnsureDir() error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return nil
}

// Load initializes viper with defaults, the config file, and env overrides.
// A missing config file is fine; defaults point at the upstream hive repo.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(envPrefix)
	// Nested keys become underscored in the environment: source.owner is
	// overridden by HIVECTL_SOURCE_OWNER.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("source.owner", "fractalic-ai")
	viper.SetDefault("source.repo", "hive")
	viper.SetDefault("source.branch", "main")
	viper.SetDefault("source.manifest", "TOOLS.md")
	viper.SetDefault("install.root", filepath.Join(Dir(), "tools"))
	viper.SetDefault("verify.interpreter", "python3")
	viper.SetDefault("verify.test_budget", "200ms")
	viper.SetDefault("fetch.max_retries", 4)

	_ = viper.ReadInConfig()
}

// Current snapshots the active settings.
func Current() Settings {
	budget, err := time.ParseDuration(viper.GetString("verify.test_budget"))
	if err != nil || budget <= 0 {
		budget = 200 * time.Millisecond
	}

	token := viper.GetString("token")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	return Settings{
		Owner:        viper.GetString("source.owner"),
		Repo:         viper.GetString("source.repo"),
		Branch:       viper.GetString("source.branch"),
		ManifestPath: viper.GetString("source.manifest"),
		InstallRoot:  viper.GetString("install.root"),
		Interpreter:  viper.GetString("verify.interpreter"),
		Token:        token,
		TestBudget:   budget,
		MaxRetries:   viper.GetUint64("fetch.max_retries"),
	}
}

// Set writes one key to the config file, creating it if absent.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}
	viper.Set(key, value)
	if _, err := os.Stat(FilePath()); os.IsNotExist(err) {
		f, err := os.Create(FilePath())
		if err != nil {
			return fmt.Errorf("creating config file: %w", err)
		}
		f.Close()
	}
	if err := viper.WriteConfigAs(FilePath()); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
