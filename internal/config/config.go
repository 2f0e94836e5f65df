// Package config loads run configuration from the environment and an optional
// YAML file, and validates it before the loop is allowed to start.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the run configuration surface the orchestrator consumes.
type Config struct {
	MaxIterations int           `yaml:"max_iterations"`
	Model         string        `yaml:"model"`
	Include       []string      `yaml:"include"`
	LintCommand   []string      `yaml:"lint_command"`
	TestCommand   []string      `yaml:"test_command"`
	PhaseTimeout  time.Duration `yaml:"phase_timeout"`
	LLMInterval   time.Duration `yaml:"llm_interval"`
	SkipTests     bool          `yaml:"skip_tests"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		MaxIterations: 5,
		Include:       []string{"*.py"},
		PhaseTimeout:  5 * time.Minute,
		LLMInterval:   10 * time.Second,
	}
}

// LoadEnv loads a .env file into the process environment if one exists.
// A missing file is not an error; explicit environment wins over the file.
func LoadEnv() {
	_ = godotenv.Load()
}

// fileConfig is the YAML shape; durations are strings ("90s", "5m") parsed
// with time.ParseDuration.
type fileConfig struct {
	MaxIterations int      `yaml:"max_iterations"`
	Model         string   `yaml:"model"`
	Include       []string `yaml:"include"`
	LintCommand   []string `yaml:"lint_command"`
	TestCommand   []string `yaml:"test_command"`
	PhaseTimeout  string   `yaml:"phase_timeout"`
	LLMInterval   string   `yaml:"llm_interval"`
	SkipTests     bool     `yaml:"skip_tests"`
}

// LoadFile overlays settings from a YAML file onto base. Zero values in the
// file leave the base value untouched.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config.LoadFile: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("config.LoadFile: parse %s: %w", path, err)
	}

	out := base
	if file.MaxIterations > 0 {
		out.MaxIterations = file.MaxIterations
	}
	if file.Model != "" {
		out.Model = file.Model
	}
	if len(file.Include) > 0 {
		out.Include = file.Include
	}
	if len(file.LintCommand) > 0 {
		out.LintCommand = file.LintCommand
	}
	if len(file.TestCommand) > 0 {
		out.TestCommand = file.TestCommand
	}
	if file.PhaseTimeout != "" {
		d, err := time.ParseDuration(file.PhaseTimeout)
		if err != nil {
			return base, fmt.Errorf("config.LoadFile: phase_timeout: %w", err)
		}
		out.PhaseTimeout = d
	}
	if file.LLMInterval != "" {
		d, err := time.ParseDuration(file.LLMInterval)
		if err != nil {
			return base, fmt.Errorf("config.LoadFile: llm_interval: %w", err)
		}
		out.LLMInterval = d
	}
	if file.SkipTests {
		out.SkipTests = true
	}
	return out, nil
}

// Validate rejects configurations the loop must never start with.
func (c Config) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("config: max_iterations must be positive, got %d", c.MaxIterations)
	}
	if len(c.Include) == 0 {
		return fmt.Errorf("config: include patterns must not be empty")
	}
	if c.PhaseTimeout < 0 {
		return fmt.Errorf("config: phase_timeout must not be negative")
	}
	return nil
}
