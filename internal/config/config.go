// Package config supplies the calculator's startup constants: expression
// length cap, the function/constant whitelist, the overflow threshold and
// the listen address. Values are resolved once at startup and immutable
// afterwards.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"chatcalc/internal/expr"
)

// EnvConfigFile names the environment variable holding an optional YAML
// config path. When unset the defaults apply.
const EnvConfigFile = "CALCULATOR_CONFIG"

// Config holds every recognized option. Absent YAML keys keep their
// defaults.
type Config struct {
	ListenAddr          string   `yaml:"listen_addr"`
	MaxExpressionLength int      `yaml:"max_expression_length"`
	AllowedFunctions    []string `yaml:"allowed_functions"`
	AllowedConstants    []string `yaml:"allowed_constants"`
	OverflowThreshold   float64  `yaml:"overflow_threshold"`
}

// Default returns the built-in configuration: the full evaluator grammar
// surface and the teacher-tested service defaults.
func Default() Config {
	return Config{
		ListenAddr:          ":8080",
		MaxExpressionLength: expr.DefaultMaxLength,
		AllowedFunctions:    expr.DefaultFunctions(),
		AllowedConstants:    expr.DefaultConstants(),
		OverflowThreshold:   expr.DefaultOverflowThreshold,
	}
}

// Load resolves the effective configuration: defaults, overridden by the
// YAML file named in CALCULATOR_CONFIG when that variable is set.
func Load() (Config, error) {
	cfg := Default()

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.MaxExpressionLength <= 0 {
		return Config{}, fmt.Errorf("config %s: max_expression_length must be positive", path)
	}
	if cfg.OverflowThreshold <= 0 {
		return Config{}, fmt.Errorf("config %s: overflow_threshold must be positive", path)
	}

	return cfg, nil
}

// EvaluatorOptions maps the configuration onto the evaluator's option set.
func (c Config) EvaluatorOptions() expr.Options {
	return expr.Options{
		MaxLength:         c.MaxExpressionLength,
		Functions:         c.AllowedFunctions,
		Constants:         c.AllowedConstants,
		OverflowThreshold: c.OverflowThreshold,
	}
}
