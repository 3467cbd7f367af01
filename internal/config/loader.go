package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// validBackendTypes lists the recognised translation backend types.
var validBackendTypes = []string{"openai", "anyllm", "rest"}

// validAnyLLMProviders lists the any-llm provider names the fetcher can
// construct.
var validAnyLLMProviders = []string{"openai", "anthropic", "gemini", "ollama"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Discord.Token == "" {
		errs = append(errs, errors.New("discord.token is required"))
	}

	if s := cfg.Translate.Strategy; s != "" && s != "race" && s != "sequential" {
		errs = append(errs, fmt.Errorf("translate.strategy %q is invalid; valid values: race, sequential", s))
	}

	for i, b := range cfg.Translate.Backends {
		prefix := fmt.Sprintf("translate.backends[%d]", i)
		if !slices.Contains(validBackendTypes, b.Type) {
			errs = append(errs, fmt.Errorf("%s.type %q is invalid; valid values: openai, anyllm, rest", prefix, b.Type))
			continue
		}
		switch b.Type {
		case "openai":
			if b.APIKey == "" {
				errs = append(errs, fmt.Errorf("%s.api_key is required for openai backends", prefix))
			}
			if b.Model == "" {
				errs = append(errs, fmt.Errorf("%s.model is required for openai backends", prefix))
			}
		case "anyllm":
			if !slices.Contains(validAnyLLMProviders, b.Provider) {
				errs = append(errs, fmt.Errorf("%s.provider %q is invalid; valid values: openai, anthropic, gemini, ollama", prefix, b.Provider))
			}
			if b.Model == "" {
				errs = append(errs, fmt.Errorf("%s.model is required for anyllm backends", prefix))
			}
		case "rest":
			if b.BaseURL == "" {
				errs = append(errs, fmt.Errorf("%s.base_url is required for rest backends", prefix))
			}
		}
	}

	if cfg.KeepAlive.URL != "" && cfg.KeepAlive.Interval.Std() < 0 {
		errs = append(errs, errors.New("keepalive.interval must not be negative"))
	}

	return errors.Join(errs...)
}
