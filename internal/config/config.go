// Package config loads the bridge's process-wide configuration from
// environment variables, the bridge's only configuration surface. It
// uses koanf with only the env provider wired in, rather than koanf's
// file/consul/etcd-backed loaders.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the bridge's immutable, process-wide settings. Nothing in
// here changes after startup; per-request state never touches it.
type Config struct {
	Port        int
	FrontOrigin string

	LocalMCPEndpoint     string
	LocalMCPToken        string
	LocalMCPDefaultPaths []string

	OpenAIAPIKey string
	OpenAIModel  string

	LogLevel  string
	LogFormat string
}

const (
	defaultPort        = 4000
	defaultOpenAIModel = "gpt-4o-mini"
	defaultLogLevel    = "info"
	defaultLogFormat   = "simple"
)

// Load reads configuration from the environment (optionally seeded by a
// local .env file, ignored silently if absent, matching local-dev
// convenience without introducing a config-file schema).
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{
		Port:                 defaultPort,
		LogLevel:             defaultLogLevel,
		LogFormat:            defaultLogFormat,
		OpenAIModel:          defaultOpenAIModel,
		LocalMCPDefaultPaths: []string{"notes/"},
	}

	if v := k.String("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := k.String("FRONT_ORIGIN"); v != "" {
		cfg.FrontOrigin = v
	}
	if v := k.String("LOCAL_MCP_ENDPOINT"); v != "" {
		cfg.LocalMCPEndpoint = v
	}
	if v := k.String("LOCAL_MCP_TOKEN"); v != "" {
		cfg.LocalMCPToken = v
	}
	if v := k.String("LOCAL_MCP_DEFAULT_PATHS"); v != "" {
		cfg.LocalMCPDefaultPaths = splitAndTrim(v)
	}
	if v := k.String("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := k.String("OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := k.String("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := k.String("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
