// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command bridge runs the local MCP bridge: an HTTP server that plans,
// executes, and writes up answers over a local JSON-RPC tool host.
//
// Usage:
//
//	bridge serve
//	bridge serve --port 4001 --log-level debug
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/oriongate/mcpbridge/internal/config"
	"github.com/oriongate/mcpbridge/internal/httpapi"
	"github.com/oriongate/mcpbridge/internal/llm/openai"
	"github.com/oriongate/mcpbridge/internal/logger"
	"github.com/oriongate/mcpbridge/internal/orchestrator"
)

// CLI defines the command-line interface.
type CLI struct {
	Serve   ServeCmd   `cmd:"" default:"1" help:"Start the bridge HTTP server."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println("bridge dev")
	return nil
}

// ServeCmd starts the bridge HTTP server.
type ServeCmd struct {
	Port     int    `help:"Port to listen on. Overrides PORT."`
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error). Overrides LOG_LEVEL."`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}

	logger.Init(logger.ParseLevel(cfg.LogLevel), os.Stderr, cfg.LogFormat)
	log := logger.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	var rt *orchestrator.Runtime
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY is not set, chat endpoints will fail until it is configured")
		rt = orchestrator.NewRuntime(nil, cfg.LocalMCPEndpoint, cfg.LocalMCPToken, cfg.LocalMCPDefaultPaths)
	} else {
		client, err := openai.New(cfg.OpenAIAPIKey, openai.WithModel(cfg.OpenAIModel))
		if err != nil {
			return fmt.Errorf("create openai client: %w", err)
		}
		rt = orchestrator.NewRuntime(client, cfg.LocalMCPEndpoint, cfg.LocalMCPToken, cfg.LocalMCPDefaultPaths)
	}

	router := httpapi.NewRouter(rt, cfg.FrontOrigin)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("local mcp bridge ready", "addr", addr, "localMcpEndpoint", cfg.LocalMCPEndpoint)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("bridge"),
		kong.Description("Local MCP bridge - plan, execute, and write up answers over a local tool host"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
