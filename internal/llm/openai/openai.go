// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package openai implements llm.Client against OpenAI's Responses API,
// non-streaming only. The bridge never needs partial tokens: every agent
// in the pipeline consumes one complete string per call.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oriongate/mcpbridge/internal/httpclient"
	"github.com/oriongate/mcpbridge/internal/llm"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 2048
	defaultTimeout   = 60 * time.Second
	defaultRetries   = 3
)

// Config configures the client.
type Config struct {
	APIKey     string
	Model      string
	MaxTokens  int
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Option configures the client.
type Option func(*Config)

func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

var _ llm.Client = (*Client)(nil)

// Client is a non-streaming OpenAI Responses API client.
type Client struct {
	httpClient *httpclient.Client
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
}

// New creates a new client. Returns an error if apiKey is empty so
// misconfiguration surfaces at startup rather than on the first request.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	cfg := Config{
		Model:      defaultModel,
		MaxTokens:  defaultMaxTokens,
		BaseURL:    defaultBaseURL,
		Timeout:    defaultTimeout,
		MaxRetries: defaultRetries,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	hc := httpclient.New(
		httpclient.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithHeaderParser(httpclient.ParseOpenAIHeaders),
	)

	return &Client{
		httpClient: hc,
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
	}, nil
}

type inputItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type textFormat struct {
	Format jsonFormatSpec `json:"format"`
}

type jsonFormatSpec struct {
	Type string `json:"type"`
}

type responsesRequest struct {
	Model           string      `json:"model"`
	Input           []inputItem `json:"input"`
	MaxOutputTokens int         `json:"max_output_tokens,omitempty"`
	Text            *textFormat `json:"text,omitempty"`
}

type outputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outputItem struct {
	Type    string          `json:"type"`
	Content []outputContent `json:"content"`
}

type responsesResponse struct {
	OutputText string       `json:"output_text"`
	Output     []outputItem `json:"output"`
	Error      *apiError    `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, format llm.Format) (string, error) {
	apiReq := responsesRequest{
		Model:           c.model,
		MaxOutputTokens: c.maxTokens,
		Input:           make([]inputItem, 0, len(messages)),
	}
	for _, m := range messages {
		apiReq.Input = append(apiReq.Input, inputItem{Role: string(m.Role), Content: m.Content})
	}
	if format == llm.FormatJSON {
		apiReq.Text = &textFormat{Format: jsonFormatSpec{Type: "json_object"}}
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.responsesURL(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, string(raw))
	}

	var apiResp responsesResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("openai: %s", apiResp.Error.Message)
	}

	if apiResp.OutputText != "" {
		return apiResp.OutputText, nil
	}
	return extractText(apiResp.Output), nil
}

func extractText(items []outputItem) string {
	var b strings.Builder
	for _, item := range items {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" || c.Type == "text" {
				b.WriteString(c.Text)
			}
		}
	}
	return b.String()
}

func (c *Client) responsesURL() string {
	return c.baseURL + "/responses"
}
