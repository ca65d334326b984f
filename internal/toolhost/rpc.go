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

package toolhost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/oriongate/mcpbridge/internal/httpclient"
)

type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client drives JSON-RPC 2.0 calls against the configured tool-host
// endpoint. A Client is built fresh per request; it carries no state
// across calls besides the endpoint and token.
type Client struct {
	httpClient *httpclient.Client
	endpoint   string
	token      string
}

// New builds a tool-host client for one request.
func New(endpoint, token string) *Client {
	return &Client{
		httpClient: httpclient.New(httpclient.WithMaxRetries(2)),
		endpoint:   endpoint,
		token:      token,
	}
}

// call sends one JSON-RPC 2.0 request to the endpoint and returns the
// decoded envelope with the HTTP status. A 404 returns a nil envelope and
// no error (used by Bootstrap to detect legacy mode); any other body that
// isn't a valid JSON-RPC response is returned as an error.
func (c *Client) call(ctx context.Context, method string, params any) (*jsonRPCResponse, int, error) {
	body, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, 0, fmt.Errorf("toolhost: marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("toolhost: build %s request: %w", method, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("toolhost: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("toolhost: read %s response: %w", method, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, resp.StatusCode, nil
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("toolhost: malformed %s response: %w", method, err)
	}

	return &rpcResp, resp.StatusCode, nil
}

// RPCError is the exported mirror of jsonRPCError, returned to callers
// outside this package.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Call runs an arbitrary JSON-RPC method against the tool host. Used by
// the debug passthrough endpoint (POST /api/mcp/query) to
// forward a request without going through the bootstrap/call-result
// normalisation the rest of this package applies.
func (c *Client) Call(ctx context.Context, method string, params any) (result any, status int, rpcErr *RPCError, err error) {
	resp, status, err := c.call(ctx, method, params)
	if err != nil {
		return nil, status, nil, err
	}
	if resp == nil {
		return nil, status, nil, nil
	}
	if resp.Error != nil {
		return nil, status, &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}, nil
	}
	return resp.Result, status, nil, nil
}

// legacyCall posts {prompt, conversation} directly, for hosts that
// don't speak JSON-RPC (legacy mode).
func (c *Client) legacyCall(ctx context.Context, prompt string, conversation []map[string]string) (string, error) {
	body, err := json.Marshal(map[string]any{"prompt": prompt, "conversation": conversation})
	if err != nil {
		return "", fmt.Errorf("toolhost: marshal legacy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("toolhost: build legacy request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("toolhost: legacy request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("toolhost: read legacy response: %w", err)
	}

	var decoded struct {
		Answer string `json:"answer"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if decoded.Answer != "" {
			return decoded.Answer, nil
		}
		if decoded.Text != "" {
			return decoded.Text, nil
		}
	}
	return string(raw), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
