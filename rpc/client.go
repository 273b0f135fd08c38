// Copyright 2025 Blink Labs Software
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

// Package rpc implements the JSON-RPC transport, the error taxonomy used to
// decide whether a failed call may be retried, and the multi-endpoint retry
// executor built on top of both.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	MethodQuery      = "query"
	MethodBlock      = "block"
	MethodValidators = "validators"
	MethodGasPrice   = "gas_price"
	MethodSendTx     = "send_tx"
	MethodTx         = "tx"
	MethodStatus     = "status"

	jsonRPCVersion     = "2.0"
	DefaultHTTPTimeout = 60 * time.Second
)

// ClientOptionFunc is a type that represents functions that modify the Client config
type ClientOptionFunc func(*Client)

// Client issues JSON-RPC calls to a single endpoint
type Client struct {
	endpoint   Endpoint
	httpClient *http.Client
	logger     *slog.Logger
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

func NewClient(endpoint Endpoint, opts ...ClientOptionFunc) *Client {
	c := &Client{
		endpoint: endpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// WithHTTPClient specifies the HTTP client used for requests
func WithHTTPClient(httpClient *http.Client) ClientOptionFunc {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger specifies the logger. slog.Default() is used when none is given
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Call invokes method with params and decodes the result into result, which
// may be nil to discard it
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	raw, err := c.CallRaw(ctx, method, params)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return &ResponseDecodeError{Method: method, Err: err}
	}
	return nil
}

// CallRaw invokes method and returns the undecoded result
func (c *Client) CallRaw(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := request{
		JSONRPC: jsonRPCVersion,
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestCreation, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestCreation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.endpoint.BearerHeader != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.endpoint.BearerHeader)
	}
	c.logger.Debug(
		"sending RPC request",
		"component", "rpc",
		"endpoint", c.endpoint.URL,
		"method", method,
		"request_id", req.ID,
	)
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint.URL, Err: err}
	}
	defer httpResp.Body.Close()
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint.URL, Err: err}
	}
	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil || (resp.Error == nil && resp.Result == nil) {
		if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
			return nil, &HTTPStatusError{StatusCode: httpResp.StatusCode, Body: respBody}
		}
		if err == nil {
			err = fmt.Errorf("response has neither result nor error")
		}
		return nil, &ResponseDecodeError{Method: method, Err: err}
	}
	// Errors for requests the server could not parse carry a null id
	if resp.ID != req.ID && (resp.Error == nil || resp.ID != "") {
		return nil, &ResponseDecodeError{
			Method: method,
			Err:    fmt.Errorf("response id %q does not match request id %q", resp.ID, req.ID),
		}
	}
	if resp.Error != nil {
		c.logger.Debug(
			"received RPC error",
			"component", "rpc",
			"endpoint", c.endpoint.URL,
			"method", method,
			"request_id", req.ID,
			"error", resp.Error.Error(),
		)
		return nil, resp.Error
	}
	return resp.Result, nil
}
