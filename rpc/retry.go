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

package rpc

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// RetryFunc performs one attempt against client
type RetryFunc[T any] func(ctx context.Context, client *Client) (T, error)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryOptionFunc is a type that represents functions that modify the retry executor config
type RetryOptionFunc func(*retryConfig)

type retryConfig struct {
	logger     *slog.Logger
	httpClient *http.Client
	sleep      SleepFunc
}

// WithRetryLogger specifies the logger used by the executor and its clients
func WithRetryLogger(logger *slog.Logger) RetryOptionFunc {
	return func(c *retryConfig) {
		c.logger = logger
	}
}

// WithRetryHTTPClient specifies the HTTP client used for every endpoint
func WithRetryHTTPClient(httpClient *http.Client) RetryOptionFunc {
	return func(c *retryConfig) {
		c.httpClient = httpClient
	}
}

// WithSleepFunc replaces the function used to wait between attempts
func WithSleepFunc(sleep SleepFunc) RetryOptionFunc {
	return func(c *retryConfig) {
		c.sleep = sleep
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry runs fn against each endpoint in order until it succeeds. Each endpoint
// gets its configured number of attempts, separated by its backoff delay. An
// error classified as critical stops immediately and is returned wrapped in a
// CriticalError. When every attempt fails with a retryable error, the last one
// is returned wrapped in a RetriesExhaustedError. An empty endpoint list returns
// ErrNoRPCEndpoints without calling fn
func Retry[T any](
	ctx context.Context,
	endpoints []Endpoint,
	classify ErrorClassifier,
	fn RetryFunc[T],
	opts ...RetryOptionFunc,
) (T, error) {
	var zero T
	cfg := retryConfig{
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if len(endpoints) == 0 {
		return zero, ErrNoRPCEndpoints
	}
	totalAttempts := 0
	for _, endpoint := range endpoints {
		totalAttempts += endpoint.attempts()
	}
	clientOpts := []ClientOptionFunc{WithLogger(cfg.logger)}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, WithHTTPClient(cfg.httpClient))
	}
	attempt := 0
	var lastErr error
	for _, endpoint := range endpoints {
		client := NewClient(endpoint, clientOpts...)
		delays := endpoint.newBackOff()
		for i := 0; i < endpoint.attempts(); i++ {
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			attempt++
			result, err := fn(ctx, client)
			if err == nil {
				return result, nil
			}
			lastErr = err
			if classify(err) == RetryKindCritical {
				cfg.logger.Error(
					"RPC call failed with critical error",
					"component", "retry",
					"endpoint", endpoint.URL,
					"attempt", attempt,
					"error", err.Error(),
				)
				return zero, &CriticalError{Endpoint: endpoint.URL, Err: err}
			}
			cfg.logger.Warn(
				"RPC call failed, retrying",
				"component", "retry",
				"endpoint", endpoint.URL,
				"attempt", attempt,
				"error", err.Error(),
			)
			if attempt == totalAttempts {
				break
			}
			if err := cfg.sleep(ctx, delays.NextBackOff()); err != nil {
				return zero, err
			}
		}
	}
	return zero, &RetriesExhaustedError{Attempts: attempt, Err: lastErr}
}
