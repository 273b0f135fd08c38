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
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoRPCEndpoints is returned without any attempt when a network has no endpoints
	ErrNoRPCEndpoints = errors.New("no RPC endpoints configured")
	// ErrRequestCreation marks a request that could not be serialized
	ErrRequestCreation = errors.New("failed to create RPC request")
)

// Top level JSON-RPC error names
const (
	ErrorNameRequestValidation = "REQUEST_VALIDATION_ERROR"
	ErrorNameHandler           = "HANDLER_ERROR"
	ErrorNameInternal          = "INTERNAL_ERROR"
)

// Error is a JSON-RPC error returned by the server
type Error struct {
	Name    string          `json:"name"`
	Cause   ErrorCause      `json:"cause"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrorCause is the method specific detail of an Error
type ErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause.Name != "" {
		if len(e.Cause.Info) > 0 && string(e.Cause.Info) != "null" {
			return fmt.Sprintf("rpc error %s: %s: %s", e.Name, e.Cause.Name, string(e.Cause.Info))
		}
		return fmt.Sprintf("rpc error %s: %s", e.Name, e.Cause.Name)
	}
	if e.Name != "" {
		return fmt.Sprintf("rpc error %s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsHandlerError reports whether e is a method handler error with the given cause
func (e *Error) IsHandlerError(cause string) bool {
	return e.Name == ErrorNameHandler && e.Cause.Name == cause
}

// TransportError wraps a failure to reach the server or read its response
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error talking to %s: %s", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned for a non-success HTTP status without a JSON-RPC error body
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, truncate(e.Body, 256))
}

// ResponseDecodeError is returned when a response does not match the expected shape
type ResponseDecodeError struct {
	Method string
	Err    error
}

func (e *ResponseDecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %s", e.Method, e.Err)
}

func (e *ResponseDecodeError) Unwrap() error {
	return e.Err
}

// CriticalError is returned by Retry when an attempt fails with an error that
// retrying cannot fix
type CriticalError struct {
	Endpoint string
	Err      error
}

func (e *CriticalError) Error() string {
	return fmt.Sprintf("critical error from %s: %s", e.Endpoint, e.Err)
}

func (e *CriticalError) Unwrap() error {
	return e.Err
}

// RetriesExhaustedError is returned by Retry when every attempt against every
// endpoint failed with a retryable error. Err is the last failure
type RetriesExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %s", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
