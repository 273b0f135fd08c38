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

package query

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/rpc"
)

// ResponseKind names the shape a raw response was recognized as
type ResponseKind string

const (
	KindUnknown       ResponseKind = "Unknown"
	KindViewAccount   ResponseKind = "ViewAccount"
	KindViewCode      ResponseKind = "ViewCode"
	KindViewState     ResponseKind = "ViewState"
	KindCallResult    ResponseKind = "CallResult"
	KindAccessKey     ResponseKind = "AccessKey"
	KindAccessKeyList ResponseKind = "AccessKeyList"
	KindBlock         ResponseKind = "Block"
	KindValidators    ResponseKind = "Validators"
	KindGasPrice      ResponseKind = "GasPrice"
)

var (
	ErrEmptyMultiQuery = errors.New("multi query has no requests")
	ErrMissingResponse = errors.New("missing response")
)

// UnexpectedResponseError is returned by a handler given a response of a
// different kind than the one it decodes
type UnexpectedResponseError struct {
	Expected ResponseKind
	Got      ResponseKind
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response kind: expected %s, got %s", e.Expected, e.Got)
}

// DecodeError wraps a failure to turn a response into a typed value
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %s", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Response is one raw RPC result together with the block it was evaluated at.
// BlockHeight and BlockHash are only set for query method results
type Response struct {
	Kind        ResponseKind
	BlockHeight uint64
	BlockHash   crypto.CryptoHash
	Raw         json.RawMessage
}

type queryEnvelope struct {
	BlockHeight uint64            `json:"block_height"`
	BlockHash   crypto.CryptoHash `json:"block_hash"`
	Error       *string           `json:"error"`
	Logs        []string          `json:"logs"`
}

// newQueryResponse recognizes the shape of a query method result. A result
// carrying an error string is a failed contract call and is reported as a
// CONTRACT_EXECUTION_ERROR handler error
func newQueryResponse(raw json.RawMessage) (Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Response{}, &rpc.ResponseDecodeError{Method: rpc.MethodQuery, Err: err}
	}
	var env queryEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Response{}, &rpc.ResponseDecodeError{Method: rpc.MethodQuery, Err: err}
	}
	if env.Error != nil {
		info, _ := json.Marshal(map[string]any{
			"error_message": *env.Error,
			"logs":          env.Logs,
		})
		return Response{}, &rpc.Error{
			Name:    rpc.ErrorNameHandler,
			Cause:   rpc.ErrorCause{Name: rpc.QueryErrorContractExecutionError, Info: info},
			Message: *env.Error,
		}
	}
	has := func(keys ...string) bool {
		for _, key := range keys {
			if _, ok := fields[key]; !ok {
				return false
			}
		}
		return true
	}
	kind := KindUnknown
	switch {
	case has("amount", "code_hash"):
		kind = KindViewAccount
	case has("code_base64"):
		kind = KindViewCode
	case has("values"):
		kind = KindViewState
	case has("result", "logs"):
		kind = KindCallResult
	case has("nonce", "permission"):
		kind = KindAccessKey
	case has("keys"):
		kind = KindAccessKeyList
	}
	return Response{
		Kind:        kind,
		BlockHeight: env.BlockHeight,
		BlockHash:   env.BlockHash,
		Raw:         raw,
	}, nil
}

// decode unmarshals r into dest after checking its kind
func decode(r Response, expected ResponseKind, dest any) error {
	if r.Kind != expected {
		return &UnexpectedResponseError{Expected: expected, Got: r.Kind}
	}
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
