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

package rpcmock

import (
	"encoding/json"
	"time"

	"github.com/blinklabs-io/gonear/rpc"
)

// ConversationEntry scripts the answer to one JSON-RPC request
type ConversationEntry struct {
	Method string
	// MatchParams, when set, must accept the request params for the entry to be used
	MatchParams func(params json.RawMessage) bool
	// Result is marshaled as the JSON-RPC result
	Result any
	// Error is returned as the JSON-RPC error instead of a result
	Error *rpc.Error
	// HTTPStatus overrides the 200 status code
	HTTPStatus int
	// RawBody is written verbatim instead of a JSON-RPC envelope
	RawBody string
	// Repeat keeps the entry available after it has been used
	Repeat bool
	// Delay holds the response back
	Delay time.Duration
}

// Request is a request received by the mock server
type Request struct {
	Method string
	Params json.RawMessage
}

// HandlerError builds a HANDLER_ERROR with the given cause name
func HandlerError(cause string) *rpc.Error {
	return &rpc.Error{
		Name:    rpc.ErrorNameHandler,
		Cause:   rpc.ErrorCause{Name: cause},
		Code:    -32000,
		Message: "Server error",
	}
}

// ConversationEntryQuery answers a query request of the given request type
func ConversationEntryQuery(requestType string, result any) ConversationEntry {
	return ConversationEntry{
		Method:      rpc.MethodQuery,
		MatchParams: MatchParamField("request_type", requestType),
		Result:      result,
	}
}

// MatchParamField matches requests whose params object has field set to value
func MatchParamField(field string, value string) func(json.RawMessage) bool {
	return func(params json.RawMessage) bool {
		var tmp map[string]any
		if err := json.Unmarshal(params, &tmp); err != nil {
			return false
		}
		v, ok := tmp[field].(string)
		return ok && v == value
	}
}
