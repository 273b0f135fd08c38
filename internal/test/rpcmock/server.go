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

// Package rpcmock provides a JSON-RPC server that answers requests from a
// scripted conversation
package rpcmock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/blinklabs-io/gonear/rpc"
)

// Server mocks a JSON-RPC node. Entries are matched by method (and params, if
// the entry asks for it) in the order given; each entry is used once unless it
// repeats
type Server struct {
	server       *httptest.Server
	mutex        sync.Mutex
	conversation []ConversationEntry
	used         []bool
	requests     []Request
	errors       []error
}

func NewServer(conversation []ConversationEntry) *Server {
	s := &Server{
		conversation: conversation,
		used:         make([]bool, len(conversation)),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) URL() string {
	return s.server.URL
}

// Endpoint returns an endpoint for this server with a single attempt and no delay
func (s *Server) Endpoint() rpc.Endpoint {
	return rpc.NewEndpoint(s.server.URL).WithRetries(1).WithConstantBackoff(0)
}

// HTTPClient returns a client whose connections are released by Close
func (s *Server) HTTPClient() *http.Client {
	return s.server.Client()
}

func (s *Server) Close() {
	s.server.Client().CloseIdleConnections()
	s.server.Close()
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]Request{}, s.requests...)
}

// RequestsFor returns the requests received for method
func (s *Server) RequestsFor(method string) []Request {
	var ret []Request
	for _, req := range s.Requests() {
		if req.Method == method {
			ret = append(ret, req)
		}
	}
	return ret
}

// Err returns an error describing requests that matched no entry
func (s *Server) Err() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(s.errors) == 0 {
		return nil
	}
	return fmt.Errorf("mock server errors: %v", s.errors)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		ID     string          `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, ok := s.match(req.Method, req.Params)
	if !ok {
		writeEnvelope(w, req.ID, http.StatusOK, nil, &rpc.Error{
			Name:    rpc.ErrorNameRequestValidation,
			Code:    -32601,
			Message: "no conversation entry for method " + req.Method,
		})
		return
	}
	if entry.Delay > 0 {
		select {
		case <-time.After(entry.Delay):
		case <-r.Context().Done():
			return
		}
	}
	status := entry.HTTPStatus
	if status == 0 {
		status = http.StatusOK
	}
	if entry.RawBody != "" {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(entry.RawBody))
		return
	}
	writeEnvelope(w, req.ID, status, entry.Result, entry.Error)
}

func (s *Server) match(method string, params json.RawMessage) (ConversationEntry, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.requests = append(s.requests, Request{Method: method, Params: params})
	for idx, entry := range s.conversation {
		if s.used[idx] || entry.Method != method {
			continue
		}
		if entry.MatchParams != nil && !entry.MatchParams(params) {
			continue
		}
		if !entry.Repeat {
			s.used[idx] = true
		}
		return entry, true
	}
	s.errors = append(s.errors, fmt.Errorf("unexpected request %s: %s", method, string(params)))
	return ConversationEntry{}, false
}

func writeEnvelope(w http.ResponseWriter, id string, status int, result any, rpcErr *rpc.Error) {
	envelope := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
	}
	if rpcErr != nil {
		envelope["error"] = rpcErr
	} else {
		envelope["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}
