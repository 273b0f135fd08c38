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
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/rpc"
)

// Request is one RPC call that can be evaluated at a reference point of type Ref
type Request[Ref any] interface {
	// Method returns the JSON-RPC method name
	Method() string
	// Params builds the request params for ref. Errors found while the request
	// was constructed are returned here
	Params(ref Ref) (any, error)
	// ClassifyError decides whether a failure of this request may be retried
	ClassifyError(err error) rpc.RetryKind
	// NewResponse recognizes the shape of a raw result
	NewResponse(raw json.RawMessage) (Response, error)
}

// execute runs req against a single client
func execute[Ref any](ctx context.Context, client *rpc.Client, req Request[Ref], params any) (Response, error) {
	raw, err := client.CallRaw(ctx, req.Method(), params)
	if err != nil {
		return Response{}, err
	}
	return req.NewResponse(raw)
}

const (
	RequestTypeViewAccount       = "view_account"
	RequestTypeViewCode          = "view_code"
	RequestTypeViewState         = "view_state"
	RequestTypeCallFunction      = "call_function"
	RequestTypeViewAccessKey     = "view_access_key"
	RequestTypeViewAccessKeyList = "view_access_key_list"
)

// QueryRequest is a request to the query method
type QueryRequest struct {
	requestType string
	fields      map[string]any
	err         error
}

func newQueryRequest(requestType string, accountID string) *QueryRequest {
	return &QueryRequest{
		requestType: requestType,
		fields:      map[string]any{"account_id": accountID},
	}
}

func (q *QueryRequest) RequestType() string {
	return q.requestType
}

func (q *QueryRequest) Method() string {
	return rpc.MethodQuery
}

func (q *QueryRequest) Params(ref Reference) (any, error) {
	if q.err != nil {
		return nil, q.err
	}
	params := make(map[string]any, len(q.fields)+2)
	for k, v := range q.fields {
		params[k] = v
	}
	params["request_type"] = q.requestType
	ref.apply(params)
	return params, nil
}

func (q *QueryRequest) ClassifyError(err error) rpc.RetryKind {
	return rpc.ClassifyQueryError(err)
}

func (q *QueryRequest) NewResponse(raw json.RawMessage) (Response, error) {
	return newQueryResponse(raw)
}

func ViewAccountRequest(accountID string) *QueryRequest {
	return newQueryRequest(RequestTypeViewAccount, accountID)
}

func ViewCodeRequest(accountID string) *QueryRequest {
	return newQueryRequest(RequestTypeViewCode, accountID)
}

// ViewStateRequest lists the contract storage entries whose key starts with prefix
func ViewStateRequest(accountID string, prefix []byte) *QueryRequest {
	q := newQueryRequest(RequestTypeViewState, accountID)
	q.fields["prefix_base64"] = base64.StdEncoding.EncodeToString(prefix)
	q.fields["include_proof"] = false
	return q
}

// CallFunctionRequest calls a view method with raw argument bytes
func CallFunctionRequest(contractID string, method string, args []byte) *QueryRequest {
	q := newQueryRequest(RequestTypeCallFunction, contractID)
	q.fields["method_name"] = method
	q.fields["args_base64"] = base64.StdEncoding.EncodeToString(args)
	return q
}

// CallFunctionJSONRequest calls a view method with JSON encoded args. A nil
// args sends an empty argument list. An encoding failure is reported when the
// request is fetched
func CallFunctionJSONRequest(contractID string, method string, args any) *QueryRequest {
	var data []byte
	var err error
	if args != nil {
		data, err = json.Marshal(args)
	}
	q := CallFunctionRequest(contractID, method, data)
	if err != nil {
		q.err = fmt.Errorf("encode arguments for %s: %w", method, err)
	}
	return q
}

func ViewAccessKeyRequest(accountID string, publicKey crypto.PublicKey) *QueryRequest {
	q := newQueryRequest(RequestTypeViewAccessKey, accountID)
	q.fields["public_key"] = publicKey.String()
	return q
}

func ViewAccessKeyListRequest(accountID string) *QueryRequest {
	return newQueryRequest(RequestTypeViewAccessKeyList, accountID)
}

// BlockRequest fetches a block
type BlockRequest struct{}

func (BlockRequest) Method() string {
	return rpc.MethodBlock
}

func (BlockRequest) Params(ref Reference) (any, error) {
	params := map[string]any{}
	ref.apply(params)
	return params, nil
}

func (BlockRequest) ClassifyError(err error) rpc.RetryKind {
	return rpc.ClassifyBlockError(err)
}

func (BlockRequest) NewResponse(raw json.RawMessage) (Response, error) {
	return Response{Kind: KindBlock, Raw: raw}, nil
}

// GasPriceRequest fetches the gas price. A finality reference asks for the
// price at the latest block
type GasPriceRequest struct{}

func (GasPriceRequest) Method() string {
	return rpc.MethodGasPrice
}

func (GasPriceRequest) Params(ref Reference) (any, error) {
	id, _ := ref.blockID()
	return []any{id}, nil
}

func (GasPriceRequest) ClassifyError(err error) rpc.RetryKind {
	return rpc.ClassifyBlockError(err)
}

func (GasPriceRequest) NewResponse(raw json.RawMessage) (Response, error) {
	return Response{Kind: KindGasPrice, Raw: raw}, nil
}

// ValidatorsRequest fetches the validator set of an epoch
type ValidatorsRequest struct{}

func (ValidatorsRequest) Method() string {
	return rpc.MethodValidators
}

func (ValidatorsRequest) Params(ref EpochReference) (any, error) {
	return ref.params(), nil
}

func (ValidatorsRequest) ClassifyError(err error) rpc.RetryKind {
	return rpc.ClassifyValidatorError(err)
}

func (ValidatorsRequest) NewResponse(raw json.RawMessage) (Response, error) {
	return Response{Kind: KindValidators, Raw: raw}, nil
}
