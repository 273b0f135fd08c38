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
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gonear/borsh"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/types"
)

// Handler turns raw responses into a typed result
type Handler[T any] interface {
	// RequestAmount is the number of responses Process consumes
	RequestAmount() int
	Process(responses []Response) (T, error)
}

// Data is a query result with the block it was read at
type Data[T any] struct {
	Data        T
	BlockHeight uint64
	BlockHash   crypto.CryptoHash
}

func single(responses []Response) (Response, error) {
	if len(responses) < 1 {
		return Response{}, &DecodeError{Err: ErrMissingResponse}
	}
	return responses[0], nil
}

// ViewHandler decodes a single query response of one kind into V
type ViewHandler[V any] struct {
	kind ResponseKind
}

func (h ViewHandler[V]) RequestAmount() int {
	return 1
}

func (h ViewHandler[V]) Process(responses []Response) (Data[V], error) {
	var ret Data[V]
	resp, err := single(responses)
	if err != nil {
		return ret, err
	}
	if err := decode(resp, h.kind, &ret.Data); err != nil {
		return ret, err
	}
	ret.BlockHeight = resp.BlockHeight
	ret.BlockHash = resp.BlockHash
	return ret, nil
}

func AccountViewHandler() Handler[Data[rpc.AccountView]] {
	return ViewHandler[rpc.AccountView]{kind: KindViewAccount}
}

func ContractCodeHandler() Handler[Data[rpc.ContractCodeView]] {
	return ViewHandler[rpc.ContractCodeView]{kind: KindViewCode}
}

func ViewStateHandler() Handler[Data[rpc.ViewStateResult]] {
	return ViewHandler[rpc.ViewStateResult]{kind: KindViewState}
}

func CallResultHandler() Handler[Data[rpc.CallResult]] {
	return ViewHandler[rpc.CallResult]{kind: KindCallResult}
}

func AccessKeyHandler() Handler[Data[rpc.AccessKeyView]] {
	return ViewHandler[rpc.AccessKeyView]{kind: KindAccessKey}
}

func AccessKeyListHandler() Handler[Data[rpc.AccessKeyList]] {
	return ViewHandler[rpc.AccessKeyList]{kind: KindAccessKeyList}
}

// ContractCodeBytesHandler returns the deployed contract code
func ContractCodeBytesHandler() Handler[Data[[]byte]] {
	return AndThen(ContractCodeHandler(), func(d Data[rpc.ContractCodeView]) (Data[[]byte], error) {
		code, err := base64.StdEncoding.DecodeString(d.Data.CodeBase64)
		if err != nil {
			return Data[[]byte]{}, err
		}
		return Data[[]byte]{Data: code, BlockHeight: d.BlockHeight, BlockHash: d.BlockHash}, nil
	})
}

// CallResultRawHandler returns the bytes produced by a view call
func CallResultRawHandler() Handler[Data[[]byte]] {
	return Map(CallResultHandler(), func(d Data[rpc.CallResult]) Data[[]byte] {
		return Data[[]byte]{Data: []byte(d.Data.Result), BlockHeight: d.BlockHeight, BlockHash: d.BlockHash}
	})
}

// CallResultJSONHandler decodes the bytes produced by a view call as JSON
func CallResultJSONHandler[T any]() Handler[Data[T]] {
	return AndThen(CallResultHandler(), func(d Data[rpc.CallResult]) (Data[T], error) {
		ret := Data[T]{BlockHeight: d.BlockHeight, BlockHash: d.BlockHash}
		if err := json.Unmarshal(d.Data.Result, &ret.Data); err != nil {
			return ret, fmt.Errorf("call result is not valid JSON: %w", err)
		}
		return ret, nil
	})
}

// CallResultBorshHandler decodes the bytes produced by a view call as Borsh
func CallResultBorshHandler[T any, PT interface {
	*T
	borsh.Unmarshaler
}]() Handler[Data[T]] {
	return AndThen(CallResultHandler(), func(d Data[rpc.CallResult]) (Data[T], error) {
		ret := Data[T]{BlockHeight: d.BlockHeight, BlockHash: d.BlockHash}
		if err := borsh.Decode(d.Data.Result, PT(&ret.Data)); err != nil {
			return ret, fmt.Errorf("call result is not valid Borsh: %w", err)
		}
		return ret, nil
	})
}

// RawHandler decodes a single non-query response of one kind into V
type RawHandler[V any] struct {
	kind ResponseKind
}

func (h RawHandler[V]) RequestAmount() int {
	return 1
}

func (h RawHandler[V]) Process(responses []Response) (V, error) {
	var ret V
	resp, err := single(responses)
	if err != nil {
		return ret, err
	}
	err = decode(resp, h.kind, &ret)
	return ret, err
}

func BlockHandler() Handler[rpc.BlockView] {
	return RawHandler[rpc.BlockView]{kind: KindBlock}
}

func ValidatorsHandler() Handler[rpc.EpochValidatorInfo] {
	return RawHandler[rpc.EpochValidatorInfo]{kind: KindValidators}
}

func GasPriceHandler() Handler[types.Balance] {
	return Map[rpc.GasPriceView, types.Balance](RawHandler[rpc.GasPriceView]{kind: KindGasPrice}, func(v rpc.GasPriceView) types.Balance {
		return v.GasPrice
	})
}

type mapHandler[T, U any] struct {
	inner Handler[T]
	fn    func(T) (U, error)
}

func (h mapHandler[T, U]) RequestAmount() int {
	return h.inner.RequestAmount()
}

func (h mapHandler[T, U]) Process(responses []Response) (U, error) {
	var ret U
	tmp, err := h.inner.Process(responses)
	if err != nil {
		return ret, err
	}
	ret, err = h.fn(tmp)
	if err != nil {
		return ret, &DecodeError{Err: err}
	}
	return ret, nil
}

// Map returns a handler that applies fn to the result of h
func Map[T, U any](h Handler[T], fn func(T) U) Handler[U] {
	return mapHandler[T, U]{
		inner: h,
		fn: func(v T) (U, error) {
			return fn(v), nil
		},
	}
}

// AndThen returns a handler that applies fn to the result of h. A failure of
// fn is returned as a DecodeError
func AndThen[T, U any](h Handler[T], fn func(T) (U, error)) Handler[U] {
	return mapHandler[T, U]{inner: h, fn: fn}
}
