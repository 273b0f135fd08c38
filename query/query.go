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

// Package query implements read queries against the network: requests pinned
// to a reference point, handlers that decode typed results from raw responses,
// and builders that run one or several requests through the retry executor.
package query

import (
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/types"
)

func ViewAccount(accountID string) *Builder[Reference, Data[rpc.AccountView]] {
	return NewBuilder[Reference, Data[rpc.AccountView]](
		ViewAccountRequest(accountID),
		Optimistic(),
		AccountViewHandler(),
	)
}

// ViewCode fetches the contract code deployed on accountID
func ViewCode(accountID string) *Builder[Reference, Data[[]byte]] {
	return NewBuilder[Reference, Data[[]byte]](
		ViewCodeRequest(accountID),
		Optimistic(),
		ContractCodeBytesHandler(),
	)
}

func ViewState(accountID string, prefix []byte) *Builder[Reference, Data[rpc.ViewStateResult]] {
	return NewBuilder[Reference, Data[rpc.ViewStateResult]](
		ViewStateRequest(accountID, prefix),
		Optimistic(),
		ViewStateHandler(),
	)
}

// CallFunction calls a view method with JSON args and decodes its JSON result into T
func CallFunction[T any](contractID string, method string, args any) *Builder[Reference, Data[T]] {
	return NewBuilder[Reference, Data[T]](
		CallFunctionJSONRequest(contractID, method, args),
		Optimistic(),
		CallResultJSONHandler[T](),
	)
}

func CallFunctionRaw(contractID string, method string, args []byte) *Builder[Reference, Data[[]byte]] {
	return NewBuilder[Reference, Data[[]byte]](
		CallFunctionRequest(contractID, method, args),
		Optimistic(),
		CallResultRawHandler(),
	)
}

func ViewAccessKey(accountID string, publicKey crypto.PublicKey) *Builder[Reference, Data[rpc.AccessKeyView]] {
	return NewBuilder[Reference, Data[rpc.AccessKeyView]](
		ViewAccessKeyRequest(accountID, publicKey),
		Optimistic(),
		AccessKeyHandler(),
	)
}

func ViewAccessKeys(accountID string) *Builder[Reference, Data[rpc.AccessKeyList]] {
	return NewBuilder[Reference, Data[rpc.AccessKeyList]](
		ViewAccessKeyListRequest(accountID),
		Optimistic(),
		AccessKeyListHandler(),
	)
}

func Block() *Builder[Reference, rpc.BlockView] {
	return NewBuilder[Reference, rpc.BlockView](BlockRequest{}, Optimistic(), BlockHandler())
}

func GasPrice() *Builder[Reference, types.Balance] {
	return NewBuilder[Reference, types.Balance](GasPriceRequest{}, Optimistic(), GasPriceHandler())
}

func Validators() *Builder[EpochReference, rpc.EpochValidatorInfo] {
	return NewBuilder[EpochReference, rpc.EpochValidatorInfo](
		ValidatorsRequest{},
		LatestEpoch(),
		ValidatorsHandler(),
	)
}
