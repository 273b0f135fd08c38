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

// Package send builds transactions from actions, signs them with a signer
// pool and submits them either to the RPC network or, as delegate actions, to
// a meta transaction relayer.
package send

import (
	"context"
	"errors"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/transaction"
)

// DefaultMetaTransactionValidFor is the number of blocks a delegate action
// stays valid after the block its nonce was read at
const DefaultMetaTransactionValidFor uint64 = 1000

// DefaultWaitUntil is the execution level send_tx waits for unless told otherwise
const DefaultWaitUntil = rpc.TxExecutionStatusFinal

var (
	ErrMissingRelayerURL = errors.New("network has no meta transaction relayer URL")
	ErrNoSigner          = errors.New("transaction has no signer")
)

// EditHook may change an unsigned transaction based on the state of network
// right before it is signed
type EditHook func(ctx context.Context, network near.NetworkConfig, tx *transaction.PrepopulatedTransaction) error

// ValidateHook checks a presigned transaction against network before it is
// submitted. It receives the intent the transaction was signed from
type ValidateHook func(ctx context.Context, network near.NetworkConfig, tx transaction.PrepopulatedTransaction) error

// hooks is shared by both executors
type hooks struct {
	edit     []EditHook
	validate []ValidateHook
}

func (h hooks) runEdit(ctx context.Context, network near.NetworkConfig, tx *transaction.PrepopulatedTransaction) error {
	for _, hook := range h.edit {
		if err := hook(ctx, network, tx); err != nil {
			return &HookError{Stage: "edit", Err: err}
		}
	}
	return nil
}

func (h hooks) runValidate(ctx context.Context, network near.NetworkConfig, tx transaction.PrepopulatedTransaction) error {
	for _, hook := range h.validate {
		if err := hook(ctx, network, tx); err != nil {
			return &HookError{Stage: "validate", Err: err}
		}
	}
	return nil
}

func (h hooks) clone() hooks {
	return hooks{
		edit:     append([]EditHook(nil), h.edit...),
		validate: append([]ValidateHook(nil), h.validate...),
	}
}

// HookError is returned when an edit or validate hook rejects a transaction
type HookError struct {
	Stage string
	Err   error
}

func (e *HookError) Error() string {
	return e.Stage + " hook failed: " + e.Err.Error()
}

func (e *HookError) Unwrap() error {
	return e.Err
}
