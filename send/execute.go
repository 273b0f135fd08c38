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

package send

import (
	"context"
	"log/slog"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/signer"
	"github.com/blinklabs-io/gonear/transaction"
)

// ExecuteSignedTransaction signs a transaction and submits it through send_tx.
// It is either unsigned, holding only the intent, or presigned. A presigned
// transaction is submitted as is, however often it is sent
type ExecuteSignedTransaction struct {
	tx        transaction.PrepopulatedTransaction
	signed    *transaction.SignedTransaction
	signer    *signer.Signer
	err       error
	hooks     hooks
	waitUntil rpc.TxExecutionStatus
	logger    *slog.Logger
	retryOpts []rpc.RetryOptionFunc
}

func newExecuteSignedTransaction(
	tx transaction.PrepopulatedTransaction,
	s *signer.Signer,
	err error,
) *ExecuteSignedTransaction {
	if s == nil && err == nil {
		err = ErrNoSigner
	}
	return &ExecuteSignedTransaction{
		tx:        tx,
		signer:    s,
		err:       err,
		waitUntil: DefaultWaitUntil,
		logger:    slog.Default(),
	}
}

// FromSignedTransaction returns an executor for a transaction signed elsewhere
func FromSignedTransaction(signed transaction.SignedTransaction) *ExecuteSignedTransaction {
	e := &ExecuteSignedTransaction{
		tx: transaction.NewPrepopulatedTransaction(
			signed.Transaction.SignerID,
			signed.Transaction.ReceiverID,
			signed.Transaction.Actions...,
		),
		waitUntil: DefaultWaitUntil,
		logger:    slog.Default(),
	}
	e.signed = &signed
	return e
}

// WaitUntil sets the execution level send_tx waits for
func (e *ExecuteSignedTransaction) WaitUntil(status rpc.TxExecutionStatus) *ExecuteSignedTransaction {
	e.waitUntil = status
	return e
}

func (e *ExecuteSignedTransaction) WithEditHook(hook EditHook) *ExecuteSignedTransaction {
	e.hooks.edit = append(e.hooks.edit, hook)
	return e
}

func (e *ExecuteSignedTransaction) WithValidateHook(hook ValidateHook) *ExecuteSignedTransaction {
	e.hooks.validate = append(e.hooks.validate, hook)
	return e
}

func (e *ExecuteSignedTransaction) WithLogger(logger *slog.Logger) *ExecuteSignedTransaction {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger
	return e
}

// WithRetryOptions passes opts to the retry executor used for every RPC call
func (e *ExecuteSignedTransaction) WithRetryOptions(opts ...rpc.RetryOptionFunc) *ExecuteSignedTransaction {
	e.retryOpts = append(e.retryOpts, opts...)
	return e
}

// Meta returns an executor that submits the same intent as a delegate action
func (e *ExecuteSignedTransaction) Meta() *ExecuteMetaTransaction {
	m := newExecuteMetaTransaction(e.tx, e.signer, e.err)
	m.hooks = e.hooks.clone()
	m.logger = e.logger
	m.retryOpts = append(m.retryOpts, e.retryOpts...)
	return m
}

// Signed returns the presigned transaction, if any
func (e *ExecuteSignedTransaction) Signed() (transaction.SignedTransaction, bool) {
	if e.signed == nil {
		return transaction.SignedTransaction{}, false
	}
	return *e.signed, true
}

func (e *ExecuteSignedTransaction) clone() *ExecuteSignedTransaction {
	ret := *e
	ret.hooks = e.hooks.clone()
	ret.retryOpts = append([]rpc.RetryOptionFunc(nil), e.retryOpts...)
	return &ret
}

// Presign signs the transaction without touching the network. The returned
// executor holds the signed transaction; the receiver is left unchanged. An
// already presigned transaction is returned as is
func (e *ExecuteSignedTransaction) Presign(
	ctx context.Context,
	publicKey crypto.PublicKey,
	nonce uint64,
	blockHash crypto.CryptoHash,
) (*ExecuteSignedTransaction, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.signed != nil {
		return e, nil
	}
	if e.signer == nil {
		return nil, ErrNoSigner
	}
	signed, err := e.signer.SignTransaction(ctx, e.tx, publicKey, nonce, blockHash)
	if err != nil {
		return nil, err
	}
	ret := e.clone()
	ret.signed = &signed
	return ret, nil
}

// PresignWithNetwork signs the transaction with the next key of the signer
// pool, using a nonce and block hash read from network
func (e *ExecuteSignedTransaction) PresignWithNetwork(
	ctx context.Context,
	network near.NetworkConfig,
) (*ExecuteSignedTransaction, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.signed != nil {
		return e, nil
	}
	if e.signer == nil {
		return nil, ErrNoSigner
	}
	publicKey, err := e.signer.PublicKey()
	if err != nil {
		return nil, err
	}
	nonce, err := e.signer.FetchTxNonce(ctx, e.tx.SignerID, publicKey, network, e.retryOpts...)
	if err != nil {
		return nil, err
	}
	return e.Presign(ctx, publicKey, nonce.Nonce, nonce.BlockHash)
}

func (e *ExecuteSignedTransaction) PresignWithMainnet(ctx context.Context) (*ExecuteSignedTransaction, error) {
	return e.PresignWithNetwork(ctx, near.NetworkMainnet)
}

func (e *ExecuteSignedTransaction) PresignWithTestnet(ctx context.Context) (*ExecuteSignedTransaction, error) {
	return e.PresignWithNetwork(ctx, near.NetworkTestnet)
}

// SendTo submits the transaction to network and returns its normalized
// outcome. An unsigned transaction runs the edit hooks and is signed first. A
// presigned one only runs the validate hooks
func (e *ExecuteSignedTransaction) SendTo(ctx context.Context, network near.NetworkConfig) (rpc.FinalExecutionOutcome, error) {
	if e.err != nil {
		return rpc.FinalExecutionOutcome{}, e.err
	}
	signed := e.signed
	if signed != nil {
		e.logger.Debug("validating presigned transaction", "component", "send")
		if err := e.hooks.runValidate(ctx, network, e.tx); err != nil {
			return rpc.FinalExecutionOutcome{}, err
		}
	} else {
		edited := e.clone()
		edited.tx = transaction.NewPrepopulatedTransaction(e.tx.SignerID, e.tx.ReceiverID, e.tx.Actions...)
		e.logger.Debug("editing unsigned transaction", "component", "send")
		if err := e.hooks.runEdit(ctx, network, &edited.tx); err != nil {
			return rpc.FinalExecutionOutcome{}, err
		}
		presigned, err := edited.PresignWithNetwork(ctx, network)
		if err != nil {
			return rpc.FinalExecutionOutcome{}, err
		}
		signed = presigned.signed
	}
	return e.broadcast(ctx, network, *signed)
}

func (e *ExecuteSignedTransaction) SendToMainnet(ctx context.Context) (rpc.FinalExecutionOutcome, error) {
	return e.SendTo(ctx, near.NetworkMainnet)
}

func (e *ExecuteSignedTransaction) SendToTestnet(ctx context.Context) (rpc.FinalExecutionOutcome, error) {
	return e.SendTo(ctx, near.NetworkTestnet)
}

func (e *ExecuteSignedTransaction) broadcast(
	ctx context.Context,
	network near.NetworkConfig,
	signed transaction.SignedTransaction,
) (rpc.FinalExecutionOutcome, error) {
	hash := signed.Hash()
	e.logger.Info(
		"broadcasting signed transaction",
		"component", "send",
		"tx_hash", hash.String(),
		"account_id", signed.Transaction.SignerID,
		"receiver_id", signed.Transaction.ReceiverID,
		"nonce", signed.Transaction.Nonce,
	)
	params := rpc.SendTxParams{
		SignedTxBase64: signed.Base64(),
		WaitUntil:      e.waitUntil,
	}
	retryOpts := append([]rpc.RetryOptionFunc{rpc.WithRetryLogger(e.logger)}, e.retryOpts...)
	outcome, err := rpc.Retry(
		ctx,
		network.RPCEndpoints,
		rpc.ClassifyTransactionError,
		func(ctx context.Context, client *rpc.Client) (rpc.FinalExecutionOutcome, error) {
			raw, err := client.CallRaw(ctx, rpc.MethodSendTx, params)
			if err != nil {
				return rpc.FinalExecutionOutcome{}, err
			}
			return rpc.NormalizeTxResponse(raw)
		},
		retryOpts...,
	)
	if err != nil {
		return rpc.FinalExecutionOutcome{}, err
	}
	e.logger.Debug(
		"transaction submitted",
		"component", "send",
		"tx_hash", hash.String(),
		"final_execution_status", string(outcome.FinalExecutionStatus),
		"executed", outcome.Executed,
	)
	return outcome, nil
}
