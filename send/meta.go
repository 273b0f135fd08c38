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
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/signer"
	"github.com/blinklabs-io/gonear/transaction"
)

// ExecuteMetaTransaction signs a transaction as a delegate action and posts it
// to the relayer of a network, which submits it and pays for gas
type ExecuteMetaTransaction struct {
	tx         transaction.PrepopulatedTransaction
	signed     *transaction.SignedDelegateAction
	signer     *signer.Signer
	err        error
	hooks      hooks
	validFor   uint64
	logger     *slog.Logger
	httpClient *http.Client
	retryOpts  []rpc.RetryOptionFunc
}

func newExecuteMetaTransaction(
	tx transaction.PrepopulatedTransaction,
	s *signer.Signer,
	err error,
) *ExecuteMetaTransaction {
	if s == nil && err == nil {
		err = ErrNoSigner
	}
	return &ExecuteMetaTransaction{
		tx:       tx,
		signer:   s,
		err:      err,
		validFor: DefaultMetaTransactionValidFor,
		logger:   slog.Default(),
	}
}

// FromSignedDelegateAction returns an executor for a delegate action signed
// elsewhere
func FromSignedDelegateAction(signed transaction.SignedDelegateAction) *ExecuteMetaTransaction {
	d := signed.DelegateAction
	e := &ExecuteMetaTransaction{
		tx:       transaction.NewPrepopulatedTransaction(d.SenderID, d.ReceiverID, d.Actions...),
		validFor: DefaultMetaTransactionValidFor,
		logger:   slog.Default(),
	}
	e.signed = &signed
	return e
}

// WithValidFor sets how many blocks past the current one the delegate action
// may still be included
func (e *ExecuteMetaTransaction) WithValidFor(blocks uint64) *ExecuteMetaTransaction {
	e.validFor = blocks
	return e
}

func (e *ExecuteMetaTransaction) WithEditHook(hook EditHook) *ExecuteMetaTransaction {
	e.hooks.edit = append(e.hooks.edit, hook)
	return e
}

func (e *ExecuteMetaTransaction) WithValidateHook(hook ValidateHook) *ExecuteMetaTransaction {
	e.hooks.validate = append(e.hooks.validate, hook)
	return e
}

func (e *ExecuteMetaTransaction) WithLogger(logger *slog.Logger) *ExecuteMetaTransaction {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger
	return e
}

// WithHTTPClient specifies the client used to reach the relayer
func (e *ExecuteMetaTransaction) WithHTTPClient(httpClient *http.Client) *ExecuteMetaTransaction {
	e.httpClient = httpClient
	return e
}

// WithRetryOptions passes opts to the retry executor used to read the nonce
func (e *ExecuteMetaTransaction) WithRetryOptions(opts ...rpc.RetryOptionFunc) *ExecuteMetaTransaction {
	e.retryOpts = append(e.retryOpts, opts...)
	return e
}

// Signed returns the presigned delegate action, if any
func (e *ExecuteMetaTransaction) Signed() (transaction.SignedDelegateAction, bool) {
	if e.signed == nil {
		return transaction.SignedDelegateAction{}, false
	}
	return *e.signed, true
}

func (e *ExecuteMetaTransaction) clone() *ExecuteMetaTransaction {
	ret := *e
	ret.hooks = e.hooks.clone()
	ret.retryOpts = append([]rpc.RetryOptionFunc(nil), e.retryOpts...)
	return &ret
}

// Presign signs the delegate action without touching the network. It expires
// once the chain passes blockHeight plus the validity window
func (e *ExecuteMetaTransaction) Presign(
	ctx context.Context,
	publicKey crypto.PublicKey,
	nonce uint64,
	blockHeight uint64,
) (*ExecuteMetaTransaction, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.signed != nil {
		return e, nil
	}
	if e.signer == nil {
		return nil, ErrNoSigner
	}
	signed, err := e.signer.SignDelegateAction(ctx, e.tx, publicKey, nonce, blockHeight+e.validFor)
	if err != nil {
		return nil, err
	}
	ret := e.clone()
	ret.signed = &signed
	return ret, nil
}

// PresignWithNetwork signs the delegate action with the next key of the
// signer pool, using a nonce and block height read from network
func (e *ExecuteMetaTransaction) PresignWithNetwork(
	ctx context.Context,
	network near.NetworkConfig,
) (*ExecuteMetaTransaction, error) {
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
	return e.Presign(ctx, publicKey, nonce.Nonce, nonce.BlockHeight)
}

func (e *ExecuteMetaTransaction) PresignWithMainnet(ctx context.Context) (*ExecuteMetaTransaction, error) {
	return e.PresignWithNetwork(ctx, near.NetworkMainnet)
}

func (e *ExecuteMetaTransaction) PresignWithTestnet(ctx context.Context) (*ExecuteMetaTransaction, error) {
	return e.PresignWithNetwork(ctx, near.NetworkTestnet)
}

// SendTo posts the signed delegate action to the relayer of network. The
// relayer response is returned unread and the caller must close its body. A
// network without a relayer URL fails before anything is signed
func (e *ExecuteMetaTransaction) SendTo(ctx context.Context, network near.NetworkConfig) (*http.Response, error) {
	if e.err != nil {
		return nil, e.err
	}
	if network.MetaTransactionRelayerURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRelayerURL, network.NetworkName)
	}
	signed := e.signed
	if signed != nil {
		e.logger.Debug("validating presigned meta transaction", "component", "send")
		if err := e.hooks.runValidate(ctx, network, e.tx); err != nil {
			return nil, err
		}
	} else {
		edited := e.clone()
		edited.tx = transaction.NewPrepopulatedTransaction(e.tx.SignerID, e.tx.ReceiverID, e.tx.Actions...)
		e.logger.Debug("editing unsigned meta transaction", "component", "send")
		if err := e.hooks.runEdit(ctx, network, &edited.tx); err != nil {
			return nil, err
		}
		presigned, err := edited.PresignWithNetwork(ctx, network)
		if err != nil {
			return nil, err
		}
		signed = presigned.signed
	}
	return e.relay(ctx, network.MetaTransactionRelayerURL, *signed)
}

func (e *ExecuteMetaTransaction) SendToMainnet(ctx context.Context) (*http.Response, error) {
	return e.SendTo(ctx, near.NetworkMainnet)
}

func (e *ExecuteMetaTransaction) SendToTestnet(ctx context.Context) (*http.Response, error) {
	return e.SendTo(ctx, near.NetworkTestnet)
}

func (e *ExecuteMetaTransaction) relay(
	ctx context.Context,
	relayerURL string,
	signed transaction.SignedDelegateAction,
) (*http.Response, error) {
	body, err := signed.RelayerPayload()
	if err != nil {
		return nil, fmt.Errorf("encode relayer payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, relayerURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create relayer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	httpClient := e.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	d := signed.DelegateAction
	e.logger.Info(
		"posting signed meta transaction to relayer",
		"component", "send",
		"account_id", d.SenderID,
		"receiver_id", d.ReceiverID,
		"nonce", d.Nonce,
		"max_block_height", d.MaxBlockHeight,
	)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &rpc.TransportError{Endpoint: relayerURL, Err: err}
	}
	e.logger.Debug(
		"relayer answered",
		"component", "send",
		"status", resp.StatusCode,
	)
	return resp, nil
}
