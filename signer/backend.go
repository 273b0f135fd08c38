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

package signer

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/nep413"
	"github.com/blinklabs-io/gonear/transaction"
)

var ErrSecretKeyUnavailable = errors.New("secret key is not available")

// Backend produces signatures for one key
type Backend interface {
	PublicKey(ctx context.Context) (crypto.PublicKey, error)
	SignTransaction(ctx context.Context, tx transaction.Transaction) (transaction.SignedTransaction, error)
	SignDelegateAction(ctx context.Context, d transaction.DelegateAction) (transaction.SignedDelegateAction, error)
	// SignMessage signs an off-chain message on behalf of signerID
	SignMessage(ctx context.Context, signerID string, payload nep413.Payload) (crypto.Signature, error)
}

// SecretKeyProvider returns the secret key of publicKey for signerID. It is
// called for every signature so that keys held elsewhere are only loaded when
// needed
type SecretKeyProvider func(ctx context.Context, signerID string, publicKey crypto.PublicKey) (crypto.SecretKey, error)

// KeyBackend signs with a secret key obtained from a provider
type KeyBackend struct {
	publicKey crypto.PublicKey
	provider  SecretKeyProvider
}

func NewKeyBackend(publicKey crypto.PublicKey, provider SecretKeyProvider) *KeyBackend {
	return &KeyBackend{
		publicKey: publicKey,
		provider:  provider,
	}
}

// NewSecretKeyBackend returns a backend holding key in memory
func NewSecretKeyBackend(key crypto.SecretKey) *KeyBackend {
	return NewKeyBackend(
		key.PublicKey(),
		func(context.Context, string, crypto.PublicKey) (crypto.SecretKey, error) {
			return key, nil
		},
	)
}

func (b *KeyBackend) PublicKey(_ context.Context) (crypto.PublicKey, error) {
	return b.publicKey, nil
}

func (b *KeyBackend) secretKey(ctx context.Context, signerID string) (crypto.SecretKey, error) {
	key, err := b.provider(ctx, signerID, b.publicKey)
	if err != nil {
		return crypto.SecretKey{}, err
	}
	if key.PublicKey() != b.publicKey {
		return crypto.SecretKey{}, fmt.Errorf("%w: loaded key is %s", crypto.ErrPublicKeyMismatch, key.PublicKey())
	}
	return key, nil
}

func (b *KeyBackend) SignTransaction(ctx context.Context, tx transaction.Transaction) (transaction.SignedTransaction, error) {
	key, err := b.secretKey(ctx, tx.SignerID)
	if err != nil {
		return transaction.SignedTransaction{}, err
	}
	return tx.Sign(key)
}

func (b *KeyBackend) SignDelegateAction(ctx context.Context, d transaction.DelegateAction) (transaction.SignedDelegateAction, error) {
	key, err := b.secretKey(ctx, d.SenderID)
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	return d.Sign(key)
}

func (b *KeyBackend) SignMessage(ctx context.Context, signerID string, payload nep413.Payload) (crypto.Signature, error) {
	key, err := b.secretKey(ctx, signerID)
	if err != nil {
		return crypto.Signature{}, err
	}
	return payload.Sign(key)
}
