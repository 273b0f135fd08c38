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

// Package signer holds a pool of signing backends and hands out nonces for
// the keys in it.
package signer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/nep413"
	"github.com/blinklabs-io/gonear/query"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/transaction"
)

var (
	ErrSignerPoolEmpty   = errors.New("signer has no keys")
	ErrPublicKeyNotFound = errors.New("public key is not in the signer pool")
)

// SignerOptionFunc is a type that represents functions that modify the Signer config
type SignerOptionFunc func(*Signer)

// WithLogger specifies the logger. slog.Default() is used when none is given
func WithLogger(logger *slog.Logger) SignerOptionFunc {
	return func(s *Signer) {
		s.logger = logger
	}
}

type nonceKey struct {
	accountID string
	publicKey crypto.PublicKey
}

// Signer signs with a pool of backends. Every call to PublicKey returns the
// next key of the pool, so that concurrent transactions of one account spread
// over keys with independent nonces
type Signer struct {
	logger     *slog.Logger
	poolMutex  sync.RWMutex
	keys       []crypto.PublicKey
	pool       map[crypto.PublicKey]Backend
	cursor     atomic.Uint64
	nonceMutex sync.RWMutex
	nonces     map[nonceKey]*atomic.Uint64
}

// New returns a signer whose pool holds backend
func New(ctx context.Context, backend Backend, opts ...SignerOptionFunc) (*Signer, error) {
	s := NewEmpty(opts...)
	if err := s.AddBackend(ctx, backend); err != nil {
		return nil, err
	}
	return s, nil
}

// NewEmpty returns a signer without keys
func NewEmpty(opts ...SignerOptionFunc) *Signer {
	s := &Signer{
		pool:   make(map[crypto.PublicKey]Backend),
		nonces: make(map[nonceKey]*atomic.Uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// FromSecretKey returns a signer for a single in-memory key
func FromSecretKey(key crypto.SecretKey, opts ...SignerOptionFunc) *Signer {
	s := NewEmpty(opts...)
	s.addBackend(key.PublicKey(), NewSecretKeyBackend(key))
	return s
}

// AddBackend adds backend to the pool. A backend for a key already in the pool
// replaces the previous one
func (s *Signer) AddBackend(ctx context.Context, backend Backend) error {
	publicKey, err := backend.PublicKey(ctx)
	if err != nil {
		return fmt.Errorf("get backend public key: %w", err)
	}
	s.addBackend(publicKey, backend)
	return nil
}

func (s *Signer) addBackend(publicKey crypto.PublicKey, backend Backend) {
	s.poolMutex.Lock()
	defer s.poolMutex.Unlock()
	if _, ok := s.pool[publicKey]; !ok {
		s.keys = append(s.keys, publicKey)
	}
	s.pool[publicKey] = backend
	s.logger.Debug(
		"added key to signer pool",
		"component", "signer",
		"public_key", publicKey.String(),
		"pool_size", len(s.keys),
	)
}

func (s *Signer) AddSecretKey(key crypto.SecretKey) {
	s.addBackend(key.PublicKey(), NewSecretKeyBackend(key))
}

// PublicKeys returns the keys of the pool in the order they were added
func (s *Signer) PublicKeys() []crypto.PublicKey {
	s.poolMutex.RLock()
	defer s.poolMutex.RUnlock()
	return append([]crypto.PublicKey(nil), s.keys...)
}

// PublicKey returns the next key of the pool in round-robin order
func (s *Signer) PublicKey() (crypto.PublicKey, error) {
	s.poolMutex.RLock()
	defer s.poolMutex.RUnlock()
	if len(s.keys) == 0 {
		return crypto.PublicKey{}, ErrSignerPoolEmpty
	}
	idx := (s.cursor.Add(1) - 1) % uint64(len(s.keys))
	return s.keys[idx], nil
}

func (s *Signer) backend(publicKey crypto.PublicKey) (Backend, error) {
	s.poolMutex.RLock()
	defer s.poolMutex.RUnlock()
	backend, ok := s.pool[publicKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPublicKeyNotFound, publicKey)
	}
	return backend, nil
}

// SignTransaction signs tx with the backend of publicKey
func (s *Signer) SignTransaction(
	ctx context.Context,
	tx transaction.PrepopulatedTransaction,
	publicKey crypto.PublicKey,
	nonce uint64,
	blockHash crypto.CryptoHash,
) (transaction.SignedTransaction, error) {
	backend, err := s.backend(publicKey)
	if err != nil {
		return transaction.SignedTransaction{}, err
	}
	return backend.SignTransaction(ctx, tx.ToTransaction(publicKey, nonce, blockHash))
}

// SignDelegateAction signs tx as a delegate action valid up to maxBlockHeight
func (s *Signer) SignDelegateAction(
	ctx context.Context,
	tx transaction.PrepopulatedTransaction,
	publicKey crypto.PublicKey,
	nonce uint64,
	maxBlockHeight uint64,
) (transaction.SignedDelegateAction, error) {
	backend, err := s.backend(publicKey)
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	delegate, err := tx.ToDelegateAction(publicKey, nonce, maxBlockHeight)
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	return backend.SignDelegateAction(ctx, delegate)
}

// SignMessage signs an off-chain message with the backend of publicKey
func (s *Signer) SignMessage(
	ctx context.Context,
	signerID string,
	publicKey crypto.PublicKey,
	payload nep413.Payload,
) (crypto.Signature, error) {
	backend, err := s.backend(publicKey)
	if err != nil {
		return crypto.Signature{}, err
	}
	return backend.SignMessage(ctx, signerID, payload)
}

// SignMessageNEP413 signs payload with the next key of the pool and returns it
// in the form wallets hand to a recipient
func (s *Signer) SignMessageNEP413(ctx context.Context, signerID string, payload nep413.Payload) (nep413.SignedMessage, error) {
	publicKey, err := s.PublicKey()
	if err != nil {
		return nep413.SignedMessage{}, err
	}
	sig, err := s.SignMessage(ctx, signerID, publicKey, payload)
	if err != nil {
		return nep413.SignedMessage{}, err
	}
	return nep413.SignedMessage{
		AccountID: signerID,
		PublicKey: publicKey,
		Signature: nep413.EncodeSignature(sig),
	}, nil
}

// NonceData is what a transaction needs from the network before it can be signed
type NonceData struct {
	Nonce       uint64
	BlockHash   crypto.CryptoHash
	BlockHeight uint64
}

// FetchTxNonce reads the access key of publicKey and returns the next nonce to
// use with it, along with the block the key was read at
func (s *Signer) FetchTxNonce(
	ctx context.Context,
	accountID string,
	publicKey crypto.PublicKey,
	network near.NetworkConfig,
	opts ...rpc.RetryOptionFunc,
) (NonceData, error) {
	key, err := query.ViewAccessKey(accountID, publicKey).
		At(query.Optimistic()).
		WithRetryOptions(opts...).
		FetchFrom(ctx, network)
	if err != nil {
		return NonceData{}, fmt.Errorf("fetch access key nonce: %w", err)
	}
	nonce := s.NextNonce(accountID, publicKey, key.Data.Nonce)
	s.logger.Debug(
		"allocated nonce",
		"component", "signer",
		"account_id", accountID,
		"public_key", publicKey.String(),
		"nonce", nonce,
		"on_chain_nonce", key.Data.Nonce,
	)
	return NonceData{
		Nonce:       nonce,
		BlockHash:   key.BlockHash,
		BlockHeight: key.BlockHeight,
	}, nil
}

// NextNonce returns the next nonce for the key given the nonce last seen on
// chain. Nonces for one key strictly increase and are never lower than
// onChainNonce+1
func (s *Signer) NextNonce(accountID string, publicKey crypto.PublicKey, onChainNonce uint64) uint64 {
	k := nonceKey{accountID: accountID, publicKey: publicKey}
	s.nonceMutex.RLock()
	counter, ok := s.nonces[k]
	s.nonceMutex.RUnlock()
	if !ok {
		s.nonceMutex.Lock()
		counter, ok = s.nonces[k]
		if !ok {
			counter = &atomic.Uint64{}
			s.nonces[k] = counter
		}
		s.nonceMutex.Unlock()
	}
	return advanceNonce(counter, onChainNonce)
}

// advanceNonce moves counter to max(counter, floor)+1 and returns the new value
func advanceNonce(counter *atomic.Uint64, floor uint64) uint64 {
	for {
		cur := counter.Load()
		next := max(cur, floor) + 1
		if counter.CompareAndSwap(cur, next) {
			return next
		}
	}
}
