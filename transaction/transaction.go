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

package transaction

import (
	"encoding/base64"
	"fmt"

	"github.com/blinklabs-io/gonear/borsh"
	"github.com/blinklabs-io/gonear/crypto"
)

type Version uint8

const (
	VersionV0 Version = 0
	// VersionV1 adds a priority fee and is encoded with a leading version byte
	VersionV1 Version = 1
)

// Transaction is an unsigned transaction with its nonce and recent block hash
// already assigned
type Transaction struct {
	Version     Version
	SignerID    string
	PublicKey   crypto.PublicKey
	Nonce       uint64
	ReceiverID  string
	BlockHash   crypto.CryptoHash
	Actions     []Action
	PriorityFee uint64
}

func (t Transaction) MarshalBorsh(w *borsh.Writer) {
	if t.Version == VersionV1 {
		w.WriteU8(uint8(VersionV1))
	}
	w.WriteString(t.SignerID)
	t.PublicKey.MarshalBorsh(w)
	w.WriteU64(t.Nonce)
	w.WriteString(t.ReceiverID)
	t.BlockHash.MarshalBorsh(w)
	marshalActions(w, t.Actions)
	if t.Version == VersionV1 {
		w.WriteU64(t.PriorityFee)
	}
}

func (t *Transaction) UnmarshalBorsh(r *borsh.Reader) {
	*t = Transaction{}
	// A V0 transaction starts with the signer id length, which is at least 2
	if b, ok := r.Peek(); ok && b == uint8(VersionV1) {
		r.ReadU8()
		t.Version = VersionV1
	}
	t.SignerID = r.ReadString()
	r.Read(&t.PublicKey)
	t.Nonce = r.ReadU64()
	t.ReceiverID = r.ReadString()
	r.Read(&t.BlockHash)
	t.Actions = unmarshalActions(r)
	if t.Version == VersionV1 {
		t.PriorityFee = r.ReadU64()
	}
}

// Hash returns the transaction hash, the SHA-256 of its binary encoding. This
// is the value that gets signed
func (t Transaction) Hash() crypto.CryptoHash {
	return crypto.Hash(borsh.Encode(t))
}

// Sign signs the transaction hash with key
func (t Transaction) Sign(key crypto.SecretKey) (SignedTransaction, error) {
	hash := t.Hash()
	sig, err := key.Sign(hash[:])
	if err != nil {
		return SignedTransaction{}, fmt.Errorf("sign transaction: %w", err)
	}
	return NewSignedTransaction(t, sig), nil
}

// SignedTransaction is a transaction together with its signature
type SignedTransaction struct {
	Transaction Transaction
	Signature   crypto.Signature
}

func NewSignedTransaction(tx Transaction, sig crypto.Signature) SignedTransaction {
	return SignedTransaction{Transaction: tx, Signature: sig}
}

// Hash is computed from the current Transaction, so it always matches Base64
func (s SignedTransaction) Hash() crypto.CryptoHash {
	return s.Transaction.Hash()
}

func (s SignedTransaction) MarshalBorsh(w *borsh.Writer) {
	s.Transaction.MarshalBorsh(w)
	s.Signature.MarshalBorsh(w)
}

func (s *SignedTransaction) UnmarshalBorsh(r *borsh.Reader) {
	r.Read(&s.Transaction)
	r.Read(&s.Signature)
}

// Base64 returns the wire form submitted to the RPC
func (s SignedTransaction) Base64() string {
	return base64.StdEncoding.EncodeToString(borsh.Encode(s))
}

// Verify checks the signature against the transaction's public key
func (s SignedTransaction) Verify() bool {
	hash := s.Hash()
	return s.Signature.Verify(hash[:], s.Transaction.PublicKey)
}

func SignedTransactionFromBase64(s string) (SignedTransaction, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return SignedTransaction{}, fmt.Errorf("decode signed transaction: %w", err)
	}
	var ret SignedTransaction
	if err := borsh.Decode(data, &ret); err != nil {
		return SignedTransaction{}, err
	}
	return ret, nil
}
