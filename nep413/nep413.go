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

// Package nep413 implements signing and verification of off-chain messages
// addressed to a recipient, as wallets produce them for sign-in flows.
package nep413

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/borsh"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/query"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/transaction"
)

const NonceLength = 32

var ErrInvalidNonce = errors.New("nonce must be 32 bytes")

// Payload is the message a user signs
type Payload struct {
	Message     string
	Nonce       [NonceLength]byte
	Recipient   string
	CallbackURL *string
}

// NewPayload returns a payload whose nonce carries the current time
func NewPayload(message string, recipient string) (Payload, error) {
	nonce, err := NewNonceWithTimestamp(time.Now())
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		Message:   message,
		Nonce:     nonce,
		Recipient: recipient,
	}, nil
}

// NewNonceWithTimestamp returns a random nonce whose first 8 bytes are the
// big-endian millisecond timestamp of t
func NewNonceWithTimestamp(t time.Time) ([NonceLength]byte, error) {
	var nonce [NonceLength]byte
	if _, err := rand.Read(nonce[8:]); err != nil {
		return nonce, err
	}
	binary.BigEndian.PutUint64(nonce[:8], uint64(t.UnixMilli()))
	return nonce, nil
}

// Timestamp returns the millisecond timestamp held in the first 8 nonce bytes
func (p Payload) Timestamp() uint64 {
	return binary.BigEndian.Uint64(p.Nonce[:8])
}

func (p Payload) Time() time.Time {
	return time.UnixMilli(int64(p.Timestamp()))
}

func (p Payload) MarshalBorsh(w *borsh.Writer) {
	w.WriteString(p.Message)
	w.WriteFixed(p.Nonce[:])
	w.WriteString(p.Recipient)
	w.WriteOptionString(p.CallbackURL)
}

func (p *Payload) UnmarshalBorsh(r *borsh.Reader) {
	p.Message = r.ReadString()
	copy(p.Nonce[:], r.ReadFixed(NonceLength))
	p.Recipient = r.ReadString()
	p.CallbackURL = r.ReadOptionString()
}

// Hash returns the value that gets signed, prefixed with the NEP-413
// discriminant so it can never be mistaken for a transaction
func (p Payload) Hash() crypto.CryptoHash {
	return transaction.SignableMessageHash(transaction.DiscriminantNEP413, p)
}

func (p Payload) Sign(key crypto.SecretKey) (crypto.Signature, error) {
	hash := p.Hash()
	return key.Sign(hash[:])
}

// VerifySignature checks only the signature, not whether the key belongs to
// an account
func (p Payload) VerifySignature(sig crypto.Signature, publicKey crypto.PublicKey) bool {
	hash := p.Hash()
	return crypto.Verify(sig, hash[:], publicKey)
}

type payloadJSON struct {
	Message     string          `json:"message"`
	Nonce       json.RawMessage `json:"nonce"`
	Recipient   string          `json:"recipient"`
	CallbackURL *string         `json:"callbackUrl,omitempty"`
}

// MarshalJSON writes the nonce as an array of numbers
func (p Payload) MarshalJSON() ([]byte, error) {
	nonce, err := json.Marshal(rpc.ByteArray(p.Nonce[:]))
	if err != nil {
		return nil, err
	}
	return json.Marshal(payloadJSON{
		Message:     p.Message,
		Nonce:       nonce,
		Recipient:   p.Recipient,
		CallbackURL: p.CallbackURL,
	})
}

// UnmarshalJSON accepts the nonce as an array of numbers or a base64 string
func (p *Payload) UnmarshalJSON(data []byte) error {
	var tmp payloadJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	var nonce []byte
	var encoded string
	if err := json.Unmarshal(tmp.Nonce, &encoded); err == nil {
		nonce, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidNonce, err)
		}
	} else {
		var arr rpc.ByteArray
		if err := json.Unmarshal(tmp.Nonce, &arr); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidNonce, err)
		}
		nonce = arr
	}
	if len(nonce) != NonceLength {
		return fmt.Errorf("%w: got %d", ErrInvalidNonce, len(nonce))
	}
	p.Message = tmp.Message
	copy(p.Nonce[:], nonce)
	p.Recipient = tmp.Recipient
	p.CallbackURL = tmp.CallbackURL
	return nil
}

// SignedMessage is what a wallet returns after signing a payload
type SignedMessage struct {
	AccountID string           `json:"accountId"`
	PublicKey crypto.PublicKey `json:"publicKey"`
	Signature string           `json:"signature"`
	State     *string          `json:"state,omitempty"`
}

// NewSignedMessage signs payload and encodes the signature in base64
func NewSignedMessage(payload Payload, accountID string, key crypto.SecretKey) (SignedMessage, error) {
	sig, err := payload.Sign(key)
	if err != nil {
		return SignedMessage{}, err
	}
	return SignedMessage{
		AccountID: accountID,
		PublicKey: key.PublicKey(),
		Signature: EncodeSignature(sig),
	}, nil
}

// EncodeSignature returns the base64 form of the raw signature bytes
func EncodeSignature(sig crypto.Signature) string {
	return base64.StdEncoding.EncodeToString(sig.Data())
}

// ParseSignature accepts "<key type>:<base58>" or bare base64 signature bytes
// of the expected key type
func ParseSignature(s string, keyType crypto.KeyType) (crypto.Signature, error) {
	if strings.Contains(s, ":") {
		return crypto.ParseSignature(s)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return crypto.Signature{}, fmt.Errorf("decode signature: %w", err)
	}
	return crypto.NewSignature(keyType, data)
}

// VerifySignature checks the signature of m over payload
func (m SignedMessage) VerifySignature(payload Payload) (bool, error) {
	sig, err := ParseSignature(m.Signature, m.PublicKey.Type())
	if err != nil {
		return false, err
	}
	return payload.VerifySignature(sig, m.PublicKey), nil
}

// Verify checks the signature of m and that its key is a full access key of
// the claimed account. A key scoped to function calls, or one the account does
// not have, fails verification
func (m SignedMessage) Verify(ctx context.Context, payload Payload, network near.NetworkConfig) (bool, error) {
	ok, err := m.VerifySignature(payload)
	if err != nil || !ok {
		return false, err
	}
	return HasFullAccessKey(ctx, m.AccountID, m.PublicKey, network)
}

// HasFullAccessKey reports whether publicKey is a full access key of accountID
func HasFullAccessKey(
	ctx context.Context,
	accountID string,
	publicKey crypto.PublicKey,
	network near.NetworkConfig,
) (bool, error) {
	key, err := query.ViewAccessKey(accountID, publicKey).At(query.Final()).FetchFrom(ctx, network)
	if err != nil {
		var rpcErr *rpc.Error
		if errors.As(err, &rpcErr) && rpcErr.IsHandlerError(rpc.QueryErrorUnknownAccessKey) {
			return false, nil
		}
		return false, err
	}
	return key.Data.Permission.IsFullAccess(), nil
}
