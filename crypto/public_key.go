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

package crypto

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/blinklabs-io/gonear/borsh"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"
)

// PublicKey is an ed25519 or secp256k1 public key. secp256k1 keys are stored
// uncompressed without the 0x04 prefix. PublicKey is comparable and may be used
// as a map key
type PublicKey struct {
	keyType KeyType
	data    [SECP256K1PublicKeyLength]byte
}

// NewPublicKey builds a public key from raw key bytes
func NewPublicKey(keyType KeyType, data []byte) (PublicKey, error) {
	if !keyType.valid() {
		return PublicKey{}, fmt.Errorf("%w: %d", ErrUnknownKeyType, keyType)
	}
	if len(data) != keyType.PublicKeyLength() {
		return PublicKey{}, fmt.Errorf(
			"%w: %s public key must be %d bytes, got %d",
			ErrInvalidKeyLength,
			keyType,
			keyType.PublicKeyLength(),
			len(data),
		)
	}
	ret := PublicKey{keyType: keyType}
	copy(ret.data[:], data)
	return ret, nil
}

func NewED25519PublicKey(key ed25519.PublicKey) (PublicKey, error) {
	return NewPublicKey(KeyTypeED25519, key)
}

func newSECP256K1PublicKey(key *secp256k1.PublicKey) PublicKey {
	ret := PublicKey{keyType: KeyTypeSECP256K1}
	// Drop the 0x04 uncompressed point marker
	copy(ret.data[:], key.SerializeUncompressed()[1:])
	return ret
}

// ParsePublicKey parses the "<key type>:<base58>" string form
func ParsePublicKey(s string) (PublicKey, error) {
	keyType, data, err := splitKeyString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("parse public key: %w", err)
	}
	return NewPublicKey(keyType, data)
}

// PublicKeyFromBytes decodes the binary form: a key type byte followed by the key
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var ret PublicKey
	if err := borsh.Decode(b, &ret); err != nil {
		return PublicKey{}, err
	}
	return ret, nil
}

func (p PublicKey) Type() KeyType {
	return p.keyType
}

// Data returns the raw key bytes
func (p PublicKey) Data() []byte {
	n := p.keyType.PublicKeyLength()
	ret := make([]byte, n)
	copy(ret, p.data[:n])
	return ret
}

// Bytes returns the binary form
func (p PublicKey) Bytes() []byte {
	return borsh.Encode(p)
}

func (p PublicKey) IsZero() bool {
	return p == PublicKey{}
}

func (p PublicKey) String() string {
	return p.keyType.String() + ":" + encodeBase58(p.Data())
}

// Validate checks that the key decodes to a point on its curve
func (p PublicKey) Validate() error {
	switch p.keyType {
	case KeyTypeED25519:
		if _, err := new(edwards25519.Point).SetBytes(p.Data()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
		}
	case KeyTypeSECP256K1:
		if _, err := p.secp256k1(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
		}
	default:
		return ErrUnknownKeyType
	}
	return nil
}

func (p PublicKey) secp256k1() (*secp256k1.PublicKey, error) {
	return secp256k1.ParsePubKey(append([]byte{0x04}, p.Data()...))
}

// ImplicitAccountID returns the implicit account id controlled by this key
func (p PublicKey) ImplicitAccountID() string {
	if p.keyType == KeyTypeSECP256K1 {
		h := sha3.NewLegacyKeccak256()
		h.Write(p.Data())
		return "0x" + hex.EncodeToString(h.Sum(nil)[12:])
	}
	return hex.EncodeToString(p.Data())
}

func (p PublicKey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PublicKey) UnmarshalText(text []byte) error {
	tmp, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*p = tmp
	return nil
}

func (p PublicKey) MarshalBorsh(w *borsh.Writer) {
	w.WriteU8(uint8(p.keyType))
	w.WriteFixed(p.data[:p.keyType.PublicKeyLength()])
}

func (p *PublicKey) UnmarshalBorsh(r *borsh.Reader) {
	keyType := KeyType(r.ReadU8())
	if r.Err() != nil {
		return
	}
	if !keyType.valid() {
		r.SetErr(fmt.Errorf("%w: %d", ErrUnknownKeyType, keyType))
		return
	}
	data := r.ReadFixed(keyType.PublicKeyLength())
	if r.Err() != nil {
		return
	}
	*p = PublicKey{keyType: keyType}
	copy(p.data[:], data)
}
