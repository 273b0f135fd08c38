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
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SecretKey is an ed25519 or secp256k1 private key
type SecretKey struct {
	keyType KeyType
	ed25519 ed25519.PrivateKey
	secp    *secp256k1.PrivateKey
}

// GenerateSecretKey creates a new random key of the given type
func GenerateSecretKey(keyType KeyType) (SecretKey, error) {
	switch keyType {
	case KeyTypeED25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return SecretKey{}, err
		}
		return SecretKey{keyType: keyType, ed25519: priv}, nil
	case KeyTypeSECP256K1:
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return SecretKey{}, err
		}
		return SecretKey{keyType: keyType, secp: priv}, nil
	}
	return SecretKey{}, fmt.Errorf("%w: %d", ErrUnknownKeyType, keyType)
}

// NewED25519SecretKeyFromSeed derives an ed25519 key from a 32 byte seed
func NewED25519SecretKeyFromSeed(seed []byte) (SecretKey, error) {
	if len(seed) != ed25519.SeedSize {
		return SecretKey{}, fmt.Errorf("%w: ed25519 seed must be %d bytes", ErrInvalidKeyLength, ed25519.SeedSize)
	}
	return SecretKey{keyType: KeyTypeED25519, ed25519: ed25519.NewKeyFromSeed(seed)}, nil
}

// NewSecretKey builds a secret key from raw bytes: the 64 byte seed || public key
// form for ed25519 or the 32 byte scalar for secp256k1
func NewSecretKey(keyType KeyType, data []byte) (SecretKey, error) {
	switch keyType {
	case KeyTypeED25519:
		if len(data) != ED25519SecretKeyLength {
			return SecretKey{}, fmt.Errorf("%w: ed25519 secret key must be %d bytes, got %d", ErrInvalidKeyLength, ED25519SecretKeyLength, len(data))
		}
		priv := ed25519.NewKeyFromSeed(data[:ed25519.SeedSize])
		if !bytes.Equal(priv[ed25519.SeedSize:], data[ed25519.SeedSize:]) {
			return SecretKey{}, ErrPublicKeyMismatch
		}
		return SecretKey{keyType: keyType, ed25519: priv}, nil
	case KeyTypeSECP256K1:
		if len(data) != SECP256K1SecretKeyLength {
			return SecretKey{}, fmt.Errorf("%w: secp256k1 secret key must be %d bytes, got %d", ErrInvalidKeyLength, SECP256K1SecretKeyLength, len(data))
		}
		return SecretKey{keyType: keyType, secp: secp256k1.PrivKeyFromBytes(data)}, nil
	}
	return SecretKey{}, fmt.Errorf("%w: %d", ErrUnknownKeyType, keyType)
}

// ParseSecretKey parses the "<key type>:<base58>" string form
func ParseSecretKey(s string) (SecretKey, error) {
	keyType, data, err := splitKeyString(s)
	if err != nil {
		return SecretKey{}, fmt.Errorf("parse secret key: %w", err)
	}
	return NewSecretKey(keyType, data)
}

func (k SecretKey) Type() KeyType {
	return k.keyType
}

func (k SecretKey) IsZero() bool {
	return k.ed25519 == nil && k.secp == nil
}

// Data returns the raw secret key bytes
func (k SecretKey) Data() []byte {
	switch k.keyType {
	case KeyTypeED25519:
		return bytes.Clone(k.ed25519)
	case KeyTypeSECP256K1:
		return k.secp.Serialize()
	}
	return nil
}

func (k SecretKey) String() string {
	return k.keyType.String() + ":" + encodeBase58(k.Data())
}

func (k SecretKey) PublicKey() PublicKey {
	switch k.keyType {
	case KeyTypeED25519:
		ret, _ := NewED25519PublicKey(k.ed25519.Public().(ed25519.PublicKey))
		return ret
	case KeyTypeSECP256K1:
		return newSECP256K1PublicKey(k.secp.PubKey())
	}
	return PublicKey{}
}

// Sign signs msg. secp256k1 keys sign a 32 byte hash directly and reject any
// other message length
func (k SecretKey) Sign(msg []byte) (Signature, error) {
	switch k.keyType {
	case KeyTypeED25519:
		return NewSignature(KeyTypeED25519, ed25519.Sign(k.ed25519, msg))
	case KeyTypeSECP256K1:
		if len(msg) != CryptoHashLength {
			return Signature{}, ErrInvalidMessageLength
		}
		compact := ecdsa.SignCompact(k.secp, msg, false)
		data := make([]byte, 0, SECP256K1SignatureLength)
		data = append(data, compact[1:]...)
		data = append(data, compact[0]-compactSigMagicOffset)
		return NewSignature(KeyTypeSECP256K1, data)
	}
	return Signature{}, fmt.Errorf("%w: %d", ErrUnknownKeyType, k.keyType)
}

func (k SecretKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SecretKey) UnmarshalText(text []byte) error {
	tmp, err := ParseSecretKey(string(text))
	if err != nil {
		return err
	}
	*k = tmp
	return nil
}
