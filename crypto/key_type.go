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

// Package crypto implements the key, signature and hash types used to sign
// transactions and messages.
package crypto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

var (
	ErrUnknownKeyType          = errors.New("unknown key type")
	ErrInvalidKeyLength        = errors.New("invalid key length")
	ErrInvalidSignatureLength  = errors.New("invalid signature length")
	ErrInvalidSignature        = errors.New("invalid signature")
	ErrInvalidBase58           = errors.New("invalid base58 data")
	ErrInvalidMessageLength    = errors.New("secp256k1 signing requires a 32 byte message hash")
	ErrPublicKeyMismatch       = errors.New("secret key does not match public key")
	ErrInvalidPublicKey        = errors.New("public key is not a valid curve point")
	ErrUnsupportedSecretKeyLen = errors.New("unsupported secret key length")
)

// KeyType identifies the curve of a key or signature. The numeric value is the
// binary discriminant
type KeyType uint8

const (
	KeyTypeED25519   KeyType = 0
	KeyTypeSECP256K1 KeyType = 1
)

const (
	ED25519PublicKeyLength   = 32
	ED25519SecretKeyLength   = 64
	ED25519SignatureLength   = 64
	SECP256K1PublicKeyLength = 64
	SECP256K1SecretKeyLength = 32
	SECP256K1SignatureLength = 65
)

func (k KeyType) String() string {
	switch k {
	case KeyTypeED25519:
		return "ed25519"
	case KeyTypeSECP256K1:
		return "secp256k1"
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

func (k KeyType) valid() bool {
	return k == KeyTypeED25519 || k == KeyTypeSECP256K1
}

// ParseKeyType parses a key type name. Matching is case-insensitive
func ParseKeyType(s string) (KeyType, error) {
	switch strings.ToLower(s) {
	case "ed25519":
		return KeyTypeED25519, nil
	case "secp256k1":
		return KeyTypeSECP256K1, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKeyType, s)
}

func (k KeyType) PublicKeyLength() int {
	if k == KeyTypeSECP256K1 {
		return SECP256K1PublicKeyLength
	}
	return ED25519PublicKeyLength
}

func (k KeyType) SignatureLength() int {
	if k == KeyTypeSECP256K1 {
		return SECP256K1SignatureLength
	}
	return ED25519SignatureLength
}

// splitKeyString splits "<type>:<base58>" into its parts. A string with no
// prefix is an ed25519 value
func splitKeyString(s string) (KeyType, []byte, error) {
	keyType := KeyTypeED25519
	data := s
	if prefix, rest, found := strings.Cut(s, ":"); found {
		var err error
		if keyType, err = ParseKeyType(prefix); err != nil {
			return 0, nil, err
		}
		data = rest
	}
	decoded, err := decodeBase58(data)
	if err != nil {
		return 0, nil, err
	}
	return keyType, decoded, nil
}

func decodeBase58(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidBase58)
	}
	ret := base58.Decode(s)
	// base58.Decode returns an empty slice for invalid characters
	if len(ret) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBase58, s)
	}
	return ret, nil
}

func encodeBase58(b []byte) string {
	return base58.Encode(b)
}
