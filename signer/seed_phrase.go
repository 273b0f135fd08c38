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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anyproto/go-slip10"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/tyler-smith/go-bip39"
)

const (
	DefaultHDPath    = "m/44'/397'/0'"
	DefaultWordCount = 12

	hardenedOffset uint32 = 0x80000000
)

var (
	ErrInvalidSeedPhrase = errors.New("invalid seed phrase")
	ErrInvalidHDPath     = errors.New("invalid HD path")
	ErrInvalidWordCount  = errors.New("word count must be 12, 15, 18, 21 or 24")
)

// ParseHDPath parses a path such as "m/44'/397'/0'". Ed25519 derivation only
// supports hardened indexes
func ParseHDPath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHDPath, path)
	}
	ret := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if !strings.HasSuffix(part, "'") && !strings.HasSuffix(part, "h") {
			return nil, fmt.Errorf("%w: index %q is not hardened", ErrInvalidHDPath, part)
		}
		idx, err := strconv.ParseUint(part[:len(part)-1], 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidHDPath, err)
		}
		ret = append(ret, uint32(idx)+hardenedOffset)
	}
	return ret, nil
}

// deriveSLIP10 derives an Ed25519 private key seed from a BIP-39 seed along
// a hardened path
func deriveSLIP10(seed []byte, path []uint32) ([]byte, error) {
	node, err := slip10.NewMasterNode(seed)
	if err != nil {
		return nil, err
	}
	for _, idx := range path {
		node, err = node.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidHDPath, err)
		}
	}
	_, privateKey := node.Keypair()
	return privateKey.Seed(), nil
}

// SecretKeyFromSeedPhrase derives the Ed25519 key at hdPath from a BIP-39
// mnemonic and optional passphrase. An empty hdPath uses DefaultHDPath
func SecretKeyFromSeedPhrase(phrase string, passphrase string, hdPath string) (crypto.SecretKey, error) {
	if hdPath == "" {
		hdPath = DefaultHDPath
	}
	path, err := ParseHDPath(hdPath)
	if err != nil {
		return crypto.SecretKey{}, err
	}
	phrase = strings.Join(strings.Fields(phrase), " ")
	seed, err := bip39.NewSeedWithErrorChecking(phrase, passphrase)
	if err != nil {
		return crypto.SecretKey{}, fmt.Errorf("%w: %w", ErrInvalidSeedPhrase, err)
	}
	keySeed, err := deriveSLIP10(seed, path)
	if err != nil {
		return crypto.SecretKey{}, err
	}
	return crypto.NewED25519SecretKeyFromSeed(keySeed)
}

// GenerateSeedPhrase returns a new mnemonic of wordCount words
func GenerateSeedPhrase(wordCount int) (string, error) {
	if wordCount < 12 || wordCount > 24 || wordCount%3 != 0 {
		return "", ErrInvalidWordCount
	}
	entropy, err := bip39.NewEntropy(wordCount / 3 * 32)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// NewSeedPhraseBackend returns a backend for the key derived from a mnemonic
func NewSeedPhraseBackend(phrase string, passphrase string, hdPath string) (*KeyBackend, error) {
	key, err := SecretKeyFromSeedPhrase(phrase, passphrase, hdPath)
	if err != nil {
		return nil, err
	}
	return NewSecretKeyBackend(key), nil
}

// FromSeedPhrase returns a signer for the key derived from a mnemonic at the
// default path
func FromSeedPhrase(phrase string, passphrase string, opts ...SignerOptionFunc) (*Signer, error) {
	key, err := SecretKeyFromSeedPhrase(phrase, passphrase, DefaultHDPath)
	if err != nil {
		return nil, err
	}
	return FromSecretKey(key, opts...), nil
}
