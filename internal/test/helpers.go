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

// Package test holds helpers shared by the package tests
package test

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/blinklabs-io/gonear/crypto"
)

// BlockHash is a well formed block hash used in scripted RPC responses
const BlockHash = "GJ8RwDCSRxqEbwwH9gpoVv2TyhkqEx1MSBYgA1dBuCvj"

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// SecretKey returns an Ed25519 key derived from name. The same name always
// gives the same key
func SecretKey(t testing.TB, name string) crypto.SecretKey {
	t.Helper()
	seed := crypto.Hash([]byte(name))
	key, err := crypto.NewED25519SecretKeyFromSeed(seed[:])
	if err != nil {
		t.Fatalf("derive test key %q: %s", name, err)
	}
	return key
}

// MustParseCryptoHash parses s and fails the test when it is malformed
func MustParseCryptoHash(t testing.TB, s string) crypto.CryptoHash {
	t.Helper()
	hash, err := crypto.ParseCryptoHash(s)
	if err != nil {
		t.Fatalf("parse hash %q: %s", s, err)
	}
	return hash
}
