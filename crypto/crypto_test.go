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

package crypto_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/blinklabs-io/gonear/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecretKey(t *testing.T, keyType crypto.KeyType) crypto.SecretKey {
	t.Helper()
	switch keyType {
	case crypto.KeyTypeED25519:
		sk, err := crypto.NewED25519SecretKeyFromSeed(bytes.Repeat([]byte{0x42}, 32))
		require.NoError(t, err)
		return sk
	default:
		sk, err := crypto.NewSecretKey(crypto.KeyTypeSECP256K1, bytes.Repeat([]byte{0x42}, 32))
		require.NoError(t, err)
		return sk
	}
}

var keyTypes = []crypto.KeyType{crypto.KeyTypeED25519, crypto.KeyTypeSECP256K1}

func TestParseKeyType(t *testing.T) {
	kt, err := crypto.ParseKeyType("ED25519")
	require.NoError(t, err)
	assert.Equal(t, crypto.KeyTypeED25519, kt)
	kt, err = crypto.ParseKeyType("Secp256k1")
	require.NoError(t, err)
	assert.Equal(t, crypto.KeyTypeSECP256K1, kt)
	_, err = crypto.ParseKeyType("rsa")
	assert.ErrorIs(t, err, crypto.ErrUnknownKeyType)
}

func TestPublicKeyStringForm(t *testing.T) {
	pk, err := crypto.NewPublicKey(crypto.KeyTypeED25519, make([]byte, 32))
	require.NoError(t, err)
	expected := "ed25519:" + strings.Repeat("1", 32)
	assert.Equal(t, expected, pk.String())

	// A missing prefix defaults to ed25519
	parsed, err := crypto.ParsePublicKey(strings.Repeat("1", 32))
	require.NoError(t, err)
	assert.Equal(t, pk, parsed)

	_, err = crypto.ParsePublicKey("ed25519:" + strings.Repeat("1", 31))
	assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
	_, err = crypto.ParsePublicKey("ed25519:0OIl")
	assert.ErrorIs(t, err, crypto.ErrInvalidBase58)
}

func TestPublicKeyRoundTrip(t *testing.T) {
	for _, keyType := range keyTypes {
		t.Run(keyType.String(), func(t *testing.T) {
			pk := testSecretKey(t, keyType).PublicKey()
			assert.Equal(t, keyType, pk.Type())
			assert.Len(t, pk.Data(), keyType.PublicKeyLength())

			fromString, err := crypto.ParsePublicKey(pk.String())
			require.NoError(t, err)
			assert.Equal(t, pk, fromString)

			bin := pk.Bytes()
			assert.Equal(t, byte(keyType), bin[0])
			fromBytes, err := crypto.PublicKeyFromBytes(bin)
			require.NoError(t, err)
			assert.Equal(t, pk, fromBytes)

			assert.NoError(t, pk.Validate())
		})
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	msg := crypto.Hash([]byte("message"))
	for _, keyType := range keyTypes {
		t.Run(keyType.String(), func(t *testing.T) {
			sk := testSecretKey(t, keyType)
			sig, err := sk.Sign(msg[:])
			require.NoError(t, err)
			assert.Len(t, sig.Data(), keyType.SignatureLength())

			fromString, err := crypto.ParseSignature(sig.String())
			require.NoError(t, err)
			assert.Equal(t, sig, fromString)

			fromBytes, err := crypto.SignatureFromBytes(sig.Bytes())
			require.NoError(t, err)
			assert.Equal(t, sig, fromBytes)

			assert.True(t, crypto.Verify(sig, msg[:], sk.PublicKey()))
			other := crypto.Hash([]byte("other"))
			assert.False(t, sig.Verify(other[:], sk.PublicKey()))
		})
	}
}

func TestVerifyCurveMismatch(t *testing.T) {
	msg := crypto.Hash([]byte("message"))
	edKey := testSecretKey(t, crypto.KeyTypeED25519)
	secpKey := testSecretKey(t, crypto.KeyTypeSECP256K1)
	sig, err := edKey.Sign(msg[:])
	require.NoError(t, err)
	assert.False(t, sig.Verify(msg[:], secpKey.PublicKey()))

	secpSig, err := secpKey.Sign(msg[:])
	require.NoError(t, err)
	assert.False(t, secpSig.Verify(msg[:], edKey.PublicKey()))
}

func TestVerifyMalformedSECP256K1(t *testing.T) {
	msg := crypto.Hash([]byte("message"))
	sk := testSecretKey(t, crypto.KeyTypeSECP256K1)
	sig, err := sk.Sign(msg[:])
	require.NoError(t, err)

	data := sig.Data()
	data[64] = 9
	bad, err := crypto.NewSignature(crypto.KeyTypeSECP256K1, data)
	require.NoError(t, err)
	assert.False(t, bad.Verify(msg[:], sk.PublicKey()))

	zero, err := crypto.NewSignature(crypto.KeyTypeSECP256K1, make([]byte, 65))
	require.NoError(t, err)
	assert.False(t, zero.Verify(msg[:], sk.PublicKey()))

	// Only 32 byte hashes are verifiable with secp256k1
	assert.False(t, sig.Verify([]byte("short"), sk.PublicKey()))
	_, err = sk.Sign([]byte("short"))
	assert.ErrorIs(t, err, crypto.ErrInvalidMessageLength)
}

func TestSignatureRejectsHighBits(t *testing.T) {
	data := make([]byte, 65)
	data[0] = byte(crypto.KeyTypeED25519)
	data[64] = 0xE0
	_, err := crypto.SignatureFromBytes(data)
	assert.ErrorIs(t, err, crypto.ErrInvalidSignature)
}

func TestSecretKeyStringRoundTrip(t *testing.T) {
	for _, keyType := range keyTypes {
		t.Run(keyType.String(), func(t *testing.T) {
			sk := testSecretKey(t, keyType)
			parsed, err := crypto.ParseSecretKey(sk.String())
			require.NoError(t, err)
			assert.Equal(t, sk.PublicKey(), parsed.PublicKey())
			assert.Equal(t, sk.String(), parsed.String())
		})
	}
}

func TestSecretKeyMismatchedPublicHalf(t *testing.T) {
	sk := testSecretKey(t, crypto.KeyTypeED25519)
	data := sk.Data()
	data[63] ^= 0xff
	_, err := crypto.NewSecretKey(crypto.KeyTypeED25519, data)
	assert.ErrorIs(t, err, crypto.ErrPublicKeyMismatch)
}

func TestGenerateSecretKey(t *testing.T) {
	for _, keyType := range keyTypes {
		sk, err := crypto.GenerateSecretKey(keyType)
		require.NoError(t, err)
		assert.Equal(t, keyType, sk.Type())
		assert.False(t, sk.IsZero())
	}
}

func TestJSONText(t *testing.T) {
	pk := testSecretKey(t, crypto.KeyTypeED25519).PublicKey()
	data, err := json.Marshal(map[string]any{"public_key": pk})
	require.NoError(t, err)
	var out struct {
		PublicKey crypto.PublicKey `json:"public_key"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, pk, out.PublicKey)
}

func TestCryptoHash(t *testing.T) {
	h := crypto.Hash(nil)
	parsed, err := crypto.ParseCryptoHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.True(t, crypto.CryptoHash{}.IsZero())
	assert.Equal(t, strings.Repeat("1", 32), crypto.CryptoHash{}.String())
}

func TestImplicitAccountID(t *testing.T) {
	pk, err := crypto.NewPublicKey(crypto.KeyTypeED25519, make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("0", 64), pk.ImplicitAccountID())

	secp := testSecretKey(t, crypto.KeyTypeSECP256K1).PublicKey()
	id := secp.ImplicitAccountID()
	assert.True(t, strings.HasPrefix(id, "0x"))
	assert.Len(t, id, 42)
}
