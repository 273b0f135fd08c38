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

package signer_test

import (
	"strings"
	"testing"

	"github.com/blinklabs-io/gonear/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHDPath(t *testing.T) {
	path, err := signer.ParseHDPath("m/44'/397'/0'")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x8000002c, 0x8000018d, 0x80000000}, path)

	for _, bad := range []string{"", "44'/397'", "m/44/397'", "m/x'", "m/2147483648'"} {
		_, err := signer.ParseHDPath(bad)
		assert.ErrorIs(t, err, signer.ErrInvalidHDPath, bad)
	}
}

func TestSecretKeyFromSeedPhrase(t *testing.T) {
	key, err := signer.SecretKeyFromSeedPhrase(testSeedPhrase, "", "")
	require.NoError(t, err)
	assert.Equal(t, testSeedKey, key.PublicKey().String())

	// whitespace is normalized
	spaced := "  " + strings.ReplaceAll(testSeedPhrase, " ", "   ") + "\n"
	again, err := signer.SecretKeyFromSeedPhrase(spaced, "", signer.DefaultHDPath)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), again.PublicKey())

	withPassphrase, err := signer.SecretKeyFromSeedPhrase(testSeedPhrase, "secret", "")
	require.NoError(t, err)
	assert.NotEqual(t, key.PublicKey(), withPassphrase.PublicKey())

	otherPath, err := signer.SecretKeyFromSeedPhrase(testSeedPhrase, "", "m/44'/397'/1'")
	require.NoError(t, err)
	assert.NotEqual(t, key.PublicKey(), otherPath.PublicKey())

	_, err = signer.SecretKeyFromSeedPhrase("fatal edge jacket", "", "")
	assert.ErrorIs(t, err, signer.ErrInvalidSeedPhrase)
}

func TestGenerateSeedPhrase(t *testing.T) {
	for _, count := range []int{12, 24} {
		phrase, err := signer.GenerateSeedPhrase(count)
		require.NoError(t, err)
		assert.Len(t, strings.Fields(phrase), count)
		backend, err := signer.NewSeedPhraseBackend(phrase, "", "")
		require.NoError(t, err)
		assert.NotNil(t, backend)
	}
	_, err := signer.GenerateSeedPhrase(13)
	assert.ErrorIs(t, err, signer.ErrInvalidWordCount)
}
