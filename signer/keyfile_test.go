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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessKeyFileRoundTrip(t *testing.T) {
	key := testKey(t, "alice")
	path := filepath.Join(t.TempDir(), "alice.json")
	require.NoError(t, signer.NewAccessKeyFile("alice.near", key).Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := signer.LoadAccessKeyFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alice.near", loaded.AccountID)
	assert.Equal(t, key.PublicKey(), loaded.PublicKey)

	backend, err := signer.NewAccessKeyFileBackend(path)
	require.NoError(t, err)
	publicKey, err := backend.PublicKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), publicKey)
}

func TestAccessKeyFileMismatch(t *testing.T) {
	key := testKey(t, "alice")
	other := testKey(t, "bob")
	path := filepath.Join(t.TempDir(), "bad.json")
	data := `{"public_key":"` + other.PublicKey().String() + `","private_key":"` + key.String() + `"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	_, err := signer.LoadAccessKeyFile(path)
	assert.ErrorIs(t, err, crypto.ErrPublicKeyMismatch)
	_, err = signer.NewAccessKeyFileBackend(path)
	assert.ErrorIs(t, err, crypto.ErrPublicKeyMismatch)

	_, err = signer.LoadAccessKeyFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
