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

package nep413_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/internal/test/rpcmock"
	"github.com/blinklabs-io/gonear/nep413"
	"github.com/blinklabs-io/gonear/query"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBlockHash = "GJ8RwDCSRxqEbwwH9gpoVv2TyhkqEx1MSBYgA1dBuCvj"

func testKey(t *testing.T) crypto.SecretKey {
	t.Helper()
	seed := crypto.Hash([]byte("nep413 test seed"))
	key, err := crypto.NewED25519SecretKeyFromSeed(seed[:])
	require.NoError(t, err)
	return key
}

func testPayload() nep413.Payload {
	var nonce [32]byte
	copy(nonce[:8], []byte{0x00, 0x00, 0x01, 0x8b, 0xcf, 0xe5, 0x64, 0x18})
	return nep413.Payload{
		Message:   "Hello NEAR!",
		Nonce:     nonce,
		Recipient: "myapp.com",
	}
}

func TestTimestamp(t *testing.T) {
	payload := testPayload()
	assert.Equal(t, uint64(1699999999000), payload.Timestamp())

	now := time.UnixMilli(1700000000123)
	nonce, err := nep413.NewNonceWithTimestamp(now)
	require.NoError(t, err)
	payload.Nonce = nonce
	assert.Equal(t, now, payload.Time())
}

func TestSignAndVerifySignature(t *testing.T) {
	key := testKey(t)
	payload := testPayload()
	sig, err := payload.Sign(key)
	require.NoError(t, err)
	assert.True(t, payload.VerifySignature(sig, key.PublicKey()))

	changed := payload
	changed.Recipient = "evil.com"
	assert.False(t, changed.VerifySignature(sig, key.PublicKey()))
}

func TestSignatureIsNotATransactionSignature(t *testing.T) {
	key := testKey(t)
	payload := testPayload()
	sig, err := payload.Sign(key)
	require.NoError(t, err)
	hash := transaction.SignableMessageHash(transaction.DiscriminantDelegateAction, payload)
	assert.False(t, sig.Verify(hash[:], key.PublicKey()))
}

func TestPayloadJSON(t *testing.T) {
	payload := testPayload()
	callback := "https://myapp.com/cb"
	payload.CallbackURL = &callback
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	var decoded nep413.Payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, payload, decoded)

	base64Form := `{"message":"hi","nonce":"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=","recipient":"r"}`
	require.NoError(t, json.Unmarshal([]byte(base64Form), &decoded))
	assert.Equal(t, [32]byte{}, decoded.Nonce)
	assert.Nil(t, decoded.CallbackURL)

	err = json.Unmarshal([]byte(`{"message":"hi","nonce":[1,2,3],"recipient":"r"}`), &decoded)
	assert.ErrorIs(t, err, nep413.ErrInvalidNonce)
}

func accessKeyServer(permission any) *rpcmock.Server {
	return rpcmock.NewServer([]rpcmock.ConversationEntry{
		rpcmock.ConversationEntryQuery(query.RequestTypeViewAccessKey, map[string]any{
			"nonce":        5,
			"permission":   permission,
			"block_height": 10,
			"block_hash":   testBlockHash,
		}),
	})
}

func TestVerifyRequiresFullAccessKey(t *testing.T) {
	key := testKey(t)
	payload := testPayload()
	signed, err := nep413.NewSignedMessage(payload, "alice.near", key)
	require.NoError(t, err)

	ok, err := signed.VerifySignature(payload)
	require.NoError(t, err)
	require.True(t, ok)

	full := accessKeyServer("FullAccess")
	defer full.Close()
	ok, err = signed.Verify(context.Background(), payload, networkFor(full))
	require.NoError(t, err)
	assert.True(t, ok)

	scoped := accessKeyServer(map[string]any{
		"FunctionCall": map[string]any{
			"allowance":    nil,
			"receiver_id":  "app.near",
			"method_names": []string{},
		},
	})
	defer scoped.Close()
	ok, err = signed.Verify(context.Background(), payload, networkFor(scoped))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyUnknownKey(t *testing.T) {
	key := testKey(t)
	payload := testPayload()
	signed, err := nep413.NewSignedMessage(payload, "alice.near", key)
	require.NoError(t, err)
	server := rpcmock.NewServer([]rpcmock.ConversationEntry{
		{Method: rpc.MethodQuery, Error: rpcmock.HandlerError(rpc.QueryErrorUnknownAccessKey)},
	})
	defer server.Close()
	ok, err := signed.Verify(context.Background(), payload, networkFor(server))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBadSignatureSkipsNetwork(t *testing.T) {
	key := testKey(t)
	payload := testPayload()
	signed, err := nep413.NewSignedMessage(payload, "alice.near", key)
	require.NoError(t, err)
	server := rpcmock.NewServer(nil)
	defer server.Close()
	other := payload
	other.Message = "something else"
	ok, err := signed.Verify(context.Background(), other, networkFor(server))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, server.Requests())
}

func TestParseSignature(t *testing.T) {
	key := testKey(t)
	sig, err := testPayload().Sign(key)
	require.NoError(t, err)
	parsed, err := nep413.ParseSignature(sig.String(), crypto.KeyTypeSECP256K1)
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)
	_, err = nep413.ParseSignature("not base64!", crypto.KeyTypeED25519)
	assert.Error(t, err)
}

func networkFor(server *rpcmock.Server) near.NetworkConfig {
	return near.NetworkConfig{
		NetworkName:  "mock",
		RPCEndpoints: []rpc.Endpoint{server.Endpoint()},
	}
}
