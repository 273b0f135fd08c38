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

package send_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/internal/test/rpcmock"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/send"
	"github.com/blinklabs-io/gonear/signer"
	"github.com/blinklabs-io/gonear/transaction"
	"github.com/blinklabs-io/gonear/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// relayer records the delegate actions posted to it
type relayer struct {
	mutex   sync.Mutex
	t       *testing.T
	actions []transaction.SignedDelegateAction
	server  *httptest.Server
}

func newRelayer(t *testing.T) *relayer {
	r := &relayer{t: t}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		var body transaction.RelayerRequest
		if !assert.NoError(t, json.NewDecoder(req.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		action, err := transaction.SignedDelegateActionFromBase64(body.SignedDelegateAction)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		r.mutex.Lock()
		r.actions = append(r.actions, action)
		r.mutex.Unlock()
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	return r
}

func (r *relayer) received() []transaction.SignedDelegateAction {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]transaction.SignedDelegateAction(nil), r.actions...)
}

func metaNetwork(server *rpcmock.Server, relayerURL string) near.NetworkConfig {
	network := testNetwork(server)
	network.MetaTransactionRelayerURL = relayerURL
	return network
}

func TestMetaTransactionRelay(t *testing.T) {
	key := testKey(t, "alice")
	server := rpcmock.NewServer([]rpcmock.ConversationEntry{accessKeyEntry()})
	defer server.Close()
	relay := newRelayer(t)
	defer relay.server.Close()

	testDefs := []struct {
		name      string
		validFor  uint64
		maxHeight uint64
	}{
		{name: "default window", maxHeight: testBlockHeight + send.DefaultMetaTransactionValidFor},
		{name: "custom window", validFor: 50, maxHeight: testBlockHeight + 50},
	}
	for idx, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			exec := send.Construct("alice.near", "bob.near").
				AddAction(transaction.Transfer{Deposit: types.NearToYocto(1)}).
				WithSigner(signer.FromSecretKey(key)).
				Meta()
			if testDef.validFor != 0 {
				exec = exec.WithValidFor(testDef.validFor)
			}
			resp, err := exec.SendTo(context.Background(), metaNetwork(server, relay.server.URL))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusAccepted, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"status":"queued"}`, string(body))

			actions := relay.received()
			require.Len(t, actions, idx+1)
			action := actions[idx]
			assert.True(t, action.Verify())
			assert.Equal(t, "alice.near", action.DelegateAction.SenderID)
			assert.Equal(t, "bob.near", action.DelegateAction.ReceiverID)
			assert.Equal(t, uint64(testOnChainNonce+1), action.DelegateAction.Nonce)
			assert.Equal(t, testDef.maxHeight, action.DelegateAction.MaxBlockHeight)
		})
	}
	assert.Empty(t, server.RequestsFor(rpc.MethodSendTx))
}

func TestMetaTransactionMissingRelayer(t *testing.T) {
	server := rpcmock.NewServer([]rpcmock.ConversationEntry{accessKeyEntry()})
	defer server.Close()

	_, err := send.Construct("alice.near", "bob.near").
		AddAction(transaction.CreateAccount{}).
		WithSigner(signer.FromSecretKey(testKey(t, "alice"))).
		Meta().
		SendTo(context.Background(), testNetwork(server))
	assert.ErrorIs(t, err, send.ErrMissingRelayerURL)
	assert.Empty(t, server.Requests())
}

func TestMetaTransactionPresigned(t *testing.T) {
	key := testKey(t, "alice")
	server := rpcmock.NewServer(nil)
	defer server.Close()
	relay := newRelayer(t)
	defer relay.server.Close()

	exec, err := send.Construct("alice.near", "bob.near").
		AddAction(transaction.CreateAccount{}).
		WithSigner(signer.FromSecretKey(key)).
		Meta().
		WithValidFor(10).
		Presign(context.Background(), key.PublicKey(), 3, 500)
	require.NoError(t, err)
	signed, ok := exec.Signed()
	require.True(t, ok)
	assert.Equal(t, uint64(510), signed.DelegateAction.MaxBlockHeight)

	for range 2 {
		resp, err := exec.WithHTTPClient(relay.server.Client()).
			SendTo(context.Background(), metaNetwork(server, relay.server.URL))
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Empty(t, server.Requests())
	actions := relay.received()
	require.Len(t, actions, 2)
	assert.Equal(t, signed, actions[0])
	assert.Equal(t, actions[0], actions[1])

	resent, err := send.FromSignedDelegateAction(signed).
		SendTo(context.Background(), metaNetwork(server, relay.server.URL))
	require.NoError(t, err)
	resent.Body.Close()
	assert.Len(t, relay.received(), 3)
}

func TestMetaTransactionNestedDelegate(t *testing.T) {
	key := testKey(t, "alice")
	_, err := send.Construct("alice.near", "bob.near").
		AddAction(transaction.SignedDelegateAction{}).
		WithSigner(signer.FromSecretKey(key)).
		Meta().
		Presign(context.Background(), key.PublicKey(), 1, 1)
	assert.ErrorIs(t, err, transaction.ErrDelegateActionNotSupported)
}
