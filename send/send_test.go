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
	"errors"
	"testing"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/internal/test"
	"github.com/blinklabs-io/gonear/internal/test/rpcmock"
	"github.com/blinklabs-io/gonear/query"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/send"
	"github.com/blinklabs-io/gonear/signer"
	"github.com/blinklabs-io/gonear/transaction"
	"github.com/blinklabs-io/gonear/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBlockHash    = test.BlockHash
	testBlockHeight  = 100
	testOnChainNonce = 10
)

func testKey(t *testing.T, name string) crypto.SecretKey {
	return test.SecretKey(t, name)
}

func accessKeyEntry() rpcmock.ConversationEntry {
	entry := rpcmock.ConversationEntryQuery(query.RequestTypeViewAccessKey, map[string]any{
		"nonce":        testOnChainNonce,
		"permission":   "FullAccess",
		"block_height": testBlockHeight,
		"block_hash":   testBlockHash,
	})
	entry.Repeat = true
	return entry
}

// executedOutcome is a send_tx result for a transaction that ran to completion
func executedOutcome(t *testing.T, key crypto.SecretKey) map[string]any {
	t.Helper()
	hash := crypto.Hash([]byte("tx"))
	sig, err := key.Sign(hash[:])
	require.NoError(t, err)
	outcome := func(executor string, logs []string, gas uint64, status any) map[string]any {
		return map[string]any{
			"id":         hash.String(),
			"block_hash": testBlockHash,
			"outcome": map[string]any{
				"logs":         logs,
				"receipt_ids":  []string{},
				"gas_burnt":    gas,
				"tokens_burnt": "0",
				"executor_id":  executor,
				"status":       status,
			},
		}
	}
	return map[string]any{
		"final_execution_status": "FINAL",
		"status":                 map[string]any{"SuccessValue": ""},
		"transaction": map[string]any{
			"signer_id":   "alice.near",
			"public_key":  key.PublicKey().String(),
			"nonce":       testOnChainNonce + 1,
			"receiver_id": "bob.near",
			"actions":     []any{"CreateAccount"},
			"signature":   sig.String(),
			"hash":        hash.String(),
		},
		"transaction_outcome": outcome("alice.near", []string{}, 100, map[string]any{"SuccessReceiptId": hash.String()}),
		"receipts_outcome": []any{
			outcome("bob.near", []string{"created"}, 200, map[string]any{"SuccessValue": ""}),
		},
	}
}

func sentTransactions(t *testing.T, server *rpcmock.Server) ([]transaction.SignedTransaction, []rpc.SendTxParams) {
	t.Helper()
	var txs []transaction.SignedTransaction
	var params []rpc.SendTxParams
	for _, req := range server.RequestsFor(rpc.MethodSendTx) {
		var p rpc.SendTxParams
		require.NoError(t, json.Unmarshal(req.Params, &p))
		tx, err := transaction.SignedTransactionFromBase64(p.SignedTxBase64)
		require.NoError(t, err)
		txs = append(txs, tx)
		params = append(params, p)
	}
	return txs, params
}

func testNetwork(server *rpcmock.Server) near.NetworkConfig {
	return near.NetworkConfig{
		NetworkName:  "sandbox",
		RPCEndpoints: []rpc.Endpoint{server.Endpoint()},
	}
}

func TestSendUnsigned(t *testing.T) {
	key := testKey(t, "alice")
	server := rpcmock.NewServer([]rpcmock.ConversationEntry{
		accessKeyEntry(),
		{Method: rpc.MethodSendTx, Result: executedOutcome(t, key)},
	})
	defer server.Close()

	outcome, err := send.Construct("alice.near", "bob.near").
		AddAction(transaction.CreateAccount{}).
		AddActions(transaction.Transfer{Deposit: types.NearToYocto(1)}).
		WithSigner(signer.FromSecretKey(key)).
		SendTo(context.Background(), testNetwork(server))
	require.NoError(t, err)
	require.NoError(t, server.Err())
	assert.True(t, outcome.Executed)
	assert.True(t, outcome.IsSuccess())
	assert.NoError(t, outcome.Failure())
	assert.Equal(t, []string{"created"}, outcome.Logs())
	assert.Equal(t, types.Gas(300), outcome.TotalGasBurnt())

	txs, params := sentTransactions(t, server)
	require.Len(t, txs, 1)
	assert.Equal(t, rpc.TxExecutionStatusFinal, params[0].WaitUntil)
	tx := txs[0]
	assert.True(t, tx.Verify())
	assert.Equal(t, uint64(testOnChainNonce+1), tx.Transaction.Nonce)
	assert.Equal(t, testBlockHash, tx.Transaction.BlockHash.String())
	assert.Equal(t, key.PublicKey(), tx.Transaction.PublicKey)
	require.Len(t, tx.Transaction.Actions, 2)
	assert.Equal(t, transaction.ActionTypeCreateAccount, tx.Transaction.Actions[0].Type())
	assert.Equal(t, transaction.ActionTypeTransfer, tx.Transaction.Actions[1].Type())
}

func TestSendUnsignedUsesFreshNonces(t *testing.T) {
	key := testKey(t, "alice")
	server := rpcmock.NewServer([]rpcmock.ConversationEntry{
		accessKeyEntry(),
		{Method: rpc.MethodSendTx, Result: map[string]any{"final_execution_status": "NONE"}, Repeat: true},
	})
	defer server.Close()

	exec := send.Construct("alice.near", "bob.near").
		AddAction(transaction.CreateAccount{}).
		WithSigner(signer.FromSecretKey(key)).
		WaitUntil(rpc.TxExecutionStatusNone)
	for range 2 {
		outcome, err := exec.SendTo(context.Background(), testNetwork(server))
		require.NoError(t, err)
		assert.False(t, outcome.Executed)
		assert.Equal(t, rpc.TxExecutionStatusNone, outcome.FinalExecutionStatus)
	}
	_, ok := exec.Signed()
	assert.False(t, ok)

	txs, params := sentTransactions(t, server)
	require.Len(t, txs, 2)
	assert.Equal(t, uint64(11), txs[0].Transaction.Nonce)
	assert.Equal(t, uint64(12), txs[1].Transaction.Nonce)
	assert.Equal(t, rpc.TxExecutionStatusNone, params[1].WaitUntil)
}

func TestSendPresignedTwice(t *testing.T) {
	key := testKey(t, "alice")
	server := rpcmock.NewServer([]rpcmock.ConversationEntry{
		{Method: rpc.MethodSendTx, Result: map[string]any{"final_execution_status": "INCLUDED"}, Repeat: true},
	})
	defer server.Close()

	edits, validations := 0, 0
	blockHash := test.MustParseCryptoHash(t, testBlockHash)
	exec, err := send.Construct("alice.near", "bob.near").
		AddAction(transaction.CreateAccount{}).
		WithSigner(signer.FromSecretKey(key)).
		WithEditHook(func(context.Context, near.NetworkConfig, *transaction.PrepopulatedTransaction) error {
			edits++
			return nil
		}).
		WithValidateHook(func(_ context.Context, _ near.NetworkConfig, tx transaction.PrepopulatedTransaction) error {
			validations++
			assert.Equal(t, "bob.near", tx.ReceiverID)
			return nil
		}).
		Presign(context.Background(), key.PublicKey(), 77, blockHash)
	require.NoError(t, err)

	again, err := exec.Presign(context.Background(), key.PublicKey(), 78, blockHash)
	require.NoError(t, err)
	assert.Same(t, exec, again)

	for range 2 {
		_, err := exec.SendTo(context.Background(), testNetwork(server))
		require.NoError(t, err)
	}
	require.NoError(t, server.Err())
	assert.Equal(t, 0, edits)
	assert.Equal(t, 2, validations)
	assert.Empty(t, server.RequestsFor(rpc.MethodQuery))

	requests := server.RequestsFor(rpc.MethodSendTx)
	require.Len(t, requests, 2)
	assert.JSONEq(t, string(requests[0].Params), string(requests[1].Params))
	txs, _ := sentTransactions(t, server)
	assert.Equal(t, uint64(77), txs[0].Transaction.Nonce)
	signed, ok := exec.Signed()
	require.True(t, ok)
	assert.Equal(t, signed.Hash(), txs[0].Hash())
}

func TestFromSignedTransaction(t *testing.T) {
	key := testKey(t, "alice")
	tx := transaction.NewPrepopulatedTransaction("alice.near", "bob.near", transaction.CreateAccount{}).
		ToTransaction(key.PublicKey(), 5, crypto.CryptoHash{})
	signed, err := tx.Sign(key)
	require.NoError(t, err)

	server := rpcmock.NewServer([]rpcmock.ConversationEntry{
		{Method: rpc.MethodSendTx, Result: map[string]any{"final_execution_status": "INCLUDED"}},
	})
	defer server.Close()
	_, err = send.FromSignedTransaction(signed).SendTo(context.Background(), testNetwork(server))
	require.NoError(t, err)
	txs, _ := sentTransactions(t, server)
	require.Len(t, txs, 1)
	assert.Equal(t, signed.Hash(), txs[0].Hash())
}

func TestSendEditHook(t *testing.T) {
	key := testKey(t, "alice")
	server := rpcmock.NewServer([]rpcmock.ConversationEntry{
		accessKeyEntry(),
		{Method: rpc.MethodSendTx, Result: map[string]any{"final_execution_status": "NONE"}},
	})
	defer server.Close()

	validations := 0
	_, err := send.Construct("alice.near", "bob.near").
		AddAction(transaction.CreateAccount{}).
		WithSigner(signer.FromSecretKey(key)).
		WithEditHook(func(_ context.Context, network near.NetworkConfig, tx *transaction.PrepopulatedTransaction) error {
			assert.Equal(t, "sandbox", network.NetworkName)
			tx.Actions = append(tx.Actions, transaction.Transfer{Deposit: types.NearToYocto(2)})
			return nil
		}).
		WithValidateHook(func(context.Context, near.NetworkConfig, transaction.PrepopulatedTransaction) error {
			validations++
			return nil
		}).
		SendTo(context.Background(), testNetwork(server))
	require.NoError(t, err)
	assert.Equal(t, 0, validations)
	txs, _ := sentTransactions(t, server)
	require.Len(t, txs, 1)
	assert.Len(t, txs[0].Transaction.Actions, 2)
}

func TestSendHookErrors(t *testing.T) {
	server := rpcmock.NewServer(nil)
	defer server.Close()
	errStale := errors.New("stale")

	_, err := send.Construct("alice.near", "bob.near").
		WithSigner(signer.FromSecretKey(testKey(t, "alice"))).
		WithEditHook(func(context.Context, near.NetworkConfig, *transaction.PrepopulatedTransaction) error {
			return errStale
		}).
		SendTo(context.Background(), testNetwork(server))
	var hookErr *send.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "edit", hookErr.Stage)
	assert.ErrorIs(t, err, errStale)
	assert.Empty(t, server.Requests())
}

func TestSendBuilderErrors(t *testing.T) {
	server := rpcmock.NewServer(nil)
	defer server.Close()
	key := testKey(t, "alice")

	testDefs := []struct {
		name    string
		exec    *send.ExecuteSignedTransaction
		wantErr error
	}{
		{
			name: "unencodable arguments",
			exec: send.Construct("alice.near", "app.near").
				AddFunctionCallJSON("set", map[string]any{"c": make(chan int)}, types.TeraGas(30), types.Balance{}).
				WithSigner(signer.FromSecretKey(key)),
		},
		{
			name:    "invalid signer account",
			exec:    send.Construct("Alice", "bob.near").WithSigner(signer.FromSecretKey(key)),
			wantErr: types.ErrInvalidAccountID,
		},
		{
			name:    "no signer",
			exec:    send.Construct("alice.near", "bob.near").WithSigner(nil),
			wantErr: send.ErrNoSigner,
		},
		{
			name:    "empty signer pool",
			exec:    send.Construct("alice.near", "bob.near").WithSigner(signer.NewEmpty()),
			wantErr: signer.ErrSignerPoolEmpty,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := testDef.exec.SendTo(context.Background(), testNetwork(server))
			require.Error(t, err)
			if testDef.wantErr != nil {
				assert.ErrorIs(t, err, testDef.wantErr)
			}
		})
	}
	assert.Empty(t, server.Requests())
}

func TestSendCriticalError(t *testing.T) {
	key := testKey(t, "alice")
	server := rpcmock.NewServer([]rpcmock.ConversationEntry{
		accessKeyEntry(),
		{Method: rpc.MethodSendTx, Error: rpcmock.HandlerError(rpc.TxErrorInvalidTransaction), Repeat: true},
	})
	defer server.Close()
	network := near.NetworkConfig{
		NetworkName:  "sandbox",
		RPCEndpoints: []rpc.Endpoint{server.Endpoint().WithRetries(3), server.Endpoint()},
	}

	_, err := send.Construct("alice.near", "bob.near").
		AddAction(transaction.CreateAccount{}).
		WithSigner(signer.FromSecretKey(key)).
		SendTo(context.Background(), network)
	var critical *rpc.CriticalError
	require.ErrorAs(t, err, &critical)
	var rpcErr *rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, rpc.TxErrorInvalidTransaction, rpcErr.Cause.Name)
	assert.Len(t, server.RequestsFor(rpc.MethodSendTx), 1)
}

func TestSendTimeoutRetried(t *testing.T) {
	key := testKey(t, "alice")
	server := rpcmock.NewServer([]rpcmock.ConversationEntry{
		accessKeyEntry(),
		{Method: rpc.MethodSendTx, Error: rpcmock.HandlerError(rpc.TxErrorTimeout)},
		{Method: rpc.MethodSendTx, Result: map[string]any{"final_execution_status": "EXECUTED"}},
	})
	defer server.Close()
	network := near.NetworkConfig{
		NetworkName:  "sandbox",
		RPCEndpoints: []rpc.Endpoint{server.Endpoint().WithRetries(2)},
	}

	outcome, err := send.Construct("alice.near", "bob.near").
		AddAction(transaction.CreateAccount{}).
		WithSigner(signer.FromSecretKey(key)).
		SendTo(context.Background(), network)
	require.NoError(t, err)
	assert.Equal(t, rpc.TxExecutionStatusExecuted, outcome.FinalExecutionStatus)

	requests := server.RequestsFor(rpc.MethodSendTx)
	require.Len(t, requests, 2)
	assert.JSONEq(t, string(requests[0].Params), string(requests[1].Params))
}
