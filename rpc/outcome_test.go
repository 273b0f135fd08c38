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

package rpc_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/blinklabs-io/gonear/internal/test"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executedResponse(status string, withReceipts bool) json.RawMessage {
	receipts := ""
	if withReceipts {
		receipts = `,"receipts":[]`
	}
	return json.RawMessage(fmt.Sprintf(`{
		"final_execution_status": "FINAL",
		"status": %s,
		"transaction": {"signer_id": "alice.testnet", "receiver_id": "bob.testnet", "nonce": 11, "hash": %q},
		"transaction_outcome": {
			"id": %q,
			"block_hash": %q,
			"outcome": {"logs": [], "receipt_ids": [], "gas_burnt": 223182562500, "tokens_burnt": "22318256250000000000", "executor_id": "alice.testnet", "status": {"SuccessReceiptId": %q}}
		},
		"receipts_outcome": []%s
	}`, status, test.BlockHash, test.BlockHash, test.BlockHash, test.BlockHash, receipts))
}

func TestNormalizeTxResponseVariants(t *testing.T) {
	plain, err := rpc.NormalizeTxResponse(executedResponse(`{"SuccessValue": ""}`, false))
	require.NoError(t, err)
	withReceipts, err := rpc.NormalizeTxResponse(executedResponse(`{"SuccessValue": ""}`, true))
	require.NoError(t, err)

	assert.False(t, plain.HasReceipts)
	assert.True(t, withReceipts.HasReceipts)
	withReceipts.HasReceipts = false
	assert.Equal(t, plain, withReceipts)

	assert.True(t, plain.Executed)
	assert.True(t, plain.IsSuccess())
	assert.NoError(t, plain.Failure())
	assert.Equal(t, rpc.TxExecutionStatusFinal, plain.FinalExecutionStatus)
	assert.Equal(t, uint64(11), plain.Transaction.Nonce)
	assert.Equal(t, test.BlockHash, plain.TransactionOutcome.ID.String())
}

func TestNormalizeTxResponseFailure(t *testing.T) {
	outcome, err := rpc.NormalizeTxResponse(executedResponse(`{"Failure": {"ActionError": {"index": 0}}}`, false))
	require.NoError(t, err)
	assert.False(t, outcome.IsSuccess())
	var failure *rpc.ExecutionFailureError
	require.ErrorAs(t, outcome.Failure(), &failure)
	assert.JSONEq(t, `{"ActionError": {"index": 0}}`, string(failure.Failure))
}

func TestNormalizeTxResponseNotExecuted(t *testing.T) {
	outcome, err := rpc.NormalizeTxResponse(json.RawMessage(`{"final_execution_status": "NONE"}`))
	require.NoError(t, err)
	assert.False(t, outcome.Executed)
	assert.Equal(t, rpc.TxExecutionStatusNone, outcome.FinalExecutionStatus)
}

func TestNormalizeTxResponseMissingOutcome(t *testing.T) {
	_, err := rpc.NormalizeTxResponse(json.RawMessage(`{"status": {"SuccessValue": ""}}`))
	var decodeErr *rpc.ResponseDecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, rpc.RetryKindCritical, rpc.ClassifyTransactionError(err))
}
