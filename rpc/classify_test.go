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
	"errors"
	"fmt"
	"testing"

	"github.com/blinklabs-io/gonear/internal/test/rpcmock"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/stretchr/testify/assert"
)

func TestClassifyQueryError(t *testing.T) {
	critical := []string{
		rpc.QueryErrorUnknownAccount,
		rpc.QueryErrorUnknownBlock,
		rpc.QueryErrorUnknownAccessKey,
		rpc.QueryErrorContractExecutionError,
		rpc.QueryErrorNoSyncedBlocks,
		rpc.QueryErrorGarbageCollectedBlock,
	}
	for _, cause := range critical {
		assert.Equal(t, rpc.RetryKindCritical, rpc.ClassifyQueryError(rpcmock.HandlerError(cause)), cause)
	}
	retry := []string{
		rpc.QueryErrorUnavailableShard,
		rpc.QueryErrorInternalError,
		rpc.QueryErrorNoGlobalContractCode,
	}
	for _, cause := range retry {
		assert.Equal(t, rpc.RetryKindRetry, rpc.ClassifyQueryError(rpcmock.HandlerError(cause)), cause)
	}
}

func TestClassifyTransactionError(t *testing.T) {
	for _, cause := range []string{
		rpc.TxErrorInvalidTransaction,
		rpc.TxErrorDoesNotTrackShard,
		rpc.TxErrorUnknownTransaction,
		rpc.TxErrorInternalError,
	} {
		assert.Equal(t, rpc.RetryKindCritical, rpc.ClassifyTransactionError(rpcmock.HandlerError(cause)), cause)
	}
	assert.Equal(t, rpc.RetryKindRetry, rpc.ClassifyTransactionError(rpcmock.HandlerError(rpc.TxErrorTimeout)))
	assert.Equal(t, rpc.RetryKindRetry, rpc.ClassifyTransactionError(rpcmock.HandlerError(rpc.TxErrorRequestRouted)))
}

func TestClassifyGenericRules(t *testing.T) {
	validation := &rpc.Error{Name: rpc.ErrorNameRequestValidation}
	internal := &rpc.Error{Name: rpc.ErrorNameInternal}
	wrapped := fmt.Errorf("outer: %w", validation)
	for _, classify := range []rpc.ErrorClassifier{
		rpc.ClassifyQueryError,
		rpc.ClassifyTransactionError,
		rpc.ClassifyBlockError,
		rpc.ClassifyValidatorError,
	} {
		assert.Equal(t, rpc.RetryKindCritical, classify(validation))
		assert.Equal(t, rpc.RetryKindCritical, classify(wrapped))
		assert.Equal(t, rpc.RetryKindRetry, classify(internal))
		assert.Equal(t, rpc.RetryKindRetry, classify(&rpc.TransportError{Err: errors.New("refused")}))
		assert.Equal(t, rpc.RetryKindRetry, classify(&rpc.HTTPStatusError{StatusCode: 429}))
		assert.Equal(t, rpc.RetryKindCritical, classify(&rpc.HTTPStatusError{StatusCode: 404}))
		assert.Equal(t, rpc.RetryKindCritical, classify(&rpc.ResponseDecodeError{Err: errors.New("bad")}))
	}
	assert.Equal(t, rpc.RetryKindRetry, rpc.ClassifyBlockError(rpcmock.HandlerError(rpc.BlockErrorUnknownBlock)))
	assert.Equal(t, rpc.RetryKindRetry, rpc.ClassifyValidatorError(rpcmock.HandlerError(rpc.ValidatorErrorUnknownEpoch)))
}
