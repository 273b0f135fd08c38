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

package rpc

import (
	"errors"
	"net/http"
)

// RetryKind tells the retry executor what to do with a failed attempt
type RetryKind int

const (
	// RetryKindRetry means the failure is transient and the call may be repeated
	RetryKindRetry RetryKind = iota
	// RetryKindCritical means repeating the call cannot change the outcome
	RetryKindCritical
)

func (k RetryKind) String() string {
	if k == RetryKindCritical {
		return "critical"
	}
	return "retry"
}

// ErrorClassifier decides whether an error from one attempt is retryable
type ErrorClassifier func(error) RetryKind

// Handler error causes for the query method
const (
	QueryErrorNoSyncedBlocks         = "NO_SYNCED_BLOCKS"
	QueryErrorUnavailableShard       = "UNAVAILABLE_SHARD"
	QueryErrorGarbageCollectedBlock  = "GARBAGE_COLLECTED_BLOCK"
	QueryErrorUnknownBlock           = "UNKNOWN_BLOCK"
	QueryErrorInvalidAccount         = "INVALID_ACCOUNT"
	QueryErrorUnknownAccount         = "UNKNOWN_ACCOUNT"
	QueryErrorNoContractCode         = "NO_CONTRACT_CODE"
	QueryErrorTooLargeContractState  = "TOO_LARGE_CONTRACT_STATE"
	QueryErrorUnknownAccessKey       = "UNKNOWN_ACCESS_KEY"
	QueryErrorUnknownGasKey          = "UNKNOWN_GAS_KEY"
	QueryErrorContractExecutionError = "CONTRACT_EXECUTION_ERROR"
	QueryErrorNoGlobalContractCode   = "NO_GLOBAL_CONTRACT_CODE"
	QueryErrorInternalError          = "INTERNAL_ERROR"
)

// Handler error causes for the send_tx and tx methods
const (
	TxErrorInvalidTransaction = "INVALID_TRANSACTION"
	TxErrorDoesNotTrackShard  = "DOES_NOT_TRACK_SHARD"
	TxErrorRequestRouted      = "REQUEST_ROUTED"
	TxErrorUnknownTransaction = "UNKNOWN_TRANSACTION"
	TxErrorInternalError      = "INTERNAL_ERROR"
	TxErrorTimeout            = "TIMEOUT_ERROR"
)

// Handler error causes for the block and validators methods
const (
	BlockErrorUnknownBlock                 = "UNKNOWN_BLOCK"
	BlockErrorNotSyncedYet                 = "NOT_SYNCED_YET"
	BlockErrorInternalError                = "INTERNAL_ERROR"
	ValidatorErrorUnknownEpoch             = "UNKNOWN_EPOCH"
	ValidatorErrorValidatorInfoUnavailable = "VALIDATOR_INFO_UNAVAILABLE"
	ValidatorErrorInternalError            = "INTERNAL_ERROR"
)

var criticalQueryCauses = map[string]bool{
	QueryErrorNoSyncedBlocks:         true,
	QueryErrorGarbageCollectedBlock:  true,
	QueryErrorUnknownBlock:           true,
	QueryErrorInvalidAccount:         true,
	QueryErrorUnknownAccount:         true,
	QueryErrorNoContractCode:         true,
	QueryErrorTooLargeContractState:  true,
	QueryErrorUnknownAccessKey:       true,
	QueryErrorUnknownGasKey:          true,
	QueryErrorContractExecutionError: true,
}

var criticalTxCauses = map[string]bool{
	TxErrorInvalidTransaction: true,
	TxErrorDoesNotTrackShard:  true,
	TxErrorUnknownTransaction: true,
	TxErrorInternalError:      true,
}

var retryableStatusCodes = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// classify applies the rules shared by every method. handled is false when the
// error is a handler error that the method specific table must decide
func classify(err error) (kind RetryKind, handlerCause string, handled bool) {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.Name {
		case ErrorNameRequestValidation:
			return RetryKindCritical, "", true
		case ErrorNameHandler:
			return RetryKindRetry, rpcErr.Cause.Name, false
		default:
			return RetryKindRetry, "", true
		}
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return RetryKindRetry, "", true
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if retryableStatusCodes[statusErr.StatusCode] {
			return RetryKindRetry, "", true
		}
		return RetryKindCritical, "", true
	}
	// Decode failures, request creation failures and anything unrecognized
	return RetryKindCritical, "", true
}

func tableClassifier(critical map[string]bool) ErrorClassifier {
	return func(err error) RetryKind {
		kind, cause, handled := classify(err)
		if handled {
			return kind
		}
		if critical[cause] {
			return RetryKindCritical
		}
		return RetryKindRetry
	}
}

// ClassifyQueryError classifies failures of the query method. Errors that
// describe the queried state itself, such as an unknown account, are critical
var ClassifyQueryError ErrorClassifier = tableClassifier(criticalQueryCauses)

// ClassifyTransactionError classifies failures of send_tx and tx. Of the
// handler errors only a timeout or a routed request is retried
var ClassifyTransactionError ErrorClassifier = tableClassifier(criticalTxCauses)

// ClassifyBlockError classifies failures of the block method. All handler
// errors are retried
var ClassifyBlockError ErrorClassifier = tableClassifier(nil)

// ClassifyValidatorError classifies failures of the validators method. All
// handler errors are retried
var ClassifyValidatorError ErrorClassifier = tableClassifier(nil)

// ClassifyGenericError classifies failures of methods without a specific table
var ClassifyGenericError ErrorClassifier = tableClassifier(nil)
