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
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/types"
)

// TxExecutionStatus is the point in a transaction's life that send_tx waits for
type TxExecutionStatus string

const (
	TxExecutionStatusNone               TxExecutionStatus = "NONE"
	TxExecutionStatusIncluded           TxExecutionStatus = "INCLUDED"
	TxExecutionStatusExecutedOptimistic TxExecutionStatus = "EXECUTED_OPTIMISTIC"
	TxExecutionStatusIncludedFinal      TxExecutionStatus = "INCLUDED_FINAL"
	TxExecutionStatusExecuted           TxExecutionStatus = "EXECUTED"
	TxExecutionStatusFinal              TxExecutionStatus = "FINAL"
)

// SendTxParams are the parameters of the send_tx method
type SendTxParams struct {
	SignedTxBase64 string            `json:"signed_tx_base64"`
	WaitUntil      TxExecutionStatus `json:"wait_until,omitempty"`
}

// TxStatusParams are the parameters of the tx method
type TxStatusParams struct {
	TxHash          crypto.CryptoHash `json:"tx_hash"`
	SenderAccountID string            `json:"sender_account_id"`
	WaitUntil       TxExecutionStatus `json:"wait_until,omitempty"`
}

type ExecutionStatusKind int

const (
	ExecutionStatusUnknown ExecutionStatusKind = iota
	ExecutionStatusNotStarted
	ExecutionStatusStarted
	ExecutionStatusFailure
	ExecutionStatusSuccessValue
	ExecutionStatusSuccessReceiptID
)

// ExecutionStatus is the result of a transaction or receipt
type ExecutionStatus struct {
	Kind             ExecutionStatusKind
	SuccessValue     []byte
	SuccessReceiptID crypto.CryptoHash
	// Failure holds the raw failure description
	Failure json.RawMessage
}

func (s ExecutionStatus) IsSuccess() bool {
	return s.Kind == ExecutionStatusSuccessValue || s.Kind == ExecutionStatusSuccessReceiptID
}

func (s ExecutionStatus) IsFailure() bool {
	return s.Kind == ExecutionStatusFailure
}

func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		switch name {
		case "NotStarted":
			*s = ExecutionStatus{Kind: ExecutionStatusNotStarted}
		case "Started":
			*s = ExecutionStatus{Kind: ExecutionStatusStarted}
		default:
			*s = ExecutionStatus{Kind: ExecutionStatusUnknown}
		}
		return nil
	}
	var tmp struct {
		SuccessValue     *string            `json:"SuccessValue"`
		SuccessReceiptID *crypto.CryptoHash `json:"SuccessReceiptId"`
		Failure          json.RawMessage    `json:"Failure"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	switch {
	case tmp.SuccessValue != nil:
		value, err := base64.StdEncoding.DecodeString(*tmp.SuccessValue)
		if err != nil {
			return fmt.Errorf("decode SuccessValue: %w", err)
		}
		*s = ExecutionStatus{Kind: ExecutionStatusSuccessValue, SuccessValue: value}
	case tmp.SuccessReceiptID != nil:
		*s = ExecutionStatus{Kind: ExecutionStatusSuccessReceiptID, SuccessReceiptID: *tmp.SuccessReceiptID}
	case tmp.Failure != nil:
		*s = ExecutionStatus{Kind: ExecutionStatusFailure, Failure: tmp.Failure}
	default:
		*s = ExecutionStatus{Kind: ExecutionStatusUnknown}
	}
	return nil
}

type ExecutionOutcomeView struct {
	Logs        []string            `json:"logs"`
	ReceiptIDs  []crypto.CryptoHash `json:"receipt_ids"`
	GasBurnt    types.Gas           `json:"gas_burnt"`
	TokensBurnt types.Balance       `json:"tokens_burnt"`
	ExecutorID  string              `json:"executor_id"`
	Status      ExecutionStatus     `json:"status"`
}

type ExecutionOutcomeWithIDView struct {
	ID        crypto.CryptoHash    `json:"id"`
	BlockHash crypto.CryptoHash    `json:"block_hash"`
	Outcome   ExecutionOutcomeView `json:"outcome"`
	Proof     json.RawMessage      `json:"proof,omitempty"`
}

type TransactionView struct {
	SignerID    string            `json:"signer_id"`
	PublicKey   crypto.PublicKey  `json:"public_key"`
	Nonce       uint64            `json:"nonce"`
	ReceiverID  string            `json:"receiver_id"`
	Actions     []json.RawMessage `json:"actions"`
	PriorityFee uint64            `json:"priority_fee,omitempty"`
	Signature   crypto.Signature  `json:"signature"`
	Hash        crypto.CryptoHash `json:"hash"`
}

// txResponse covers both send_tx result variants: the plain outcome and the
// outcome with receipts attached. Outcome fields are absent when the caller did
// not wait for execution
type txResponse struct {
	FinalExecutionStatus TxExecutionStatus            `json:"final_execution_status"`
	Status               *ExecutionStatus             `json:"status"`
	Transaction          *TransactionView             `json:"transaction"`
	TransactionOutcome   *ExecutionOutcomeWithIDView  `json:"transaction_outcome"`
	ReceiptsOutcome      []ExecutionOutcomeWithIDView `json:"receipts_outcome"`
	Receipts             []json.RawMessage            `json:"receipts"`
}

// FinalExecutionOutcome is the normalized result of broadcasting a transaction
type FinalExecutionOutcome struct {
	FinalExecutionStatus TxExecutionStatus
	// Executed is false when the response only acknowledged the transaction
	Executed           bool
	Status             ExecutionStatus
	Transaction        TransactionView
	TransactionOutcome ExecutionOutcomeWithIDView
	ReceiptsOutcome    []ExecutionOutcomeWithIDView
	// HasReceipts reports whether the server returned the variant with receipts
	HasReceipts bool
}

// NormalizeTxResponse decodes either send_tx result variant into one shape
func NormalizeTxResponse(raw json.RawMessage) (FinalExecutionOutcome, error) {
	var resp txResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return FinalExecutionOutcome{}, &ResponseDecodeError{Method: MethodSendTx, Err: err}
	}
	ret := FinalExecutionOutcome{
		FinalExecutionStatus: resp.FinalExecutionStatus,
		HasReceipts:          resp.Receipts != nil,
	}
	if resp.Status == nil {
		return ret, nil
	}
	if resp.Transaction == nil || resp.TransactionOutcome == nil {
		return FinalExecutionOutcome{}, &ResponseDecodeError{
			Method: MethodSendTx,
			Err:    fmt.Errorf("execution status present without transaction outcome"),
		}
	}
	ret.Executed = true
	ret.Status = *resp.Status
	ret.Transaction = *resp.Transaction
	ret.TransactionOutcome = *resp.TransactionOutcome
	ret.ReceiptsOutcome = resp.ReceiptsOutcome
	return ret, nil
}

func (o FinalExecutionOutcome) IsSuccess() bool {
	return o.Status.IsSuccess()
}

// Failure returns an ExecutionFailureError when the transaction failed
func (o FinalExecutionOutcome) Failure() error {
	if !o.Status.IsFailure() {
		return nil
	}
	return &ExecutionFailureError{TxHash: o.TransactionOutcome.ID, Failure: o.Status.Failure}
}

// Logs returns the logs of every receipt in execution order
func (o FinalExecutionOutcome) Logs() []string {
	ret := append([]string{}, o.TransactionOutcome.Outcome.Logs...)
	for _, receipt := range o.ReceiptsOutcome {
		ret = append(ret, receipt.Outcome.Logs...)
	}
	return ret
}

func (o FinalExecutionOutcome) TotalGasBurnt() types.Gas {
	ret := o.TransactionOutcome.Outcome.GasBurnt
	for _, receipt := range o.ReceiptsOutcome {
		ret += receipt.Outcome.GasBurnt
	}
	return ret
}

// ExecutionFailureError describes a transaction that was included but failed
type ExecutionFailureError struct {
	TxHash  crypto.CryptoHash
	Failure json.RawMessage
}

func (e *ExecutionFailureError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.TxHash, string(e.Failure))
}
