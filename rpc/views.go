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
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/types"
)

// ByteArray is a byte slice carried in JSON as an array of numbers
type ByteArray []byte

func (b ByteArray) MarshalJSON() ([]byte, error) {
	tmp := make([]uint16, len(b))
	for i, v := range b {
		tmp[i] = uint16(v)
	}
	return json.Marshal(tmp)
}

func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var tmp []uint16
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	ret := make([]byte, len(tmp))
	for i, v := range tmp {
		if v > 0xff {
			return fmt.Errorf("byte array value %d out of range at index %d", v, i)
		}
		ret[i] = byte(v)
	}
	*b = ret
	return nil
}

type AccountView struct {
	Amount                  types.Balance      `json:"amount"`
	Locked                  types.Balance      `json:"locked"`
	CodeHash                crypto.CryptoHash  `json:"code_hash"`
	StorageUsage            uint64             `json:"storage_usage"`
	StoragePaidAt           uint64             `json:"storage_paid_at"`
	GlobalContractHash      *crypto.CryptoHash `json:"global_contract_hash,omitempty"`
	GlobalContractAccountID string             `json:"global_contract_account_id,omitempty"`
}

type ContractCodeView struct {
	CodeBase64 string            `json:"code_base64"`
	Hash       crypto.CryptoHash `json:"hash"`
}

// StateItem is a contract storage entry. Key and value are base64 encoded
type StateItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ViewStateResult struct {
	Values []StateItem `json:"values"`
}

type CallResult struct {
	Result ByteArray `json:"result"`
	Logs   []string  `json:"logs"`
}

type AccessKeyView struct {
	Nonce      uint64                  `json:"nonce"`
	Permission AccessKeyPermissionView `json:"permission"`
}

// AccessKeyPermissionView is "FullAccess" or {"FunctionCall": {...}} on the wire
type AccessKeyPermissionView struct {
	FunctionCall *FunctionCallPermissionView
}

type FunctionCallPermissionView struct {
	Allowance   *types.Balance `json:"allowance"`
	ReceiverID  string         `json:"receiver_id"`
	MethodNames []string       `json:"method_names"`
}

func (p AccessKeyPermissionView) IsFullAccess() bool {
	return p.FunctionCall == nil
}

func (p AccessKeyPermissionView) MarshalJSON() ([]byte, error) {
	if p.FunctionCall == nil {
		return json.Marshal("FullAccess")
	}
	return json.Marshal(map[string]*FunctionCallPermissionView{"FunctionCall": p.FunctionCall})
}

func (p *AccessKeyPermissionView) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name != "FullAccess" {
			return fmt.Errorf("unknown access key permission %q", name)
		}
		p.FunctionCall = nil
		return nil
	}
	var tmp struct {
		FunctionCall *FunctionCallPermissionView `json:"FunctionCall"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	if tmp.FunctionCall == nil {
		return fmt.Errorf("unknown access key permission %s", string(data))
	}
	p.FunctionCall = tmp.FunctionCall
	return nil
}

type AccessKeyInfoView struct {
	PublicKey crypto.PublicKey `json:"public_key"`
	AccessKey AccessKeyView    `json:"access_key"`
}

type AccessKeyList struct {
	Keys []AccessKeyInfoView `json:"keys"`
}

type BlockHeaderView struct {
	Height           uint64            `json:"height"`
	Hash             crypto.CryptoHash `json:"hash"`
	PrevHash         crypto.CryptoHash `json:"prev_hash"`
	EpochID          crypto.CryptoHash `json:"epoch_id"`
	NextEpochID      crypto.CryptoHash `json:"next_epoch_id"`
	Timestamp        uint64            `json:"timestamp"`
	TimestampNanosec string            `json:"timestamp_nanosec"`
	GasPrice         types.Balance     `json:"gas_price"`
	TotalSupply      types.Balance     `json:"total_supply"`
	ChunksIncluded   uint64            `json:"chunks_included"`
}

type ChunkHeaderView struct {
	ChunkHash     crypto.CryptoHash `json:"chunk_hash"`
	ShardID       uint64            `json:"shard_id"`
	HeightCreated uint64            `json:"height_created"`
	GasUsed       types.Gas         `json:"gas_used"`
	GasLimit      types.Gas         `json:"gas_limit"`
}

type BlockView struct {
	Author string            `json:"author"`
	Header BlockHeaderView   `json:"header"`
	Chunks []ChunkHeaderView `json:"chunks"`
}

type ValidatorStakeView struct {
	AccountID string           `json:"account_id"`
	PublicKey crypto.PublicKey `json:"public_key"`
	Stake     types.Balance    `json:"stake"`
}

type CurrentEpochValidatorInfo struct {
	AccountID         string           `json:"account_id"`
	PublicKey         crypto.PublicKey `json:"public_key"`
	Stake             types.Balance    `json:"stake"`
	IsSlashed         bool             `json:"is_slashed"`
	NumProducedBlocks uint64           `json:"num_produced_blocks"`
	NumExpectedBlocks uint64           `json:"num_expected_blocks"`
}

type EpochValidatorInfo struct {
	CurrentValidators []CurrentEpochValidatorInfo `json:"current_validators"`
	NextValidators    []ValidatorStakeView        `json:"next_validators"`
	CurrentProposals  []ValidatorStakeView        `json:"current_proposals"`
	EpochStartHeight  uint64                      `json:"epoch_start_height"`
	EpochHeight       uint64                      `json:"epoch_height"`
}

type GasPriceView struct {
	GasPrice types.Balance `json:"gas_price"`
}
