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

// Package transaction defines actions, transactions and delegate actions along
// with their canonical binary encoding and signing hashes.
package transaction

import (
	"errors"
	"fmt"
	"sort"

	"github.com/blinklabs-io/gonear/borsh"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/types"
)

var ErrUnknownAction = errors.New("unknown action type")

// ActionType is the binary discriminant of an action
type ActionType uint8

const (
	ActionTypeCreateAccount          ActionType = 0
	ActionTypeDeployContract         ActionType = 1
	ActionTypeFunctionCall           ActionType = 2
	ActionTypeTransfer               ActionType = 3
	ActionTypeStake                  ActionType = 4
	ActionTypeAddKey                 ActionType = 5
	ActionTypeDeleteKey              ActionType = 6
	ActionTypeDeleteAccount          ActionType = 7
	ActionTypeDelegate               ActionType = 8
	ActionTypeDeployGlobalContract   ActionType = 9
	ActionTypeUseGlobalContract      ActionType = 10
	ActionTypeDeterministicStateInit ActionType = 11
)

func (t ActionType) String() string {
	switch t {
	case ActionTypeCreateAccount:
		return "CreateAccount"
	case ActionTypeDeployContract:
		return "DeployContract"
	case ActionTypeFunctionCall:
		return "FunctionCall"
	case ActionTypeTransfer:
		return "Transfer"
	case ActionTypeStake:
		return "Stake"
	case ActionTypeAddKey:
		return "AddKey"
	case ActionTypeDeleteKey:
		return "DeleteKey"
	case ActionTypeDeleteAccount:
		return "DeleteAccount"
	case ActionTypeDelegate:
		return "Delegate"
	case ActionTypeDeployGlobalContract:
		return "DeployGlobalContract"
	case ActionTypeUseGlobalContract:
		return "UseGlobalContract"
	case ActionTypeDeterministicStateInit:
		return "DeterministicStateInit"
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

// Action is a single operation inside a transaction. Actions are values and are
// not modified once built
type Action interface {
	Type() ActionType
	// marshalBody writes the action payload that follows the discriminant
	marshalBody(w *borsh.Writer)
}

// MarshalAction writes the discriminant and payload of an action
func MarshalAction(w *borsh.Writer, a Action) {
	w.WriteU8(uint8(a.Type()))
	a.marshalBody(w)
}

// UnmarshalAction reads one action
func UnmarshalAction(r *borsh.Reader) Action {
	actionType := ActionType(r.ReadU8())
	if r.Err() != nil {
		return nil
	}
	switch actionType {
	case ActionTypeCreateAccount:
		return CreateAccount{}
	case ActionTypeDeployContract:
		return DeployContract{Code: r.ReadBytes()}
	case ActionTypeFunctionCall:
		a := FunctionCall{
			MethodName: r.ReadString(),
			Args:       r.ReadBytes(),
			Gas:        types.Gas(r.ReadU64()),
		}
		r.Read(&a.Deposit)
		return a
	case ActionTypeTransfer:
		a := Transfer{}
		r.Read(&a.Deposit)
		return a
	case ActionTypeStake:
		a := Stake{}
		r.Read(&a.Stake)
		r.Read(&a.PublicKey)
		return a
	case ActionTypeAddKey:
		a := AddKey{}
		r.Read(&a.PublicKey)
		r.Read(&a.AccessKey)
		return a
	case ActionTypeDeleteKey:
		a := DeleteKey{}
		r.Read(&a.PublicKey)
		return a
	case ActionTypeDeleteAccount:
		return DeleteAccount{BeneficiaryID: r.ReadString()}
	case ActionTypeDelegate:
		a := SignedDelegateAction{}
		a.unmarshalBody(r)
		return a
	case ActionTypeDeployGlobalContract:
		a := DeployGlobalContract{Code: r.ReadBytes()}
		mode := GlobalContractDeployMode(r.ReadU8())
		if mode > GlobalContractDeployModeAccountID {
			r.SetErr(fmt.Errorf("unknown global contract deploy mode %d", mode))
			return nil
		}
		a.DeployMode = mode
		return a
	case ActionTypeUseGlobalContract:
		a := UseGlobalContract{}
		r.Read(&a.ContractIdentifier)
		return a
	case ActionTypeDeterministicStateInit:
		a := DeterministicStateInit{}
		r.Read(&a.Code)
		n := r.ReadLen(8)
		a.Data = make(map[string][]byte, n)
		for i := 0; i < n && r.Err() == nil; i++ {
			key := r.ReadBytes()
			a.Data[string(key)] = r.ReadBytes()
		}
		r.Read(&a.Deposit)
		return a
	}
	r.SetErr(fmt.Errorf("%w: %d", ErrUnknownAction, actionType))
	return nil
}

func marshalActions(w *borsh.Writer, actions []Action) {
	w.WriteLen(len(actions))
	for _, a := range actions {
		MarshalAction(w, a)
	}
}

func unmarshalActions(r *borsh.Reader) []Action {
	n := r.ReadLen(1)
	if n == 0 {
		return nil
	}
	ret := make([]Action, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		if a := UnmarshalAction(r); a != nil {
			ret = append(ret, a)
		}
	}
	return ret
}

type CreateAccount struct{}

func (CreateAccount) Type() ActionType            { return ActionTypeCreateAccount }
func (CreateAccount) marshalBody(_ *borsh.Writer) {}

type DeployContract struct {
	Code []byte
}

func (DeployContract) Type() ActionType { return ActionTypeDeployContract }

func (a DeployContract) marshalBody(w *borsh.Writer) {
	w.WriteBytes(a.Code)
}

type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        types.Gas
	Deposit    types.Balance
}

func (FunctionCall) Type() ActionType { return ActionTypeFunctionCall }

func (a FunctionCall) marshalBody(w *borsh.Writer) {
	w.WriteString(a.MethodName)
	w.WriteBytes(a.Args)
	w.WriteU64(uint64(a.Gas))
	a.Deposit.MarshalBorsh(w)
}

type Transfer struct {
	Deposit types.Balance
}

func (Transfer) Type() ActionType { return ActionTypeTransfer }

func (a Transfer) marshalBody(w *borsh.Writer) {
	a.Deposit.MarshalBorsh(w)
}

type Stake struct {
	Stake     types.Balance
	PublicKey crypto.PublicKey
}

func (Stake) Type() ActionType { return ActionTypeStake }

func (a Stake) marshalBody(w *borsh.Writer) {
	a.Stake.MarshalBorsh(w)
	a.PublicKey.MarshalBorsh(w)
}

type AddKey struct {
	PublicKey crypto.PublicKey
	AccessKey AccessKey
}

func (AddKey) Type() ActionType { return ActionTypeAddKey }

func (a AddKey) marshalBody(w *borsh.Writer) {
	a.PublicKey.MarshalBorsh(w)
	a.AccessKey.MarshalBorsh(w)
}

type DeleteKey struct {
	PublicKey crypto.PublicKey
}

func (DeleteKey) Type() ActionType { return ActionTypeDeleteKey }

func (a DeleteKey) marshalBody(w *borsh.Writer) {
	a.PublicKey.MarshalBorsh(w)
}

type DeleteAccount struct {
	BeneficiaryID string
}

func (DeleteAccount) Type() ActionType { return ActionTypeDeleteAccount }

func (a DeleteAccount) marshalBody(w *borsh.Writer) {
	w.WriteString(a.BeneficiaryID)
}

// DeployGlobalContract publishes code that other accounts can reference
type DeployGlobalContract struct {
	Code       []byte
	DeployMode GlobalContractDeployMode
}

func (DeployGlobalContract) Type() ActionType { return ActionTypeDeployGlobalContract }

func (a DeployGlobalContract) marshalBody(w *borsh.Writer) {
	w.WriteBytes(a.Code)
	w.WriteU8(uint8(a.DeployMode))
}

// UseGlobalContract links the receiver's code to a published global contract
type UseGlobalContract struct {
	ContractIdentifier GlobalContractIdentifier
}

func (UseGlobalContract) Type() ActionType { return ActionTypeUseGlobalContract }

func (a UseGlobalContract) marshalBody(w *borsh.Writer) {
	a.ContractIdentifier.MarshalBorsh(w)
}

// DeterministicStateInit deploys an account whose id is derived from its
// initial code and state
type DeterministicStateInit struct {
	Code    GlobalContractIdentifier
	Data    map[string][]byte
	Deposit types.Balance
}

func (DeterministicStateInit) Type() ActionType { return ActionTypeDeterministicStateInit }

func (a DeterministicStateInit) marshalBody(w *borsh.Writer) {
	a.Code.MarshalBorsh(w)
	keys := make([]string, 0, len(a.Data))
	for k := range a.Data {
		keys = append(keys, k)
	}
	// Map entries are encoded in ascending key order
	sort.Strings(keys)
	w.WriteLen(len(keys))
	for _, k := range keys {
		w.WriteBytes([]byte(k))
		w.WriteBytes(a.Data[k])
	}
	a.Deposit.MarshalBorsh(w)
}
