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

package transaction

import (
	"fmt"

	"github.com/blinklabs-io/gonear/borsh"
	"github.com/blinklabs-io/gonear/types"
)

// AccessKey is the on-chain record created by an AddKey action
type AccessKey struct {
	Nonce      uint64
	Permission AccessKeyPermission
}

// AccessKeyPermission is either full access (FunctionCall == nil) or a
// function-call-scoped permission
type AccessKeyPermission struct {
	FunctionCall *FunctionCallPermission
}

// FunctionCallPermission limits a key to calling methods on one receiver
type FunctionCallPermission struct {
	// Allowance is the gas budget the key may spend. nil means unlimited
	Allowance   *types.Balance
	ReceiverID  string
	MethodNames []string
}

var FullAccess = AccessKeyPermission{}

func NewFullAccessKey() AccessKey {
	return AccessKey{Permission: FullAccess}
}

func NewFunctionCallAccessKey(receiverID string, methodNames []string, allowance *types.Balance) AccessKey {
	return AccessKey{
		Permission: AccessKeyPermission{
			FunctionCall: &FunctionCallPermission{
				Allowance:   allowance,
				ReceiverID:  receiverID,
				MethodNames: methodNames,
			},
		},
	}
}

func (p AccessKeyPermission) IsFullAccess() bool {
	return p.FunctionCall == nil
}

func (k AccessKey) MarshalBorsh(w *borsh.Writer) {
	w.WriteU64(k.Nonce)
	k.Permission.MarshalBorsh(w)
}

func (k *AccessKey) UnmarshalBorsh(r *borsh.Reader) {
	k.Nonce = r.ReadU64()
	r.Read(&k.Permission)
}

func (p AccessKeyPermission) MarshalBorsh(w *borsh.Writer) {
	if p.FunctionCall == nil {
		w.WriteU8(1)
		return
	}
	w.WriteU8(0)
	fc := p.FunctionCall
	w.WriteOption(fc.Allowance != nil)
	if fc.Allowance != nil {
		fc.Allowance.MarshalBorsh(w)
	}
	w.WriteString(fc.ReceiverID)
	w.WriteStrings(fc.MethodNames)
}

func (p *AccessKeyPermission) UnmarshalBorsh(r *borsh.Reader) {
	switch tag := r.ReadU8(); tag {
	case 0:
		fc := &FunctionCallPermission{}
		if r.ReadOption() {
			allowance := types.Balance{}
			r.Read(&allowance)
			fc.Allowance = &allowance
		}
		fc.ReceiverID = r.ReadString()
		fc.MethodNames = r.ReadStrings()
		p.FunctionCall = fc
	case 1:
		p.FunctionCall = nil
	default:
		r.SetErr(fmt.Errorf("unknown access key permission %d", tag))
	}
}
