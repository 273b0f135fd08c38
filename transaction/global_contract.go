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
	"github.com/blinklabs-io/gonear/crypto"
)

type GlobalContractDeployMode uint8

const (
	// GlobalContractDeployModeCodeHash makes the contract referenceable by its code hash
	GlobalContractDeployModeCodeHash GlobalContractDeployMode = 0
	// GlobalContractDeployModeAccountID makes the contract referenceable by the deployer's
	// account id, which lets the deployer update it for every user
	GlobalContractDeployModeAccountID GlobalContractDeployMode = 1
)

// GlobalContractIdentifier references a global contract by code hash or by
// the account that deployed it. Exactly one field is set
type GlobalContractIdentifier struct {
	CodeHash  *crypto.CryptoHash
	AccountID string
}

func GlobalContractByCodeHash(hash crypto.CryptoHash) GlobalContractIdentifier {
	return GlobalContractIdentifier{CodeHash: &hash}
}

func GlobalContractByAccountID(accountID string) GlobalContractIdentifier {
	return GlobalContractIdentifier{AccountID: accountID}
}

func (g GlobalContractIdentifier) String() string {
	if g.CodeHash != nil {
		return "hash:" + g.CodeHash.String()
	}
	return "account:" + g.AccountID
}

func (g GlobalContractIdentifier) MarshalBorsh(w *borsh.Writer) {
	if g.CodeHash != nil {
		w.WriteU8(0)
		g.CodeHash.MarshalBorsh(w)
		return
	}
	w.WriteU8(1)
	w.WriteString(g.AccountID)
}

func (g *GlobalContractIdentifier) UnmarshalBorsh(r *borsh.Reader) {
	switch tag := r.ReadU8(); tag {
	case 0:
		hash := crypto.CryptoHash{}
		r.Read(&hash)
		*g = GlobalContractIdentifier{CodeHash: &hash}
	case 1:
		*g = GlobalContractIdentifier{AccountID: r.ReadString()}
	default:
		r.SetErr(fmt.Errorf("unknown global contract identifier %d", tag))
	}
}
