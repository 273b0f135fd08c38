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
	"github.com/blinklabs-io/gonear/crypto"
)

// PrepopulatedTransaction is the intent of a transaction: who sends which
// actions to whom. Key, nonce and block hash are added when it is signed
type PrepopulatedTransaction struct {
	SignerID   string
	ReceiverID string
	Actions    []Action
}

func NewPrepopulatedTransaction(signerID string, receiverID string, actions ...Action) PrepopulatedTransaction {
	return PrepopulatedTransaction{
		SignerID:   signerID,
		ReceiverID: receiverID,
		Actions:    actions,
	}
}

// ToTransaction fills in the signing parameters
func (p PrepopulatedTransaction) ToTransaction(
	publicKey crypto.PublicKey,
	nonce uint64,
	blockHash crypto.CryptoHash,
) Transaction {
	return Transaction{
		Version:    VersionV0,
		SignerID:   p.SignerID,
		PublicKey:  publicKey,
		Nonce:      nonce,
		ReceiverID: p.ReceiverID,
		BlockHash:  blockHash,
		Actions:    append([]Action(nil), p.Actions...),
	}
}

// ToDelegateAction fills in the signing parameters of a meta transaction
func (p PrepopulatedTransaction) ToDelegateAction(
	publicKey crypto.PublicKey,
	nonce uint64,
	maxBlockHeight uint64,
) (DelegateAction, error) {
	return NewDelegateAction(
		p.SignerID,
		p.ReceiverID,
		append([]Action(nil), p.Actions...),
		nonce,
		maxBlockHeight,
		publicKey,
	)
}
