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

package send

import (
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gonear/signer"
	"github.com/blinklabs-io/gonear/transaction"
	"github.com/blinklabs-io/gonear/types"
)

// ConstructTransaction collects the actions of a transaction. Errors found
// while building are kept and reported when the transaction is signed or sent
type ConstructTransaction struct {
	tx  transaction.PrepopulatedTransaction
	err error
}

// Construct starts a transaction from signerID to receiverID
func Construct(signerID string, receiverID string) *ConstructTransaction {
	c := &ConstructTransaction{
		tx: transaction.NewPrepopulatedTransaction(signerID, receiverID),
	}
	if err := types.ValidateAccountID(signerID); err != nil {
		c.err = fmt.Errorf("signer account: %w", err)
	} else if err := types.ValidateAccountID(receiverID); err != nil {
		c.err = fmt.Errorf("receiver account: %w", err)
	}
	return c
}

func (c *ConstructTransaction) AddAction(action transaction.Action) *ConstructTransaction {
	c.tx.Actions = append(c.tx.Actions, action)
	return c
}

func (c *ConstructTransaction) AddActions(actions ...transaction.Action) *ConstructTransaction {
	c.tx.Actions = append(c.tx.Actions, actions...)
	return c
}

// AddFunctionCallJSON appends a function call whose arguments are args
// encoded as JSON
func (c *ConstructTransaction) AddFunctionCallJSON(
	method string,
	args any,
	gas types.Gas,
	deposit types.Balance,
) *ConstructTransaction {
	data, err := json.Marshal(args)
	if err != nil {
		if c.err == nil {
			c.err = fmt.Errorf("encode arguments for %s: %w", method, err)
		}
		return c
	}
	return c.AddAction(transaction.FunctionCall{
		MethodName: method,
		Args:       data,
		Gas:        gas,
		Deposit:    deposit,
	})
}

// Err returns the first error recorded while building
func (c *ConstructTransaction) Err() error {
	return c.err
}

// Prepopulated returns a copy of the transaction built so far
func (c *ConstructTransaction) Prepopulated() transaction.PrepopulatedTransaction {
	return transaction.NewPrepopulatedTransaction(c.tx.SignerID, c.tx.ReceiverID, c.tx.Actions...)
}

// WithSigner returns an executor that signs the transaction with s
func (c *ConstructTransaction) WithSigner(s *signer.Signer) *ExecuteSignedTransaction {
	return newExecuteSignedTransaction(c.Prepopulated(), s, c.err)
}
