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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/blinklabs-io/gonear/cmd/common"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/blinklabs-io/gonear/send"
	"github.com/blinklabs-io/gonear/transaction"
	"github.com/blinklabs-io/gonear/types"
)

type transferFlags struct {
	flagset   *flag.FlagSet
	signer    *common.SignerFlags
	waitUntil string
	meta      bool
	validFor  uint64
}

func newTransferFlags() *transferFlags {
	f := &transferFlags{
		flagset: flag.NewFlagSet("transfer", flag.ExitOnError),
	}
	f.signer = common.AddSignerFlags(f.flagset)
	f.flagset.StringVar(&f.waitUntil, "wait-until", string(send.DefaultWaitUntil), "execution level to wait for")
	f.flagset.BoolVar(&f.meta, "meta", false, "submit as a meta transaction through the network relayer")
	f.flagset.Uint64Var(&f.validFor, "valid-for", send.DefaultMetaTransactionValidFor, "blocks a meta transaction stays valid")
	return f
}

func runTransfer(f *common.GlobalFlags) {
	transferFlags := newTransferFlags()
	if err := transferFlags.flagset.Parse(f.Flagset.Args()[1:]); err != nil {
		fatalf("failed to parse subcommand args: %s", err)
	}
	args := transferFlags.flagset.Args()
	if len(args) < 3 {
		fatalf("usage: transfer <from> <to> <amount in NEAR>")
	}
	amount, err := types.ParseNear(args[2])
	if err != nil {
		fatalf("invalid amount: %s", err)
	}
	ctx := context.Background()
	s, err := transferFlags.signer.Signer(ctx, args[0], f.NetworkConfig)
	if err != nil {
		fatalf("%s", err)
	}
	exec := send.Construct(args[0], args[1]).
		AddAction(transaction.Transfer{Deposit: amount}).
		WithSigner(s)
	if transferFlags.meta {
		resp, err := exec.Meta().
			WithValidFor(transferFlags.validFor).
			SendTo(ctx, f.NetworkConfig)
		if err != nil {
			fatalf("failed to relay transfer: %s", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("relayer status %d: %s\n", resp.StatusCode, string(body))
		return
	}
	outcome, err := exec.
		WaitUntil(rpc.TxExecutionStatus(transferFlags.waitUntil)).
		SendTo(ctx, f.NetworkConfig)
	if err != nil {
		fatalf("failed to send transfer: %s", err)
	}
	if !outcome.Executed {
		fmt.Printf("transaction accepted (%s)\n", outcome.FinalExecutionStatus)
		return
	}
	if err := outcome.Failure(); err != nil {
		fatalf("%s", err)
	}
	fmt.Printf(
		"transaction %s succeeded, gas burnt %s\n",
		outcome.TransactionOutcome.ID,
		outcome.TotalGasBurnt(),
	)
}
