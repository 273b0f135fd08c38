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
	"encoding/json"
	"flag"
	"fmt"

	"github.com/blinklabs-io/gonear/cmd/common"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/query"
)

type queryFlags struct {
	flagset     *flag.FlagSet
	finality    string
	blockHeight uint64
	blockHash   string
}

func newQueryFlags(name string) *queryFlags {
	f := &queryFlags{
		flagset: flag.NewFlagSet(name, flag.ExitOnError),
	}
	f.flagset.StringVar(&f.finality, "finality", "optimistic", "finality to query at (optimistic, near-final or final)")
	f.flagset.Uint64Var(&f.blockHeight, "block-height", 0, "query at this block height. this overrides -finality")
	f.flagset.StringVar(&f.blockHash, "block-hash", "", "query at this block hash. this overrides -finality")
	return f
}

// parse parses args and returns the positional arguments, of which there must
// be at least minArgs
func (f *queryFlags) parse(args []string, minArgs int, usage string) []string {
	if err := f.flagset.Parse(args); err != nil {
		fatalf("failed to parse subcommand args: %s", err)
	}
	if len(f.flagset.Args()) < minArgs {
		fatalf("usage: %s", usage)
	}
	return f.flagset.Args()
}

func (f *queryFlags) reference() query.Reference {
	if f.blockHash != "" {
		hash, err := crypto.ParseCryptoHash(f.blockHash)
		if err != nil {
			fatalf("invalid block hash: %s", err)
		}
		return query.AtBlockHash(hash)
	}
	if f.blockHeight != 0 {
		return query.AtBlock(f.blockHeight)
	}
	switch f.finality {
	case "optimistic":
		return query.Optimistic()
	case "near-final":
		return query.NearFinal()
	case "final":
		return query.Final()
	}
	fatalf("invalid finality: %s", f.finality)
	return query.Reference{}
}

func runViewAccount(f *common.GlobalFlags) {
	queryFlags := newQueryFlags("view-account")
	args := queryFlags.parse(f.Flagset.Args()[1:], 1, "view-account <account>")
	account, err := query.ViewAccount(args[0]).
		At(queryFlags.reference()).
		FetchFrom(context.Background(), f.NetworkConfig)
	if err != nil {
		fatalf("failure querying account: %s", err)
	}
	fmt.Printf("account %s at block %d (%s)\n", args[0], account.BlockHeight, account.BlockHash)
	fmt.Printf("balance: %s\n", account.Data.Amount.NearString())
	fmt.Printf("locked:  %s\n", account.Data.Locked.NearString())
	printJSON(account.Data)
}

func runViewAccessKeys(f *common.GlobalFlags) {
	queryFlags := newQueryFlags("view-access-keys")
	args := queryFlags.parse(f.Flagset.Args()[1:], 1, "view-access-keys <account>")
	keys, err := query.ViewAccessKeys(args[0]).
		At(queryFlags.reference()).
		FetchFrom(context.Background(), f.NetworkConfig)
	if err != nil {
		fatalf("failure querying access keys: %s", err)
	}
	for _, key := range keys.Data.Keys {
		permission := "function call"
		if key.AccessKey.Permission.IsFullAccess() {
			permission = "full access"
		}
		fmt.Printf("%s nonce=%d %s\n", key.PublicKey, key.AccessKey.Nonce, permission)
	}
}

func runCallView(f *common.GlobalFlags) {
	queryFlags := newQueryFlags("call-view")
	args := queryFlags.parse(f.Flagset.Args()[1:], 2, "call-view <contract> <method> [json-args]")
	var callArgs json.RawMessage = []byte("{}")
	if len(args) > 2 {
		callArgs = json.RawMessage(args[2])
		if !json.Valid(callArgs) {
			fatalf("arguments are not valid JSON")
		}
	}
	result, err := query.CallFunction[json.RawMessage](args[0], args[1], callArgs).
		At(queryFlags.reference()).
		FetchFrom(context.Background(), f.NetworkConfig)
	if err != nil {
		fatalf("failure calling %s.%s: %s", args[0], args[1], err)
	}
	printJSON(result.Data)
}

func runBlock(f *common.GlobalFlags) {
	queryFlags := newQueryFlags("block")
	queryFlags.parse(f.Flagset.Args()[1:], 0, "block")
	block, err := query.Block().
		At(queryFlags.reference()).
		FetchFrom(context.Background(), f.NetworkConfig)
	if err != nil {
		fatalf("failure querying block: %s", err)
	}
	printJSON(block)
}
