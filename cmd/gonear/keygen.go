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
	"flag"
	"fmt"

	"github.com/blinklabs-io/gonear/cmd/common"
	"github.com/blinklabs-io/gonear/signer"
)

type keygenFlags struct {
	flagset   *flag.FlagSet
	words     int
	hdPath    string
	accountID string
	output    string
	keystore  bool
}

func newKeygenFlags() *keygenFlags {
	f := &keygenFlags{
		flagset: flag.NewFlagSet("keygen", flag.ExitOnError),
	}
	f.flagset.IntVar(&f.words, "words", signer.DefaultWordCount, "number of mnemonic words (12 to 24)")
	f.flagset.StringVar(&f.hdPath, "hd-path", signer.DefaultHDPath, "derivation path")
	f.flagset.StringVar(&f.accountID, "account", "", "account the key belongs to (defaults to the implicit account)")
	f.flagset.StringVar(&f.output, "output", "", "write the key to this access key file")
	f.flagset.BoolVar(&f.keystore, "save-keystore", false, "store the key in the OS keystore")
	return f
}

func runKeygen(f *common.GlobalFlags) {
	keygenFlags := newKeygenFlags()
	if err := keygenFlags.flagset.Parse(f.Flagset.Args()[1:]); err != nil {
		fatalf("failed to parse subcommand args: %s", err)
	}
	phrase, err := signer.GenerateSeedPhrase(keygenFlags.words)
	if err != nil {
		fatalf("%s", err)
	}
	key, err := signer.SecretKeyFromSeedPhrase(phrase, "", keygenFlags.hdPath)
	if err != nil {
		fatalf("%s", err)
	}
	accountID := keygenFlags.accountID
	if accountID == "" {
		accountID = key.PublicKey().ImplicitAccountID()
	}
	fmt.Printf("seed phrase: %s\n", phrase)
	fmt.Printf("hd path:     %s\n", keygenFlags.hdPath)
	fmt.Printf("public key:  %s\n", key.PublicKey())
	fmt.Printf("account:     %s\n", accountID)
	if keygenFlags.output != "" {
		if err := signer.NewAccessKeyFile(accountID, key).Save(keygenFlags.output); err != nil {
			fatalf("failed to write key file: %s", err)
		}
		fmt.Printf("wrote key file %s\n", keygenFlags.output)
	}
	if keygenFlags.keystore {
		if err := signer.SaveToKeystore(f.NetworkConfig.NetworkName, accountID, key); err != nil {
			fatalf("failed to save key to keystore: %s", err)
		}
		fmt.Printf("saved key to keystore\n")
	}
}
