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

package common

import (
	"context"
	"errors"
	"flag"
	"os"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/signer"
)

// EnvSeedPhrase holds the mnemonic used when -seed-phrase is not given
const EnvSeedPhrase = "GONEAR_SEED_PHRASE"

var ErrNoKeySource = errors.New("no key source: use -key-file, -seed-phrase or -keystore")

type SignerFlags struct {
	KeyFile    string
	SeedPhrase string
	Passphrase string
	HDPath     string
	Keystore   bool
}

// AddSignerFlags registers the flags selecting where signing keys come from
func AddSignerFlags(flagset *flag.FlagSet) *SignerFlags {
	f := &SignerFlags{}
	flagset.StringVar(&f.KeyFile, "key-file", "", "path to a JSON access key file")
	flagset.StringVar(
		&f.SeedPhrase,
		"seed-phrase",
		"",
		"BIP-39 mnemonic of the signing key (defaults to $"+EnvSeedPhrase+")",
	)
	flagset.StringVar(&f.Passphrase, "passphrase", "", "optional BIP-39 passphrase")
	flagset.StringVar(&f.HDPath, "hd-path", signer.DefaultHDPath, "derivation path for -seed-phrase")
	flagset.BoolVar(
		&f.Keystore,
		"keystore",
		false,
		"use every full access key of the account found in the OS keystore",
	)
	return f
}

// Signer builds a signer for accountID from the selected key source
func (f *SignerFlags) Signer(ctx context.Context, accountID string, network near.NetworkConfig) (*signer.Signer, error) {
	s := signer.NewEmpty()
	if f.KeyFile != "" {
		backend, err := signer.NewAccessKeyFileBackend(f.KeyFile)
		if err != nil {
			return nil, err
		}
		if err := s.AddBackend(ctx, backend); err != nil {
			return nil, err
		}
	}
	phrase := f.SeedPhrase
	if phrase == "" {
		phrase = os.Getenv(EnvSeedPhrase)
	}
	if phrase != "" {
		backend, err := signer.NewSeedPhraseBackend(phrase, f.Passphrase, f.HDPath)
		if err != nil {
			return nil, err
		}
		if err := s.AddBackend(ctx, backend); err != nil {
			return nil, err
		}
	}
	if f.Keystore {
		backends, err := signer.SearchKeystore(ctx, accountID, network)
		if err != nil {
			return nil, err
		}
		for _, backend := range backends {
			if err := s.AddBackend(ctx, backend); err != nil {
				return nil, err
			}
		}
	}
	if len(s.PublicKeys()) == 0 {
		return nil, ErrNoKeySource
	}
	return s, nil
}
