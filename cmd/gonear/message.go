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
	"os"

	"github.com/blinklabs-io/gonear/cmd/common"
	"github.com/blinklabs-io/gonear/nep413"
)

// signedMessageFile is written by sign-message and read by verify-message
type signedMessageFile struct {
	Payload nep413.Payload       `json:"payload"`
	Signed  nep413.SignedMessage `json:"signed"`
}

type signMessageFlags struct {
	flagset     *flag.FlagSet
	signer      *common.SignerFlags
	callbackURL string
	output      string
}

func newSignMessageFlags() *signMessageFlags {
	f := &signMessageFlags{
		flagset: flag.NewFlagSet("sign-message", flag.ExitOnError),
	}
	f.signer = common.AddSignerFlags(f.flagset)
	f.flagset.StringVar(&f.callbackURL, "callback-url", "", "callback URL bound into the signature")
	f.flagset.StringVar(&f.output, "output", "", "write the signed message to this file instead of stdout")
	return f
}

func runSignMessage(f *common.GlobalFlags) {
	msgFlags := newSignMessageFlags()
	if err := msgFlags.flagset.Parse(f.Flagset.Args()[1:]); err != nil {
		fatalf("failed to parse subcommand args: %s", err)
	}
	args := msgFlags.flagset.Args()
	if len(args) < 3 {
		fatalf("usage: sign-message <account> <recipient> <message>")
	}
	ctx := context.Background()
	s, err := msgFlags.signer.Signer(ctx, args[0], f.NetworkConfig)
	if err != nil {
		fatalf("%s", err)
	}
	payload, err := nep413.NewPayload(args[2], args[1])
	if err != nil {
		fatalf("%s", err)
	}
	if msgFlags.callbackURL != "" {
		payload.CallbackURL = &msgFlags.callbackURL
	}
	signed, err := s.SignMessageNEP413(ctx, args[0], payload)
	if err != nil {
		fatalf("failed to sign message: %s", err)
	}
	out := signedMessageFile{Payload: payload, Signed: signed}
	if msgFlags.output == "" {
		printJSON(out)
		return
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fatalf("%s", err)
	}
	if err := os.WriteFile(msgFlags.output, data, 0o644); err != nil {
		fatalf("failed to write %s: %s", msgFlags.output, err)
	}
}

func runVerifyMessage(f *common.GlobalFlags) {
	flagset := flag.NewFlagSet("verify-message", flag.ExitOnError)
	if err := flagset.Parse(f.Flagset.Args()[1:]); err != nil {
		fatalf("failed to parse subcommand args: %s", err)
	}
	if len(flagset.Args()) < 1 {
		fatalf("usage: verify-message <signed message file>")
	}
	data, err := os.ReadFile(flagset.Arg(0))
	if err != nil {
		fatalf("%s", err)
	}
	var in signedMessageFile
	if err := json.Unmarshal(data, &in); err != nil {
		fatalf("failed to decode %s: %s", flagset.Arg(0), err)
	}
	ok, err := in.Signed.Verify(context.Background(), in.Payload, f.NetworkConfig)
	if err != nil {
		fatalf("failed to verify message: %s", err)
	}
	if !ok {
		fmt.Printf("INVALID: signature does not match or %s is not a full access key of %s\n", in.Signed.PublicKey, in.Signed.AccountID)
		os.Exit(1)
	}
	fmt.Printf("valid signature by %s (%s)\n", in.Signed.AccountID, in.Signed.PublicKey)
}
