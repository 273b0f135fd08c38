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
	"encoding/json"
	"fmt"
	"os"

	"github.com/blinklabs-io/gonear/cmd/common"
)

func main() {
	f := common.NewGlobalFlags()
	f.Parse()

	if len(f.Flagset.Args()) > 0 {
		switch f.Flagset.Arg(0) {
		case "keygen":
			runKeygen(f)
		case "view-account":
			runViewAccount(f)
		case "view-access-keys":
			runViewAccessKeys(f)
		case "call-view":
			runCallView(f)
		case "block":
			runBlock(f)
		case "transfer":
			runTransfer(f)
		case "sign-message":
			runSignMessage(f)
		case "verify-message":
			runVerifyMessage(f)
		default:
			fmt.Printf("Unknown subcommand: %s\n", f.Flagset.Arg(0))
			os.Exit(1)
		}
	} else {
		fmt.Printf("You must specify a subcommand (keygen, view-account, view-access-keys, call-view, block, transfer, sign-message or verify-message)\n")
		os.Exit(1)
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("ERROR: failed to encode output: %s\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func fatalf(format string, args ...any) {
	fmt.Printf("ERROR: "+format+"\n", args...)
	os.Exit(1)
}
