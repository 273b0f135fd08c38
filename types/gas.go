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

package types

import "fmt"

// Gas is an amount of gas units
type Gas uint64

const (
	GasPerTera Gas = 1_000_000_000_000
	// DefaultFunctionCallGas is attached to function calls when no amount is given
	DefaultFunctionCallGas = 100 * GasPerTera
	MaxGas                 = 300 * GasPerTera
)

func TeraGas(n uint64) Gas {
	return Gas(n) * GasPerTera
}

func (g Gas) String() string {
	if g%GasPerTera == 0 {
		return fmt.Sprintf("%d Tgas", uint64(g/GasPerTera))
	}
	return fmt.Sprintf("%d gas", uint64(g))
}
