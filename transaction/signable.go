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
	"github.com/blinklabs-io/gonear/borsh"
	"github.com/blinklabs-io/gonear/crypto"
)

// MessageDiscriminant is prefixed to a payload before hashing so that a
// signature made for one purpose cannot be reused for another. On-chain
// messages use values from 2^30 and off-chain messages values from 2^31, both
// offset by the number of the standard that introduced them
type MessageDiscriminant uint32

const (
	minOnChainDiscriminant  MessageDiscriminant = 1 << 30
	minOffChainDiscriminant MessageDiscriminant = 1 << 31

	DiscriminantDelegateAction MessageDiscriminant = minOnChainDiscriminant + 366
	DiscriminantNEP413         MessageDiscriminant = minOffChainDiscriminant + 413
)

func (d MessageDiscriminant) IsOnChain() bool {
	return d >= minOnChainDiscriminant && d < minOffChainDiscriminant
}

func (d MessageDiscriminant) IsOffChain() bool {
	return d >= minOffChainDiscriminant
}

// SignableMessageHash returns sha256(u32le(discriminant) || borsh(payload))
func SignableMessageHash(d MessageDiscriminant, payload borsh.Marshaler) crypto.CryptoHash {
	w := borsh.NewWriter()
	w.WriteU32(uint32(d))
	payload.MarshalBorsh(w)
	return crypto.Hash(w.Bytes())
}
