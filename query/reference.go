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

package query

import (
	"strconv"

	"github.com/blinklabs-io/gonear/crypto"
)

type referenceKind int

const (
	referenceOptimistic referenceKind = iota
	referenceNearFinal
	referenceFinal
	referenceHeight
	referenceHash
)

// Reference is the point in history a read query is evaluated at
type Reference struct {
	kind   referenceKind
	height uint64
	hash   crypto.CryptoHash
}

// Optimistic evaluates against the latest block, which may still be reverted
func Optimistic() Reference {
	return Reference{kind: referenceOptimistic}
}

func NearFinal() Reference {
	return Reference{kind: referenceNearFinal}
}

func Final() Reference {
	return Reference{kind: referenceFinal}
}

func AtBlock(height uint64) Reference {
	return Reference{kind: referenceHeight, height: height}
}

func AtBlockHash(hash crypto.CryptoHash) Reference {
	return Reference{kind: referenceHash, hash: hash}
}

func (r Reference) String() string {
	switch r.kind {
	case referenceNearFinal:
		return "near-final"
	case referenceFinal:
		return "final"
	case referenceHeight:
		return "block " + strconv.FormatUint(r.height, 10)
	case referenceHash:
		return "block " + r.hash.String()
	}
	return "optimistic"
}

// blockID returns the block_id value for a pinned reference and false for a
// finality label
func (r Reference) blockID() (any, bool) {
	switch r.kind {
	case referenceHeight:
		return r.height, true
	case referenceHash:
		return r.hash.String(), true
	}
	return nil, false
}

// apply adds the reference fields to a named params object
func (r Reference) apply(params map[string]any) {
	if id, ok := r.blockID(); ok {
		params["block_id"] = id
		return
	}
	params["finality"] = r.String()
}

type epochReferenceKind int

const (
	epochLatest epochReferenceKind = iota
	epochID
	epochBlockHeight
	epochBlockHash
)

// EpochReference selects the epoch a validators query is evaluated at
type EpochReference struct {
	kind   epochReferenceKind
	height uint64
	hash   crypto.CryptoHash
}

func LatestEpoch() EpochReference {
	return EpochReference{kind: epochLatest}
}

func AtEpoch(id crypto.CryptoHash) EpochReference {
	return EpochReference{kind: epochID, hash: id}
}

// AtEpochOfBlock selects the epoch containing the block at height
func AtEpochOfBlock(height uint64) EpochReference {
	return EpochReference{kind: epochBlockHeight, height: height}
}

func AtEpochOfBlockHash(hash crypto.CryptoHash) EpochReference {
	return EpochReference{kind: epochBlockHash, hash: hash}
}

func (r EpochReference) params() any {
	switch r.kind {
	case epochID:
		return map[string]any{"epoch_id": r.hash.String()}
	case epochBlockHeight:
		return map[string]any{"block_id": r.height}
	case epochBlockHash:
		return map[string]any{"block_id": r.hash.String()}
	}
	return []any{nil}
}
