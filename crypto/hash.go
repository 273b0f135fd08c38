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

package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/blinklabs-io/gonear/borsh"
)

const CryptoHashLength = 32

// CryptoHash is a SHA-256 digest. Block hashes and transaction hashes use it
type CryptoHash [CryptoHashLength]byte

// Hash returns the SHA-256 digest of data
func Hash(data []byte) CryptoHash {
	return CryptoHash(sha256.Sum256(data))
}

func NewCryptoHash(b []byte) (CryptoHash, error) {
	var ret CryptoHash
	if len(b) != CryptoHashLength {
		return ret, fmt.Errorf("invalid hash length %d, expected %d", len(b), CryptoHashLength)
	}
	copy(ret[:], b)
	return ret, nil
}

// ParseCryptoHash parses a base58 encoded hash
func ParseCryptoHash(s string) (CryptoHash, error) {
	data, err := decodeBase58(s)
	if err != nil {
		return CryptoHash{}, err
	}
	return NewCryptoHash(data)
}

func (h CryptoHash) Bytes() []byte {
	return h[:]
}

func (h CryptoHash) IsZero() bool {
	return h == CryptoHash{}
}

func (h CryptoHash) String() string {
	return encodeBase58(h[:])
}

func (h CryptoHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *CryptoHash) UnmarshalText(text []byte) error {
	tmp, err := ParseCryptoHash(string(text))
	if err != nil {
		return err
	}
	*h = tmp
	return nil
}

func (h CryptoHash) MarshalBorsh(w *borsh.Writer) {
	w.WriteFixed(h[:])
}

func (h *CryptoHash) UnmarshalBorsh(r *borsh.Reader) {
	copy(h[:], r.ReadFixed(CryptoHashLength))
}
