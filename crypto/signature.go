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
	"crypto/ed25519"
	"fmt"

	"github.com/blinklabs-io/gonear/borsh"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// compactSigMagicOffset is added to the recovery id in the compact signature
// layout used by the secp256k1 library
const compactSigMagicOffset = 27

// Signature is an ed25519 signature or a 65 byte secp256k1 signature laid out
// as r || s || v, with v the recovery id in the range 0..3
type Signature struct {
	keyType KeyType
	data    [SECP256K1SignatureLength]byte
}

func NewSignature(keyType KeyType, data []byte) (Signature, error) {
	if !keyType.valid() {
		return Signature{}, fmt.Errorf("%w: %d", ErrUnknownKeyType, keyType)
	}
	if len(data) != keyType.SignatureLength() {
		return Signature{}, fmt.Errorf(
			"%w: %s signature must be %d bytes, got %d",
			ErrInvalidSignatureLength,
			keyType,
			keyType.SignatureLength(),
			len(data),
		)
	}
	ret := Signature{keyType: keyType}
	copy(ret.data[:], data)
	return ret, nil
}

// ParseSignature parses the "<key type>:<base58>" string form
func ParseSignature(s string) (Signature, error) {
	keyType, data, err := splitKeyString(s)
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature: %w", err)
	}
	return NewSignature(keyType, data)
}

// SignatureFromBytes decodes the binary form: a key type byte followed by the signature
func SignatureFromBytes(b []byte) (Signature, error) {
	var ret Signature
	if err := borsh.Decode(b, &ret); err != nil {
		return Signature{}, err
	}
	return ret, nil
}

func (s Signature) Type() KeyType {
	return s.keyType
}

func (s Signature) Data() []byte {
	n := s.keyType.SignatureLength()
	ret := make([]byte, n)
	copy(ret, s.data[:n])
	return ret
}

func (s Signature) Bytes() []byte {
	return borsh.Encode(s)
}

func (s Signature) String() string {
	return s.keyType.String() + ":" + encodeBase58(s.Data())
}

// Verify reports whether s is a valid signature of msg by key. It returns false
// when the key and signature curves differ or when the signature is malformed
func (s Signature) Verify(msg []byte, key PublicKey) bool {
	if s.keyType != key.keyType {
		return false
	}
	switch s.keyType {
	case KeyTypeED25519:
		return ed25519.Verify(ed25519.PublicKey(key.Data()), msg, s.data[:ED25519SignatureLength])
	case KeyTypeSECP256K1:
		return verifySECP256K1(s.data[:SECP256K1SignatureLength], msg, key)
	}
	return false
}

// Verify is shorthand for sig.Verify(msg, key)
func Verify(sig Signature, msg []byte, key PublicKey) bool {
	return sig.Verify(msg, key)
}

func verifySECP256K1(sig []byte, msg []byte, key PublicKey) bool {
	if len(msg) != CryptoHashLength {
		return false
	}
	recoveryID := sig[64]
	if recoveryID > 3 {
		return false
	}
	compact := make([]byte, 0, SECP256K1SignatureLength)
	compact = append(compact, compactSigMagicOffset+recoveryID)
	compact = append(compact, sig[:64]...)
	recovered, _, err := ecdsa.RecoverCompact(compact, msg)
	if err != nil {
		return false
	}
	return newSECP256K1PublicKey(recovered) == key
}

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	tmp, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*s = tmp
	return nil
}

func (s Signature) MarshalBorsh(w *borsh.Writer) {
	w.WriteU8(uint8(s.keyType))
	w.WriteFixed(s.data[:s.keyType.SignatureLength()])
}

func (s *Signature) UnmarshalBorsh(r *borsh.Reader) {
	keyType := KeyType(r.ReadU8())
	if r.Err() != nil {
		return
	}
	if !keyType.valid() {
		r.SetErr(fmt.Errorf("%w: %d", ErrUnknownKeyType, keyType))
		return
	}
	data := r.ReadFixed(keyType.SignatureLength())
	if r.Err() != nil {
		return
	}
	// The top three bits of an encoded ed25519 scalar are always clear
	if keyType == KeyTypeED25519 && data[ED25519SignatureLength-1]&0xE0 != 0 {
		r.SetErr(fmt.Errorf("%w: malformed ed25519 signature", ErrInvalidSignature))
		return
	}
	*s = Signature{keyType: keyType}
	copy(s.data[:], data)
}
