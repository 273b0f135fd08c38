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

// Package types holds small value types shared across the client: token balances,
// gas amounts and account ids.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"strings"

	"github.com/blinklabs-io/gonear/borsh"
)

var ErrBalanceOverflow = errors.New("balance does not fit in 128 bits")

// YoctoPerNear is the number of yoctoNEAR in one NEAR
var YoctoPerNear = Balance{hi: 0xd3c2, lo: 0x1bcecceda1000000}

// Balance is an unsigned 128-bit amount of yoctoNEAR
type Balance struct {
	hi uint64
	lo uint64
}

func NewBalance(yocto uint64) Balance {
	return Balance{lo: yocto}
}

// NewBalanceFromParts builds a balance from its high and low 64-bit halves
func NewBalanceFromParts(hi, lo uint64) Balance {
	return Balance{hi: hi, lo: lo}
}

// NearToYocto converts whole NEAR to a yoctoNEAR balance
func NearToYocto(near uint64) Balance {
	ret, err := BalanceFromBig(new(big.Int).Mul(new(big.Int).SetUint64(near), YoctoPerNear.Big()))
	if err != nil {
		// 2^64 NEAR is below 2^128 yoctoNEAR
		panic(err)
	}
	return ret
}

func BalanceFromBig(v *big.Int) (Balance, error) {
	if v == nil {
		return Balance{}, nil
	}
	if v.Sign() < 0 || v.BitLen() > 128 {
		return Balance{}, ErrBalanceOverflow
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return Balance{hi: hi, lo: lo}, nil
}

// ParseBalance parses a decimal yoctoNEAR amount
func ParseBalance(s string) (Balance, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return Balance{}, fmt.Errorf("invalid balance %q", s)
	}
	return BalanceFromBig(v)
}

// ParseNear parses an amount such as "1.5" given in NEAR
func ParseNear(s string) (Balance, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 24 {
		return Balance{}, fmt.Errorf("invalid NEAR amount %q: too many decimal places", s)
	}
	return ParseBalance(whole + frac + strings.Repeat("0", 24-len(frac)))
}

func (b Balance) Parts() (hi, lo uint64) {
	return b.hi, b.lo
}

func (b Balance) IsZero() bool {
	return b.hi == 0 && b.lo == 0
}

func (b Balance) Big() *big.Int {
	ret := new(big.Int).SetUint64(b.hi)
	ret.Lsh(ret, 64)
	return ret.Or(ret, new(big.Int).SetUint64(b.lo))
}

func (b Balance) Cmp(other Balance) int {
	switch {
	case b.hi < other.hi:
		return -1
	case b.hi > other.hi:
		return 1
	case b.lo < other.lo:
		return -1
	case b.lo > other.lo:
		return 1
	}
	return 0
}

// Add returns b + other, failing on overflow
func (b Balance) Add(other Balance) (Balance, error) {
	lo, carry := bits.Add64(b.lo, other.lo, 0)
	hi, carry := bits.Add64(b.hi, other.hi, carry)
	if carry != 0 {
		return Balance{}, ErrBalanceOverflow
	}
	return Balance{hi: hi, lo: lo}, nil
}

func (b Balance) String() string {
	return b.Big().String()
}

// NearString formats the balance in NEAR with trailing zeros removed
func (b Balance) NearString() string {
	q, r := new(big.Int).QuoRem(b.Big(), YoctoPerNear.Big(), new(big.Int))
	if r.Sign() == 0 {
		return q.String() + " NEAR"
	}
	frac := strings.TrimRight(fmt.Sprintf("%024s", r.String()), "0")
	return q.String() + "." + frac + " NEAR"
}

func (b Balance) MarshalBorsh(w *borsh.Writer) {
	w.WriteU128(b.hi, b.lo)
}

func (b *Balance) UnmarshalBorsh(r *borsh.Reader) {
	b.hi, b.lo = r.ReadU128()
}

// MarshalJSON encodes the balance as a quoted decimal string, as the RPC does
func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Balance) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Plain JSON numbers are accepted for small values
		var n json.Number
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		s = n.String()
	}
	tmp, err := ParseBalance(s)
	if err != nil {
		return err
	}
	*b = tmp
	return nil
}
