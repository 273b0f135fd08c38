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

package borsh

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Reader decodes values from a byte slice. The first error encountered is
// retained and all later reads return zero values
type Reader struct {
	data []byte
	pos  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered while reading
func (r *Reader) Err() error {
	return r.err
}

// SetErr records err if no earlier error was recorded
func (r *Reader) SetErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Finish returns the read error, if any, or ErrTrailingData when input remains
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if r.Remaining() != 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Remaining())
	}
	return nil
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.Remaining() < n {
		r.err = ErrUnexpectedEOF
		return nil
	}
	ret := r.data[r.pos : r.pos+n]
	r.pos += n
	return ret
}

// Peek returns the next byte without consuming it
func (r *Reader) Peek() (uint8, bool) {
	if r.err != nil || r.Remaining() < 1 {
		return 0, false
	}
	return r.data[r.pos], true
}

func (r *Reader) ReadU8() uint8 {
	b := r.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadBool() bool {
	switch r.ReadU8() {
	case 0:
		return false
	case 1:
		return true
	default:
		r.SetErr(ErrInvalidBool)
		return false
	}
}

func (r *Reader) ReadU16() uint16 {
	b := r.next(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadU32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadU64() uint64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadU128 returns the high and low halves of a 128-bit unsigned integer
func (r *Reader) ReadU128() (hi, lo uint64) {
	lo = r.ReadU64()
	hi = r.ReadU64()
	return hi, lo
}

// ReadFixed reads n raw bytes. The returned slice is a copy
func (r *Reader) ReadFixed(n int) []byte {
	b := r.next(n)
	if b == nil {
		return nil
	}
	ret := make([]byte, n)
	copy(ret, b)
	return ret
}

// ReadLen reads a u32 collection length, failing early if the input cannot hold
// at least minItemSize bytes per item
func (r *Reader) ReadLen(minItemSize int) int {
	n := int(r.ReadU32())
	if r.err != nil {
		return 0
	}
	if minItemSize > 0 && n > r.Remaining()/minItemSize {
		r.err = ErrUnexpectedEOF
		return 0
	}
	return n
}

func (r *Reader) ReadBytes() []byte {
	n := r.ReadLen(1)
	return r.ReadFixed(n)
}

func (r *Reader) ReadString() string {
	b := r.next(r.ReadLen(1))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.SetErr(ErrInvalidUTF8)
		return ""
	}
	return string(b)
}

// ReadOption reads the presence tag of an optional value
func (r *Reader) ReadOption() bool {
	switch r.ReadU8() {
	case 0:
		return false
	case 1:
		return true
	default:
		r.SetErr(ErrInvalidOption)
		return false
	}
}

func (r *Reader) ReadOptionString() *string {
	if !r.ReadOption() {
		return nil
	}
	s := r.ReadString()
	return &s
}

func (r *Reader) ReadStrings() []string {
	n := r.ReadLen(4)
	if n == 0 {
		return nil
	}
	ret := make([]string, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		ret = append(ret, r.ReadString())
	}
	return ret
}

func (r *Reader) Read(v Unmarshaler) {
	if r.err != nil {
		return
	}
	v.UnmarshalBorsh(r)
}
