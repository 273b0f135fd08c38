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
	"math"
)

// Writer accumulates an encoded value
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
		return
	}
	w.WriteU8(0)
}

func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteU128 writes a 128-bit unsigned integer given as its high and low halves
func (w *Writer) WriteU128(hi, lo uint64) {
	w.WriteU64(lo)
	w.WriteU64(hi)
}

// WriteFixed writes raw bytes with no length prefix, as used for fixed-size arrays
func (w *Writer) WriteFixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteLen writes a u32 collection length
func (w *Writer) WriteLen(n int) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic(ErrLengthOverflow)
	}
	w.WriteU32(uint32(n))
}

// WriteBytes writes a length-prefixed byte vector
func (w *Writer) WriteBytes(b []byte) {
	w.WriteLen(len(b))
	w.WriteFixed(b)
}

func (w *Writer) WriteString(s string) {
	w.WriteLen(len(s))
	w.buf = append(w.buf, s...)
}

// WriteOption writes the presence tag of an optional value. The caller writes the
// value itself when present is true
func (w *Writer) WriteOption(present bool) {
	w.WriteBool(present)
}

// WriteOptionString writes an Option<String>
func (w *Writer) WriteOptionString(s *string) {
	w.WriteOption(s != nil)
	if s != nil {
		w.WriteString(*s)
	}
}

func (w *Writer) WriteStrings(items []string) {
	w.WriteLen(len(items))
	for _, item := range items {
		w.WriteString(item)
	}
}

func (w *Writer) Write(v Marshaler) {
	v.MarshalBorsh(w)
}
