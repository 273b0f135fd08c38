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

// Package borsh implements the canonical little-endian binary encoding used for
// transactions, delegate actions and signed messages.
package borsh

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEOF  = errors.New("borsh: unexpected end of input")
	ErrTrailingData   = errors.New("borsh: trailing data after value")
	ErrInvalidBool    = errors.New("borsh: invalid bool value")
	ErrInvalidOption  = errors.New("borsh: invalid option tag")
	ErrInvalidUTF8    = errors.New("borsh: string is not valid UTF-8")
	ErrLengthOverflow = errors.New("borsh: length exceeds u32")
)

// Marshaler is implemented by types that can write themselves to a Writer
type Marshaler interface {
	MarshalBorsh(w *Writer)
}

// Unmarshaler is implemented by types that can read themselves from a Reader
type Unmarshaler interface {
	UnmarshalBorsh(r *Reader)
}

// Encode returns the Borsh encoding of v
func Encode(v Marshaler) []byte {
	w := NewWriter()
	v.MarshalBorsh(w)
	return w.Bytes()
}

// Decode decodes data into v. All input must be consumed
func Decode(data []byte, v Unmarshaler) error {
	r := NewReader(data)
	v.UnmarshalBorsh(r)
	if err := r.Finish(); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}
