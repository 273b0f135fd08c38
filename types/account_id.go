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

import (
	"errors"
	"fmt"
)

const (
	MinAccountIDLength = 2
	MaxAccountIDLength = 64
)

var ErrInvalidAccountID = errors.New("invalid account id")

// ValidateAccountID checks an account id against the network naming rules:
// 2 to 64 characters of lowercase alphanumerics separated by single '-', '_' or '.'
func ValidateAccountID(id string) error {
	if len(id) < MinAccountIDLength || len(id) > MaxAccountIDLength {
		return fmt.Errorf("%w: %q: length must be between %d and %d", ErrInvalidAccountID, id, MinAccountIDLength, MaxAccountIDLength)
	}
	lastSeparator := true
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			lastSeparator = false
		case c == '-' || c == '_' || c == '.':
			if lastSeparator {
				return fmt.Errorf("%w: %q: unexpected separator at position %d", ErrInvalidAccountID, id, i)
			}
			lastSeparator = true
		default:
			return fmt.Errorf("%w: %q: invalid character %q at position %d", ErrInvalidAccountID, id, c, i)
		}
	}
	if lastSeparator {
		return fmt.Errorf("%w: %q: ends with a separator", ErrInvalidAccountID, id)
	}
	return nil
}

// IsImplicitAccountID reports whether id is a 64 character hex implicit account or
// a 0x-prefixed 40 character hex ETH-style implicit account
func IsImplicitAccountID(id string) bool {
	switch {
	case len(id) == 64:
		return isLowerHex(id)
	case len(id) == 42 && id[:2] == "0x":
		return isLowerHex(id[2:])
	}
	return false
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
