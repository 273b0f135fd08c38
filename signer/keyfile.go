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

package signer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blinklabs-io/gonear/crypto"
)

// AccessKeyFile is the on-disk form of a key pair
type AccessKeyFile struct {
	AccountID  string           `json:"account_id,omitempty"`
	PublicKey  crypto.PublicKey `json:"public_key"`
	PrivateKey crypto.SecretKey `json:"private_key"`
}

// NewAccessKeyFile returns the key file contents for key
func NewAccessKeyFile(accountID string, key crypto.SecretKey) AccessKeyFile {
	return AccessKeyFile{
		AccountID:  accountID,
		PublicKey:  key.PublicKey(),
		PrivateKey: key,
	}
}

// Validate checks that the stored public key belongs to the private key
func (f AccessKeyFile) Validate() error {
	if derived := f.PrivateKey.PublicKey(); derived != f.PublicKey {
		return fmt.Errorf(
			"%w: file has %s, private key has %s",
			crypto.ErrPublicKeyMismatch,
			f.PublicKey,
			derived,
		)
	}
	return nil
}

func LoadAccessKeyFile(path string) (AccessKeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AccessKeyFile{}, err
	}
	var ret AccessKeyFile
	if err := json.Unmarshal(data, &ret); err != nil {
		return AccessKeyFile{}, fmt.Errorf("decode access key file %s: %w", path, err)
	}
	if err := ret.Validate(); err != nil {
		return AccessKeyFile{}, err
	}
	return ret, nil
}

// Save writes the key file readable only by the current user
func (f AccessKeyFile) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// NewAccessKeyFileBackend returns a backend for the key stored at path
func NewAccessKeyFileBackend(path string) (*KeyBackend, error) {
	f, err := LoadAccessKeyFile(path)
	if err != nil {
		return nil, err
	}
	return NewSecretKeyBackend(f.PrivateKey), nil
}
