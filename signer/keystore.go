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
	"context"
	"encoding/json"
	"errors"
	"fmt"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/query"
	"github.com/zalando/go-keyring"
)

// Networks searched for a keystore entry, in order
var keystoreNetworks = []string{"mainnet", "testnet"}

func keystoreService(network string, accountID string) string {
	return "near-" + network + "-" + accountID
}

func keystoreUser(accountID string, publicKey crypto.PublicKey) string {
	return accountID + ":" + publicKey.String()
}

// SaveToKeystore stores key for accountID in the OS credential store
func SaveToKeystore(network string, accountID string, key crypto.SecretKey) error {
	data, err := json.Marshal(NewAccessKeyFile(accountID, key))
	if err != nil {
		return err
	}
	return keyring.Set(
		keystoreService(network, accountID),
		keystoreUser(accountID, key.PublicKey()),
		string(data),
	)
}

func loadFromKeystore(network string, accountID string, publicKey crypto.PublicKey) (crypto.SecretKey, error) {
	secret, err := keyring.Get(keystoreService(network, accountID), keystoreUser(accountID, publicKey))
	if err != nil {
		return crypto.SecretKey{}, err
	}
	var f AccessKeyFile
	if err := json.Unmarshal([]byte(secret), &f); err != nil {
		return crypto.SecretKey{}, fmt.Errorf("decode keystore entry: %w", err)
	}
	if err := f.Validate(); err != nil {
		return crypto.SecretKey{}, err
	}
	return f.PrivateKey, nil
}

// NewKeystoreBackend returns a backend that reads the secret key of publicKey
// from the OS credential store each time it signs. The entry of the signing
// account is looked up under the mainnet service name first, then testnet
func NewKeystoreBackend(publicKey crypto.PublicKey) *KeyBackend {
	return NewKeyBackend(
		publicKey,
		func(_ context.Context, signerID string, publicKey crypto.PublicKey) (crypto.SecretKey, error) {
			var errs []error
			for _, network := range keystoreNetworks {
				key, err := loadFromKeystore(network, signerID, publicKey)
				if err == nil {
					return key, nil
				}
				errs = append(errs, err)
			}
			return crypto.SecretKey{}, fmt.Errorf("%w: %w", ErrSecretKeyUnavailable, errors.Join(errs...))
		},
	)
}

// SearchKeystore lists the full access keys of accountID and returns backends
// for those whose secret key is present in the credential store
func SearchKeystore(ctx context.Context, accountID string, network near.NetworkConfig) ([]*KeyBackend, error) {
	keys, err := query.ViewAccessKeys(accountID).FetchFrom(ctx, network)
	if err != nil {
		return nil, err
	}
	var ret []*KeyBackend
	for _, info := range keys.Data.Keys {
		if !info.AccessKey.Permission.IsFullAccess() {
			continue
		}
		if _, err := loadFromKeystore(network.NetworkName, accountID, info.PublicKey); err != nil {
			continue
		}
		ret = append(ret, NewKeystoreBackend(info.PublicKey))
	}
	return ret, nil
}
