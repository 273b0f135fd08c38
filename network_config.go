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

// Package near holds the network configuration shared by the query, signer
// and send packages: named network presets and config file loading.
package near

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/blinklabs-io/gonear/rpc"
	"gopkg.in/yaml.v3"
)

var ErrUnknownNetwork = errors.New("unknown network")

// NetworkConfig describes how to reach a network and which well-known accounts
// and services it has
type NetworkConfig struct {
	NetworkName                   string         `json:"network_name" yaml:"network_name"`
	RPCEndpoints                  []rpc.Endpoint `json:"rpc_endpoints" yaml:"rpc_endpoints"`
	LinkdropAccountID             string         `json:"linkdrop_account_id,omitempty" yaml:"linkdrop_account_id,omitempty"`
	NearSocialDBContractAccountID string         `json:"near_social_db_contract_account_id,omitempty" yaml:"near_social_db_contract_account_id,omitempty"`
	FaucetURL                     string         `json:"faucet_url,omitempty" yaml:"faucet_url,omitempty"`
	MetaTransactionRelayerURL     string         `json:"meta_transaction_relayer_url,omitempty" yaml:"meta_transaction_relayer_url,omitempty"`
	FastnearURL                   string         `json:"fastnear_url,omitempty" yaml:"fastnear_url,omitempty"`
	StakingPoolsFactoryAccountID  string         `json:"staking_pools_factory_account_id,omitempty" yaml:"staking_pools_factory_account_id,omitempty"`
}

// ConfigFile holds several named networks
type ConfigFile struct {
	Networks map[string]NetworkConfig `json:"networks" yaml:"networks"`
}

// ConfigFormat selects the decoder used for config data
type ConfigFormat int

const (
	ConfigFormatJSON ConfigFormat = iota
	ConfigFormatYAML
)

// ConfigFormatFromPath picks the format from the file extension
func ConfigFormatFromPath(path string) ConfigFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ConfigFormatYAML
	}
	return ConfigFormatJSON
}

// NewNetworkConfig returns a config named name that talks to a single RPC URL
// with the default retry policy
func NewNetworkConfig(name string, rpcURL string) NetworkConfig {
	return NetworkConfig{
		NetworkName:  name,
		RPCEndpoints: []rpc.Endpoint{rpc.NewEndpoint(rpcURL)},
	}
}

func NewNetworkConfigFromFile(path string) (*NetworkConfig, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewNetworkConfigFromReader(dataFile, ConfigFormatFromPath(path))
}

func NewNetworkConfigFromReader(r io.Reader, format ConfigFormat) (*NetworkConfig, error) {
	n := &NetworkConfig{}
	if err := decodeConfig(r, format, n); err != nil {
		return nil, err
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func NewConfigFileFromFile(path string) (*ConfigFile, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewConfigFileFromReader(dataFile, ConfigFormatFromPath(path))
}

func NewConfigFileFromReader(r io.Reader, format ConfigFormat) (*ConfigFile, error) {
	c := &ConfigFile{}
	if err := decodeConfig(r, format, c); err != nil {
		return nil, err
	}
	for name, network := range c.Networks {
		if network.NetworkName == "" {
			network.NetworkName = name
			c.Networks[name] = network
		}
		if err := network.Validate(); err != nil {
			return nil, fmt.Errorf("network %q: %w", name, err)
		}
	}
	return c, nil
}

// Network returns the named network from the file, falling back to the presets
func (c *ConfigFile) Network(name string) (NetworkConfig, error) {
	if network, ok := c.Networks[name]; ok {
		return network.Clone(), nil
	}
	if network, ok := NetworkByName(name); ok {
		return network, nil
	}
	return NetworkConfig{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
}

func decodeConfig(r io.Reader, format ConfigFormat, dest any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	switch format {
	case ConfigFormatYAML:
		if err := yaml.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("decode YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("decode JSON config: %w", err)
		}
	}
	return nil
}

// Validate checks that the configured URLs are usable. An empty endpoint list
// is allowed here and reported when a call is attempted
func (n NetworkConfig) Validate() error {
	if n.NetworkName == "" {
		return errors.New("network name is required")
	}
	for idx, endpoint := range n.RPCEndpoints {
		if err := validateURL(endpoint.URL); err != nil {
			return fmt.Errorf("rpc endpoint %d: %w", idx, err)
		}
	}
	for name, value := range map[string]string{
		"faucet_url":                   n.FaucetURL,
		"meta_transaction_relayer_url": n.MetaTransactionRelayerURL,
		"fastnear_url":                 n.FastnearURL,
	} {
		if value == "" {
			continue
		}
		if err := validateURL(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func validateURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme in %q", value)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", value)
	}
	return nil
}

// WithRPCURL returns a copy of n whose first endpoint is replaced by rpcURL
func (n NetworkConfig) WithRPCURL(rpcURL string) NetworkConfig {
	n = n.Clone()
	endpoint := rpc.NewEndpoint(rpcURL)
	if len(n.RPCEndpoints) > 0 {
		endpoint = n.RPCEndpoints[0]
		endpoint.URL = rpcURL
		n.RPCEndpoints[0] = endpoint
		return n
	}
	n.RPCEndpoints = []rpc.Endpoint{endpoint}
	return n
}

// WithAPIKey returns a copy of n with the bearer credential set on every endpoint
func (n NetworkConfig) WithAPIKey(key string) NetworkConfig {
	n = n.Clone()
	for idx := range n.RPCEndpoints {
		n.RPCEndpoints[idx].BearerHeader = key
	}
	return n
}
