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

package near

import (
	"slices"

	"github.com/blinklabs-io/gonear/rpc"
)

// Network definitions
var (
	NetworkMainnet = NetworkConfig{
		NetworkName: "mainnet",
		RPCEndpoints: []rpc.Endpoint{
			rpc.NewEndpoint("https://archival-rpc.mainnet.near.org"),
		},
		LinkdropAccountID:             "near",
		NearSocialDBContractAccountID: "social.near",
		FastnearURL:                   "https://api.fastnear.com/",
		StakingPoolsFactoryAccountID:  "pool.near",
	}
	NetworkTestnet = NetworkConfig{
		NetworkName: "testnet",
		RPCEndpoints: []rpc.Endpoint{
			rpc.NewEndpoint("https://archival-rpc.testnet.near.org"),
		},
		LinkdropAccountID:             "testnet",
		NearSocialDBContractAccountID: "v1.social08.testnet",
		FaucetURL:                     "https://helper.nearprotocol.com/account",
		MetaTransactionRelayerURL:     "http://localhost:3030/relay",
		StakingPoolsFactoryAccountID:  "pool.f863973.m0",
	}
	NetworkLocalnet = NetworkConfig{
		NetworkName: "localnet",
		RPCEndpoints: []rpc.Endpoint{
			rpc.NewEndpoint("http://127.0.0.1:3030"),
		},
	}
)

// List of valid networks for use in lookup functions
var networks = []NetworkConfig{
	NetworkMainnet,
	NetworkTestnet,
	NetworkLocalnet,
}

// NetworkByName returns a copy of a predefined network by name
func NetworkByName(name string) (NetworkConfig, bool) {
	for _, network := range networks {
		if network.NetworkName == name {
			return network.Clone(), true
		}
	}
	return NetworkConfig{}, false
}

// NetworkNames returns the names of the predefined networks
func NetworkNames() []string {
	ret := make([]string, 0, len(networks))
	for _, network := range networks {
		ret = append(ret, network.NetworkName)
	}
	return ret
}

// Clone returns a copy that shares no slices with n
func (n NetworkConfig) Clone() NetworkConfig {
	n.RPCEndpoints = slices.Clone(n.RPCEndpoints)
	return n
}
