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

package common

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	near "github.com/blinklabs-io/gonear"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNetwork(t *testing.T) {
	t.Setenv(EnvRPCURL, "")
	t.Setenv(EnvRPCAPIKey, "")

	f := &GlobalFlags{Flagset: flag.NewFlagSet("test", flag.ContinueOnError), Network: "mainnet"}
	network, err := f.resolveNetwork()
	require.NoError(t, err)
	assert.Equal(t, near.NetworkMainnet.RPCEndpoints[0].URL, network.RPCEndpoints[0].URL)

	t.Setenv(EnvRPCURL, "https://rpc.example.com")
	t.Setenv(EnvRPCAPIKey, "secret")
	network, err = f.resolveNetwork()
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.example.com", network.RPCEndpoints[0].URL)
	assert.Equal(t, "secret", network.RPCEndpoints[0].BearerHeader)
	assert.Empty(t, near.NetworkMainnet.RPCEndpoints[0].BearerHeader)

	f.RPCURL = "http://127.0.0.1:3030"
	network, err = f.resolveNetwork()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:3030", network.RPCEndpoints[0].URL)

	f.Network = "devnet"
	_, err = f.resolveNetwork()
	assert.ErrorIs(t, err, near.ErrUnknownNetwork)
}

func TestResolveNetworkFromConfigFile(t *testing.T) {
	t.Setenv(EnvRPCURL, "")
	t.Setenv(EnvRPCAPIKey, "")
	path := filepath.Join(t.TempDir(), "networks.yaml")
	config := `networks:
  devnet:
    rpc_endpoints:
      - url: http://10.0.0.1:3030
        retries: 2
`
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

	f := &GlobalFlags{Flagset: flag.NewFlagSet("test", flag.ContinueOnError), Network: "devnet", ConfigFile: path}
	network, err := f.resolveNetwork()
	require.NoError(t, err)
	assert.Equal(t, "devnet", network.NetworkName)
	require.Len(t, network.RPCEndpoints, 1)
	assert.Equal(t, "http://10.0.0.1:3030", network.RPCEndpoints[0].URL)
	assert.Equal(t, uint(2), network.RPCEndpoints[0].Retries)

	f.Network = "testnet"
	network, err = f.resolveNetwork()
	require.NoError(t, err)
	assert.Equal(t, "testnet", network.NetworkName)
}
