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

package near_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type networkConfigTestDefinition struct {
	name           string
	data           string
	format         near.ConfigFormat
	expectedObject *near.NetworkConfig
}

var networkConfigTests = []networkConfigTestDefinition{
	{
		name:   "JSON",
		format: near.ConfigFormatJSON,
		data: `
{
  "network_name": "custom",
  "rpc_endpoints": [
    {
      "url": "https://rpc.example.com",
      "bearer_header": "secret",
      "retries": 3,
      "exponential_backoff": true,
      "backoff_factor": 3,
      "initial_delay": "25ms"
    }
  ],
  "linkdrop_account_id": "custom"
}
`,
		expectedObject: &near.NetworkConfig{
			NetworkName: "custom",
			RPCEndpoints: []rpc.Endpoint{
				{
					URL:                "https://rpc.example.com",
					BearerHeader:       "secret",
					Retries:            3,
					ExponentialBackoff: true,
					BackoffFactor:      3,
					InitialDelay:       rpc.Duration(25 * time.Millisecond),
				},
			},
			LinkdropAccountID: "custom",
		},
	},
	{
		name:   "YAML",
		format: near.ConfigFormatYAML,
		data: `
network_name: custom
rpc_endpoints:
  - url: http://127.0.0.1:3030
    retries: 1
    exponential_backoff: false
    initial_delay: 1s
meta_transaction_relayer_url: http://127.0.0.1:3031/relay
`,
		expectedObject: &near.NetworkConfig{
			NetworkName: "custom",
			RPCEndpoints: []rpc.Endpoint{
				{
					URL:           "http://127.0.0.1:3030",
					Retries:       1,
					BackoffFactor: rpc.DefaultBackoffFactor,
					InitialDelay:  rpc.Duration(time.Second),
				},
			},
			MetaTransactionRelayerURL: "http://127.0.0.1:3031/relay",
		},
	},
	{
		name:   "JSON URL only",
		format: near.ConfigFormatJSON,
		data:   `{"network_name": "custom", "rpc_endpoints": [{"url": "https://rpc.example.com"}]}`,
		expectedObject: &near.NetworkConfig{
			NetworkName:  "custom",
			RPCEndpoints: []rpc.Endpoint{rpc.NewEndpoint("https://rpc.example.com")},
		},
	},
	{
		name:   "YAML URL only",
		format: near.ConfigFormatYAML,
		data: `
network_name: custom
rpc_endpoints:
  - url: https://rpc.example.com
    bearer_header: secret
`,
		expectedObject: &near.NetworkConfig{
			NetworkName:  "custom",
			RPCEndpoints: []rpc.Endpoint{rpc.NewEndpoint("https://rpc.example.com").WithAPIKey("secret")},
		},
	},
}

func TestParseNetworkConfig(t *testing.T) {
	for _, test := range networkConfigTests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := near.NewNetworkConfigFromReader(strings.NewReader(test.data), test.format)
			require.NoError(t, err)
			assert.Equal(t, test.expectedObject, cfg)
		})
	}
}

func TestNetworkConfigValidation(t *testing.T) {
	_, err := near.NewNetworkConfigFromReader(
		strings.NewReader(`{"network_name":"bad","rpc_endpoints":[{"url":"ftp://example.com"}]}`),
		near.ConfigFormatJSON,
	)
	assert.ErrorContains(t, err, "unsupported URL scheme")
	_, err = near.NewNetworkConfigFromReader(
		strings.NewReader(`{"rpc_endpoints":[]}`),
		near.ConfigFormatJSON,
	)
	assert.Error(t, err)
	_, err = near.NewNetworkConfigFromReader(strings.NewReader(`{`), near.ConfigFormatJSON)
	assert.ErrorContains(t, err, "decode JSON config")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.yml")
	data := `
networks:
  local:
    rpc_endpoints:
      - url: http://127.0.0.1:3030
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	cfgFile, err := near.NewConfigFileFromFile(path)
	require.NoError(t, err)
	local, err := cfgFile.Network("local")
	require.NoError(t, err)
	assert.Equal(t, "local", local.NetworkName)
	testnet, err := cfgFile.Network("testnet")
	require.NoError(t, err)
	assert.Equal(t, "testnet", testnet.LinkdropAccountID)
	_, err = cfgFile.Network("nope")
	assert.ErrorIs(t, err, near.ErrUnknownNetwork)
}

func TestNetworkByName(t *testing.T) {
	mainnet, ok := near.NetworkByName("mainnet")
	require.True(t, ok)
	assert.Equal(t, "https://archival-rpc.mainnet.near.org", mainnet.RPCEndpoints[0].URL)
	assert.Equal(t, "near", mainnet.LinkdropAccountID)
	assert.Empty(t, mainnet.MetaTransactionRelayerURL)
	testnet, ok := near.NetworkByName("testnet")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:3030/relay", testnet.MetaTransactionRelayerURL)
	// presets are copied
	mainnet.RPCEndpoints[0].URL = "http://changed"
	again, _ := near.NetworkByName("mainnet")
	assert.Equal(t, "https://archival-rpc.mainnet.near.org", again.RPCEndpoints[0].URL)
	_, ok = near.NetworkByName("unknown")
	assert.False(t, ok)
	assert.Equal(t, []string{"mainnet", "testnet", "localnet"}, near.NetworkNames())
}

func TestNetworkConfigOverrides(t *testing.T) {
	cfg := near.NetworkTestnet.WithRPCURL("http://127.0.0.1:1234").WithAPIKey("key")
	require.Len(t, cfg.RPCEndpoints, 1)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.RPCEndpoints[0].URL)
	assert.Equal(t, "key", cfg.RPCEndpoints[0].BearerHeader)
	assert.Equal(t, "https://archival-rpc.testnet.near.org", near.NetworkTestnet.RPCEndpoints[0].URL)
	assert.Empty(t, near.NetworkTestnet.RPCEndpoints[0].BearerHeader)
	empty := near.NetworkConfig{NetworkName: "x"}.WithRPCURL("http://a.b")
	assert.Equal(t, rpc.DefaultRetries, empty.RPCEndpoints[0].Retries)
}
