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
	"fmt"
	"log/slog"
	"os"

	near "github.com/blinklabs-io/gonear"
)

// Environment variables that override the RPC endpoint of the selected network
const (
	EnvRPCURL    = "GONEAR_RPC_URL"
	EnvRPCAPIKey = "GONEAR_RPC_API_KEY"
)

type GlobalFlags struct {
	Flagset    *flag.FlagSet
	Network    string
	ConfigFile string
	RPCURL     string
	APIKey     string
	Debug      bool
	// NetworkConfig is resolved by Parse
	NetworkConfig near.NetworkConfig
}

func NewGlobalFlags() *GlobalFlags {
	f := &GlobalFlags{
		Flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.Flagset.StringVar(
		&f.Network,
		"network",
		"testnet",
		"specifies network to talk to (mainnet, testnet, localnet or a name from -config)",
	)
	f.Flagset.StringVar(
		&f.ConfigFile,
		"config",
		"",
		"path to a JSON or YAML file with network definitions",
	)
	f.Flagset.StringVar(
		&f.RPCURL,
		"rpc-url",
		"",
		"RPC endpoint URL. this replaces the first endpoint of the network",
	)
	f.Flagset.StringVar(
		&f.APIKey,
		"api-key",
		"",
		"API key sent as a bearer token to every RPC endpoint",
	)
	f.Flagset.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	return f
}

func (f *GlobalFlags) Parse() {
	if err := f.Flagset.Parse(os.Args[1:]); err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}
	level := slog.LevelInfo
	if f.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	)
	network, err := f.resolveNetwork()
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	f.NetworkConfig = network
}

func (f *GlobalFlags) resolveNetwork() (near.NetworkConfig, error) {
	var network near.NetworkConfig
	if f.ConfigFile != "" {
		cfg, err := near.NewConfigFileFromFile(f.ConfigFile)
		if err != nil {
			return near.NetworkConfig{}, err
		}
		network, err = cfg.Network(f.Network)
		if err != nil {
			return near.NetworkConfig{}, err
		}
	} else {
		var ok bool
		network, ok = near.NetworkByName(f.Network)
		if !ok {
			return near.NetworkConfig{}, fmt.Errorf("%w: %s", near.ErrUnknownNetwork, f.Network)
		}
	}
	rpcURL := f.RPCURL
	if rpcURL == "" {
		rpcURL = os.Getenv(EnvRPCURL)
	}
	if rpcURL != "" {
		network = network.WithRPCURL(rpcURL)
	}
	apiKey := f.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(EnvRPCAPIKey)
	}
	if apiKey != "" {
		network = network.WithAPIKey(apiKey)
	}
	return network, network.Validate()
}
