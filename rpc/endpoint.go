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

package rpc

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRetries       uint    = 5
	DefaultBackoffFactor float64 = 2
	DefaultInitialDelay          = 10 * time.Millisecond
)

// Duration is a time.Duration that reads and writes as a string such as "250ms"
// in JSON and YAML config files
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	tmp, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(tmp)
	return nil
}

// Endpoint describes one RPC server and the retry policy used against it
type Endpoint struct {
	URL string `json:"url" yaml:"url"`
	// BearerHeader is sent as "Authorization: Bearer <value>" when set
	BearerHeader string `json:"bearer_header,omitempty" yaml:"bearer_header,omitempty"`
	// Retries is the number of attempts made against this endpoint. Zero is
	// treated as a single attempt
	Retries            uint     `json:"retries" yaml:"retries"`
	ExponentialBackoff bool     `json:"exponential_backoff" yaml:"exponential_backoff"`
	BackoffFactor      float64  `json:"backoff_factor" yaml:"backoff_factor"`
	InitialDelay       Duration `json:"initial_delay" yaml:"initial_delay"`
}

// NewEndpoint returns an endpoint for url with the default retry policy
func NewEndpoint(url string) Endpoint {
	return Endpoint{
		URL:                url,
		Retries:            DefaultRetries,
		ExponentialBackoff: true,
		BackoffFactor:      DefaultBackoffFactor,
		InitialDelay:       Duration(DefaultInitialDelay),
	}
}

// UnmarshalJSON fills fields missing from the input with the NewEndpoint defaults
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	type endpointFields Endpoint
	tmp := endpointFields(NewEndpoint(""))
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*e = Endpoint(tmp)
	return nil
}

func (e *Endpoint) UnmarshalYAML(value *yaml.Node) error {
	type endpointFields Endpoint
	tmp := endpointFields(NewEndpoint(""))
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*e = Endpoint(tmp)
	return nil
}

func (e Endpoint) WithAPIKey(key string) Endpoint {
	e.BearerHeader = key
	return e
}

func (e Endpoint) WithRetries(retries uint) Endpoint {
	e.Retries = retries
	return e
}

// WithExponentialBackoff sleeps initialDelay * factor^n after the n-th failed attempt
func (e Endpoint) WithExponentialBackoff(factor float64, initialDelay time.Duration) Endpoint {
	e.ExponentialBackoff = true
	e.BackoffFactor = factor
	e.InitialDelay = Duration(initialDelay)
	return e
}

// WithConstantBackoff sleeps delay after every failed attempt
func (e Endpoint) WithConstantBackoff(delay time.Duration) Endpoint {
	e.ExponentialBackoff = false
	e.InitialDelay = Duration(delay)
	return e
}

func (e Endpoint) attempts() int {
	return max(int(e.Retries), 1)
}

// newBackOff returns a fresh delay schedule for this endpoint
func (e Endpoint) newBackOff() backoff.BackOff {
	delay := time.Duration(e.InitialDelay)
	if !e.ExponentialBackoff {
		return backoff.NewConstantBackOff(delay)
	}
	factor := e.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = delay
	b.Multiplier = factor
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
