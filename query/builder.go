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

package query

import (
	"context"
	"errors"
	"fmt"

	near "github.com/blinklabs-io/gonear"
	"github.com/blinklabs-io/gonear/rpc"
	"golang.org/x/sync/errgroup"
)

var ErrRequestCountMismatch = errors.New("handler expects a different number of responses than requests queued")

// Builder fetches a single request and decodes it with a handler
type Builder[Ref any, T any] struct {
	request   Request[Ref]
	reference Ref
	handler   Handler[T]
	retryOpts []rpc.RetryOptionFunc
}

func NewBuilder[Ref any, T any](request Request[Ref], reference Ref, handler Handler[T]) *Builder[Ref, T] {
	return &Builder[Ref, T]{
		request:   request,
		reference: reference,
		handler:   handler,
	}
}

// At sets the reference point the request is evaluated at
func (b *Builder[Ref, T]) At(reference Ref) *Builder[Ref, T] {
	b.reference = reference
	return b
}

// WithRetryOptions passes opts to the retry executor
func (b *Builder[Ref, T]) WithRetryOptions(opts ...rpc.RetryOptionFunc) *Builder[Ref, T] {
	b.retryOpts = append(b.retryOpts, opts...)
	return b
}

func (b *Builder[Ref, T]) Request() Request[Ref] {
	return b.request
}

func (b *Builder[Ref, T]) FetchFrom(ctx context.Context, network near.NetworkConfig) (T, error) {
	return b.FetchFromEndpoints(ctx, network.RPCEndpoints)
}

func (b *Builder[Ref, T]) FetchFromMainnet(ctx context.Context) (T, error) {
	return b.FetchFrom(ctx, near.NetworkMainnet)
}

func (b *Builder[Ref, T]) FetchFromTestnet(ctx context.Context) (T, error) {
	return b.FetchFrom(ctx, near.NetworkTestnet)
}

// FetchFromEndpoints runs the request through the retry executor and hands the
// response to the handler
func (b *Builder[Ref, T]) FetchFromEndpoints(ctx context.Context, endpoints []rpc.Endpoint) (T, error) {
	var zero T
	params, err := b.request.Params(b.reference)
	if err != nil {
		return zero, err
	}
	resp, err := rpc.Retry(
		ctx,
		endpoints,
		b.request.ClassifyError,
		func(ctx context.Context, client *rpc.Client) (Response, error) {
			return execute(ctx, client, b.request, params)
		},
		b.retryOpts...,
	)
	if err != nil {
		return zero, err
	}
	return b.handler.Process([]Response{resp})
}

// MultiBuilder issues several requests concurrently at one reference point and
// decodes the responses, in the order the requests were added, with one handler
type MultiBuilder[Ref any, T any] struct {
	requests  []Request[Ref]
	reference Ref
	handler   Handler[T]
	retryOpts []rpc.RetryOptionFunc
}

func NewMultiBuilder[Ref any, T any](handler Handler[T], reference Ref) *MultiBuilder[Ref, T] {
	return &MultiBuilder[Ref, T]{
		reference: reference,
		handler:   handler,
	}
}

func (b *MultiBuilder[Ref, T]) AddRequest(request Request[Ref]) *MultiBuilder[Ref, T] {
	b.requests = append(b.requests, request)
	return b
}

func (b *MultiBuilder[Ref, T]) At(reference Ref) *MultiBuilder[Ref, T] {
	b.reference = reference
	return b
}

func (b *MultiBuilder[Ref, T]) WithRetryOptions(opts ...rpc.RetryOptionFunc) *MultiBuilder[Ref, T] {
	b.retryOpts = append(b.retryOpts, opts...)
	return b
}

func (b *MultiBuilder[Ref, T]) FetchFrom(ctx context.Context, network near.NetworkConfig) (T, error) {
	return b.FetchFromEndpoints(ctx, network.RPCEndpoints)
}

func (b *MultiBuilder[Ref, T]) FetchFromMainnet(ctx context.Context) (T, error) {
	return b.FetchFrom(ctx, near.NetworkMainnet)
}

func (b *MultiBuilder[Ref, T]) FetchFromTestnet(ctx context.Context) (T, error) {
	return b.FetchFrom(ctx, near.NetworkTestnet)
}

// FetchFromEndpoints runs every request through its own retry executor. The
// first failure cancels the requests still in flight
func (b *MultiBuilder[Ref, T]) FetchFromEndpoints(ctx context.Context, endpoints []rpc.Endpoint) (T, error) {
	var zero T
	if len(b.requests) == 0 {
		return zero, ErrEmptyMultiQuery
	}
	if b.handler.RequestAmount() != len(b.requests) {
		return zero, fmt.Errorf(
			"%w: handler expects %d, %d queued",
			ErrRequestCountMismatch,
			b.handler.RequestAmount(),
			len(b.requests),
		)
	}
	params := make([]any, len(b.requests))
	for idx, request := range b.requests {
		tmp, err := request.Params(b.reference)
		if err != nil {
			return zero, err
		}
		params[idx] = tmp
	}
	responses := make([]Response, len(b.requests))
	g, gctx := errgroup.WithContext(ctx)
	for idx, request := range b.requests {
		g.Go(func() error {
			resp, err := rpc.Retry(
				gctx,
				endpoints,
				request.ClassifyError,
				func(ctx context.Context, client *rpc.Client) (Response, error) {
					return execute(ctx, client, request, params[idx])
				},
				b.retryOpts...,
			)
			if err != nil {
				return err
			}
			responses[idx] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return zero, err
	}
	return b.handler.Process(responses)
}
