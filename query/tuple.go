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
	"fmt"
)

type Pair[A, B any] struct {
	First  A
	Second B
}

type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// splitResponses hands each handler a contiguous slice of responses sized by
// its RequestAmount, in order
func splitResponses(responses []Response, amounts ...int) ([][]Response, error) {
	total := 0
	for _, amount := range amounts {
		total += amount
	}
	if len(responses) != total {
		return nil, &DecodeError{
			Err: fmt.Errorf("%w: expected %d responses, got %d", ErrMissingResponse, total, len(responses)),
		}
	}
	ret := make([][]Response, 0, len(amounts))
	offset := 0
	for _, amount := range amounts {
		ret = append(ret, responses[offset:offset+amount])
		offset += amount
	}
	return ret, nil
}

type tuple2Handler[A, B any] struct {
	first  Handler[A]
	second Handler[B]
}

// Tuple2 combines two handlers into one consuming both of their responses
func Tuple2[A, B any](first Handler[A], second Handler[B]) Handler[Pair[A, B]] {
	return tuple2Handler[A, B]{first: first, second: second}
}

func (h tuple2Handler[A, B]) RequestAmount() int {
	return h.first.RequestAmount() + h.second.RequestAmount()
}

func (h tuple2Handler[A, B]) Process(responses []Response) (Pair[A, B], error) {
	var ret Pair[A, B]
	parts, err := splitResponses(responses, h.first.RequestAmount(), h.second.RequestAmount())
	if err != nil {
		return ret, err
	}
	if ret.First, err = h.first.Process(parts[0]); err != nil {
		return ret, err
	}
	if ret.Second, err = h.second.Process(parts[1]); err != nil {
		return ret, err
	}
	return ret, nil
}

type tuple3Handler[A, B, C any] struct {
	first  Handler[A]
	second Handler[B]
	third  Handler[C]
}

// Tuple3 combines three handlers into one consuming all of their responses
func Tuple3[A, B, C any](first Handler[A], second Handler[B], third Handler[C]) Handler[Triple[A, B, C]] {
	return tuple3Handler[A, B, C]{first: first, second: second, third: third}
}

func (h tuple3Handler[A, B, C]) RequestAmount() int {
	return h.first.RequestAmount() + h.second.RequestAmount() + h.third.RequestAmount()
}

func (h tuple3Handler[A, B, C]) Process(responses []Response) (Triple[A, B, C], error) {
	var ret Triple[A, B, C]
	parts, err := splitResponses(
		responses,
		h.first.RequestAmount(),
		h.second.RequestAmount(),
		h.third.RequestAmount(),
	)
	if err != nil {
		return ret, err
	}
	if ret.First, err = h.first.Process(parts[0]); err != nil {
		return ret, err
	}
	if ret.Second, err = h.second.Process(parts[1]); err != nil {
		return ret, err
	}
	if ret.Third, err = h.third.Process(parts[2]); err != nil {
		return ret, err
	}
	return ret, nil
}
