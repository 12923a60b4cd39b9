/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package serializer composes write strategies into an apis.Serializer.
package serializer

import (
	"errors"

	"dirpx.dev/dvx/apis"
)

// ErrUnhandled is returned when no strategy in the chain claims a
// value. A chain ending in the value strategy never produces it.
var ErrUnhandled = errors.New("dvx(serializer): no strategy handled value")

// New constructs an apis.Serializer that tries the given strategies in
// order. Nil strategies are ignored. The returned serializer is safe
// for concurrent use provided the strategies themselves are.
func New(strategies ...apis.WriteStrategy) apis.Serializer {
	out := make([]apis.WriteStrategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return chain{strats: out}
}

// chain is an immutable, order-preserving serializer over a set of
// strategies.
type chain struct {
	strats []apis.WriteStrategy
}

// Serialize runs strategies in order until one handles the value.
func (c chain) Serialize(v any, cfg apis.Config) (string, error) {
	for _, s := range c.strats {
		text, handled, err := s.TryWrite(v, cfg)
		if err != nil {
			return "", err
		}
		if handled {
			return text, nil
		}
	}
	return "", ErrUnhandled
}
