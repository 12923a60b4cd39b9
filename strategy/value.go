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

package strategy

import (
	"dirpx.dev/dvx/apis"
	"dirpx.dev/dvx/edn"
	"dirpx.dev/dvx/view"
)

// NewValueStrategy creates the terminal apis.WriteStrategy. It claims
// every value and renders it with the canonical printer, so a chain
// ending in it never reports an unhandled value.
func NewValueStrategy(writers apis.WriterLookup) apis.WriteStrategy {
	return valueStrategy{writers: writers}
}

type valueStrategy struct {
	writers apis.WriterLookup
}

var _ apis.WriteStrategy = valueStrategy{}

// TryWrite renders v canonically, consulting writers for embedded
// external values.
func (s valueStrategy) TryWrite(v any, cfg apis.Config) (string, bool, error) {
	nv, err := view.Normalize(v, cfg)
	if err != nil {
		return "", true, err
	}
	text, err := edn.Print(nv, edn.Options{Writers: s.writers, MaxDepth: cfg.MaxDepth})
	if err != nil {
		return "", true, err
	}
	return text, true, nil
}
