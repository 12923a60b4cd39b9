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

// Package strategy contains the write strategies composed into the
// default serializer. Each strategy claims a slice of the host value
// domain; the chain order decides precedence.
package strategy

import (
	"dirpx.dev/dvx/apis"
	"dirpx.dev/dvx/edn"
	"dirpx.dev/dvx/store"
)

// NewViewStrategy creates an apis.WriteStrategy that handles typed
// views and bare stores by printing their persistent structure.
func NewViewStrategy(writers apis.WriterLookup) apis.WriteStrategy {
	return viewStrategy{writers: writers}
}

type viewStrategy struct {
	writers apis.WriterLookup
}

var _ apis.WriteStrategy = viewStrategy{}

// TryWrite handles views and stores; everything else passes through.
func (s viewStrategy) TryWrite(v any, cfg apis.Config) (string, bool, error) {
	var st store.Store
	switch x := v.(type) {
	case apis.AnyView:
		st = x.Store()
	case store.Store:
		st = x
	default:
		return "", false, nil
	}
	text, err := edn.Print(st, edn.Options{Writers: s.writers, MaxDepth: cfg.MaxDepth})
	if err != nil {
		return "", true, err
	}
	return text, true, nil
}
