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
	"fmt"
	"reflect"

	"dirpx.dev/dvx/apis"
)

// NewTranslatorStrategy creates an apis.WriteStrategy that consults a
// registry for the value's type (reflection-free custom encoding).
func NewTranslatorStrategy(reg apis.WriterLookup) apis.WriteStrategy {
	return &translatorStrategy{reg: reg}
}

type translatorStrategy struct {
	reg apis.WriterLookup
}

var _ apis.WriteStrategy = (*translatorStrategy)(nil)

// TryWrite emits the value through its registered translator as a
// tagged literal.
func (s *translatorStrategy) TryWrite(v any, _ apis.Config) (string, bool, error) {
	if v == nil || s.reg == nil {
		return "", false, nil
	}
	tr, ok := s.reg.LookupType(reflect.TypeOf(v))
	if !ok {
		return "", false, nil
	}
	body, err := tr.Write(v)
	if err != nil {
		return "", true, fmt.Errorf("dvx(strategy): translator #%s: %w", tr.Tag(), err)
	}
	// Composite bodies attach directly to the tag; scalars take a space.
	sep := " "
	if len(body) > 0 {
		switch body[0] {
		case '{', '[', '(', '#':
			sep = ""
		}
	}
	return "#" + tr.Tag() + sep + body, true, nil
}
