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

package edn_test

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"dirpx.dev/dvx/apis"
	"dirpx.dev/dvx/edn"
	"dirpx.dev/dvx/store"
)

// tagTable is a minimal apis.TagLookup for reader tests.
type tagTable map[string]apis.Translator

func (t tagTable) LookupTag(tag string) (apis.Translator, bool) {
	tr, ok := t[tag]
	return tr, ok
}

type celsius float64

type celsiusTranslator struct{}

func (celsiusTranslator) Tag() string { return "celsius" }

func (celsiusTranslator) Read(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return celsius(x), nil
	case int64:
		return celsius(x), nil
	}
	return nil, errors.New("celsius expects a number")
}

func (celsiusTranslator) Write(v any) (string, error) {
	return store.FormatFloat(float64(v.(celsius))), nil
}

func TestRead_Scalars(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"nil", nil},
		{"true", true},
		{"false", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"1.5", float64(1.5)},
		{"2e3", float64(2000)},
		{"2.5M", float64(2.5)},
		{`"hi"`, "hi"},
		{`"a\nb"`, "a\nb"},
		{`"A"`, "A"},
		{`\a`, "a"},
		{`\newline`, "\n"},
		{":key", store.Keyword("key")},
		{"sym", store.Symbol("sym")},
	}
	for _, c := range cases {
		got, err := edn.Read(c.in, edn.Options{})
		if err != nil {
			t.Fatalf("Read(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Read(%q) = %v (%T), want %v (%T)", c.in, got, got, c.want, c.want)
		}
	}
}

func TestRead_BigIntegers(t *testing.T) {
	got, err := edn.Read("123N", edn.Options{})
	if err != nil {
		t.Fatalf("Read(123N): unexpected error: %v", err)
	}
	b, ok := got.(*big.Int)
	if !ok || b.Int64() != 123 {
		t.Fatalf("Read(123N) = %v (%T), want *big.Int 123", got, got)
	}

	// out of int64 range without a marker still promotes
	huge := "123456789012345678901234567890"
	got, err = edn.Read(huge, edn.Options{})
	if err != nil {
		t.Fatalf("Read(%s): unexpected error: %v", huge, err)
	}
	b, ok = got.(*big.Int)
	if !ok || b.String() != huge {
		t.Fatalf("Read(%s) = %v (%T)", huge, got, got)
	}
}

func TestRead_Collections(t *testing.T) {
	got, err := edn.Read("{:x 1, :y 2}", edn.Options{})
	if err != nil {
		t.Fatalf("Read(map): unexpected error: %v", err)
	}
	s, ok := got.(store.Store)
	if !ok {
		t.Fatalf("Read(map) = %T, want store.Store", got)
	}
	if v, _ := s.Get(store.Keyword("x")); v != int64(1) {
		t.Fatalf("map[:x] = %v, want 1", v)
	}
	if s.Len() != 2 {
		t.Fatalf("map Len() = %d, want 2", s.Len())
	}

	got, err = edn.Read("[1 2 3]", edn.Options{})
	if err != nil {
		t.Fatalf("Read(vector): unexpected error: %v", err)
	}
	l, ok := got.(store.List)
	if !ok || !l.Equal(store.NewList(int64(1), int64(2), int64(3))) {
		t.Fatalf("Read(vector) = %v (%T)", got, got)
	}

	got, err = edn.Read("(1 2)", edn.Options{})
	if err != nil {
		t.Fatalf("Read(list): unexpected error: %v", err)
	}
	if l, ok := got.(store.List); !ok || l.Len() != 2 {
		t.Fatalf("Read(list) = %v (%T)", got, got)
	}

	got, err = edn.Read("#{1 2}", edn.Options{})
	if err != nil {
		t.Fatalf("Read(set): unexpected error: %v", err)
	}
	set, ok := got.(store.Set)
	if !ok || !set.Has(int64(1)) || !set.Has(int64(2)) || set.Len() != 2 {
		t.Fatalf("Read(set) = %v (%T)", got, got)
	}
}

func TestRead_NestedVectors(t *testing.T) {
	got, err := edn.Read("[[1 2] [3]]", edn.Options{})
	if err != nil {
		t.Fatalf("Read: unexpected error: %v", err)
	}
	want := store.NewList(
		store.NewList(int64(1), int64(2)),
		store.NewList(int64(3)),
	)
	l, ok := got.(store.List)
	if !ok || !l.Equal(want) {
		t.Fatalf("Read([[1 2] [3]]) = %v, want %v", got, want)
	}
}

func TestRead_CommentsAndDiscard(t *testing.T) {
	got, err := edn.Read("; header\n{:a 1} ; trailing", edn.Options{})
	if err != nil {
		t.Fatalf("Read with comments: unexpected error: %v", err)
	}
	if s, ok := got.(store.Store); !ok || s.Len() != 1 {
		t.Fatalf("Read with comments = %v (%T)", got, got)
	}

	got, err = edn.Read("#_ 99 [1]", edn.Options{})
	if err != nil {
		t.Fatalf("Read with discard: unexpected error: %v", err)
	}
	if l, ok := got.(store.List); !ok || l.Len() != 1 || l.Get(0) != int64(1) {
		t.Fatalf("Read with discard = %v (%T)", got, got)
	}
}

func TestRead_TaggedLiteral(t *testing.T) {
	tags := tagTable{"celsius": celsiusTranslator{}}

	got, err := edn.Read("#celsius 21.5", edn.Options{Tags: tags})
	if err != nil {
		t.Fatalf("Read(#celsius): unexpected error: %v", err)
	}
	if got != celsius(21.5) {
		t.Fatalf("Read(#celsius 21.5) = %v (%T), want celsius(21.5)", got, got)
	}

	// tagged literals nest inside collections
	got, err = edn.Read("{:temp #celsius 3}", edn.Options{Tags: tags})
	if err != nil {
		t.Fatalf("Read(nested tag): unexpected error: %v", err)
	}
	s := got.(store.Store)
	if v, _ := s.Get(store.Keyword("temp")); v != celsius(3) {
		t.Fatalf("map[:temp] = %v (%T), want celsius(3)", v, v)
	}
}

func TestRead_UnknownTag(t *testing.T) {
	if _, err := edn.Read("#Nope{:a 1}", edn.Options{}); !errors.Is(err, edn.ErrUnknownTag) {
		t.Fatalf("want ErrUnknownTag, got %v", err)
	}

	// format tooling keeps unknown tags intact
	got, err := edn.Read("#Nope{:a 1}", edn.Options{PreserveUnknown: true})
	if err != nil {
		t.Fatalf("Read preserve: unexpected error: %v", err)
	}
	tagged, ok := got.(edn.Tagged)
	if !ok || tagged.Name != "Nope" {
		t.Fatalf("Read preserve = %v (%T), want Tagged{Nope ...}", got, got)
	}
	if s, ok := tagged.Value.(store.Store); !ok || s.Len() != 1 {
		t.Fatalf("Tagged.Value = %v (%T), want one-entry store", tagged.Value, tagged.Value)
	}
}

func TestRead_SyntaxErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"{:a",
		"{:a 1",
		"{:a 1 :b}",
		"[1 2",
		`"open`,
		"]",
		"1x",
	} {
		if _, err := edn.Read(in, edn.Options{}); !errors.Is(err, edn.ErrSyntax) {
			t.Fatalf("Read(%q): want ErrSyntax, got %v", in, err)
		}
	}
}

func TestRead_DepthLimit(t *testing.T) {
	deep := strings.Repeat("[", 40) + strings.Repeat("]", 40)
	if _, err := edn.Read(deep, edn.Options{MaxDepth: 8}); !errors.Is(err, edn.ErrDepth) {
		t.Fatalf("want ErrDepth, got %v", err)
	}
	// within the limit the same shape parses fine
	if _, err := edn.Read("[[[[1]]]]", edn.Options{MaxDepth: 8}); err != nil {
		t.Fatalf("shallow nesting: unexpected error: %v", err)
	}
}
