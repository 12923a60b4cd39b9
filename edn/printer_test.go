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
	"reflect"
	"testing"

	"dirpx.dev/dvx/edn"
	"dirpx.dev/dvx/registry"
	"dirpx.dev/dvx/store"
)

func TestPrint_Scalars(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{true, "true"},
		{int64(42), "42"},
		{float64(1), "1.0"},
		{float64(0.5), "0.5"},
		{big.NewInt(123), "123N"},
		{"hi", `"hi"`},
		{"a\nb", `"a\nb"`},
		{store.Keyword("k"), ":k"},
		{store.Symbol("s"), "s"},
	}
	for _, c := range cases {
		got, err := edn.Print(c.in, edn.Options{})
		if err != nil {
			t.Fatalf("Print(%v): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Print(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPrint_MapIsCanonical(t *testing.T) {
	a := store.Empty().
		Assoc(store.Keyword("y"), int64(2)).
		Assoc(store.Keyword("x"), int64(1))
	b := store.Empty().
		Assoc(store.Keyword("x"), int64(1)).
		Assoc(store.Keyword("y"), int64(2))

	pa, err := edn.Print(a, edn.Options{})
	if err != nil {
		t.Fatalf("Print(a): unexpected error: %v", err)
	}
	pb, err := edn.Print(b, edn.Options{})
	if err != nil {
		t.Fatalf("Print(b): unexpected error: %v", err)
	}
	if pa != pb {
		t.Fatalf("equal stores print differently: %q vs %q", pa, pb)
	}
	if pa != "{:x 1, :y 2}" {
		t.Fatalf("Print = %q, want {:x 1, :y 2}", pa)
	}
}

func TestPrint_Collections(t *testing.T) {
	l := store.NewList(store.NewList(int64(1), int64(2)), store.NewList(int64(3)))
	got, err := edn.Print(l, edn.Options{})
	if err != nil {
		t.Fatalf("Print(list): unexpected error: %v", err)
	}
	if got != "[[1 2] [3]]" {
		t.Fatalf("Print(list) = %q, want [[1 2] [3]]", got)
	}

	set := store.NewSet(int64(2), int64(1))
	got, err = edn.Print(set, edn.Options{})
	if err != nil {
		t.Fatalf("Print(set): unexpected error: %v", err)
	}
	if got != "#{1 2}" {
		t.Fatalf("Print(set) = %q, want #{1 2}", got)
	}
}

type pt struct {
	X int64 `edn:"x"`
	Y int64 `edn:"y"`
}

// ptTranslator marks pt as a record type for printer dispatch.
type ptTranslator struct{}

func (ptTranslator) Tag() string { return "Pt" }

func (ptTranslator) Read(v any) (any, error) {
	s, ok := v.(store.Store)
	if !ok {
		return nil, errors.New("Pt expects a map")
	}
	return s.WithViewType(reflect.TypeOf(pt{})), nil
}

func (ptTranslator) Write(v any) (string, error) {
	s, ok := v.(store.Store)
	if !ok {
		return "", errors.New("Pt expects a store")
	}
	return edn.Print(s.WithViewType(nil), edn.Options{})
}

func TestPrint_RecordStoreIsTagged(t *testing.T) {
	reg := registry.New()
	if err := reg.RegisterRecord(reflect.TypeOf(pt{}), ptTranslator{}); err != nil {
		t.Fatalf("RegisterRecord: unexpected error: %v", err)
	}

	s := store.Empty().
		Assoc(store.Keyword("x"), int64(1)).
		Assoc(store.Keyword("y"), int64(2)).
		WithViewType(reflect.TypeOf(pt{}))

	got, err := edn.Print(s, edn.Options{Writers: reg})
	if err != nil {
		t.Fatalf("Print: unexpected error: %v", err)
	}
	if got != "#Pt{:x 1, :y 2}" {
		t.Fatalf("Print = %q, want #Pt{:x 1, :y 2}", got)
	}

	// the tagged text parses back into an annotated store
	back, err := edn.Read(got, edn.Options{Tags: reg, Writers: reg})
	if err != nil {
		t.Fatalf("Read: unexpected error: %v", err)
	}
	rs, ok := back.(store.Store)
	if !ok {
		t.Fatalf("Read = %T, want store.Store", back)
	}
	if !rs.Equal(s) {
		t.Fatalf("round-trip store differs: %v vs %v", rs, s)
	}
	if rs.ViewType() != reflect.TypeOf(pt{}) {
		t.Fatalf("round-trip lost the view type annotation")
	}
}

func TestPrint_ExternalValue(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(reflect.TypeOf(celsius(0)), celsiusTranslator{}); err != nil {
		t.Fatalf("Register: unexpected error: %v", err)
	}

	got, err := edn.Print(celsius(21.5), edn.Options{Writers: reg})
	if err != nil {
		t.Fatalf("Print: unexpected error: %v", err)
	}
	if got != "#celsius 21.5" {
		t.Fatalf("Print = %q, want #celsius 21.5", got)
	}

	// embedded in a collection the writer still fires
	s := store.Empty().Assoc(store.Keyword("temp"), celsius(3))
	got, err = edn.Print(s, edn.Options{Writers: reg})
	if err != nil {
		t.Fatalf("Print(store): unexpected error: %v", err)
	}
	if got != "{:temp #celsius 3.0}" {
		t.Fatalf("Print(store) = %q, want {:temp #celsius 3.0}", got)
	}
}

func TestPrint_UnregisteredTypeFails(t *testing.T) {
	type opaque struct{ n int }
	if _, err := edn.Print(opaque{n: 1}, edn.Options{}); !errors.Is(err, edn.ErrUnregisteredType) {
		t.Fatalf("want ErrUnregisteredType, got %v", err)
	}
}

func TestFormatString_Pretty(t *testing.T) {
	s := store.Empty().
		Assoc(store.Keyword("a"), int64(1)).
		Assoc(store.Keyword("b"), int64(2))

	got, err := edn.FormatString(s, edn.Options{Indent: " "})
	if err != nil {
		t.Fatalf("FormatString: unexpected error: %v", err)
	}
	want := "{:a 1,\n :b 2}\n"
	if got != want {
		t.Fatalf("FormatString = %q, want %q", got, want)
	}

	// single-entry maps stay on one line
	one := store.Empty().Assoc(store.Keyword("a"), int64(1))
	got, err = edn.FormatString(one, edn.Options{})
	if err != nil {
		t.Fatalf("FormatString: unexpected error: %v", err)
	}
	if got != "{:a 1}\n" {
		t.Fatalf("FormatString = %q, want {:a 1}\\n", got)
	}
}
