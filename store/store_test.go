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

package store_test

import (
	"errors"
	"math/big"
	"reflect"
	"testing"

	"dirpx.dev/dvx/store"
)

func TestStore_AssocLeavesReceiverUntouched(t *testing.T) {
	base := store.Empty().Assoc(store.Keyword("x"), int64(1))
	derived := base.Assoc(store.Keyword("y"), int64(2))

	if base.Len() != 1 {
		t.Fatalf("base.Len() = %d, want 1", base.Len())
	}
	if derived.Len() != 2 {
		t.Fatalf("derived.Len() = %d, want 2", derived.Len())
	}
	if _, ok := base.Get(store.Keyword("y")); ok {
		t.Fatalf("base unexpectedly contains :y")
	}
}

func TestStore_AssocEx(t *testing.T) {
	s := store.Empty()
	s, err := s.AssocEx(store.Keyword("x"), int64(1))
	if err != nil {
		t.Fatalf("AssocEx(:x): unexpected error: %v", err)
	}
	// second insert of the same key must fail and leave the store alone
	if _, err := s.AssocEx(store.Keyword("x"), int64(2)); !errors.Is(err, store.ErrKeyConflict) {
		t.Fatalf("AssocEx(:x) again: want ErrKeyConflict, got %v", err)
	}
	if v, _ := s.Get(store.Keyword("x")); v != int64(1) {
		t.Fatalf("Get(:x) = %v, want 1", v)
	}
}

func TestStore_WithoutIsIdempotent(t *testing.T) {
	s := store.Empty().Assoc(store.Keyword("x"), int64(1))
	once := s.Without(store.Keyword("x"))
	twice := once.Without(store.Keyword("x"))

	if once.Len() != 0 {
		t.Fatalf("Len() after Without = %d, want 0", once.Len())
	}
	if !once.Equal(twice) {
		t.Fatalf("removing an absent key changed the store")
	}
	if !once.Equal(store.Empty()) {
		t.Fatalf("store with all keys removed is not Equal to Empty()")
	}
}

func TestStore_StructuralEqualityAndHash(t *testing.T) {
	a := store.Empty().
		Assoc(store.Keyword("x"), int64(1)).
		Assoc(store.Keyword("y"), int64(2))
	b := store.Empty().
		Assoc(store.Keyword("y"), int64(2)).
		Assoc(store.Keyword("x"), int64(1))

	if !a.Equal(b) {
		t.Fatalf("insertion order affected equality")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("insertion order affected hash: %x vs %x", a.Hash(), b.Hash())
	}

	c := b.Assoc(store.Keyword("x"), int64(3))
	if a.Equal(c) {
		t.Fatalf("stores with different values compare equal")
	}
}

func TestStore_NumericKeysCompareByValue(t *testing.T) {
	big24 := big.NewInt(24)
	s := store.Empty().Assoc(int64(24), "v")

	if v, ok := s.Get(big24); !ok || v != "v" {
		t.Fatalf("Get(24N) = (%v,%v), want (v,true)", v, ok)
	}
}

func TestStore_EntriesAreSorted(t *testing.T) {
	s := store.Empty().
		Assoc(store.Keyword("b"), int64(2)).
		Assoc(store.Keyword("a"), int64(1)).
		Assoc(store.Keyword("c"), int64(3))

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(Entries()) = %d, want 3", len(entries))
	}
	want := []store.Keyword{"a", "b", "c"}
	for i, e := range entries {
		if e.Key != want[i] {
			t.Fatalf("Entries()[%d].Key = %v, want %v", i, e.Key, want[i])
		}
	}
}

func TestStore_String(t *testing.T) {
	s := store.Empty().
		Assoc(store.Keyword("x"), int64(1)).
		Assoc(store.Keyword("y"), int64(2))
	if got := s.String(); got != "{:x 1, :y 2}" {
		t.Fatalf("String() = %q, want %q", got, "{:x 1, :y 2}")
	}
	if got := store.Empty().String(); got != "{}" {
		t.Fatalf("empty String() = %q, want {}", got)
	}
}

func TestStore_ZeroValueIsEmpty(t *testing.T) {
	var s store.Store
	if s.Len() != 0 {
		t.Fatalf("zero Store Len() = %d, want 0", s.Len())
	}
	if !s.Equal(store.Empty()) {
		t.Fatalf("zero Store is not Equal to Empty()")
	}
}

func TestStore_ViewTypeIgnoredByEquality(t *testing.T) {
	type marker struct{}
	a := store.Empty().Assoc(store.Keyword("x"), int64(1))
	b := a.WithViewType(nil)
	c := a.WithViewType(reflect.TypeOf(marker{}))

	if !a.Equal(c) || !b.Equal(c) {
		t.Fatalf("view type annotation affected equality")
	}
	if a.Hash() != c.Hash() {
		t.Fatalf("view type annotation affected hash")
	}
	if c.ViewType() != reflect.TypeOf(marker{}) {
		t.Fatalf("ViewType() = %v, want marker", c.ViewType())
	}
}

func TestList_AppendAndEquality(t *testing.T) {
	l := store.NewList(int64(1), int64(2))
	l2 := l.Append(int64(3))

	if l.Len() != 2 || l2.Len() != 3 {
		t.Fatalf("Len() = (%d,%d), want (2,3)", l.Len(), l2.Len())
	}
	if !l.Equal(store.NewList(int64(1), int64(2))) {
		t.Fatalf("structurally equal lists compare unequal")
	}
	if l.Equal(l2) {
		t.Fatalf("lists of different length compare equal")
	}
	if got := l2.String(); got != "[1 2 3]" {
		t.Fatalf("String() = %q, want [1 2 3]", got)
	}
}

func TestSet_Membership(t *testing.T) {
	s := store.NewSet(int64(1), "two", store.Keyword("three"))
	if !s.Has(int64(1)) || !s.Has("two") || !s.Has(store.Keyword("three")) {
		t.Fatalf("Has() missed an inserted member")
	}
	if s.Has(int64(2)) {
		t.Fatalf("Has(2) = true for absent member")
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	// adding an existing member is a no-op
	if !s.Add(int64(1)).Equal(s) {
		t.Fatalf("Add of existing member changed the set")
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		1:    "1.0",
		0.5:  "0.5",
		-2:   "-2.0",
		1e21: "1e+21",
	}
	for in, want := range cases {
		if got := store.FormatFloat(in); got != want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
