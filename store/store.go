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

// Package store provides the immutable associative structure that backs
// every typed view: a persistent hash map with structural sharing, plus
// the persistent list and set counterparts used for collection values.
//
// A Store maps field identifiers (usually Keyword keys) to values. All
// update operations return a new Store and leave the receiver untouched,
// so Store values may be freely shared across goroutines without
// synchronization. Equality and hashing are structural: two stores are
// equal iff their key/value pairs are equal, regardless of how they were
// built.
//
// A Store may carry a view-type annotation (see WithViewType). The
// annotation is metadata used by the serializer to recover a reader tag;
// it never participates in equality or hashing.
package store

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
)

var (
	// ErrKeyConflict is returned by AssocEx when the key is already present.
	ErrKeyConflict = errors.New("dvx(store): key already present")
)

// emptyMap is the shared backing for zero-value and empty stores.
var emptyMap = immutable.NewMap[any, any](valueHasher{})

// Store is an immutable key/value structure with structural equality.
// The zero value is an empty store.
type Store struct {
	m *immutable.Map[any, any]
	// vtype is the declared view type annotation; excluded from equality.
	vtype reflect.Type
}

// Empty returns the empty store.
func Empty() Store {
	return Store{m: emptyMap}
}

// backing normalizes the zero value to the shared empty map.
func (s Store) backing() *immutable.Map[any, any] {
	if s.m == nil {
		return emptyMap
	}
	return s.m
}

// Get returns the value for key, if present.
func (s Store) Get(key any) (any, bool) {
	return s.backing().Get(key)
}

// Assoc returns a new store with key bound to value.
func (s Store) Assoc(key, value any) Store {
	return Store{m: s.backing().Set(key, value), vtype: s.vtype}
}

// AssocEx returns a new store with key bound to value, failing with
// ErrKeyConflict if key is already present.
func (s Store) AssocEx(key, value any) (Store, error) {
	if _, ok := s.backing().Get(key); ok {
		return Store{}, ErrKeyConflict
	}
	return s.Assoc(key, value), nil
}

// Without returns a new store with key removed. Removing an absent key
// is a no-op.
func (s Store) Without(key any) Store {
	return Store{m: s.backing().Delete(key), vtype: s.vtype}
}

// Len returns the number of entries.
func (s Store) Len() int {
	return s.backing().Len()
}

// Range calls fn for every entry until fn returns false.
// Iteration order is unspecified; use Entries for a canonical order.
func (s Store) Range(fn func(key, value any) bool) {
	itr := s.backing().Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		if !fn(k, v) {
			return
		}
	}
}

// Entry is a single key/value pair of a store snapshot.
type Entry struct {
	Key   any
	Value any
}

// Entries returns the store's entries sorted by the canonical textual
// form of their keys. This is the iteration order used by printers so
// that equal stores render identically.
func (s Store) Entries() []Entry {
	entries := make([]Entry, 0, s.Len())
	s.Range(func(k, v any) bool {
		entries = append(entries, Entry{Key: k, Value: v})
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		return writeString(entries[i].Key) < writeString(entries[j].Key)
	})
	return entries
}

// Equal reports structural equality with o. The view-type annotation is
// ignored.
func (s Store) Equal(o Store) bool {
	if s.Len() != o.Len() {
		return false
	}
	eq := true
	s.Range(func(k, v any) bool {
		ov, ok := o.Get(k)
		if !ok || !valueEqual(v, ov) {
			eq = false
		}
		return eq
	})
	return eq
}

// Hash returns the structural hash of the store. Equal stores hash
// identically; the view-type annotation is ignored.
func (s Store) Hash() uint64 {
	var h uint64
	s.Range(func(k, v any) bool {
		// Commutative combine keeps the hash independent of iteration order.
		h += valueHash(k)*0x9e3779b97f4a7c15 ^ valueHash(v)
		return true
	})
	return h
}

// WithViewType returns a copy of the store annotated with the declared
// view type t. The annotation is metadata for the serializer; it does
// not affect Get, Equal, or Hash.
func (s Store) WithViewType(t reflect.Type) Store {
	return Store{m: s.backing(), vtype: t}
}

// ViewType returns the view-type annotation, or nil if unannotated.
func (s Store) ViewType() reflect.Type {
	return s.vtype
}

// String renders the store's default textual form: a canonical map
// literal with entries in Entries order.
func (s Store) String() string {
	var sb strings.Builder
	writeValue(&sb, s)
	return sb.String()
}
