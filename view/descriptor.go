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

package view

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/dvx/store"
	uref "dirpx.dev/dvx/utils/reflect"
)

var (
	// ErrNotStruct is returned (via panic at wrap time) when a declared
	// view type is not a struct shape.
	ErrNotStruct = errors.New("dvx(view): view type must be a struct")
)

// field is one declared accessor/builder slot of a view shape.
type field struct {
	// name is the Go field name, the accessor name used by Get/Assoc.
	name string
	// key is the resolved field identifier in the backing store.
	key store.Keyword
	// typ is the declared type driving conversion.
	typ reflect.Type
	// primitive marks declared types that cannot represent absence.
	primitive bool
	// index is the field's position in the shape struct.
	index int
}

// descriptor is the dispatch table of a declared view type, built once
// per type from its static field signatures.
type descriptor struct {
	typ    reflect.Type
	fields []*field
	byName map[string]*field
}

// descCache caches descriptors by declared view type for the process
// lifetime. Descriptors are immutable once published.
var descCache sync.Map // key: reflect.Type, val: *descriptor

// describe resolves the descriptor for t, building and caching it on
// first use. It panics with ErrNotStruct for non-struct shapes: an
// invalid declared type is a programming error, not a data error.
func describe(t reflect.Type) *descriptor {
	if v, ok := descCache.Load(t); ok {
		return v.(*descriptor)
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Errorf("%w: %s", ErrNotStruct, t))
	}

	d := &descriptor{
		typ:    t,
		byName: make(map[string]*field, t.NumField()),
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		key, ok := uref.FieldKey(sf)
		if !ok {
			continue
		}
		f := &field{
			name:      sf.Name,
			key:       store.Keyword(key),
			typ:       sf.Type,
			primitive: uref.IsPrimitive(sf.Type),
			index:     i,
		}
		d.fields = append(d.fields, f)
		d.byName[f.name] = f
	}

	actual, _ := descCache.LoadOrStore(t, d)
	return actual.(*descriptor)
}
