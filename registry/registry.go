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

// Package registry provides the copy-on-write translator registry. All
// lookups are lock-free reads of an immutable snapshot; every mutation
// clones the snapshot under a mutex and publishes the clone atomically,
// so readers never observe a partially applied registration.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"dirpx.dev/dvx/apis"
)

var (
	// ErrNilType is returned when a registration names no type.
	ErrNilType = errors.New("dvx(registry): nil type")
	// ErrNilTranslator is returned when a registration carries no translator.
	ErrNilTranslator = errors.New("dvx(registry): nil translator")
	// ErrEmptyTag is returned when a translator reports an empty tag.
	ErrEmptyTag = errors.New("dvx(registry): empty tag")
	// ErrConflictingRegistration is returned when a type is already
	// bound to a different translator.
	ErrConflictingRegistration = errors.New("dvx(registry): type already registered")
	// ErrTagConflict is returned when a tag is already claimed by a
	// translator for a different type.
	ErrTagConflict = errors.New("dvx(registry): tag already registered")
)

// tables is one immutable registry snapshot. Both indexes are
// consistent with each other in every published snapshot.
type tables struct {
	byType  map[reflect.Type]apis.Translator
	byTag   map[string]apis.Translator
	tagOf   map[string]reflect.Type
	records map[reflect.Type]struct{}
}

func emptyTables() *tables {
	return &tables{
		byType:  map[reflect.Type]apis.Translator{},
		byTag:   map[string]apis.Translator{},
		tagOf:   map[string]reflect.Type{},
		records: map[reflect.Type]struct{}{},
	}
}

func (t *tables) clone() *tables {
	return &tables{
		byType:  maps.Clone(t.byType),
		byTag:   maps.Clone(t.byTag),
		tagOf:   maps.Clone(t.tagOf),
		records: maps.Clone(t.records),
	}
}

// Registry is the default apis.Registry implementation.
type Registry struct {
	mu sync.Mutex
	st atomic.Pointer[tables]
}

// New returns an empty registry.
func New() *Registry {
	r := &Registry{}
	r.st.Store(emptyTables())
	return r
}

func (r *Registry) snap() *tables {
	if t := r.st.Load(); t != nil {
		return t
	}
	return emptyTables()
}

// Register binds t to tr's tag. Re-registering the same pair is a
// no-op; a different translator for an already bound type or a tag
// claimed by another type fails without modifying the registry.
func (r *Registry) Register(t reflect.Type, tr apis.Translator) error {
	return r.register(t, tr, false)
}

// RegisterRecord is Register for record types: values of t serialize
// as tagged maps and deserialize back through tr.
func (r *Registry) RegisterRecord(t reflect.Type, tr apis.Translator) error {
	return r.register(t, tr, true)
}

func (r *Registry) register(t reflect.Type, tr apis.Translator, record bool) error {
	if t == nil {
		return ErrNilType
	}
	if tr == nil {
		return fmt.Errorf("%w: %s", ErrNilTranslator, t)
	}
	tag := tr.Tag()
	if tag == "" {
		return fmt.Errorf("%w: %s", ErrEmptyTag, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap()
	if prev, ok := cur.byType[t]; ok {
		if sameTranslator(prev, tr) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrConflictingRegistration, t)
	}
	if owner, ok := cur.tagOf[tag]; ok && owner != t {
		return fmt.Errorf("%w: #%s claimed by %s", ErrTagConflict, tag, owner)
	}

	next := cur.clone()
	next.byType[t] = tr
	next.byTag[tag] = tr
	next.tagOf[tag] = t
	if record {
		next.records[t] = struct{}{}
	}
	r.st.Store(next)
	return nil
}

// sameTranslator reports whether a and b are the same registration.
// Translators of an uncomparable dynamic type (func fields) never
// match; re-registering one conflicts rather than panicking.
func sameTranslator(a, b apis.Translator) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Deregister removes the binding for t. Removing an unbound type is a
// no-op.
func (r *Registry) Deregister(t reflect.Type) {
	if t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap()
	tr, ok := cur.byType[t]
	if !ok {
		return
	}
	next := cur.clone()
	delete(next.byType, t)
	delete(next.byTag, tr.Tag())
	delete(next.tagOf, tr.Tag())
	delete(next.records, t)
	r.st.Store(next)
}

// LookupType returns the translator bound to t, if any.
func (r *Registry) LookupType(t reflect.Type) (apis.Translator, bool) {
	tr, ok := r.snap().byType[t]
	return tr, ok
}

// LookupTag returns the translator claiming tag, if any.
func (r *Registry) LookupTag(tag string) (apis.Translator, bool) {
	tr, ok := r.snap().byTag[tag]
	return tr, ok
}

// IsRecord reports whether t was registered as a record type.
func (r *Registry) IsRecord(t reflect.Type) bool {
	_, ok := r.snap().records[t]
	return ok
}

// LookupRecord returns the translator for t when t was registered as a
// record type. Both facts come from the same snapshot.
func (r *Registry) LookupRecord(t reflect.Type) (apis.Translator, bool) {
	cur := r.snap()
	if _, ok := cur.records[t]; !ok {
		return nil, false
	}
	tr, ok := cur.byType[t]
	return tr, ok
}

// Entries returns all bindings in the current snapshot, ordered by
// tag. The slice is owned by the caller.
func (r *Registry) Entries() []apis.Entry {
	cur := r.snap()
	out := make([]apis.Entry, 0, len(cur.byType))
	for t, tr := range cur.byType {
		_, rec := cur.records[t]
		out = append(out, apis.Entry{Type: t, Translator: tr, Record: rec})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Translator.Tag() < out[j].Translator.Tag()
	})
	return out
}

// Count returns the number of bindings in the current snapshot.
func (r *Registry) Count() int {
	return len(r.snap().byType)
}

// Reset drops all bindings.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.Store(emptyTables())
}
