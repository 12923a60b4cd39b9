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

// Package view materializes typed, immutable views over persistent
// stores. A View[T] answers the accessors and builders declared by the
// shape struct T without any generated code: a dispatch table derived
// once from T's static field signatures routes every call to store
// operations through the type-directed converter.
package view

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"dirpx.dev/dvx/apis"
	"dirpx.dev/dvx/config"
	"dirpx.dev/dvx/edn"
	"dirpx.dev/dvx/store"
)

var (
	// ErrMissingPrimitiveField is returned when an absent field is read
	// through a declared type that cannot represent absence.
	ErrMissingPrimitiveField = errors.New("dvx(view): primitive field absent")
	// ErrMissingField is returned for absent fields when running with a
	// strict (non-lenient) configuration.
	ErrMissingField = errors.New("dvx(view): field absent")
)

// View is a typed, immutable view over a persistent store. The zero
// value is a view over the empty store with the default configuration.
// Two views of the same declared type are interchangeable values iff
// their backing stores are equal; identity is never significant.
type View[T any] struct {
	s    store.Store
	desc *descriptor
	cfg  apis.Config
	reg  apis.WriterLookup
}

// typeFor returns the reflect.Type of the type parameter.
func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Wrap exposes s through the shape declared by T. It performs no
// validation of the store's contents; it panics only if T is not a
// struct shape.
func Wrap[T any](s store.Store, cfg apis.Config, reg apis.WriterLookup) View[T] {
	d := describe(typeFor[T]())
	return View[T]{s: s.WithViewType(d.typ), desc: d, cfg: cfg, reg: reg}
}

// New returns a view of T over the empty store. All fields are absent.
func New[T any](cfg apis.Config, reg apis.WriterLookup) View[T] {
	return Wrap[T](store.Empty(), cfg, reg)
}

// self normalizes the zero value to a fully initialized view.
func (v View[T]) self() View[T] {
	if v.desc == nil {
		v.desc = describe(typeFor[T]())
		v.s = v.s.WithViewType(v.desc.typ)
		v.cfg = config.DefaultConfig()
	}
	return v
}

// key resolves an accessor name to its field identifier: the declared
// field's key when the name is declared, the name itself otherwise.
func (v View[T]) key(name string) store.Keyword {
	if f, ok := v.desc.byName[name]; ok {
		return f.key
	}
	return store.Keyword(name)
}

// Get reads the field named by the declared accessor name and converts
// it via the declared field type. An absent non-primitive field reads
// as nil under the default lenient configuration and fails under a
// strict one; an absent primitive field always fails.
func (v View[T]) Get(name string) (any, error) {
	v = v.self()
	f := v.desc.byName[name]

	raw, ok := v.s.Get(v.key(name))
	if !ok {
		if f != nil && f.primitive {
			return nil, fmt.Errorf("%w: :%s", ErrMissingPrimitiveField, f.key)
		}
		if !v.cfg.Lenient {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
		return nil, nil
	}
	if f == nil {
		return raw, nil
	}
	return toHostValue(raw, f.typ, v.cfg, v.reg, 0)
}

// Get reads a field as type V, converting toward V rather than the
// declared field type. This allows reading a nested view field either
// as View[U] or as its materialized element type.
func Get[V any, T any](v View[T], name string) (V, error) {
	var zero V
	vv := v.self()
	target := typeFor[V]()

	raw, ok := vv.s.Get(vv.key(name))
	if !ok {
		f := vv.desc.byName[name]
		switch {
		case f != nil && f.primitive:
			return zero, fmt.Errorf("%w: :%s", ErrMissingPrimitiveField, f.key)
		case !vv.cfg.Lenient:
			return zero, fmt.Errorf("%w: %s", ErrMissingField, name)
		default:
			return zero, nil
		}
	}

	hv, err := toHostValue(raw, target, vv.cfg, vv.reg, 0)
	if err != nil {
		return zero, err
	}
	if hv == nil {
		return zero, nil
	}
	out, ok := hv.(V)
	if !ok {
		return zero, fmt.Errorf("%w: field %s holds %T, want %s", ErrConversion, name, hv, target)
	}
	return out, nil
}

// Assoc returns a new view with the field bound to value, converted
// into the store's value domain. The receiver is unchanged.
func (v View[T]) Assoc(name string, value any) (View[T], error) {
	v = v.self()
	sv, err := toStoreValue(value, v.cfg, 0)
	if err != nil {
		return View[T]{}, err
	}
	v.s = v.s.Assoc(v.key(name), sv)
	return v, nil
}

// AssocEx is Assoc with construct-once semantics: it fails with
// store.ErrKeyConflict if the field is already present.
func (v View[T]) AssocEx(name string, value any) (View[T], error) {
	v = v.self()
	sv, err := toStoreValue(value, v.cfg, 0)
	if err != nil {
		return View[T]{}, err
	}
	s, err := v.s.AssocEx(v.key(name), sv)
	if err != nil {
		return View[T]{}, fmt.Errorf("%w: :%s", err, v.key(name))
	}
	v.s = s
	return v, nil
}

// Without returns a new view with the field removed. Removing an
// absent field is a no-op.
func (v View[T]) Without(name string) View[T] {
	v = v.self()
	v.s = v.s.Without(v.key(name))
	return v
}

// Store returns the backing persistent store, annotated with the
// declared view type.
func (v View[T]) Store() store.Store {
	return v.self().s
}

// ViewType returns the declared view type T.
func (v View[T]) ViewType() reflect.Type {
	return typeFor[T]()
}

// wrapStore implements the converter's reflective construction hook.
func (v View[T]) wrapStore(s store.Store, cfg apis.Config, reg apis.WriterLookup) any {
	return Wrap[T](s, cfg, reg)
}

// Equal reports structural equality of the backing stores. Proxy
// identity is not significant.
func (v View[T]) Equal(o View[T]) bool {
	return v.self().s.Equal(o.self().s)
}

// Hash returns the backing store's structural hash.
func (v View[T]) Hash() uint64 {
	return v.self().s.Hash()
}

// String renders the backing store's default textual form.
func (v View[T]) String() string {
	return v.self().s.String()
}

// PrettyPrint writes an indented, human-readable rendering of the
// backing store to w, consulting the registered writers for embedded
// external values.
func (v View[T]) PrettyPrint(w io.Writer) error {
	v = v.self()
	return edn.PrettyPrint(w, v.s, edn.Options{Writers: v.reg, Indent: v.cfg.Indent})
}

// FormattedString is PrettyPrint into a string.
func (v View[T]) FormattedString() (string, error) {
	v = v.self()
	return edn.FormatString(v.s, edn.Options{Writers: v.reg, Indent: v.cfg.Indent})
}

// StoreFor converts a shape struct value into its store
// representation, the inverse of Value. Every declared field is
// included; the result is annotated with the struct's type.
func StoreFor(v any, cfg apis.Config) (store.Store, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Struct {
		return store.Store{}, fmt.Errorf("%w: %T", ErrNotStruct, v)
	}
	d := describe(rv.Type())
	s := store.Empty()
	for _, f := range d.fields {
		sv, err := toStoreValue(rv.Field(f.index).Interface(), cfg, 0)
		if err != nil {
			return store.Store{}, fmt.Errorf("field :%s: %w", f.key, err)
		}
		s = s.Assoc(f.key, sv)
	}
	return s.WithViewType(d.typ), nil
}

// Value materializes the shape struct T from the view: every present
// declared field is converted via its declared type, absent fields keep
// their zero values. Methods declared on T thus see accessor-visible
// data.
func (v View[T]) Value() (T, error) {
	v = v.self()
	var out T
	rv := reflect.ValueOf(&out).Elem()
	for _, f := range v.desc.fields {
		raw, ok := v.s.Get(f.key)
		if !ok {
			continue
		}
		hv, err := toHostValue(raw, f.typ, v.cfg, v.reg, 0)
		if err != nil {
			return out, fmt.Errorf("field :%s: %w", f.key, err)
		}
		if hv == nil {
			continue
		}
		fv := reflect.ValueOf(hv)
		if !fv.Type().AssignableTo(f.typ) {
			return out, fmt.Errorf("%w: field :%s holds %T, want %s", ErrConversion, f.key, hv, f.typ)
		}
		rv.Field(f.index).Set(fv)
	}
	return out, nil
}
