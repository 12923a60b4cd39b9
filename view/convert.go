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
	"math/big"
	"reflect"

	"dirpx.dev/dvx/apis"
	"dirpx.dev/dvx/store"
	uref "dirpx.dev/dvx/utils/reflect"
)

var (
	// ErrConversion is returned when a value cannot be converted
	// losslessly to its declared type, or has the wrong runtime shape.
	ErrConversion = errors.New("dvx(view): conversion failed")
	// ErrUnsupportedConversion is returned when a declared type lacks
	// the information needed to drive recursive conversion.
	ErrUnsupportedConversion = errors.New("dvx(view): declared type cannot drive conversion")
	// ErrDepth is returned when conversion recursion exceeds the
	// configured limit.
	ErrDepth = errors.New("dvx(view): conversion too deep")
)

// anyType is the declared type of a raw (uninterpreted) slot.
var anyType = reflect.TypeOf((*any)(nil)).Elem()

// wrapper is implemented by every View[T]; it lets the converter build
// a view of a declared type it only knows reflectively.
type wrapper interface {
	wrapStore(s store.Store, cfg apis.Config, reg apis.WriterLookup) any
}

var wrapperType = reflect.TypeOf((*wrapper)(nil)).Elem()

// Normalize converts a host value into the store's native value
// domain. It is the conversion applied by Assoc; exposing it lets the
// serializer normalize values that never pass through a view.
func Normalize(v any, cfg apis.Config) (any, error) {
	return toStoreValue(v, cfg, 0)
}

// toStoreValue converts a host value into the store's native value
// domain: numerics widen to the canonical representations, views are
// replaced by their annotated backing stores, and host collections
// convert element-wise into persistent counterparts. Everything else
// passes through unchanged. The conversion is pure and safe for
// concurrent use.
func toStoreValue(v any, cfg apis.Config, depth int) (any, error) {
	if depth > cfg.MaxDepth {
		return nil, ErrDepth
	}
	v = upconvert(v)

	switch x := v.(type) {
	case nil, bool, int64, float64, string, *big.Int,
		store.Keyword, store.Symbol, store.Store, store.List, store.Set:
		return v, nil
	case apis.AnyView:
		// The backing store already carries the view-type annotation.
		return x.Store(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		l := store.NewList()
		for i := 0; i < rv.Len(); i++ {
			e, err := toStoreValue(rv.Index(i).Interface(), cfg, depth+1)
			if err != nil {
				return nil, err
			}
			l = l.Append(e)
		}
		return l, nil
	case reflect.Map:
		if uref.IsSet(rv.Type()) {
			set := store.NewSet()
			for _, k := range rv.MapKeys() {
				e, err := toStoreValue(k.Interface(), cfg, depth+1)
				if err != nil {
					return nil, err
				}
				set = set.Add(e)
			}
			return set, nil
		}
		s := store.Empty()
		for _, k := range rv.MapKeys() {
			sk, err := toStoreValue(k.Interface(), cfg, depth+1)
			if err != nil {
				return nil, err
			}
			sv, err := toStoreValue(rv.MapIndex(k).Interface(), cfg, depth+1)
			if err != nil {
				return nil, err
			}
			s = s.Assoc(sk, sv)
		}
		return s, nil
	default:
		return v, nil
	}
}

// toHostValue converts a store-native value toward the declared type t.
// The declared type, not the runtime type, drives the conversion:
// numerics narrow losslessly, view types wrap store fragments lazily,
// and parameterized collections recurse element-wise on their type
// arguments. A declared `any` passes the value through uninterpreted; a
// non-view interface type cannot determine the target shape and fails.
func toHostValue(v any, t reflect.Type, cfg apis.Config, reg apis.WriterLookup, depth int) (any, error) {
	if depth > cfg.MaxDepth {
		return nil, ErrDepth
	}
	if t == anyType {
		return v, nil
	}
	if v == nil {
		// A stored nil reads back as the null-equivalent wherever the
		// declared type can represent it.
		if uref.IsPrimitive(t) {
			return nil, fmt.Errorf("%w: nil does not fit %s", ErrConversion, t)
		}
		return nil, nil
	}
	if uref.IsNumeric(t) {
		return downconvert(t, v)
	}
	if t.Kind() == reflect.Struct && t.Implements(wrapperType) {
		s, ok := v.(store.Store)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a store (declared %s)", ErrConversion, v, t)
		}
		return reflect.Zero(t).Interface().(wrapper).wrapStore(s, cfg, reg), nil
	}

	switch t.Kind() {
	case reflect.Interface:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConversion, t)
	case reflect.Slice:
		l, ok := v.(store.List)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a sequence (declared %s)", ErrConversion, v, t)
		}
		out := reflect.MakeSlice(t, 0, l.Len())
		var err error
		l.Range(func(_ int, e any) bool {
			var ev reflect.Value
			ev, err = hostElem(e, t.Elem(), cfg, reg, depth+1)
			if err != nil {
				return false
			}
			out = reflect.Append(out, ev)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil
	case reflect.Map:
		if uref.IsSet(t) {
			set, ok := v.(store.Set)
			if !ok {
				return nil, fmt.Errorf("%w: %T is not a set (declared %s)", ErrConversion, v, t)
			}
			out := reflect.MakeMapWithSize(t, set.Len())
			member := reflect.ValueOf(struct{}{})
			var err error
			set.Range(func(e any) bool {
				var ev reflect.Value
				ev, err = hostElem(e, t.Key(), cfg, reg, depth+1)
				if err != nil {
					return false
				}
				out.SetMapIndex(ev, member)
				return true
			})
			if err != nil {
				return nil, err
			}
			return out.Interface(), nil
		}
		s, ok := v.(store.Store)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a map (declared %s)", ErrConversion, v, t)
		}
		out := reflect.MakeMapWithSize(t, s.Len())
		var err error
		s.Range(func(k, e any) bool {
			var kv, ev reflect.Value
			kv, err = hostElem(k, t.Key(), cfg, reg, depth+1)
			if err != nil {
				return false
			}
			ev, err = hostElem(e, t.Elem(), cfg, reg, depth+1)
			if err != nil {
				return false
			}
			out.SetMapIndex(kv, ev)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil
	default:
		return v, nil
	}
}

// hostElem converts one collection element and checks assignability to
// the declared element type.
func hostElem(v any, t reflect.Type, cfg apis.Config, reg apis.WriterLookup, depth int) (reflect.Value, error) {
	hv, err := toHostValue(v, t, cfg, reg, depth)
	if err != nil {
		return reflect.Value{}, err
	}
	if hv == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(hv)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: %T is not assignable to %s", ErrConversion, hv, t)
	}
	return rv, nil
}
