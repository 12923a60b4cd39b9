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
	"fmt"
	"math"
	"math/big"
	"reflect"
)

// upconvert widens a host numeric to the store's canonical
// representation: any narrower integer becomes int64, float32 becomes
// float64, and *big.Int passes through. Unsigned values beyond the
// int64 range promote to *big.Int. Named numeric types widen through
// their underlying kind. Non-numerics return unchanged.
func upconvert(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return upconvertUint(uint64(x))
	case uint64:
		return upconvertUint(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case nil, bool, string:
		return v
	}
	// Named numeric types miss the fast path above.
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return upconvertUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func upconvertUint(u uint64) any {
	if u > math.MaxInt64 {
		return new(big.Int).SetUint64(u)
	}
	return int64(u)
}

// downconvert narrows a store numeric to the declared type t, which
// must be a numeric type. The conversion must be lossless: a value that
// does not fit fails with ErrConversion, as does a non-numeric value.
// The result has exactly the declared type, including named types.
func downconvert(t reflect.Type, v any) (any, error) {
	var (
		i     int64
		f     float64
		isInt bool
	)
	switch x := v.(type) {
	case int64:
		i, isInt = x, true
	case float64:
		f = x
	case *big.Int:
		if !x.IsInt64() {
			return nil, fmt.Errorf("%w: %s does not fit %s", ErrConversion, x, t)
		}
		i, isInt = x.Int64(), true
	default:
		return nil, fmt.Errorf("%w: %T is not numeric (declared %s)", ErrConversion, v, t)
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !isInt || out.OverflowInt(i) {
			return nil, fmt.Errorf("%w: %v does not fit %s", ErrConversion, v, t)
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !isInt || i < 0 || out.OverflowUint(uint64(i)) {
			return nil, fmt.Errorf("%w: %v does not fit %s", ErrConversion, v, t)
		}
		out.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		if isInt {
			f = float64(i)
			if int64(f) != i {
				return nil, fmt.Errorf("%w: %v does not fit %s exactly", ErrConversion, v, t)
			}
		}
		if out.OverflowFloat(f) || (t.Kind() == reflect.Float32 && float64(float32(f)) != f) {
			return nil, fmt.Errorf("%w: %v does not fit %s exactly", ErrConversion, v, t)
		}
		out.SetFloat(f)
	default:
		return nil, fmt.Errorf("%w: %s is not numeric", ErrConversion, t)
	}
	return out.Interface(), nil
}
