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

package store

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/benbjohnson/immutable"
)

// Keyword is an interned symbolic field identifier. The value holds the
// name without the leading colon; its textual form is ":" + name.
type Keyword string

// String returns the canonical textual form of the keyword.
func (k Keyword) String() string { return ":" + string(k) }

// Symbol is a symbolic identifier, rendered without a leading colon.
type Symbol string

// String returns the canonical textual form of the symbol.
func (s Symbol) String() string { return string(s) }

// List is an immutable ordered sequence with structural equality.
// The zero value is an empty list.
type List struct {
	l *immutable.List[any]
}

var emptyList = immutable.NewList[any]()

// NewList returns a list holding the given values in order.
func NewList(values ...any) List {
	l := emptyList
	for _, v := range values {
		l = l.Append(v)
	}
	return List{l: l}
}

func (l List) backing() *immutable.List[any] {
	if l.l == nil {
		return emptyList
	}
	return l.l
}

// Len returns the number of elements.
func (l List) Len() int { return l.backing().Len() }

// Get returns the element at index i.
func (l List) Get(i int) any { return l.backing().Get(i) }

// Append returns a new list with v appended.
func (l List) Append(v any) List { return List{l: l.backing().Append(v)} }

// Range calls fn for each element in order until fn returns false.
func (l List) Range(fn func(i int, v any) bool) {
	itr := l.backing().Iterator()
	for !itr.Done() {
		i, v := itr.Next()
		if !fn(i, v) {
			return
		}
	}
}

// Equal reports element-wise structural equality.
func (l List) Equal(o List) bool {
	if l.Len() != o.Len() {
		return false
	}
	eq := true
	l.Range(func(i int, v any) bool {
		if !valueEqual(v, o.Get(i)) {
			eq = false
		}
		return eq
	})
	return eq
}

// Hash returns the order-sensitive structural hash.
func (l List) Hash() uint64 {
	h := uint64(1)
	l.Range(func(_ int, v any) bool {
		h = h*31 + valueHash(v)
		return true
	})
	return h
}

// String renders the list's default textual form.
func (l List) String() string {
	var sb strings.Builder
	writeValue(&sb, l)
	return sb.String()
}

// Set is an immutable unordered collection without duplicates.
// The zero value is an empty set.
type Set struct {
	m *immutable.Map[any, struct{}]
}

var emptySet = immutable.NewMap[any, struct{}](valueHasher{})

// NewSet returns a set holding the given values; duplicates collapse.
func NewSet(values ...any) Set {
	s := Set{m: emptySet}
	for _, v := range values {
		s = s.Add(v)
	}
	return s
}

func (s Set) backing() *immutable.Map[any, struct{}] {
	if s.m == nil {
		return emptySet
	}
	return s.m
}

// Len returns the number of elements.
func (s Set) Len() int { return s.backing().Len() }

// Has reports whether v is a member.
func (s Set) Has(v any) bool {
	_, ok := s.backing().Get(v)
	return ok
}

// Add returns a new set containing v.
func (s Set) Add(v any) Set { return Set{m: s.backing().Set(v, struct{}{})} }

// Range calls fn for each element until fn returns false.
// Iteration order is unspecified; use Values for a canonical order.
func (s Set) Range(fn func(v any) bool) {
	itr := s.backing().Iterator()
	for !itr.Done() {
		v, _, _ := itr.Next()
		if !fn(v) {
			return
		}
	}
}

// Values returns the elements sorted by their canonical textual form.
func (s Set) Values() []any {
	vals := make([]any, 0, s.Len())
	s.Range(func(v any) bool {
		vals = append(vals, v)
		return true
	})
	sort.Slice(vals, func(i, j int) bool {
		return writeString(vals[i]) < writeString(vals[j])
	})
	return vals
}

// Equal reports membership equality.
func (s Set) Equal(o Set) bool {
	if s.Len() != o.Len() {
		return false
	}
	eq := true
	s.Range(func(v any) bool {
		if !o.Has(v) {
			eq = false
		}
		return eq
	})
	return eq
}

// Hash returns the order-independent structural hash.
func (s Set) Hash() uint64 {
	var h uint64
	s.Range(func(v any) bool {
		h += valueHash(v)
		return true
	})
	return h
}

// String renders the set's default textual form.
func (s Set) String() string {
	var sb strings.Builder
	writeValue(&sb, s)
	return sb.String()
}

// valueHasher adapts structural equality and hashing to the persistent
// map's hasher contract. It must treat values that compare Equal as
// hash-identical.
type valueHasher struct{}

func (valueHasher) Hash(key any) uint32 {
	h := valueHash(key)
	return uint32(h ^ h>>32)
}

func (valueHasher) Equal(a, b any) bool { return valueEqual(a, b) }

// valueEqual is structural equality over the store's value domain.
// Integral values compare across int64 and *big.Int representations.
func valueEqual(a, b any) bool {
	switch x := a.(type) {
	case Store:
		o, ok := b.(Store)
		return ok && x.Equal(o)
	case List:
		o, ok := b.(List)
		return ok && x.Equal(o)
	case Set:
		o, ok := b.(Set)
		return ok && x.Equal(o)
	case *big.Int:
		switch o := b.(type) {
		case *big.Int:
			return x.Cmp(o) == 0
		case int64:
			return x.IsInt64() && x.Int64() == o
		}
		return false
	case int64:
		switch o := b.(type) {
		case int64:
			return x == o
		case *big.Int:
			return o.IsInt64() && o.Int64() == x
		}
		return false
	case nil:
		return b == nil
	case bool, float64, string, Keyword, Symbol:
		return a == b
	default:
		return reflect.DeepEqual(a, b)
	}
}

// valueHash is the structural hash over the store's value domain,
// consistent with valueEqual.
func valueHash(v any) uint64 {
	switch x := v.(type) {
	case nil:
		return 0x9e3779b97f4a7c15
	case bool:
		if x {
			return 0x9ae16a3b2f90404f
		}
		return 0xc3a5c85c97cb3127
	case int64:
		return mix(uint64(x))
	case float64:
		return mix(math.Float64bits(x)) ^ 0xff51afd7ed558ccd
	case string:
		return hashString(x)
	case Keyword:
		return hashString(string(x)) ^ 0xb492b66fbe98f273
	case Symbol:
		return hashString(string(x)) ^ 0x2545f4914f6cdd1d
	case *big.Int:
		if x.IsInt64() {
			return mix(uint64(x.Int64()))
		}
		return hashString(x.String())
	case Store:
		return x.Hash()
	case List:
		return x.Hash()
	case Set:
		return x.Hash()
	default:
		return hashString(fmt.Sprintf("%T/%v", v, v))
	}
}

// mix is a 64-bit finalizer (splitmix64 style) for scalar hashes.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// writeString renders v's default textual form.
func writeString(v any) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

// writeValue renders the default (non-serializer) textual form. The
// serialization path lives in the edn package; this form only needs to
// be canonical so that String and Entries ordering are deterministic.
func writeValue(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("nil")
	case bool:
		sb.WriteString(strconv.FormatBool(x))
	case int64:
		sb.WriteString(strconv.FormatInt(x, 10))
	case float64:
		sb.WriteString(FormatFloat(x))
	case *big.Int:
		sb.WriteString(x.String())
		sb.WriteByte('N')
	case string:
		sb.WriteString(strconv.Quote(x))
	case Keyword:
		sb.WriteString(x.String())
	case Symbol:
		sb.WriteString(x.String())
	case Store:
		sb.WriteByte('{')
		for i, e := range x.Entries() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, e.Key)
			sb.WriteByte(' ')
			writeValue(sb, e.Value)
		}
		sb.WriteByte('}')
	case List:
		sb.WriteByte('[')
		x.Range(func(i int, e any) bool {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeValue(sb, e)
			return true
		})
		sb.WriteByte(']')
	case Set:
		sb.WriteString("#{")
		for i, e := range x.Values() {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeValue(sb, e)
		}
		sb.WriteByte('}')
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

// FormatFloat renders a float64 so that it always reads back as a
// floating-point value (a bare integral float gains a ".0" suffix).
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s += ".0"
	}
	return s
}
