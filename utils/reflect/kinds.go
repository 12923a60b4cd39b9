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

// Package reflect classifies declared field types for the view
// dispatcher and converter: which types are numeric, which can represent
// absence, and how struct fields map to field identifiers.
package reflect

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

// TagName is the struct tag consulted for field-identifier overrides.
const TagName = "edn"

// IsNumeric reports whether t is a concrete numeric type that takes
// part in the lossless up/down conversion tower.
func IsNumeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// IsPrimitive reports whether t cannot represent absence: reading an
// absent field through such a declared type is an error rather than a
// null-equivalent.
func IsPrimitive(t reflect.Type) bool {
	return IsNumeric(t) || t.Kind() == reflect.Bool
}

// IsSet reports whether t is the declared host shape of an unordered
// set: a map whose element type is struct{}.
func IsSet(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem() == reflect.TypeOf(struct{}{})
}

// FieldKey resolves the field identifier for a struct field: the
// tag override when present, otherwise the field name with its first
// rune lowered. The second return is false when the field is excluded
// (unexported, or tagged "-").
func FieldKey(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	if tag, ok := f.Tag.Lookup(TagName); ok {
		if tag == "-" {
			return "", false
		}
		if tag != "" {
			return tag, true
		}
	}
	return LowerFirst(f.Name), true
}

// LowerFirst lowers the first rune of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
