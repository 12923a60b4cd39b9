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

package apis

import "reflect"

// TagLookup is the read side consulted by the reader whenever a tagged
// literal is encountered during parsing.
type TagLookup interface {
	// LookupTag returns the active translator for a reader tag.
	LookupTag(tag string) (Translator, bool)
}

// WriterLookup is the read side consulted by the printer for any value
// whose runtime type may have a registered writer.
type WriterLookup interface {
	// LookupType returns the active translator for an external type.
	LookupType(t reflect.Type) (Translator, bool)

	// IsRecord reports whether t is a tagged view type: a view type
	// whose stores serialize with a tag prefix rather than as plain
	// map literals.
	IsRecord(t reflect.Type) bool

	// LookupRecord returns the active translator for a tagged view
	// type. The record mark and the binding are resolved from one
	// registry state, so a concurrent deregistration can never yield
	// the mark without its translator.
	LookupRecord(t reflect.Type) (Translator, bool)
}

// Registry is the process-wide codec registry. Registration installs a
// translator-by-type entry, a reader-tag entry, and a writer dispatch
// entry as one atomic unit: concurrent lookups observe either all three
// or none. Lookups never block behind registrations.
type Registry interface {
	TagLookup
	WriterLookup

	// Register installs tr as the active translator for t.
	// Re-registration of the identical translator is idempotent;
	// conflicting re-registration fails.
	Register(t reflect.Type, tr Translator) error

	// RegisterRecord is Register plus marking t as a tagged view type.
	RegisterRecord(t reflect.Type, tr Translator) error

	// Deregister atomically reverses a registration. Deregistering a
	// type that was never registered is a no-op.
	Deregister(t reflect.Type)

	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Entry

	// Count returns the number of registered types.
	Count() int

	// Reset clears all registrations.
	Reset()
}

// Entry is a single registration in a Registry snapshot.
type Entry struct {
	// Type is the registered external or view type.
	Type reflect.Type
	// Translator is the active translator for Type.
	Translator Translator
	// Record reports whether Type is a tagged view type.
	Record bool
}
