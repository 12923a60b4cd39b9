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

// Package dvx provides typed, immutable views over persistent maps,
// together with a tagged-literal text format for moving those values in
// and out of a process.
//
// dvx is responsible for turning "a persistent map of keyword fields"
// into "a typed Go surface" and back. A shape struct declares the
// fields; view.View[T] answers the accessors without generated code;
// the edn package renders and parses the canonical text form, e.g.
//
//	{:x 1, :y 2}
//	#Pt{:x 1, :y 2}
//	[[1 2] [3]]
//
// # Design
//
// The core of dvx is a read-mostly global snapshot (state). The
// snapshot holds four things:
//
//   - Config: rules that control conversion and rendering (lenient vs
//     strict absence handling, recursion depth, indentation).
//
//   - Registry: a process-wide mapping from Go types to translators,
//     each claiming a reader tag. This is how external types like
//     time.Instant equivalents or domain records gain a tagged text
//     form. The registry can be written to at runtime (Register,
//     RegisterTag); every mutation publishes a fresh copy-on-write
//     snapshot, so concurrent readers never see a half-applied change.
//
//   - Serializer: a read-only object that answers "what is the text of
//     this value?". The serializer tries multiple strategies, in
//     priority order:
//     1. If the value is a view or a store, print its persistent
//     structure (tagging record-typed fragments).
//     2. If the value's type is found in the Registry, emit it through
//     its translator as a tagged literal.
//     3. Otherwise, normalize the value into the store domain and
//     render it with the canonical printer.
//     Serializer is expected to be concurrency-safe for reads.
//
//   - Builder: a pluggable factory that knows how to construct Registry
//     and Serializer instances for a given Config (and optional
//     extension data). The Builder is also allowed to reuse/migrate
//     state from previous Registry/Serializer instances.
//
// All of these live inside a single immutable struct called state.
// The package holds an atomic pointer to the current state. Readers load
// that pointer, use it, and never mutate it. Writers build a brand-new
// state and atomically swap it in.
//
// This means dvx hot-path operations are lock-free:
//
//	v := dvx.New[Pt]()
//	text, err := dvx.Serialize(v)
//	w, err := dvx.Deserialize[Pt](text)
//
// and concurrent callers always see a consistent snapshot.
//
// # Views
//
// A shape struct declares typed fields; the struct is never populated
// directly. Instead, view.View[T] carries a persistent store and
// converts on access:
//
//	type Pt struct {
//		X int64 `edn:"x"`
//		Y int64 `edn:"y"`
//	}
//
//	p := dvx.New[Pt]()
//	p, _ = p.Assoc("X", int64(1))
//	p, _ = p.Assoc("Y", int64(2))
//
// Every builder returns a new view; the receiver is never modified.
// Equality and hashing are structural over the backing store, so views
// behave as values in maps and sets.
//
// Field reads convert between the store's canonical value domain
// (int64, *big.Int, float64, string, bool, Keyword, Symbol, Store,
// List, Set) and the declared field types. Narrow integer types are
// checked for overflow on the way out; conversions that could silently
// lose information fail with view.ErrConversion.
//
// # Global API
//
// The package exposes three groups of operations:
//
//  1. Read helpers:
//
//     Wrap[T](s store.Store) view.View[T]
//     New[T]() view.View[T]
//     Serialize(v any) (string, error)
//     Deserialize[T](text string) (view.View[T], error)
//     Read(text string) (any, error)
//     Registry() apis.Registry
//     Serializer() apis.Serializer
//
//     These are safe for concurrent use without additional locking.
//     They always read from the latest published snapshot.
//
//  2. Mutation helpers:
//
//     Register[T](tr apis.Translator)
//     RegisterTag[T](tag string)
//     Deregister[T]()
//     SetConfig(cfg apis.Config)
//     SetBuilder(b apis.Builder)
//     SetExt(ext T)
//     SetRegistry(reg apis.Registry)
//     SetSerializer(ser apis.Serializer)
//     UnpinRegistry()
//     UnpinSerializer()
//     SetAll(...)
//
//     Each of these acquires an internal build lock, derives a new
//     snapshot (rebuilding or reusing Registry / Serializer as needed),
//     and then atomically publishes that snapshot.
//
//     Semantics in short:
//
//     - Config affects conversion and rendering. Calling SetConfig()
//     may trigger a rebuild of Registry and/or Serializer, unless
//     they are explicitly "pinned".
//
//     - Builder controls how Registry and Serializer are constructed.
//     Swapping the Builder lets you replace serialization logic
//     (different strategies, different printers) at runtime.
//
//     - Ext is an opaque extension payload. It is not interpreted by
//     dvx itself. It is simply passed down to the Builder so custom
//     builders (in other binaries) can carry extra policy/state.
//
//     - SetRegistry() / SetSerializer() directly overwrite the current
//     Registry / Serializer in the snapshot and "pin" them. Once a
//     layer is pinned, dvx will stop rebuilding that layer
//     automatically until you call UnpinRegistry()/UnpinSerializer().
//
//     - SetAll(...) is the "hard reset" API. It lets a process replace
//     Builder, Config, Ext, Registry, Serializer in one shot. This
//     is mainly used by tests to get a clean deterministic state
//     between test cases.
//
//  3. Introspection:
//
//     ExtAs[T]() (T, bool)
//     // plus Registry().Entries(), Registry().Count(), etc.
//
//     These let callers examine the currently published snapshot for
//     debugging or documentation.
//
// # Concurrency model
//
// Reads (Wrap, New, Serialize, Deserialize, Registry, Serializer) are
// wait-free with respect to the snapshot: they load the current *state
// atomically and never take locks. Registry lookups inside a snapshot
// are themselves lock-free reads of the registry's own copy-on-write
// tables.
//
// Writes (SetConfig, SetBuilder, SetExt, SetRegistry, SetSerializer,
// etc.) take a short build mutex, assemble a brand-new state struct,
// and then publish it via an atomic pointer swap. This gives the
// calling binary a predictable "last write wins" behavior without
// forcing per-operation locking.
//
// # Tagged literals
//
// RegisterTag[T]("Pt") binds the shape type to a reader tag. Views of T
// then print as #Pt{...}, and #Pt{...} literals parse back into stores
// annotated with T, so nested fields declared as view.View[Pt] read
// without further registration. Register[T](tr) serves opaque external
// types: the translator owns both directions of the text form. Parsing
// text with a tag nobody claims fails with edn.ErrUnknownTag;
// serializing a foreign type nobody claims fails with
// edn.ErrUnregisteredType.
//
// # Usage pattern in a binary
//
// A typical component does:
//
//  1. Let dvx init with default builder/config.
//
//  2. Register well-known record types up front:
//
//     dvx.RegisterTag[Pt]("Pt")
//     dvx.Register[time.Time](instantTranslator{})
//
//  3. Build and pass views around as plain values; persist or ship
//     their Serialize() text.
//
//  4. In tests, call dvx.SetAll(...) to get deterministic snapshots
//     and to inject a mock Builder.
//
// # Scope
//
// dvx is intentionally small. It does not try to be a database client,
// a schema validator, or a general serialization framework. It only
// solves one job:
//
//	"Given a persistent map, expose it through a typed, immutable Go
//	 surface, and move it losslessly through a readable text form."
//
// Everything else (storage, transport, schema evolution, etc.) belongs
// to higher layers.
package dvx
