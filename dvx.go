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

package dvx

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/dvx/apis"
	"dirpx.dev/dvx/builder"
	"dirpx.dev/dvx/config"
	"dirpx.dev/dvx/edn"
	"dirpx.dev/dvx/store"
	"dirpx.dev/dvx/view"
)

// init initializes the global dvx state.
func init() {
	// Initialize state with default cfg, reg, and ser.
	s := &state{cfg: config.DefaultConfig()}
	b := builder.New()
	s.reg = b.BuildRegistry(s.cfg, nil, nil)
	s.ser = b.BuildSerializer(s.cfg, s.reg, nil, nil)
	s.bld = b
	// Store the initial state atomically.
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("dvx: builder returned nil registry")
	// ErrNilSerializer is returned when a builder returns a nil serializer.
	ErrNilSerializer = errors.New("dvx: builder returned nil serializer")
	// ErrNotMap is returned when deserialized text does not denote a map.
	ErrNotMap = errors.New("dvx: deserialized text is not a map")
)

// Wrap exposes s through the shape declared by T.
// It uses the global dvx configuration and reg.
// This is a convenience wrapper around view.Wrap.
func Wrap[T any](s store.Store) view.View[T] {
	cur := st.Load()
	return view.Wrap[T](s, cur.cfg, cur.reg)
}

// New returns a view of T over the empty store.
// It uses the global dvx configuration and reg.
// This is a convenience wrapper around view.New.
func New[T any]() view.View[T] {
	cur := st.Load()
	return view.New[T](cur.cfg, cur.reg)
}

// Serialize renders v as tagged-literal text using the global dvx ser.
// It uses the global dvx configuration and reg.
// This is a convenience wrapper around the global ser.
func Serialize(v any) (string, error) {
	cur := st.Load()
	return cur.ser.Serialize(v, cur.cfg)
}

// Deserialize parses text and exposes the resulting map through the
// shape declared by T. Tagged literals resolve through the global reg;
// an unknown tag fails the parse.
func Deserialize[T any](text string) (view.View[T], error) {
	cur := st.Load()
	v, err := edn.Read(text, edn.Options{Tags: cur.reg, Writers: cur.reg, MaxDepth: cur.cfg.MaxDepth})
	if err != nil {
		return view.View[T]{}, err
	}
	s, ok := v.(store.Store)
	if !ok {
		return view.View[T]{}, fmt.Errorf("%w: got %T", ErrNotMap, v)
	}
	return view.Wrap[T](s, cur.cfg, cur.reg), nil
}

// Read parses text into the untyped value domain, resolving tagged
// literals through the global reg.
func Read(text string) (any, error) {
	cur := st.Load()
	return edn.Read(text, edn.Options{Tags: cur.reg, Writers: cur.reg, MaxDepth: cur.cfg.MaxDepth})
}

// PrettyPrint writes an indented rendering of v to w.
// It uses the global dvx configuration and reg.
func PrettyPrint(w io.Writer, v any) error {
	cur := st.Load()
	nv, err := view.Normalize(v, cur.cfg)
	if err != nil {
		return err
	}
	return edn.PrettyPrint(w, nv, edn.Options{Writers: cur.reg, Indent: cur.cfg.Indent, MaxDepth: cur.cfg.MaxDepth})
}

// FormatString is PrettyPrint into a string.
func FormatString(v any) (string, error) {
	cur := st.Load()
	nv, err := view.Normalize(v, cur.cfg)
	if err != nil {
		return "", err
	}
	return edn.FormatString(nv, edn.Options{Writers: cur.reg, Indent: cur.cfg.Indent, MaxDepth: cur.cfg.MaxDepth})
}

// Register binds T to tr in the global dvx reg.
// This is a convenience wrapper around the global reg.
func Register[T any](tr apis.Translator) error {
	return st.Load().reg.Register(reflect.TypeOf((*T)(nil)).Elem(), tr)
}

// Deregister removes T's binding from the global dvx reg.
// This is a convenience wrapper around the global reg.
func Deregister[T any]() {
	st.Load().reg.Deregister(reflect.TypeOf((*T)(nil)).Elem())
}

// RegisterTag binds the shape type T to tag as a record type: views of
// T serialize as #tag{...} and such literals deserialize back into
// stores carrying T. An empty tag falls back to T's own apis.Tagger
// declaration when present.
func RegisterTag[T any](tag string) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if tag == "" {
		var zero T
		if nt, ok := any(zero).(apis.Tagger); ok {
			tag = nt.EdnTag()
		}
	}
	return st.Load().reg.RegisterRecord(t, recordTranslator{tag: tag, typ: t})
}

// DeregisterTag removes the record binding for T.
func DeregisterTag[T any]() {
	Deregister[T]()
}

// recordTranslator is the translator installed by RegisterTag. Read
// annotates the parsed map with the shape type; Write emits the bare
// map body, the caller supplies the tag.
type recordTranslator struct {
	tag string
	typ reflect.Type
}

func (t recordTranslator) Tag() string { return t.tag }

func (t recordTranslator) Read(v any) (any, error) {
	s, ok := v.(store.Store)
	if !ok {
		return nil, fmt.Errorf("dvx: #%s expects a map, got %T", t.tag, v)
	}
	return s.WithViewType(t.typ), nil
}

func (t recordTranslator) Write(v any) (string, error) {
	cur := st.Load()
	var s store.Store
	switch x := v.(type) {
	case apis.AnyView:
		s = x.Store()
	case store.Store:
		s = x
	default:
		fs, err := view.StoreFor(v, cur.cfg)
		if err != nil {
			return "", err
		}
		s = fs
	}
	// Drop the annotation so the body prints untagged.
	return edn.Print(s.WithViewType(nil), edn.Options{Writers: cur.reg, MaxDepth: cur.cfg.MaxDepth})
}

// SetAll explicitly sets all global dvx state components.
//
// Nil arguments leave the corresponding component unchanged,
// except for ext which is always replaced.
//
// This is a convenience wrapper around the global state.
func SetAll(cfg *apis.Config, ext any, reg apis.Registry, ser apis.Serializer, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Configuration
	ncfg := old.cfg
	if cfg != nil {
		ncfg = *cfg
	}

	// Extension
	next := ext

	// Builder
	nbld := old.bld
	if bld != nil {
		nbld = bld
	}

	// Registry
	nreg := reg
	npreg := false
	if nreg == nil {
		nreg = nbld.BuildRegistry(ncfg, old.reg, next)
	} else {
		npreg = true
	}

	// Serializer
	nser := ser
	npser := false
	if nser == nil {
		nser = nbld.BuildSerializer(ncfg, nreg, old.ser, next)
	} else {
		npser = true
	}

	// Ensure non-nil reg and ser.
	if nreg == nil {
		panic(ErrNilRegistry)
	}
	if nser == nil {
		panic(ErrNilSerializer)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  ncfg,
			ext:  next,
			reg:  nreg,
			ser:  nser,
			bld:  nbld,
			preg: npreg,
			pser: npser,
		},
	)
}

// Config returns the global dvx configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global dvx configuration to cfg.
// It rebuilds the global reg and ser using the new configuration.
// This is a convenience wrapper around the global state.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()
	b := old.bld

	// Build new reg and ser based on the new cfg and old state.
	nreg := old.reg
	if !old.preg {
		nreg = b.BuildRegistry(cfg, old.reg, old.ext)
	}
	nser := old.ser
	if !old.pser {
		nser = b.BuildSerializer(cfg, nreg, old.ser, old.ext)
	}

	// Ensure non-nil reg and ser.
	if nreg == nil {
		panic(ErrNilRegistry)
	}
	if nser == nil {
		panic(ErrNilSerializer)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  cfg,
			ext:  old.ext,
			reg:  nreg,
			ser:  nser,
			bld:  b,
			preg: old.preg,
			pser: old.pser,
		},
	)
}

// Registry returns the global dvx reg.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry sets the global dvx reg to reg.
// It uses the global dvx configuration to rebuild the global ser.
// This is a convenience wrapper around the global state.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()
	b := old.bld

	// Build new ser based on the old cfg and new reg.
	nser := old.ser
	if !old.pser {
		nser = b.BuildSerializer(old.cfg, reg, old.ser, old.ext)
	}

	// Ensure non-nil ser.
	if nser == nil {
		panic(ErrNilSerializer)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			reg:  reg,
			ser:  nser,
			bld:  b,
			preg: true,
			pser: old.pser,
		},
	)
}

// Serializer returns the global dvx ser.
func Serializer() apis.Serializer {
	return st.Load().ser
}

// SetSerializer sets the global dvx ser to ser.
// It uses the global dvx configuration and reg.
// This is a convenience wrapper around the global state.
func SetSerializer(ser apis.Serializer) {
	if ser == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			reg:  old.reg,
			ser:  ser,
			bld:  old.bld,
			preg: old.preg,
			pser: true,
		},
	)
}

// Builder returns the global dvx bld.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global dvx bld to b.
// This is a convenience wrapper around the global state.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Build new reg and ser based on the new bld and old state.
	nreg := old.reg
	if !old.preg {
		nreg = b.BuildRegistry(old.cfg, old.reg, old.ext)
	}
	nser := old.ser
	if !old.pser {
		nser = b.BuildSerializer(old.cfg, nreg, old.ser, old.ext)
	}

	// Ensure non-nil reg and ser.
	if nreg == nil {
		panic(ErrNilRegistry)
	}
	if nser == nil {
		panic(ErrNilSerializer)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			reg:  nreg,
			ser:  nser,
			bld:  b,
			preg: old.preg,
			pser: old.pser,
		},
	)
}

// SetExt replaces extension config and rebuilds non-pinned layers via the builder.
func SetExt[T any](ext T) {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()
	b := old.bld

	// Build new reg and ser based on the new ext and old state.
	nreg := old.reg
	if !old.preg {
		nreg = b.BuildRegistry(old.cfg, old.reg, ext)
	}
	nser := old.ser
	if !old.pser {
		nser = b.BuildSerializer(old.cfg, nreg, old.ser, ext)
	}

	// Ensure non-nil reg and ser.
	if nreg == nil {
		panic(ErrNilRegistry)
	}
	if nser == nil {
		panic(ErrNilSerializer)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  ext,
			reg:  nreg,
			ser:  nser,
			bld:  b,
			preg: old.preg,
			pser: old.pser,
		},
	)
}

// ExtAs returns the global dvx extension config as type T.
func ExtAs[T any]() (T, bool) {
	ext, ok := st.Load().ext.(T)
	return ext, ok
}

// IsRegistryPinned returns whether the global dvx reg is pinned (immutable).
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry makes the global dvx reg immutable.
func PinRegistry() {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			reg:  old.reg,
			ser:  old.ser,
			bld:  old.bld,
			preg: true,
			pser: old.pser,
		},
	)
}

// UnpinRegistry makes the global dvx reg mutable again.
func UnpinRegistry() {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			reg:  old.reg,
			ser:  old.ser,
			bld:  old.bld,
			preg: false,
			pser: old.pser,
		},
	)
}

// IsSerializerPinned returns whether the global dvx ser is pinned (immutable).
func IsSerializerPinned() bool {
	return st.Load().pser
}

// PinSerializer makes the global dvx ser immutable.
func PinSerializer() {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			reg:  old.reg,
			ser:  old.ser,
			bld:  old.bld,
			preg: old.preg,
			pser: true,
		},
	)
}

// UnpinSerializer makes the global dvx ser mutable again.
func UnpinSerializer() {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			reg:  old.reg,
			ser:  old.ser,
			bld:  old.bld,
			preg: old.preg,
			pser: false,
		},
	)
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global dvx state.
var st atomic.Pointer[state]

// state is the global dvx state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global dvx configuration.
	cfg apis.Config
	// ext is the global dvx extension configuration.
	ext any
	// reg is the global dvx reg.
	reg apis.Registry
	// ser is the global dvx ser.
	ser apis.Serializer
	// bld is the global dvx bld.
	bld apis.Builder
	// preg indicates whether the reg is pinned (immutable).
	preg bool
	// pser indicates whether the ser is pinned (immutable).
	pser bool
}
