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

package edn

import (
	"fmt"
	"io"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"dirpx.dev/dvx/apis"
	"dirpx.dev/dvx/store"
)

// Print renders v in the compact canonical form. Map and set entries are
// ordered by their canonical key form, so equal values print identically.
func Print(v any, opts Options) (string, error) {
	p := &printer{opts: opts}
	if err := p.writeValue(v, 0); err != nil {
		return "", err
	}
	return p.sb.String(), nil
}

// Fprint renders v in the compact canonical form to w.
func Fprint(w io.Writer, v any, opts Options) error {
	s, err := Print(v, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// PrettyPrint renders v in the indented human-readable form to w,
// followed by a newline.
func PrettyPrint(w io.Writer, v any, opts Options) error {
	s, err := FormatString(v, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// FormatString renders the indented human-readable form of v, followed
// by a newline.
func FormatString(v any, opts Options) (string, error) {
	if opts.Indent == "" {
		opts.Indent = " "
	}
	p := &printer{opts: opts, pretty: true}
	if err := p.writeValue(v, 0); err != nil {
		return "", err
	}
	p.sb.WriteByte('\n')
	return p.sb.String(), nil
}

type printer struct {
	sb     strings.Builder
	opts   Options
	pretty bool
}

func (p *printer) writeValue(v any, depth int) error {
	switch x := v.(type) {
	case nil:
		p.sb.WriteString("nil")
	case bool:
		p.sb.WriteString(strconv.FormatBool(x))
	case int64:
		p.sb.WriteString(strconv.FormatInt(x, 10))
	case float64:
		p.sb.WriteString(store.FormatFloat(x))
	case *big.Int:
		p.sb.WriteString(x.String())
		p.sb.WriteByte('N')
	case string:
		p.sb.WriteString(strconv.Quote(x))
	case store.Keyword:
		p.sb.WriteString(x.String())
	case store.Symbol:
		p.sb.WriteString(x.String())
	case store.Store:
		return p.writeStore(x, depth)
	case store.List:
		return p.writeList(x, depth)
	case store.Set:
		return p.writeSet(x, depth)
	case Tagged:
		return p.writeTag(x.Name, x.Value, depth)
	case apis.AnyView:
		return p.writeStore(x.Store(), depth)
	default:
		return p.writeExternal(v, depth)
	}
	return nil
}

// writeStore renders a map literal, prefixed with the registered tag
// when the store is annotated with a tagged view type.
func (p *printer) writeStore(s store.Store, depth int) error {
	if vt := s.ViewType(); vt != nil && p.opts.Writers != nil {
		if tr, ok := p.opts.Writers.LookupRecord(vt); ok {
			p.sb.WriteByte('#')
			p.sb.WriteString(tr.Tag())
		}
	}
	entries := s.Entries()
	p.sb.WriteByte('{')
	multiline := p.pretty && len(entries) > 1
	for i, e := range entries {
		if i > 0 {
			if multiline {
				p.sb.WriteString(",\n")
				p.sb.WriteString(strings.Repeat(p.opts.Indent, depth+1))
			} else {
				p.sb.WriteString(", ")
			}
		}
		if err := p.writeValue(e.Key, depth+1); err != nil {
			return err
		}
		p.sb.WriteByte(' ')
		if err := p.writeValue(e.Value, depth+1); err != nil {
			return err
		}
	}
	p.sb.WriteByte('}')
	return nil
}

func (p *printer) writeList(l store.List, depth int) error {
	p.sb.WriteByte('[')
	var err error
	l.Range(func(i int, v any) bool {
		if i > 0 {
			p.sb.WriteByte(' ')
		}
		err = p.writeValue(v, depth+1)
		return err == nil
	})
	if err != nil {
		return err
	}
	p.sb.WriteByte(']')
	return nil
}

func (p *printer) writeSet(s store.Set, depth int) error {
	p.sb.WriteString("#{")
	for i, v := range s.Values() {
		if i > 0 {
			p.sb.WriteByte(' ')
		}
		if err := p.writeValue(v, depth+1); err != nil {
			return err
		}
	}
	p.sb.WriteByte('}')
	return nil
}

// writeTag renders "#Name" followed by the value form. Composite forms
// follow the tag directly (#Pt{...}); scalars take a separating space.
func (p *printer) writeTag(name string, v any, depth int) error {
	p.sb.WriteByte('#')
	p.sb.WriteString(name)
	switch v.(type) {
	case store.Store, store.List, store.Set, Tagged, apis.AnyView:
	default:
		p.sb.WriteByte(' ')
	}
	return p.writeValue(v, depth)
}

// writeExternal dispatches an opaque value to its registered writer.
func (p *printer) writeExternal(v any, _ int) error {
	if p.opts.Writers != nil {
		if tr, ok := p.opts.Writers.LookupType(reflect.TypeOf(v)); ok {
			body, err := tr.Write(v)
			if err != nil {
				return err
			}
			p.sb.WriteByte('#')
			p.sb.WriteString(tr.Tag())
			// Composite bodies attach directly to the tag, scalars
			// take a separating space.
			if len(body) > 0 {
				switch body[0] {
				case '{', '[', '(', '#':
				default:
					p.sb.WriteByte(' ')
				}
			}
			p.sb.WriteString(body)
			return nil
		}
	}
	return fmt.Errorf("%w: %T", ErrUnregisteredType, v)
}
