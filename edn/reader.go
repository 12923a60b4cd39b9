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

// Package edn implements the tagged-literal textual format used to
// serialize stores and registered external values: plain map literals
// {:k v, ...} for untagged views, #Tag{...} tagged literals for
// translator-mediated values, plus vectors, sets, keywords, symbols,
// strings, and the canonical numeric tower.
//
// Reading consults Options.Tags for every #Tag literal; printing
// consults Options.Writers for every value whose runtime type is not
// part of the store's native value domain.
package edn

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"dirpx.dev/dvx/apis"
	"dirpx.dev/dvx/store"
)

var (
	// ErrUnknownTag is returned when a tagged literal names a tag with
	// no registered reader.
	ErrUnknownTag = errors.New("dvx(edn): no reader registered for tag")
	// ErrUnregisteredType is returned when printing reaches a value
	// whose runtime type has no registered writer.
	ErrUnregisteredType = errors.New("dvx(edn): no writer registered for type")
	// ErrSyntax is returned for malformed input.
	ErrSyntax = errors.New("dvx(edn): syntax error")
	// ErrDepth is returned when nesting exceeds the configured limit.
	ErrDepth = errors.New("dvx(edn): nesting too deep")
)

// Options configures reading and printing.
type Options struct {
	// Tags resolves reader tags during parsing. A nil Tags fails every
	// tagged literal unless PreserveUnknown is set.
	Tags apis.TagLookup

	// Writers resolves per-type writer dispatch during printing. A nil
	// Writers fails on any value outside the native value domain.
	Writers apis.WriterLookup

	// PreserveUnknown reads unrecognized tagged literals as Tagged
	// values instead of failing. Used by format tooling that must
	// round-trip documents it cannot interpret.
	PreserveUnknown bool

	// Indent is the indentation unit for pretty printing.
	Indent string

	// MaxDepth bounds reader nesting. Zero means a reasonable default.
	MaxDepth int
}

// Tagged is an uninterpreted tagged literal preserved by a reader
// running with PreserveUnknown.
type Tagged struct {
	Name  string
	Value any
}

const defaultMaxDepth = 32

// Read parses the first form in text.
func Read(text string, opts Options) (any, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	r := &reader{src: text, opts: opts}
	r.skipSpace()
	v, err := r.readValue(0)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// reader is a recursive-descent parser over the raw input.
type reader struct {
	src  string
	pos  int
	opts Options
}

func (r *reader) errf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrSyntax, fmt.Sprintf(format, args...), r.pos)
}

func (r *reader) eof() bool { return r.pos >= len(r.src) }

func (r *reader) peek() byte { return r.src[r.pos] }

// skipSpace consumes whitespace, commas, and line comments.
func (r *reader) skipSpace() {
	for !r.eof() {
		switch c := r.src[r.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			r.pos++
		case c == ';':
			for !r.eof() && r.src[r.pos] != '\n' {
				r.pos++
			}
		default:
			return
		}
	}
}

// isDelim reports whether c terminates a token.
func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ',', '(', ')', '[', ']', '{', '}', '"', ';':
		return true
	}
	return false
}

func (r *reader) readValue(depth int) (any, error) {
	if depth > r.opts.MaxDepth {
		return nil, ErrDepth
	}
	r.skipSpace()
	if r.eof() {
		return nil, r.errf("unexpected end of input")
	}

	switch c := r.peek(); {
	case c == '{':
		r.pos++
		return r.readMap(depth + 1)
	case c == '[':
		r.pos++
		return r.readSeq(depth+1, ']')
	case c == '(':
		r.pos++
		return r.readSeq(depth+1, ')')
	case c == '"':
		r.pos++
		return r.readString()
	case c == ':':
		r.pos++
		return store.Keyword(r.readToken()), nil
	case c == '#':
		return r.readDispatch(depth)
	case c == '\\':
		r.pos++
		return r.readCharacter()
	case c == '+' || c == '-' || (c >= '0' && c <= '9'):
		return r.readNumber()
	case c == ')' || c == ']' || c == '}':
		return nil, r.errf("unexpected %q", c)
	default:
		return r.readSymbol()
	}
}

func (r *reader) readMap(depth int) (any, error) {
	s := store.Empty()
	for {
		r.skipSpace()
		if r.eof() {
			return nil, r.errf("unterminated map")
		}
		if r.peek() == '}' {
			r.pos++
			return s, nil
		}
		key, err := r.readValue(depth)
		if err != nil {
			return nil, err
		}
		r.skipSpace()
		if r.eof() || r.peek() == '}' {
			return nil, r.errf("map literal with odd number of forms")
		}
		val, err := r.readValue(depth)
		if err != nil {
			return nil, err
		}
		s = s.Assoc(key, val)
	}
}

func (r *reader) readSeq(depth int, closer byte) (any, error) {
	l := store.NewList()
	for {
		r.skipSpace()
		if r.eof() {
			return nil, r.errf("unterminated sequence")
		}
		if r.peek() == closer {
			r.pos++
			return l, nil
		}
		v, err := r.readValue(depth)
		if err != nil {
			return nil, err
		}
		l = l.Append(v)
	}
}

func (r *reader) readSet(depth int) (any, error) {
	s := store.NewSet()
	for {
		r.skipSpace()
		if r.eof() {
			return nil, r.errf("unterminated set")
		}
		if r.peek() == '}' {
			r.pos++
			return s, nil
		}
		v, err := r.readValue(depth)
		if err != nil {
			return nil, err
		}
		s = s.Add(v)
	}
}

// readDispatch handles '#': sets, discards, and tagged literals.
func (r *reader) readDispatch(depth int) (any, error) {
	r.pos++ // consume #
	if r.eof() {
		return nil, r.errf("unexpected end of input after #")
	}
	switch r.peek() {
	case '{':
		r.pos++
		return r.readSet(depth + 1)
	case '_':
		r.pos++
		if _, err := r.readValue(depth + 1); err != nil {
			return nil, err
		}
		return r.readValue(depth)
	default:
		tag := r.readToken()
		if tag == "" {
			return nil, r.errf("expected tag name after #")
		}
		v, err := r.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		if r.opts.Tags != nil {
			if tr, ok := r.opts.Tags.LookupTag(tag); ok {
				return tr.Read(v)
			}
		}
		if r.opts.PreserveUnknown {
			return Tagged{Name: tag, Value: v}, nil
		}
		return nil, fmt.Errorf("%w: #%s", ErrUnknownTag, tag)
	}
}

// readToken consumes up to the next delimiter.
func (r *reader) readToken() string {
	start := r.pos
	for !r.eof() && !isDelim(r.peek()) {
		r.pos++
	}
	return r.src[start:r.pos]
}

func (r *reader) readSymbol() (any, error) {
	tok := r.readToken()
	switch tok {
	case "":
		return nil, r.errf("unexpected character %q", r.peek())
	case "nil":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return store.Symbol(tok), nil
	}
}

func (r *reader) readNumber() (any, error) {
	tok := r.readToken()
	base := tok
	bigMark := false
	if strings.HasSuffix(tok, "N") {
		base, bigMark = tok[:len(tok)-1], true
	} else if strings.HasSuffix(tok, "M") {
		// Exact-decimal literals are read as floats.
		base = tok[:len(tok)-1]
		if f, err := strconv.ParseFloat(base, 64); err == nil {
			return f, nil
		}
		return nil, r.errf("invalid number %q", tok)
	}
	if !bigMark && strings.ContainsAny(base, ".eE") {
		f, err := strconv.ParseFloat(base, 64)
		if err != nil {
			return nil, r.errf("invalid number %q", tok)
		}
		return f, nil
	}
	if n, err := strconv.ParseInt(base, 10, 64); err == nil {
		if bigMark {
			return new(big.Int).SetInt64(n), nil
		}
		return n, nil
	}
	// Out of int64 range (or explicitly marked): arbitrary precision.
	if b, ok := new(big.Int).SetString(base, 10); ok {
		return b, nil
	}
	return nil, r.errf("invalid number %q", tok)
}

func (r *reader) readString() (any, error) {
	var sb strings.Builder
	for {
		if r.eof() {
			return nil, r.errf("unterminated string")
		}
		c := r.src[r.pos]
		switch c {
		case '"':
			r.pos++
			return sb.String(), nil
		case '\\':
			r.pos++
			if r.eof() {
				return nil, r.errf("unterminated string escape")
			}
			switch e := r.src[r.pos]; e {
			case '"', '\\', '/':
				sb.WriteByte(e)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'u':
				if r.pos+4 >= len(r.src) {
					return nil, r.errf("truncated unicode escape")
				}
				n, err := strconv.ParseUint(r.src[r.pos+1:r.pos+5], 16, 32)
				if err != nil {
					return nil, r.errf("invalid unicode escape")
				}
				sb.WriteRune(rune(n))
				r.pos += 4
			default:
				return nil, r.errf("invalid string escape %q", e)
			}
			r.pos++
		default:
			sb.WriteByte(c)
			r.pos++
		}
	}
}

// readCharacter reads a character literal as a one-rune string.
func (r *reader) readCharacter() (any, error) {
	tok := r.readToken()
	switch tok {
	case "newline":
		return "\n", nil
	case "space":
		return " ", nil
	case "tab":
		return "\t", nil
	case "return":
		return "\r", nil
	case "":
		return nil, r.errf("unexpected end of character literal")
	default:
		ch, size := utf8.DecodeRuneInString(tok)
		if size != len(tok) {
			return nil, r.errf("invalid character literal %q", tok)
		}
		return string(ch), nil
	}
}
