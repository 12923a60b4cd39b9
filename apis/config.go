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

// Config carries read-only knobs that influence view access, conversion,
// and rendering. It is passed by value and should be treated as immutable
// by implementations.
type Config struct {
	// Lenient controls what an accessor returns for an absent,
	// non-primitive field. If true (the default), absence yields the
	// null-equivalent; if false, absence is an error. Primitive-typed
	// accessors fail on absence regardless.
	Lenient bool

	// MaxDepth limits conversion and parse recursion depth.
	// Acts as a safety guard against pathological nesting.
	MaxDepth int

	// Indent is the unit of indentation used by pretty printing.
	Indent string
}
