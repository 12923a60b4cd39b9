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

//go:generate mockgen -source translator.go -destination translator_mocks.go -package apis

// Translator is a bidirectional codec between a tagged textual literal
// and an external value type. Exactly one translator may be active per
// external type and per tag at a time; see Registry.
//
// Implementations must be safe for concurrent use: Read and Write are
// invoked from arbitrary deserialize/serialize calls without locking.
type Translator interface {
	// Tag returns the reader tag this translator owns, without the
	// leading '#'. Must be non-empty and stable.
	Tag() string

	// Read converts a parsed store-side fragment (the value following
	// the tag) into the external host value.
	Read(v any) (any, error)

	// Write renders the external host value as the textual form that
	// follows the tag (for example "{:x 1, :y 2}").
	Write(v any) (string, error)
}

// Tagger is an optional fast path for types that declare their own
// canonical reader tag. It plays the role a self-naming contract plays
// for identity resolution: no registry lookup is needed to learn the
// tag under which the type wants to serialize.
type Tagger interface {
	// EdnTag returns the canonical reader tag, without the leading '#'.
	EdnTag() string
}
