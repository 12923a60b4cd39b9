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

// Serializer renders values to their tagged textual form.
// Typical chain: ViewStrategy -> TranslatorStrategy -> ValueStrategy.
type Serializer interface {
	// Serialize returns the textual form of v, or an error if no
	// strategy can render v's runtime type.
	Serialize(v any, cfg Config) (string, error)
}

// WriteStrategy is a pluggable serialization step. A Serializer chains
// multiple strategies in order; the first one that handles the value's
// runtime shape wins.
type WriteStrategy interface {
	// TryWrite attempts to render v. It returns handled=false to fall
	// through to the next strategy; an error with handled=true stops
	// the chain.
	TryWrite(v any, cfg Config) (text string, handled bool, err error)
}
