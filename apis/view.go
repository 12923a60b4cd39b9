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

import (
	"reflect"

	"dirpx.dev/dvx/store"
)

// AnyView is the type-erased face of a typed view: any View[T] satisfies
// it regardless of T. It is what the serializer and converter use to
// recognize views at runtime without knowing their declared type.
type AnyView interface {
	// Store returns the backing persistent store, annotated with the
	// declared view type.
	Store() store.Store

	// ViewType returns the declared view type (the shape struct type),
	// not the runtime type of the proxy value.
	ViewType() reflect.Type
}
