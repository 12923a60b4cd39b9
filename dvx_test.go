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

package dvx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"dirpx.dev/dvx"
	"dirpx.dev/dvx/apis"
	"dirpx.dev/dvx/config"
	"dirpx.dev/dvx/edn"
	"dirpx.dev/dvx/store"
	"dirpx.dev/dvx/view"
)

type Pt struct {
	X int64 `edn:"x"`
	Y int64 `edn:"y"`
}

type Line struct {
	From view.View[Pt] `edn:"from"`
	To   view.View[Pt] `edn:"to"`
}

func mkPt(t *testing.T, x, y int64) view.View[Pt] {
	t.Helper()
	v := dvx.New[Pt]()
	v, err := v.Assoc("X", x)
	require.NoError(t, err)
	v, err = v.Assoc("Y", y)
	require.NoError(t, err)
	return v
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	v := mkPt(t, 1, 2)

	text, err := dvx.Serialize(v)
	require.NoError(t, err)
	assert.Equal(t, "{:x 1, :y 2}", text)

	back, err := dvx.Deserialize[Pt](text)
	require.NoError(t, err)
	assert.True(t, back.Equal(v), "round-trip changed the value")

	x, err := view.Get[int64](back, "X")
	require.NoError(t, err)
	assert.Equal(t, int64(1), x)
}

func TestRegisterTag(t *testing.T) {
	require.NoError(t, dvx.RegisterTag[Pt]("Pt"))
	defer dvx.DeregisterTag[Pt]()

	v := mkPt(t, 1, 2)
	text, err := dvx.Serialize(v)
	require.NoError(t, err)
	assert.Equal(t, "#Pt{:x 1, :y 2}", text)

	back, err := dvx.Deserialize[Pt](text)
	require.NoError(t, err)
	assert.True(t, back.Equal(v))

	// a materialized value serializes to the same tagged text
	text, err = dvx.Serialize(Pt{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, "#Pt{:x 1, :y 2}", text)

	materialized, err := back.Value()
	require.NoError(t, err)
	assert.Equal(t, Pt{X: 1, Y: 2}, materialized)

	// a second claimant for the tag is rejected
	err = dvx.RegisterTag[Line]("Pt")
	assert.Error(t, err)
}

func TestRegisterTag_NestedRecords(t *testing.T) {
	require.NoError(t, dvx.RegisterTag[Pt]("Pt"))
	defer dvx.DeregisterTag[Pt]()

	l := dvx.New[Line]()
	l, err := l.Assoc("From", mkPt(t, 0, 0))
	require.NoError(t, err)
	l, err = l.Assoc("To", mkPt(t, 3, 4))
	require.NoError(t, err)

	text, err := dvx.Serialize(l)
	require.NoError(t, err)
	assert.Equal(t, "{:from #Pt{:x 0, :y 0}, :to #Pt{:x 3, :y 4}}", text)

	back, err := dvx.Deserialize[Line](text)
	require.NoError(t, err)
	to, err := view.Get[view.View[Pt]](back, "To")
	require.NoError(t, err)
	y, err := view.Get[int64](to, "Y")
	require.NoError(t, err)
	assert.Equal(t, int64(4), y)
}

func TestUnknownTagFails(t *testing.T) {
	_, err := dvx.Read("#Nope{:a 1}")
	assert.ErrorIs(t, err, edn.ErrUnknownTag)

	_, err = dvx.Deserialize[Pt]("#Nope{:a 1}")
	assert.ErrorIs(t, err, edn.ErrUnknownTag)
}

func TestDeserialize_NonMapFails(t *testing.T) {
	_, err := dvx.Deserialize[Pt]("[1 2]")
	assert.ErrorIs(t, err, dvx.ErrNotMap)
}

func TestNumericFidelity(t *testing.T) {
	// an integral number stays integral through text
	got, err := dvx.Read("{:age 24}")
	require.NoError(t, err)
	s := got.(store.Store)
	age, ok := s.Get(store.Keyword("age"))
	require.True(t, ok)
	assert.Equal(t, int64(24), age)

	text, err := dvx.Serialize(24)
	require.NoError(t, err)
	assert.Equal(t, "24", text)

	// floats always carry a decimal point
	text, err = dvx.Serialize(24.0)
	require.NoError(t, err)
	assert.Equal(t, "24.0", text)
}

func TestNestedCollectionsRoundTrip(t *testing.T) {
	text, err := dvx.Serialize([][]int{{1, 2}, {3}})
	require.NoError(t, err)
	assert.Equal(t, "[[1 2] [3]]", text)

	got, err := dvx.Read(text)
	require.NoError(t, err)
	want := store.NewList(
		store.NewList(int64(1), int64(2)),
		store.NewList(int64(3)),
	)
	assert.True(t, got.(store.List).Equal(want))
}

func TestViewImmutabilityThroughGlobals(t *testing.T) {
	base := mkPt(t, 1, 2)
	derived, err := base.Assoc("X", int64(9))
	require.NoError(t, err)

	x, err := view.Get[int64](base, "X")
	require.NoError(t, err)
	assert.Equal(t, int64(1), x, "builder mutated its receiver")

	x, err = view.Get[int64](derived, "X")
	require.NoError(t, err)
	assert.Equal(t, int64(9), x)

	// removal is idempotent
	once := derived.Without("X")
	assert.True(t, once.Equal(once.Without("X")))
}

func TestExternalTranslatorViaMock(t *testing.T) {
	ctrl := gomock.NewController(t)

	type instant struct{ unix int64 }

	tr := apis.NewMockTranslator(ctrl)
	tr.EXPECT().Tag().Return("inst").AnyTimes()
	tr.EXPECT().Write(gomock.Any()).DoAndReturn(func(v any) (string, error) {
		return "\"@" + store.FormatFloat(float64(v.(instant).unix)) + "\"", nil
	}).AnyTimes()
	tr.EXPECT().Read(gomock.Any()).DoAndReturn(func(v any) (any, error) {
		return instant{unix: 99}, nil
	}).AnyTimes()

	require.NoError(t, dvx.Register[instant](tr))
	defer dvx.Deregister[instant]()

	text, err := dvx.Serialize(instant{unix: 99})
	require.NoError(t, err)
	assert.Equal(t, `#inst "@99.0"`, text)

	got, err := dvx.Read(text)
	require.NoError(t, err)
	assert.Equal(t, instant{unix: 99}, got)
}

func TestSetConfigPreservesRegistrations(t *testing.T) {
	require.NoError(t, dvx.RegisterTag[Pt]("Pt"))
	defer dvx.DeregisterTag[Pt]()

	before := dvx.Registry().Count()
	dvx.SetConfig(config.NewConfig(config.WithLenient(false)))
	defer dvx.SetConfig(config.DefaultConfig())

	assert.Equal(t, before, dvx.Registry().Count(), "rebuild dropped registrations")

	// strict mode rejects absent fields
	v := dvx.New[Pt]()
	_, err := v.Get("unknown")
	assert.ErrorIs(t, err, view.ErrMissingField)
}

func TestFormatString(t *testing.T) {
	v := mkPt(t, 1, 2)
	text, err := dvx.FormatString(v)
	require.NoError(t, err)
	assert.Equal(t, "{:x 1,\n :y 2}\n", text)
}

func TestPinningControlsRebuilds(t *testing.T) {
	assert.False(t, dvx.IsRegistryPinned())

	dvx.PinRegistry()
	assert.True(t, dvx.IsRegistryPinned())
	reg := dvx.Registry()
	dvx.SetConfig(dvx.Config())
	assert.True(t, reg == dvx.Registry(), "pinned registry was rebuilt")
	dvx.UnpinRegistry()
	assert.False(t, dvx.IsRegistryPinned())

	dvx.SetConfig(dvx.Config())
	assert.True(t, reg != dvx.Registry(), "unpinned registry was not rebuilt")
}
