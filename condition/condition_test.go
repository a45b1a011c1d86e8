/*
   Copyright 2026 The skiros-go Authors

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

package condition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/worldmodel"
	"github.com/skiros2/skiros-go/worldmodel/memory"
)

func newHandlerWithElement(t *testing.T, key string, e worldmodel.Element) *param.Handler {
	t.Helper()
	ph := param.NewHandler()
	ph.AddParam(key, e, param.Required)
	return ph
}

func TestProperty_SetTrueRevertRoundTrip(t *testing.T) {
	e := worldmodel.Element{ID: "e1", Type: "skiros:Box"}
	e.SetProperty("skiros:Weight", 1.0)
	ph := newHandlerWithElement(t, "obj", e)
	wm := memory.New()

	c := NewProperty("c1", "obj", "skiros:Weight", Eq, 5.0, true)

	ok, err := c.Evaluate(ph, wm)
	require.NoError(t, err)
	require.False(t, ok)

	snap, applied, err := c.SetTrue(ph, wm)
	require.NoError(t, err)
	require.True(t, applied)

	ok, err = c.Evaluate(ph, wm)
	require.NoError(t, err)
	require.True(t, ok)

	reverted, err := c.Revert(ph, wm, snap)
	require.NoError(t, err)
	require.True(t, reverted)

	v, err := ph.GetParamValue("obj")
	require.NoError(t, err)
	restored := v.(worldmodel.Element)
	val, _ := restored.GetProperty("skiros:Weight")
	require.Equal(t, 1.0, val)
}

func TestProperty_HasConflict(t *testing.T) {
	a := NewProperty("a", "obj", "skiros:Weight", Eq, 5.0, true)
	b := NewProperty("b", "obj", "skiros:Weight", Eq, 5.0, false)
	c := NewProperty("c", "obj", "skiros:Height", Eq, 5.0, false)

	require.True(t, a.HasConflict(b))
	require.True(t, b.HasConflict(a))
	require.False(t, a.HasConflict(c))
}

func TestIsEqual_ReflexiveSymmetricTransitive(t *testing.T) {
	a := NewProperty("a", "obj", "skiros:Weight", Eq, 5.0, true)
	b := NewProperty("b", "obj", "skiros:Weight", Eq, 5.0, true)
	c := NewProperty("c", "obj", "skiros:Weight", Eq, 5.0, true)

	require.True(t, a.IsEqual(a))
	require.True(t, a.IsEqual(b))
	require.True(t, b.IsEqual(a))
	require.True(t, b.IsEqual(c))
	require.True(t, a.IsEqual(c))
}

func TestHasConflict_ImpliesNotIsEqual(t *testing.T) {
	conditions := []Condition{
		NewProperty("a", "obj", "skiros:Weight", Eq, 5.0, true),
		NewIsSpecified("b", "obj", true),
		NewGenerate("c", "obj", true),
	}
	for _, a := range conditions {
		for _, b := range conditions {
			if a.HasConflict(b) {
				require.False(t, a.IsEqual(b), "%s conflicts with and equals %s", a.Description(), b.Description())
			}
		}
	}
}

func TestIsSpecified_GenerateDistinctOnElementCount(t *testing.T) {
	wm := memory.New()
	wm.AddTemplate(worldmodel.Element{ID: "", Type: "skiros:Box", Label: "==FAKE=="})

	ph := newHandlerWithElement(t, "obj", worldmodel.Element{Type: "skiros:Box", Label: "==FAKE=="})
	before := len(wm.Elements())

	isSpec := NewIsSpecified("spec", "obj", true)
	_, ok, err := isSpec.SetTrue(ph, wm)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, before, len(wm.Elements()), "IsSpecified.SetTrue must not add a world-model element")

	ph2 := newHandlerWithElement(t, "obj", worldmodel.Element{Type: "skiros:Box", Label: "==FAKE=="})
	gen := NewGenerate("gen", "obj", true)
	_, ok, err = gen.SetTrue(ph2, wm)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, before+1, len(wm.Elements()), "Generate.SetTrue must add a world-model element")
}

func TestRelation_SetTrueRevert(t *testing.T) {
	wm := memory.New()
	a, err := wm.AddElement(worldmodel.Element{Type: "skiros:Box"}, ":Scene-0", "contain")
	require.NoError(t, err)
	b, err := wm.AddElement(worldmodel.Element{Type: "skiros:Table"}, ":Scene-0", "contain")
	require.NoError(t, err)

	ph := param.NewHandler()
	ph.AddParam("obj", a, param.Required)
	ph.AddParam("loc", b, param.Required)

	c := NewRelation("on", "obj", "loc", "skiros:contain", true)
	ok, err := c.Evaluate(ph, wm)
	require.NoError(t, err)
	require.False(t, ok)

	snap, applied, err := c.SetTrue(ph, wm)
	require.NoError(t, err)
	require.True(t, applied)

	ok, err = c.Evaluate(ph, wm)
	require.NoError(t, err)
	require.True(t, ok)

	reverted, err := c.Revert(ph, wm, snap)
	require.NoError(t, err)
	require.True(t, reverted)

	ok, err = c.Evaluate(ph, wm)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOnType_SubclassMatch(t *testing.T) {
	wm := memory.New()
	require.NoError(t, wm.AddClass("skiros:Box", "skiros:Container"))
	e := worldmodel.Element{ID: "e1", Type: "skiros:Box"}
	ph := newHandlerWithElement(t, "obj", e)

	c := NewOnType("t", "obj", "skiros:Container")
	ok, err := c.Evaluate(ph, wm)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFunction_Evaluate(t *testing.T) {
	e := worldmodel.Element{ID: "e1", Type: "skiros:Box"}
	e.SetProperty("skiros:Weight", 3.0)
	ph := newHandlerWithElement(t, "obj", e)
	wm := memory.New()

	c, err := NewFunction("f", []string{"obj"}, `properties["obj"]["skiros:Weight"][0] < 5.0`, true)
	require.NoError(t, err)

	ok, err := c.Evaluate(ph, wm)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOr_EvaluateAndSetTrue(t *testing.T) {
	e := worldmodel.Element{Type: "skiros:Box", Label: "==FAKE=="}
	ph := newHandlerWithElement(t, "obj", e)
	wm := memory.New()
	wm.AddTemplate(worldmodel.Element{Type: "skiros:Box", Label: "==FAKE=="})

	isSpec := NewIsSpecified("a", "obj", true)
	onType := NewOnType("b", "obj", "skiros:Box")
	or := NewOr("or", isSpec, onType)

	ok, err := or.Evaluate(ph, wm)
	require.NoError(t, err)
	require.True(t, ok, "onType already matches")

	snap, applied, err := or.SetTrue(ph, wm)
	require.NoError(t, err)
	require.True(t, applied)
	require.Nil(t, snap, "no mutation needed when a child already evaluates true")
}
