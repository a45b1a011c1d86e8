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

package planner

import (
	"testing"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/require"

	"github.com/skiros2/skiros-go/condition"
	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/skill"
	"github.com/skiros2/skiros-go/worldmodel"
	"github.com/skiros2/skiros-go/worldmodel/memory"
)

// openBody actuates "skiros:open" onto the bound subject element directly
// in the world model, standing in for a real robot primitive.
type openBody struct{ wm worldmodel.Model }

func (b openBody) OnStart(*param.Handler) error { return nil }
func (b openBody) OnStep(ph *param.Handler) (skill.State, error) {
	v, err := ph.GetParamValue("obj")
	if err != nil {
		return skill.Error, err
	}
	e := v.(worldmodel.Element)
	e.SetProperty("skiros:open", true)
	if err := b.wm.UpdateElement(e); err != nil {
		return skill.Error, err
	}
	if err := ph.Specify("obj", e); err != nil {
		return skill.Error, err
	}
	return skill.Success, nil
}
func (b openBody) OnEnd(*param.Handler) error { return nil }

func TestPlanner_ExpandsActionToSatisfyFailedPrecondition(t *testing.T) {
	wm := memory.New()
	wm.AddTemplate(worldmodel.Element{Type: "skiros:Box"})
	box, err := wm.Instantiate("skiros:Box", true, nil)
	require.NoError(t, err)

	ph := param.NewHandler()
	ph.AddParam("obj", box, param.Required)

	openSkill := skill.New("skiros:Open", "open-1")
	openSkill.Params = ph
	openSkill.Body = openBody{wm: wm}
	openSkill.Postconditions = []condition.Condition{
		condition.NewHasProperty("open-post", "obj", "skiros:open", true),
	}

	p := New(wm, ph)
	p.AddSkill(openSkill)

	goal := []condition.Condition{condition.NewHasProperty("goal", "obj", "skiros:open", true)}
	node, err := p.Plan(goal)
	require.NoError(t, err)

	status := tickUntilDone(t, node)
	require.Equal(t, bt.Success, status)

	reloaded, ok, err := wm.GetElement(box.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, reloaded.HasProperty("skiros:open"))
}

func TestPlanner_AlreadySatisfiedGoalNeedsNoAction(t *testing.T) {
	wm := memory.New()
	wm.AddTemplate(worldmodel.Element{Type: "skiros:Box"})
	box, err := wm.Instantiate("skiros:Box", true, nil)
	require.NoError(t, err)
	box.SetProperty("skiros:open", true)
	require.NoError(t, wm.UpdateElement(box))

	ph := param.NewHandler()
	ph.AddParam("obj", box, param.Required)

	p := New(wm, ph)
	goal := []condition.Condition{condition.NewHasProperty("goal", "obj", "skiros:open", true)}
	node, err := p.Plan(goal)
	require.NoError(t, err)

	status := tickUntilDone(t, node)
	require.Equal(t, bt.Success, status)
}

func TestPlanner_EmptyGoalErrors(t *testing.T) {
	wm := memory.New()
	ph := param.NewHandler()
	p := New(wm, ph)
	_, err := p.Plan(nil)
	require.Error(t, err)
}

func tickUntilDone(t *testing.T, node bt.Node) bt.Status {
	t.Helper()
	tick, children := node()
	for i := 0; i < 10; i++ {
		status, err := tick(children)
		require.NoError(t, err)
		if status != bt.Running {
			return status
		}
	}
	t.Fatal("tree did not converge within 10 ticks")
	return bt.Failure
}
