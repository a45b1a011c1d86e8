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

package visitor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skiros2/skiros-go/behaviortree"
	"github.com/skiros2/skiros-go/condition"
	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/skierr"
	"github.com/skiros2/skiros-go/skill"
	"github.com/skiros2/skiros-go/worldmodel"
	"github.com/skiros2/skiros-go/worldmodel/memory"
)

type scriptedBody struct {
	states      []skill.State
	i           int
	starts, ends int
}

func (b *scriptedBody) OnStart(*param.Handler) error { b.starts++; return nil }
func (b *scriptedBody) OnStep(*param.Handler) (skill.State, error) {
	s := b.states[b.i]
	if b.i < len(b.states)-1 {
		b.i++
	}
	return s, nil
}
func (b *scriptedBody) OnEnd(*param.Handler) error { b.ends++; return nil }

func buildTwoSkillSequence(body1, body2 *scriptedBody) *behaviortree.Node {
	s1 := skill.New("skiros:A", "a").WithBody(body1)
	s2 := skill.New("skiros:B", "b").WithBody(body2)
	leaf1 := behaviortree.NewSkillWrapper(s1)
	leaf2 := behaviortree.NewSkillWrapper(s2)
	seq := behaviortree.NewSequence("seq", leaf1, leaf2)
	ph := param.NewHandler()
	return behaviortree.NewRoot("root", ph, seq)
}

func TestExecute_SequenceRunsLeftToRight(t *testing.T) {
	body1 := &scriptedBody{states: []skill.State{skill.Success}}
	body2 := &scriptedBody{states: []skill.State{skill.Running, skill.Success}}
	root := buildTwoSkillSequence(body1, body2)

	exec := NewExecute(memory.New())

	st, err := exec.Traverse(root)
	require.NoError(t, err)
	require.Equal(t, skill.Running, st)
	require.Equal(t, 1, body1.starts)
	require.Equal(t, 1, body2.starts)

	st, err = exec.Traverse(root)
	require.NoError(t, err)
	require.Equal(t, skill.Success, st)
	require.Equal(t, 1, body2.ends)
}

func TestExecute_PreemptUnwindsRunningSkill(t *testing.T) {
	body1 := &scriptedBody{states: []skill.State{skill.Running}}
	body2 := &scriptedBody{states: []skill.State{skill.Success}}
	root := buildTwoSkillSequence(body1, body2)

	exec := NewExecute(memory.New())
	_, err := exec.Traverse(root)
	require.NoError(t, err)
	require.Equal(t, 0, body1.ends)

	exec.Preempt()
	st, err := exec.Traverse(root)
	require.NoError(t, err)
	require.Equal(t, skill.Failure, st)
	require.Equal(t, 1, body1.ends, "OnEnd must be called for the Running leaf on preempt")
}

func TestExecute_PreconditionUnmetFailsBeforeOnStart(t *testing.T) {
	wm := memory.New()
	wm.AddTemplate(worldmodel.Element{Type: "skiros:Box"})
	box, err := wm.Instantiate("skiros:Box", true, nil)
	require.NoError(t, err)

	body := &scriptedBody{states: []skill.State{skill.Success}}
	s := skill.New("skiros:Grasp", "grasp").WithBody(body)
	s.Params.AddParam("obj", box, param.Required)
	s.WithPreconditions(condition.NewHasProperty("open", "obj", "skiros:open", true))
	leaf := behaviortree.NewSkillWrapper(s)
	root := behaviortree.NewRoot("root", param.NewHandler(), leaf)

	exec := NewExecute(wm)
	st, err := exec.Traverse(root)
	require.Error(t, err)
	require.ErrorIs(t, err, skierr.ErrPreconditionUnmet)
	require.Equal(t, skill.Failure, st)
	require.Equal(t, 0, body.starts, "OnStart must not run when a precondition is unmet")
}

func TestReversibleSimulator_RoundTrip(t *testing.T) {
	wm := memory.New()
	obj, err := wm.AddElement(worldmodel.Element{Type: "skiros:Box"}, ":Scene-0", "contain")
	require.NoError(t, err)
	beforeElements := wm.Elements()
	beforeRelations := wm.Relations()

	s := skill.New("skiros:Place", "place")
	s.Params.AddParam("obj", obj, param.Required)
	s.WithPostconditions(condition.NewProperty("placed", "obj", "skiros:Placed", condition.Eq, true, true))
	leaf := behaviortree.NewSkillWrapper(s)
	root := behaviortree.NewRoot("root", param.NewHandler(), leaf)

	sim := NewReversibleSimulator(wm)
	st, err := sim.Traverse(root)
	require.NoError(t, err)
	require.Equal(t, skill.Success, st)

	require.Equal(t, beforeElements, wm.Elements())
	require.Equal(t, beforeRelations, wm.Relations())
}

func TestProgress_SnapshotOneEntryPerNode(t *testing.T) {
	body1 := &scriptedBody{states: []skill.State{skill.Success}}
	body2 := &scriptedBody{states: []skill.State{skill.Success}}
	root := buildTwoSkillSequence(body1, body2)

	exec := NewExecute(memory.New())
	_, err := exec.Traverse(root)
	require.NoError(t, err)

	p := &Progress{}
	_, err = p.Traverse(root)
	require.NoError(t, err)
	require.Len(t, p.Snapshot(), 4) // root, seq, leaf1, leaf2
}

func TestPrint_RendersWithoutMutatingState(t *testing.T) {
	body1 := &scriptedBody{states: []skill.State{skill.Success}}
	body2 := &scriptedBody{states: []skill.State{skill.Success}}
	root := buildTwoSkillSequence(body1, body2)

	before := root.State
	p := &Print{}
	_, err := p.Traverse(root)
	require.NoError(t, err)
	require.Equal(t, before, root.State)
	require.Equal(t, 0, body1.starts)
	require.Contains(t, p.String(), "Root")
	require.Contains(t, p.String(), "Sequence")
}
