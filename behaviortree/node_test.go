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

package behaviortree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/skill"
)

func TestNode_AppendOwnershipIsExclusive(t *testing.T) {
	leaf := NewSkillWrapper(skill.New("skiros:A", "a"))
	seq1 := NewSequence("seq1")
	seq2 := NewSequence("seq2")

	seq1.Append(nil, leaf)
	require.Equal(t, seq1, leaf.Parent())
	require.Len(t, seq1.Children(), 1)

	seq2.Append(nil, leaf)
	require.Equal(t, seq2, leaf.Parent())
	require.Empty(t, seq1.Children())
	require.Len(t, seq2.Children(), 1)
}

func TestNode_AppendOrdering(t *testing.T) {
	a := NewSkillWrapper(skill.New("skiros:A", "a"))
	b := NewSkillWrapper(skill.New("skiros:B", "b"))
	c := NewSkillWrapper(skill.New("skiros:C", "c"))

	seq := NewSequence("seq")
	seq.Append(nil, a, c)
	seq.Append(c, b)

	var labels []string
	for _, n := range seq.Children() {
		labels = append(labels, n.Label)
	}
	require.Equal(t, []string{"a", "b", "c"}, labels)
}

func TestNode_RemapRewritesSkillAndDescendants(t *testing.T) {
	s := skill.New("skiros:Pick", "pick")
	s.Params.AddParam("obj", nil, param.Required)
	leaf := NewSkillWrapper(s)

	ph := param.NewHandler()
	ph.AddParam("obj", nil, param.Required)
	root := NewRoot("root", ph, NewSequence("seq", leaf))

	require.NoError(t, root.Remap("obj", "target"))
	require.True(t, ph.HasParam("target"))
	require.True(t, s.Params.HasParam("target"))
}

func TestCombineSequence(t *testing.T) {
	st, err := CombineSequence([]skill.State{skill.Success, skill.Success})
	require.NoError(t, err)
	require.Equal(t, skill.Success, st)

	st, err = CombineSequence([]skill.State{skill.Success, skill.Failure})
	require.NoError(t, err)
	require.Equal(t, skill.Failure, st)

	st, err = CombineSequence([]skill.State{skill.Success, skill.Running})
	require.NoError(t, err)
	require.Equal(t, skill.Running, st)
}

func TestCombineSelector(t *testing.T) {
	st, err := CombineSelector([]skill.State{skill.Failure, skill.Success})
	require.NoError(t, err)
	require.Equal(t, skill.Success, st)

	st, err = CombineSelector([]skill.State{skill.Failure, skill.Failure})
	require.NoError(t, err)
	require.Equal(t, skill.Failure, st)
}

func TestCombineParallel(t *testing.T) {
	states := []skill.State{skill.Success, skill.Success, skill.Failure}
	require.Equal(t, skill.Success, CombineParallel(2, states))

	states = []skill.State{skill.Failure, skill.Failure, skill.Running}
	require.Equal(t, skill.Failure, CombineParallel(2, states))

	states = []skill.State{skill.Success, skill.Running, skill.Running}
	require.Equal(t, skill.Running, CombineParallel(2, states))
}

func TestCombineNegate(t *testing.T) {
	st, err := CombineNegate(skill.Success)
	require.NoError(t, err)
	require.Equal(t, skill.Failure, st)

	st, err = CombineNegate(skill.Running)
	require.NoError(t, err)
	require.Equal(t, skill.Running, st)
}
