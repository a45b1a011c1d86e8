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

package skill

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skiros2/skiros-go/condition"
	"github.com/skiros2/skiros-go/param"
)

type countingBody struct {
	starts, steps, ends int
}

func (b *countingBody) OnStart(*param.Handler) error { b.starts++; return nil }
func (b *countingBody) OnStep(*param.Handler) (State, error) {
	b.steps++
	return Success, nil
}
func (b *countingBody) OnEnd(*param.Handler) error { b.ends++; return nil }

func TestSkill_WithersAccumulate(t *testing.T) {
	body := &countingBody{}
	s := New("skiros:PickObject", "pick").
		WithBody(body).
		WithPreconditions(condition.NewIsSpecified("spec", "obj", true)).
		WithPostconditions(condition.NewProperty("grasped", "obj", "skiros:Grasped", condition.Eq, true, true))

	require.Equal(t, "skiros:PickObject", s.Type)
	require.Len(t, s.Preconditions, 1)
	require.Len(t, s.Postconditions, 1)

	state, err := s.Body.OnStep(s.Params)
	require.NoError(t, err)
	require.Equal(t, Success, state)
	require.Equal(t, 1, body.steps)
}

func TestSkill_RemapRewritesParamsAndConditions(t *testing.T) {
	s := New("skiros:PickObject", "pick")
	s.Params.AddParam("obj", nil, param.Required)
	s.WithPreconditions(condition.NewIsSpecified("spec", "obj", true))

	require.NoError(t, s.Remap("obj", "target"))

	require.True(t, s.Params.HasParam("target"))
	require.False(t, s.Params.HasParam("obj"))
	require.Equal(t, []string{"target"}, s.Preconditions[0].Keys())
}

func TestState_String(t *testing.T) {
	require.Equal(t, "Running", Running.String())
	require.Equal(t, "Unknown", State(99).String())
}
