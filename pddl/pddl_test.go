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

package pddl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skiros2/skiros-go/skierr"
)

func TestTypes_ToPDDLPreservesFirstSeenOrder(t *testing.T) {
	ty := NewTypes()
	ty.AddType("box", "thing")
	ty.AddType("table", "thing")
	ty.AddType("robot", "agent")
	ty.AddType("box", "thing") // duplicate, no-op

	out := ty.ToPDDL()
	require.Contains(t, out, "box table - thing")
	require.Contains(t, out, "robot - agent")
}

func TestTypes_AddTypeSelfReferenceIsNoop(t *testing.T) {
	ty := NewTypes()
	ty.AddType("thing", "thing")
	require.Equal(t, "(:types \n)", ty.ToPDDL())
}

func TestPredicate_IsFunction(t *testing.T) {
	p := &Predicate{Name: "weight", Operator: "<", Value: 5.0}
	require.True(t, p.IsFunction())

	p2 := &Predicate{Name: "at", Operator: "=", Value: "placed"}
	require.False(t, p2.IsFunction(), "string desired values are predicate identifiers, not fluents")

	p3 := &Predicate{Name: "at"}
	require.False(t, p3.IsFunction())
}

func TestPredicate_ToActionPDDLNegated(t *testing.T) {
	p := &Predicate{
		Name:    "holding",
		Negated: true,
		Params:  []Param{{ParamType: "x", Key: "obj", ValueType: "skiros:Box"}},
	}
	require.Equal(t, "(not (holding ?obj))", p.ToActionPDDL())
}

func TestPredicate_ToActionPDDLFunction(t *testing.T) {
	p := &Predicate{
		Name:     "weight",
		Operator: "<",
		Value:    5.0,
		Params:   []Param{{ParamType: "x", Key: "obj"}},
	}
	require.Equal(t, "(< (weight ?obj) 5)", p.ToActionPDDL())
}

func TestGroundPredicate_ToPDDL(t *testing.T) {
	g := &GroundPredicate{Name: "at", Params: []string{"box1", "table1"}}
	require.Equal(t, "(at box1 table1)", g.ToPDDL())
}

func TestAction_ToPDDLRendersDurationOne(t *testing.T) {
	a := &Action{
		Name:       "Place",
		Params:     map[string]string{"obj": "skiros:Box"},
		ParamOrder: []string{"obj"},
		Preconditions: []*Predicate{
			{Name: "holding", Params: []Param{{ParamType: "x", Key: "obj"}}},
		},
		Effects: []*Predicate{
			{Name: "placed", Params: []Param{{ParamType: "x", Key: "obj"}}},
		},
	}
	out := a.ToPDDL()
	require.Contains(t, out, ":duration (= ?duration 1)")
	require.Contains(t, out, "(at start (holding ?obj))")
	require.Contains(t, out, "(at end (placed ?obj))")
}

func TestCompiler_AddActionSkipsEmptyPreconditionsOrEffects(t *testing.T) {
	c := NewCompiler(t.TempDir(), "untitled", "plan.py", zerolog.Nop())
	c.AddAction(&Action{Name: "NoOp"})
	require.Empty(t, c.actions)
}

func TestCompiler_AddSuperTypesOnParamTypeClash(t *testing.T) {
	c := NewCompiler(t.TempDir(), "untitled", "plan.py", zerolog.Nop())

	a1 := &Action{
		Name:       "Grasp",
		Params:     map[string]string{"obj": "skiros:Box"},
		ParamOrder: []string{"obj"},
		Preconditions: []*Predicate{
			{Name: "reachable", Params: []Param{{ParamType: "x", Key: "obj", ValueType: "skiros:Box"}}},
		},
		Effects: []*Predicate{
			{Name: "holding", Params: []Param{{ParamType: "x", Key: "obj", ValueType: "skiros:Box"}}},
		},
	}
	a2 := &Action{
		Name:       "GraspTool",
		Params:     map[string]string{"obj": "skiros:Tool"},
		ParamOrder: []string{"obj"},
		Preconditions: []*Predicate{
			{Name: "reachable", Params: []Param{{ParamType: "x", Key: "obj", ValueType: "skiros:Tool"}}},
		},
		Effects: []*Predicate{
			{Name: "holding", Params: []Param{{ParamType: "x", Key: "obj", ValueType: "skiros:Tool"}}},
		},
	}
	c.AddAction(a1)
	c.AddAction(a2)

	require.Len(t, c.predicates, 2)
	for _, p := range c.predicates {
		require.Equal(t, p.Name+"x", p.Params[0].ValueType)
	}
	require.Contains(t, c.types.ToPDDL(), "skiros:Box")
	require.Contains(t, c.types.ToPDDL(), "skiros:Tool")
}

func TestCompiler_PrintProblemGroupsObjectsByTypeSorted(t *testing.T) {
	c := NewCompiler(t.TempDir(), "untitled", "plan.py", zerolog.Nop())
	c.SetObjects(map[string][]string{
		"skiros:Box":   {"box1", "box2"},
		"skiros:Robot": {"robot1"},
	})
	c.AddGoal(&GroundPredicate{Name: "placed", Params: []string{"box1"}})
	out := c.PrintProblem()
	require.Contains(t, out, "box1 box2 - skiros:Box")
	require.Contains(t, out, "robot1 - skiros:Robot")
	require.Contains(t, out, "(placed box1)")
}

func TestCompiler_InvokePlannerReturnsPlanText(t *testing.T) {
	workspace := t.TempDir()
	scriptPath := filepath.Join(workspace, "fake-planner.sh")
	script := "#!/bin/sh\necho 'solution' > \"$4\"\n"
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o755))

	c := NewCompiler(workspace, "untitled", scriptPath, zerolog.Nop())
	c.AddGoal(&GroundPredicate{Name: "placed", Params: []string{"box1"}})

	plan, err := c.InvokePlanner(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, "solution\n", plan)

	require.FileExists(t, filepath.Join(workspace, domainFileName))
	require.FileExists(t, filepath.Join(workspace, problemFileName))
	require.NoFileExists(t, filepath.Join(workspace, "pddlplan"))
}

func TestCompiler_InvokePlannerInfeasibleWhenNoPlanFile(t *testing.T) {
	workspace := t.TempDir()
	scriptPath := filepath.Join(workspace, "fake-planner.sh")
	script := "#!/bin/sh\nexit 0\n"
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o755))

	c := NewCompiler(workspace, "untitled", scriptPath, zerolog.Nop())
	_, err := c.InvokePlanner(context.Background(), true)
	require.ErrorIs(t, err, skierr.ErrPlannerInfeasible)
}

func TestNewWorkspace_CreatesUniqueDirectories(t *testing.T) {
	root := t.TempDir()
	w1, err := NewWorkspace(root)
	require.NoError(t, err)
	w2, err := NewWorkspace(root)
	require.NoError(t, err)
	require.NotEqual(t, w1, w2)
	require.DirExists(t, w1)
	require.DirExists(t, w2)
}
