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

package manager

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skiros2/skiros-go/behaviortree/visitor"
	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/skill"
	"github.com/skiros2/skiros-go/ticker"
	"github.com/skiros2/skiros-go/worldmodel"
	"github.com/skiros2/skiros-go/worldmodel/memory"
)

func nopFactory(typ string) skill.Factory {
	return func(label string) *skill.Skill {
		s := skill.New(typ, label)
		s.Params.AddParam("obj", nil, param.Optional)
		return s
	}
}

// runningBody never leaves Running on its own, so a task built from it
// only ever terminates via preemption.
type runningBody struct{}

func (runningBody) OnStart(*param.Handler) error        { return nil }
func (runningBody) OnStep(*param.Handler) (skill.State, error) { return skill.Running, nil }
func (runningBody) OnEnd(*param.Handler) error          { return nil }

func runningFactory(typ string) skill.Factory {
	return func(label string) *skill.Skill {
		s := skill.New(typ, label).WithBody(runningBody{})
		s.Params.AddParam("obj", nil, param.Optional)
		return s
	}
}

func newTestManager() (*Manager, *memory.Model) {
	wm := memory.New()
	wm.AddTemplate(worldmodel.Element{Type: "skiros:Robot"})
	tk := ticker.New(zerolog.Nop(), visitor.NewExecute(wm))
	return New(wm, tk, zerolog.Nop()), wm
}

func TestManager_RegisterAgentInstantiatesOnce(t *testing.T) {
	m, wm := newTestManager()
	require.NoError(t, m.RegisterAgent("skiros:Robot", "robot-1"))
	require.NotEmpty(t, m.robotID)

	elements := wm.Elements()
	require.Len(t, elements, 1)
	require.Equal(t, "skiros:Robot", elements[0].Type)

	// Re-registering the same agent must reuse the same robot id, not
	// instantiate a second one.
	require.NoError(t, m.RegisterAgent("skiros:Robot", "robot-1"))
	require.Len(t, wm.Elements(), 1)
}

func TestManager_AddSkillPublishesElementAndClass(t *testing.T) {
	m, wm := newTestManager()
	require.NoError(t, m.RegisterAgent("skiros:Robot", "robot-1"))
	require.NoError(t, m.AddSkill("skiros:Grasp", nopFactory("skiros:Grasp")))

	elements := wm.Elements()
	require.Len(t, elements, 2) // robot + skill

	descs := m.Describe()
	require.Len(t, descs, 1)
	require.Equal(t, "skiros:Grasp", descs[0].Type)

	parent, found, err := wm.GetType("skiros:Grasp")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "skiros:Skill", parent)
}

func TestManager_AddTaskUnknownSkillFails(t *testing.T) {
	m, _ := newTestManager()
	_, err := m.AddTask([]SkillStepRequest{{Type: "skiros:Nope", Label: "x"}})
	require.Error(t, err)
}

func TestManager_ExecuteTaskRunsToSuccess(t *testing.T) {
	m, _ := newTestManager()
	require.NoError(t, m.RegisterAgent("skiros:Robot", "robot-1"))
	require.NoError(t, m.AddSkill("skiros:Grasp", nopFactory("skiros:Grasp")))

	uid, err := m.AddTask([]SkillStepRequest{{Type: "skiros:Grasp", Label: "grasp-1"}})
	require.NoError(t, err)

	// The observer is installed before the ticker starts: the first tick
	// runs at once and this one-skill task ends on it.
	var gotTerminal bool
	var terminalState string
	m.ObserveProgress(func(ev ProgressEvent) {
		if ev.TaskID == uid && ev.Type == "Task" {
			terminalState = ev.State
			gotTerminal = true
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.True(t, m.ExecuteTask(ctx))

	require.Eventually(t, func() bool { return gotTerminal }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "Success", terminalState)
	m.ClearTasks()
}

func TestManager_PrintAndSimulateTask(t *testing.T) {
	m, _ := newTestManager()
	require.NoError(t, m.RegisterAgent("skiros:Robot", "robot-1"))
	require.NoError(t, m.AddSkill("skiros:Grasp", nopFactory("skiros:Grasp")))

	uid, err := m.AddTask([]SkillStepRequest{{Type: "skiros:Grasp", Label: "grasp-1"}})
	require.NoError(t, err)

	text, err := m.PrintTask(uid)
	require.NoError(t, err)
	require.Contains(t, text, "Skill")

	st, err := m.SimulateTask(uid)
	require.NoError(t, err)
	require.Equal(t, skill.Success, st)
}

func TestManager_HandleRequestReservesActions(t *testing.T) {
	m, _ := newTestManager()
	resp := m.HandleRequest(context.Background(), TaskRequest{Action: ActionPause, TaskID: 1})
	require.False(t, resp.OK)
	resp = m.HandleRequest(context.Background(), TaskRequest{Action: ActionKill, TaskID: 1})
	require.False(t, resp.OK)
}

func TestManager_HandleRequestPreemptStopsRunningTask(t *testing.T) {
	m, _ := newTestManager()
	require.NoError(t, m.RegisterAgent("skiros:Robot", "robot-1"))
	require.NoError(t, m.AddSkill("skiros:Hold", runningFactory("skiros:Hold")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startResp := m.HandleRequest(ctx, TaskRequest{Action: ActionStart, Steps: []SkillStepRequest{{Type: "skiros:Hold", Label: "hold-1"}}})
	require.True(t, startResp.OK)

	preemptResp := m.HandleRequest(ctx, TaskRequest{Action: ActionPreempt, TaskID: startResp.TaskID})
	require.True(t, preemptResp.OK)
	require.Equal(t, startResp.TaskID, preemptResp.TaskID)

	var gotTerminal bool
	m.ObserveProgress(func(ev ProgressEvent) {
		if ev.TaskID == startResp.TaskID && ev.Type == "Task" {
			gotTerminal = true
		}
	})
	require.Eventually(t, func() bool { return gotTerminal }, 2*time.Second, 10*time.Millisecond)
	m.ClearTasks()
}
