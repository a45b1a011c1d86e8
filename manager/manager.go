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

// Package manager wires the world model, the skill registry, and the tick
// engine together behind a single facade, grounded on
// original_source/skiros2_skill/ros/skill_manager.py's SkillManager class.
package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/skiros2/skiros-go/behaviortree"
	"github.com/skiros2/skiros-go/behaviortree/visitor"
	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/skierr"
	"github.com/skiros2/skiros-go/skill"
	"github.com/skiros2/skiros-go/ticker"
	"github.com/skiros2/skiros-go/worldmodel"
)

// Manager is the SkillManager facade: it owns the robot's registration in
// the world model, its loaded skill registry, and the Ticker that drives
// tasks built from that registry.
type Manager struct {
	wm     worldmodel.Model
	ticker *ticker.Ticker
	log    zerolog.Logger

	mu      sync.Mutex
	robotID string
	skills  map[string]skill.Factory
	tasks   map[uint64]*behaviortree.Node
}

// New constructs a Manager over wm, driving tasks through tk.
func New(wm worldmodel.Model, tk *ticker.Ticker, log zerolog.Logger) *Manager {
	return &Manager{
		wm:     wm,
		ticker: tk,
		log:    log,
		skills: make(map[string]skill.Factory),
		tasks:  make(map[uint64]*behaviortree.Node),
	}
}

// RegisterAgent resolves-or-instantiates the robot element in the world
// model, matching _registerAgent's dedupe-on-restart behavior: a robot
// already present has its stale published skills removed before being
// reused; a new robot is instantiated fresh.
func (m *Manager) RegisterAgent(robotType, agentName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, found, err := m.wm.ResolveElement(worldmodel.Element{Type: robotType, Label: agentName})
	if err != nil {
		return fmt.Errorf("manager: resolve agent: %w", err)
	}
	if found {
		rels, err := m.wm.GetRelations(existing.ID, "skiros:hasSkill", "")
		if err != nil {
			return fmt.Errorf("manager: list existing skills: %w", err)
		}
		for _, r := range rels {
			if err := m.wm.RemoveElement(r.Dst); err != nil {
				return fmt.Errorf("manager: remove stale skill %s: %w", r.Dst, err)
			}
		}
		m.robotID = existing.ID
		m.log.Info().Str("robot", m.robotID).Msg("found existing robot, skipping registration")
	} else {
		inst, err := m.wm.Instantiate(robotType, true, nil)
		if err != nil {
			return fmt.Errorf("manager: instantiate robot: %w", err)
		}
		m.robotID = inst.ID
		m.log.Info().Str("robot", m.robotID).Msg("registered new robot")
	}

	robot, ok, err := m.wm.GetElement(m.robotID)
	if err != nil {
		return fmt.Errorf("manager: reload robot: %w", err)
	}
	if !ok {
		return fmt.Errorf("manager: reload robot: %w", skierr.ErrUnknownElement)
	}
	robot.Label = agentName
	robot.SetProperty("skiros:SkillMgr", agentName)
	if err := m.wm.UpdateElement(robot); err != nil {
		return fmt.Errorf("manager: update robot: %w", err)
	}
	return nil
}

// AddSkill registers factory under typ, publishing a description element
// related to the robot via skiros:hasSkill and registering typ as an OWL
// subclass of skiros:Skill if not already known, matching addSkill.
func (m *Manager) AddSkill(typ string, factory skill.Factory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := factory(typ)
	if _, found, err := m.wm.GetType(s.Type); err != nil {
		return fmt.Errorf("manager: check skill type: %w", err)
	} else if !found {
		if err := m.wm.AddClass(s.Type, "skiros:Skill"); err != nil {
			return fmt.Errorf("manager: register skill class: %w", err)
		}
	}
	e := worldmodel.Element{Type: s.Type, Label: s.Label}
	if _, err := m.wm.AddElement(e, m.robotID, "skiros:hasSkill"); err != nil {
		return fmt.Errorf("manager: publish skill: %w", err)
	}
	m.skills[typ] = factory
	return nil
}

// LoadSkills merges factories into the skill registry in one call,
// the Go-native substitute for _initSkills' library/shared-object scan
// (dynamic plugin loading itself stays an external collaborator per §1).
func (m *Manager) LoadSkills(factories map[string]skill.Factory) error {
	for typ, factory := range factories {
		if err := m.AddSkill(typ, factory); err != nil {
			return err
		}
	}
	return nil
}

// Describe returns the published shape of every loaded skill, the Skill
// description API's reply (spec §6).
func (m *Manager) Describe() []SkillDescription {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SkillDescription, 0, len(m.skills))
	for typ, factory := range m.skills {
		s := factory(typ)
		desc := SkillDescription{Type: s.Type, Label: s.Label}
		for _, p := range s.Params.GetParamMap() {
			desc.Params = append(desc.Params, ParamDescription{
				Key:       p.Key,
				Type:      p.Type.String(),
				ValueType: p.ValueType,
			})
		}
		out = append(out, desc)
	}
	return out
}

// buildTask instantiates one skill per step via the registry, specifying
// every given parameter, and assembles them into a Sequence rooted under
// a fresh Root node, mirroring add_task's addChild/specifyParamsDefault
// loop.
func (m *Manager) buildTask(steps []SkillStepRequest) (*behaviortree.Node, error) {
	leaves := make([]*behaviortree.Node, 0, len(steps))
	for _, step := range steps {
		factory, ok := m.skills[step.Type]
		if !ok {
			return nil, fmt.Errorf("manager: skill %q: %w", step.Type, skierr.ErrUnknownSkill)
		}
		s := factory(step.Label)
		for key, value := range step.Params {
			if err := s.Params.Specify(key, value); err != nil {
				return nil, fmt.Errorf("manager: specify %s.%s: %w", step.Type, key, err)
			}
		}
		leaves = append(leaves, behaviortree.NewSkillWrapper(s))
	}
	var body *behaviortree.Node
	switch len(leaves) {
	case 0:
		return nil, fmt.Errorf("manager: empty task: %w", skierr.ErrInternalInvariant)
	case 1:
		body = leaves[0]
	default:
		body = behaviortree.NewSequence("task", leaves...)
	}
	return behaviortree.NewRoot("root", param.NewHandler(), body), nil
}

// AddTask builds a tree from steps and registers it with the Ticker,
// returning its uid.
func (m *Manager) AddTask(steps []SkillStepRequest) (uint64, error) {
	m.mu.Lock()
	root, err := m.buildTask(steps)
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}
	uid := m.ticker.AddTask(root, 0)
	m.mu.Lock()
	m.tasks[uid] = root
	m.mu.Unlock()
	return uid, nil
}

// PreemptTask requests the next tick abort uid's task.
func (m *Manager) PreemptTask(uid uint64) {
	m.ticker.Preempt(uid)
}

// ExecuteTask starts the shared tick loop, if it is not already running.
// All registered tasks tick together under the Manager's Execute visitor,
// matching BtTicker's single-worker-drives-every-task design.
func (m *Manager) ExecuteTask(ctx context.Context) bool {
	return m.ticker.Start(ctx)
}

// ClearTasks stops the tick loop and drops every registered task.
func (m *Manager) ClearTasks() {
	m.ticker.Clear()
	m.mu.Lock()
	m.tasks = make(map[uint64]*behaviortree.Node)
	m.mu.Unlock()
}

// PrintTask renders uid's tree without altering any node's state.
func (m *Manager) PrintTask(uid uint64) (string, error) {
	m.mu.Lock()
	root, ok := m.tasks[uid]
	m.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("manager: task %d: %w", uid, skierr.ErrInternalInvariant)
	}
	p := &visitor.Print{}
	if _, err := p.Traverse(root); err != nil {
		return "", fmt.Errorf("manager: print task: %w", err)
	}
	return p.String(), nil
}

// SimulateTask runs uid's tree through a ReversibleSimulator: every
// precondition/postcondition is applied and then reverted, leaving the
// world model unchanged but surfacing whether the task is feasible.
func (m *Manager) SimulateTask(uid uint64) (skill.State, error) {
	m.mu.Lock()
	root, ok := m.tasks[uid]
	m.mu.Unlock()
	if !ok {
		return skill.Error, fmt.Errorf("manager: task %d: %w", uid, skierr.ErrInternalInvariant)
	}
	sim := visitor.NewReversibleSimulator(m.wm)
	return sim.Traverse(root)
}

// HandleRequest dispatches a TaskRequest to the matching operation and
// wraps the result as a TaskResponse. Pause/Kill are reserved actions
// (Open Question 2 in DESIGN.md): they always report OK=false, the
// reservation visible at the call site rather than implied by a default
// branch.
func (m *Manager) HandleRequest(ctx context.Context, req TaskRequest) TaskResponse {
	switch req.Action {
	case ActionPause, ActionKill:
		return TaskResponse{OK: false, TaskID: req.TaskID, Message: "action reserved, not yet implemented"}
	case ActionPreempt:
		m.PreemptTask(req.TaskID)
		return TaskResponse{OK: true, TaskID: req.TaskID}
	case ActionStart:
		uid, err := m.AddTask(req.Steps)
		if err != nil {
			return TaskResponse{OK: false, Message: err.Error()}
		}
		m.ExecuteTask(ctx)
		return TaskResponse{OK: true, TaskID: uid}
	case ActionPrint:
		text, err := m.PrintTask(req.TaskID)
		if err != nil {
			return TaskResponse{OK: false, TaskID: req.TaskID, Message: err.Error()}
		}
		return TaskResponse{OK: true, TaskID: req.TaskID, Plan: text}
	case ActionSimulate:
		st, err := m.SimulateTask(req.TaskID)
		if err != nil {
			return TaskResponse{OK: false, TaskID: req.TaskID, Message: err.Error()}
		}
		return TaskResponse{OK: st == skill.Success, TaskID: req.TaskID, Message: st.String()}
	default:
		return TaskResponse{OK: false, TaskID: req.TaskID, Message: fmt.Sprintf("unknown action %q", req.Action)}
	}
}
