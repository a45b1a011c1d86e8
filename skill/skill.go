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

// Package skill defines the leaf primitive skills are built from: a typed,
// labelled description with pre-/post-/hold-conditions and a user-code
// body exercised by the Execute visitor, grounded on skiros2_skill's
// RosSkill/SkillInstanciator split (skill_manager.py) and on the
// Conditions()/Effects()/Node() shape of go-pabt's Action interface.
package skill

import (
	"fmt"

	"github.com/skiros2/skiros-go/condition"
	"github.com/skiros2/skiros-go/param"
)

// State is the tri-state-plus lifecycle every behavior tree node (skills
// included) carries.
type State int

const (
	Initialised State = iota
	Running
	Success
	Failure
	Idle
	Error
)

func (s State) String() string {
	switch s {
	case Initialised:
		return "Initialised"
	case Running:
		return "Running"
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case Idle:
		return "Idle"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Body is the user-code hooks a skill's Execute visitor drives. OnStep is
// called repeatedly while the skill is Running; a non-Running return ends
// the run and triggers OnEnd.
type Body interface {
	OnStart(ph *param.Handler) error
	OnStep(ph *param.Handler) (State, error)
	OnEnd(ph *param.Handler) error
}

// NopBody is a Body that succeeds immediately, useful for skills that only
// assert conditions (no actuation).
type NopBody struct{}

func (NopBody) OnStart(*param.Handler) error        { return nil }
func (NopBody) OnStep(*param.Handler) (State, error) { return Success, nil }
func (NopBody) OnEnd(*param.Handler) error           { return nil }

// Skill is the leaf description: type/label/params/conditions/body.
type Skill struct {
	Type  string
	Label string
	Params *param.Handler

	Preconditions  []condition.Condition
	Postconditions []condition.Condition
	HoldConditions []condition.Condition

	Body Body
}

// New constructs a Skill with a fresh empty ParamHandler and a NopBody; use
// the With* setters to add conditions and override the body.
func New(typ, label string) *Skill {
	return &Skill{Type: typ, Label: label, Params: param.NewHandler(), Body: NopBody{}}
}

// Factory builds a fresh Skill instance for a given label, standing in
// for skiros2_skill's PluginLoader.getPluginByName: a manager's skill
// registry is a map[string]Factory keyed by skill type, the idiomatic Go
// substitute for dynamic shared-library/plugin loading (out of scope per
// SPEC_FULL.md §1).
type Factory func(label string) *Skill

func (s *Skill) WithBody(b Body) *Skill {
	s.Body = b
	return s
}

func (s *Skill) WithPreconditions(cs ...condition.Condition) *Skill {
	s.Preconditions = append(s.Preconditions, cs...)
	return s
}

func (s *Skill) WithPostconditions(cs ...condition.Condition) *Skill {
	s.Postconditions = append(s.Postconditions, cs...)
	return s
}

func (s *Skill) WithHoldConditions(cs ...condition.Condition) *Skill {
	s.HoldConditions = append(s.HoldConditions, cs...)
	return s
}

// Remap rewrites oldKey to newKey across the skill's ParamHandler and every
// condition, mirroring BehaviorTreeNode's assembly-time key folding (spec
// §4.E).
func (s *Skill) Remap(oldKey, newKey string) error {
	if s.Params.HasParam(oldKey) {
		if err := s.Params.Remap(oldKey, newKey); err != nil {
			return err
		}
	}
	for _, cs := range [][]condition.Condition{s.Preconditions, s.Postconditions, s.HoldConditions} {
		for _, c := range cs {
			c.Remap(oldKey, newKey)
		}
	}
	return nil
}

func (s *Skill) String() string {
	return fmt.Sprintf("%s(%s)", s.Type, s.Label)
}
