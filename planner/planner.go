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

// Package planner adapts the condition/skill/worldmodel types onto
// github.com/joeycumines/go-pabt's reactive planning algorithm (the
// Pre/Post Conditioned Behavior Tree approach), giving a task a
// self-expanding, self-repairing tree that grows actions to satisfy a
// skill's unmet preconditions at tick time. This complements, rather
// than replaces, the offline PDDL planner in package pddl: pddl.Compiler
// grounds and orders a task's skills ahead of time over the full action
// space, while a Planner here reacts to conditions that change after a
// plan has been committed to a tree, without a full re-plan.
package planner

import (
	"fmt"
	"sort"
	"strings"

	pabt "github.com/joeycumines/go-pabt"
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/skiros2/skiros-go/condition"
	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/skierr"
	"github.com/skiros2/skiros-go/skill"
	"github.com/skiros2/skiros-go/worldmodel"
)

// Planner builds go-pabt Plans over a fixed skill library and a single
// shared parameter namespace. Skills added to a Planner are expected to
// already share their subject/object parameter keys (via skill.Remap)
// where they refer to the same task-level object, since canonicalKey
// uses those keys, not resolved values, to decide whether one skill's
// postcondition can satisfy another's precondition.
type Planner struct {
	wm     worldmodel.Model
	ph     *param.Handler
	skills []*skill.Skill
}

// New constructs a Planner over wm and a shared parameter handler ph
// that every plan condition/effect will be evaluated against.
func New(wm worldmodel.Model, ph *param.Handler) *Planner {
	return &Planner{wm: wm, ph: ph}
}

// AddSkill registers s as a candidate action for closing any failed
// precondition whose canonical shape matches one of s's postconditions.
func (p *Planner) AddSkill(s *skill.Skill) {
	p.skills = append(p.skills, s)
}

// Plan builds a go-behaviortree Node that attempts to achieve goal
// (at least one Conditions group must pass), growing itself with
// registered skills as preconditions fail, per the PA-BT algorithm.
func (p *Planner) Plan(goal []condition.Condition) (bt.Node, error) {
	if len(goal) == 0 {
		return nil, fmt.Errorf("planner: empty goal: %w", skierr.ErrInternalInvariant)
	}
	state := newPabtState(p.wm, p.ph, p.skills)
	goalConds := make(pabt.Conditions, 0, len(goal))
	for _, c := range goal {
		goalConds = append(goalConds, state.wrap(c))
	}
	plan, err := pabt.New(state, []pabt.Conditions{goalConds})
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	return plan.Node(), nil
}

// pabtState bridges pabt.State onto worldmodel.Model/condition.Condition
// evaluation. Every wrapped condition/effect is indexed by its canonical
// key so Variable can re-evaluate the original Condition later, since
// pabt only ever passes the opaque Key() back.
type pabtState struct {
	wm     worldmodel.Model
	ph     *param.Handler
	skills []*skill.Skill
	index  map[string]condition.Condition
}

func newPabtState(wm worldmodel.Model, ph *param.Handler, skills []*skill.Skill) *pabtState {
	return &pabtState{wm: wm, ph: ph, skills: skills, index: make(map[string]condition.Condition)}
}

// wrap registers c under its canonical key and returns a pabtVariable
// usable as both a pabt.Condition and a pabt.Effect.
func (s *pabtState) wrap(c condition.Condition) *pabtVariable {
	key := canonicalKey(c)
	s.index[key] = c
	return &pabtVariable{key: key}
}

func (s *pabtState) Variable(key interface{}) (interface{}, error) {
	k, ok := key.(string)
	if !ok {
		return nil, fmt.Errorf("planner: non-string variable key %v: %w", key, skierr.ErrInternalInvariant)
	}
	c, ok := s.index[k]
	if !ok {
		return nil, fmt.Errorf("planner: unregistered variable %q: %w", k, skierr.ErrInternalInvariant)
	}
	return c.Evaluate(s.ph, s.wm)
}

// Actions returns one candidate pabt.Action per registered skill whose
// postconditions include a condition canonically matching failed.
func (s *pabtState) Actions(failed pabt.Condition) ([]pabt.Action, error) {
	v, ok := failed.(*pabtVariable)
	if !ok {
		return nil, fmt.Errorf("planner: invalid failed condition: %w", skierr.ErrInternalInvariant)
	}
	var actions []pabt.Action
	for _, sk := range s.skills {
		for _, post := range sk.Postconditions {
			if canonicalKey(post) == v.key {
				actions = append(actions, &pabtAction{state: s, skill: sk})
				break
			}
		}
	}
	return actions, nil
}

// pabtVariable implements both pabt.Condition and pabt.Effect: Match
// reads Variable's bool result, Value always asserts true, matching
// Evaluate's "true means satisfied" contract across every
// condition.Condition variant.
type pabtVariable struct {
	key string
}

func (v *pabtVariable) Key() interface{} { return v.key }
func (v *pabtVariable) Match(value interface{}) bool {
	b, _ := value.(bool)
	return b
}
func (v *pabtVariable) Value() interface{} { return true }

// pabtAction adapts a *skill.Skill into a pabt.Action: its
// preconditions/postconditions become the wired Conditions/Effects, and
// Node runs the skill body directly against the Planner's shared
// parameter handler.
type pabtAction struct {
	state *pabtState
	skill *skill.Skill
}

func (a *pabtAction) Conditions() []pabt.Conditions {
	if len(a.skill.Preconditions) == 0 {
		return nil
	}
	conds := make(pabt.Conditions, 0, len(a.skill.Preconditions))
	for _, c := range a.skill.Preconditions {
		conds = append(conds, a.state.wrap(c))
	}
	return []pabt.Conditions{conds}
}

func (a *pabtAction) Effects() pabt.Effects {
	effs := make(pabt.Effects, 0, len(a.skill.Postconditions))
	for _, c := range a.skill.Postconditions {
		effs = append(effs, a.state.wrap(c))
	}
	return effs
}

func (a *pabtAction) Node() bt.Node {
	return newSkillNode(a.state.ph, a.skill)
}

// newSkillNode runs s.Body's OnStart/OnStep/OnEnd lifecycle as a single
// bt.Node, translating skill.State to bt.Status the same way
// behaviortree.stateToStatus does for the primary execution path.
func newSkillNode(ph *param.Handler, s *skill.Skill) bt.Node {
	started := false
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if !started {
			if err := s.Body.OnStart(ph); err != nil {
				return bt.Failure, err
			}
			started = true
		}
		state, err := s.Body.OnStep(ph)
		if err != nil {
			started = false
			return bt.Failure, err
		}
		switch state {
		case skill.Success:
			started = false
			return bt.Success, s.Body.OnEnd(ph)
		case skill.Running:
			return bt.Running, nil
		default:
			started = false
			_ = s.Body.OnEnd(ph)
			return bt.Failure, nil
		}
	})
}

// canonicalKey renders c's static shape (subject/object parameter keys,
// predicate/property name, desired state) as built by ToElement, which
// every condition.Condition variant populates without touching ph/wm.
// Two conditions referring to the same fact in a shared parameter
// namespace render identically regardless of which Condition instance
// produced them, which is what lets an action's postcondition satisfy a
// different action's precondition in pabt's Key()-equality check.
func canonicalKey(c condition.Condition) string {
	e := c.ToElement()
	var b strings.Builder
	b.WriteString(e.Type)
	keys := make([]string, 0, len(e.Properties))
	for k := range e.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		for _, v := range e.Properties[k] {
			fmt.Fprintf(&b, "%v,", v)
		}
	}
	return b.String()
}
